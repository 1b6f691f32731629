// Command nwbls inspects a session file: it prints the session summary and
// the container tree, previews series data, exports tables to Parquet, and
// summarizes spike times aligned to trial onsets.
//
// The file may be local, a URL streamed with range requests, or a DANDI
// archive asset resolved by dandiset ID and path:
//
//	nwbls session.nwb
//	nwbls -tree -preview 5 session.nwb
//	nwbls -remote https://example.org/data/session.nwb
//	nwbls -dandiset 000006 -asset sub-anm369962/sub-anm369962_ses-20170310.nwb
//	nwbls -export-trials trials.parquet -export-units units.parquet session.nwb
//	nwbls -align-trials -window 0.5:1.0 session.nwb
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-nwb/dandi"
	"github.com/robert-malhotra/go-nwb/export"
	"github.com/robert-malhotra/go-nwb/hdf5"
	"github.com/robert-malhotra/go-nwb/nwb"
	"github.com/robert-malhotra/go-nwb/remote"
	"github.com/robert-malhotra/go-nwb/spikes"
)

func main() {
	var (
		remoteURL    = flag.Bool("remote", false, "treat the argument as a URL and stream it with range requests")
		dandisetID   = flag.String("dandiset", "", "DANDI dandiset ID to resolve the asset from")
		assetPath    = flag.String("asset", "", "asset path within the dandiset")
		version      = flag.String("version", dandi.DraftVersion, "dandiset version")
		configPath   = flag.String("config", "", "DANDI client YAML config file")
		tree         = flag.Bool("tree", false, "print the raw container tree")
		preview      = flag.Int("preview", 0, "print the first N rows of each series")
		exportTrials = flag.String("export-trials", "", "write the trials table to this Parquet file")
		exportUnits  = flag.String("export-units", "", "write the units table to this Parquet file")
		alignTrials  = flag.Bool("align-trials", false, "summarize spike times aligned to trial start times")
		window       = flag.String("window", "0.5:1.0", "alignment window as before:after, in seconds")
		verbose      = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(context.Background(), options{
		remoteURL:    *remoteURL,
		dandisetID:   *dandisetID,
		assetPath:    *assetPath,
		version:      *version,
		configPath:   *configPath,
		tree:         *tree,
		preview:      *preview,
		exportTrials: *exportTrials,
		exportUnits:  *exportUnits,
		alignTrials:  *alignTrials,
		window:       *window,
	}, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "nwbls: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	remoteURL    bool
	dandisetID   string
	assetPath    string
	version      string
	configPath   string
	tree         bool
	preview      int
	exportTrials string
	exportUnits  string
	alignTrials  bool
	window       string
}

func run(ctx context.Context, opts options, args []string) error {
	f, err := openSource(ctx, opts, args)
	if err != nil {
		return err
	}
	defer f.Close()

	session, err := f.Read()
	if err != nil {
		return fmt.Errorf("reading session: %w", err)
	}

	printSummary(session)

	if opts.tree {
		fmt.Println()
		printTree(f.Container().Root(), "", 0)
	}
	if opts.preview > 0 {
		fmt.Println()
		if err := printPreview(session, opts.preview); err != nil {
			return err
		}
	}
	if opts.exportTrials != "" {
		if session.Trials() == nil {
			return fmt.Errorf("session has no trials table")
		}
		if err := export.TableToParquet(opts.exportTrials, session.Trials().DynamicTable, export.DefaultOptions()); err != nil {
			return fmt.Errorf("exporting trials: %w", err)
		}
		fmt.Printf("\nwrote trials (%d rows) to %s\n", session.Trials().Len(), opts.exportTrials)
	}
	if opts.exportUnits != "" {
		if session.Units() == nil {
			return fmt.Errorf("session has no units table")
		}
		if err := export.TableToParquet(opts.exportUnits, session.Units().DynamicTable, export.DefaultOptions()); err != nil {
			return fmt.Errorf("exporting units: %w", err)
		}
		fmt.Printf("\nwrote units (%d rows) to %s\n", session.Units().Len(), opts.exportUnits)
	}
	if opts.alignTrials {
		fmt.Println()
		if err := printAlignment(session, opts.window); err != nil {
			return err
		}
	}
	return nil
}

// openSource opens the session file named by the flags: a DANDI asset, a
// remote URL, or a local path.
func openSource(ctx context.Context, opts options, args []string) (*nwb.File, error) {
	if opts.dandisetID != "" {
		if opts.assetPath == "" {
			return nil, fmt.Errorf("-dandiset requires -asset")
		}
		client := dandi.NewClient()
		if opts.configPath != "" {
			cfg, err := dandi.LoadConfig(opts.configPath)
			if err != nil {
				return nil, err
			}
			client = cfg.NewClient()
		}
		asset, err := client.AssetByPath(ctx, opts.dandisetID, opts.version, opts.assetPath)
		if err != nil {
			return nil, err
		}
		url, err := client.ContentURL(ctx, asset)
		if err != nil {
			return nil, err
		}
		slog.Debug("resolved asset", "path", asset.Path, "size", asset.Size, "url", url)
		return openRemote(ctx, url)
	}

	if len(args) != 1 {
		return nil, fmt.Errorf("expected exactly one file argument")
	}
	if opts.remoteURL {
		return openRemote(ctx, args[0])
	}
	return nwb.Open(args[0])
}

func openRemote(ctx context.Context, url string) (*nwb.File, error) {
	r, err := remote.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	return nwb.OpenReaderAt(r, url)
}

func printSummary(s *nwb.Session) {
	fmt.Printf("identifier:  %s\n", s.Identifier())
	fmt.Printf("description: %s\n", s.Description())
	fmt.Printf("start time:  %s\n", s.StartTime())

	for _, name := range s.AcquisitionNames() {
		ts, _ := s.Acquisition(name)
		printSeries("acquisition", ts)
	}
	for _, name := range s.StimulusNames() {
		ts, _ := s.Stimulus(name)
		printSeries("stimulus", ts)
	}
	if t := s.Trials(); t != nil {
		fmt.Printf("trials:      %d rows, columns %v\n", t.Len(), t.ColumnNames())
	}
	if u := s.Units(); u != nil {
		fmt.Printf("units:       %d units\n", u.Len())
	}
}

func printSeries(category string, ts *nwb.TimeSeries) {
	timeBase := fmt.Sprintf("start %g, rate %g Hz", ts.StartingTime(), ts.Rate())
	if ts.Timestamps() != nil {
		timeBase = "timestamps"
	}
	fmt.Printf("%s %q: shape %v, unit %s, %s\n",
		category, ts.Name(), ts.Data().Shape(), ts.Unit(), timeBase)
}

// printTree walks the raw container, the session layer aside.
func printTree(g *hdf5.Group, indent string, depth int) {
	if depth > 20 {
		fmt.Printf("%s...\n", indent)
		return
	}

	fmt.Printf("%s%s/\n", indent, g.Path())
	members, err := g.Members()
	if err != nil {
		fmt.Printf("%s  error listing members: %v\n", indent, err)
		return
	}
	for _, name := range members {
		if sub, err := g.OpenGroup(name); err == nil {
			printTree(sub, indent+"  ", depth+1)
			continue
		}
		if ds, err := g.OpenDataset(name); err == nil {
			fmt.Printf("%s  %s: shape %v\n", indent, name, ds.Shape())
			continue
		}
		fmt.Printf("%s  %s: unreadable\n", indent, name)
	}
}

func printPreview(s *nwb.Session, n int) error {
	for _, name := range s.AcquisitionNames() {
		ts, _ := s.Acquisition(name)
		shape := ts.Data().Shape()
		count := uint64(n)
		if len(shape) > 0 && shape[0] < count {
			count = shape[0]
		}
		rows, err := ts.Data().Rows(0, count)
		if err != nil {
			return fmt.Errorf("previewing %s: %w", name, err)
		}
		fmt.Printf("%s[:%d] = %v\n", name, count, rows)
	}
	return nil
}

func printAlignment(s *nwb.Session, window string) error {
	if s.Trials() == nil {
		return fmt.Errorf("session has no trials table")
	}
	if s.Units() == nil {
		return fmt.Errorf("session has no units table")
	}

	w, err := parseWindow(window)
	if err != nil {
		return err
	}
	onsets := s.Trials().StartTimes()

	for i := 0; i < s.Units().Len(); i++ {
		aligned, err := spikes.Align(s.Units().SpikeTimes(i), onsets, w)
		if err != nil {
			return fmt.Errorf("unit %d: %w", i, err)
		}
		sum, err := spikes.Summarize(aligned, []float64{0.5})
		if err != nil {
			return fmt.Errorf("unit %d: %w", i, err)
		}
		if sum.Count == 0 {
			fmt.Printf("unit %d: no spikes in [-%g, +%g] around %d trials\n",
				i, w.Before, w.After, sum.Events)
			continue
		}
		fmt.Printf("unit %d: %d spikes over %d trials (%.2f/trial), offsets [%g, %g], median %g\n",
			i, sum.Count, sum.Events, sum.SpikesPerEvent, sum.Min, sum.Max, sum.Quantiles[0.5])
	}
	return nil
}

// parseWindow parses "before:after" in seconds.
func parseWindow(s string) (spikes.Window, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return spikes.Window{}, fmt.Errorf("window must be before:after, got %q", s)
	}
	before, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return spikes.Window{}, fmt.Errorf("bad window %q: %w", s, err)
	}
	after, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return spikes.Window{}, fmt.Errorf("bad window %q: %w", s, err)
	}
	return spikes.Window{Before: before, After: after}, nil
}
