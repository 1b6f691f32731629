package nwb

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robert-malhotra/go-nwb/hdf5"
)

// Root attribute and group names of the session file schema.
const (
	attrIdentifier    = "identifier"
	attrDescription   = "session_description"
	attrStartTime     = "session_start_time"
	attrCreateTime    = "file_create_date"
	attrFormat        = "format"
	attrVersion       = "format_version"
	attrNeurodataType = "neurodata_type"

	groupAcquisition = "acquisition"
	groupStimulus    = "stimulus"
	groupIntervals   = "intervals"

	formatName = "go-nwb"
)

// Write persists a session to a new container file at path. Series whose
// data was read lazily from other files are copied by default; see
// WithLinkData, Linked and WithRegistry for the linking behaviors.
func Write(path string, s *Session, opts ...Option) error {
	o := applyOptions(opts)

	f, err := hdf5.Create(path)
	if err != nil {
		return fmt.Errorf("creating session file: %w", err)
	}

	if err := writeSession(f, s, path, o); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing session file: %w", err)
	}
	return nil
}

func writeSession(f *hdf5.File, s *Session, path string, o *options) error {
	root := f.Root()

	rootAttrs := []struct {
		name  string
		value interface{}
	}{
		{attrFormat, formatName},
		{attrVersion, FormatVersion},
		{attrIdentifier, s.identifier},
		{attrDescription, s.description},
		{attrStartTime, s.startTime.Format(time.RFC3339Nano)},
		{attrCreateTime, s.createTime.Format(time.RFC3339Nano)},
	}
	for _, a := range rootAttrs {
		if err := root.SetAttr(a.name, a.value); err != nil {
			return fmt.Errorf("writing session metadata %q: %w", a.name, err)
		}
	}

	acq, err := root.CreateGroup(groupAcquisition)
	if err != nil {
		return fmt.Errorf("creating acquisition group: %w", err)
	}
	for _, name := range s.acquisition.names() {
		ts, _ := s.acquisition.get(name)
		if err := writeSeries(acq, ts, path, o); err != nil {
			return fmt.Errorf("writing acquisition series %q: %w", name, err)
		}
	}

	stim, err := root.CreateGroup(groupStimulus)
	if err != nil {
		return fmt.Errorf("creating stimulus group: %w", err)
	}
	for _, name := range s.stimulus.names() {
		ts, _ := s.stimulus.get(name)
		if err := writeSeries(stim, ts, path, o); err != nil {
			return fmt.Errorf("writing stimulus series %q: %w", name, err)
		}
	}

	if s.trials != nil {
		intervals, err := root.CreateGroup(groupIntervals)
		if err != nil {
			return fmt.Errorf("creating intervals group: %w", err)
		}
		if err := writeTable(intervals, s.trials.DynamicTable, "TimeIntervals"); err != nil {
			return fmt.Errorf("writing trials: %w", err)
		}
	}

	if s.units != nil {
		if err := writeTable(root, s.units.DynamicTable, "Units"); err != nil {
			return fmt.Errorf("writing units: %w", err)
		}
	}

	return nil
}

// writeSeries writes one series group, or an external link to the series'
// original group when the series came from a file registered in the link
// registry.
func writeSeries(parent *hdf5.Group, ts *TimeSeries, dstPath string, o *options) error {
	if ts.origin != nil && o.registry != nil && o.registry.knows(ts.origin.filePath) {
		return parent.CreateExternalLink(ts.name, relativeTo(dstPath, ts.origin.filePath), ts.origin.groupPath)
	}

	g, err := parent.CreateGroup(ts.name)
	if err != nil {
		return err
	}

	if err := g.SetAttr(attrNeurodataType, "TimeSeries"); err != nil {
		return err
	}
	if err := g.SetAttr("unit", ts.unit); err != nil {
		return err
	}
	if ts.description != "" {
		if err := g.SetAttr("description", ts.description); err != nil {
			return err
		}
	}
	if ts.comments != "" {
		if err := g.SetAttr("comments", ts.comments); err != nil {
			return err
		}
	}

	if err := writeArray(g, "data", ts.data, dstPath, o); err != nil {
		return err
	}

	if ts.rate > 0 {
		if err := g.SetAttr("starting_time", ts.start); err != nil {
			return err
		}
		return g.SetAttr("rate", ts.rate)
	}
	return writeArray(g, "timestamps", ts.timestamps, dstPath, o)
}

// writeArray writes a data source as a dataset, or as an external link to
// the source dataset when linking is requested and possible.
func writeArray(g *hdf5.Group, name string, src DataSource, dstPath string, o *options) error {
	wantLink := o.linkData
	if l, ok := src.(*linked); ok {
		src = l.DataSource
		wantLink = true
	}

	if lazy, ok := src.(*LazyArray); ok && wantLink {
		filePath, objectPath := lazy.sourceLocation()
		if filePath != "" {
			return g.CreateExternalLink(name, relativeTo(dstPath, filePath), objectPath)
		}
		// Reader-backed source with no linkable path; fall through and copy.
	}

	values, err := src.Load()
	if err != nil {
		return fmt.Errorf("loading %q: %w", name, err)
	}
	shape := src.Shape()
	if err := validateShape(values, shape); err != nil {
		return fmt.Errorf("dataset %q: %w", name, err)
	}
	if _, err := g.CreateFloatDataset(name, shape, values); err != nil {
		return fmt.Errorf("writing %q: %w", name, err)
	}
	return nil
}

// writeTable writes a DynamicTable as a group of column datasets. Ragged
// columns are stored as a flat values dataset plus a "<name>_index" dataset
// of cumulative row ends.
func writeTable(parent *hdf5.Group, t *DynamicTable, neurodataType string) error {
	g, err := parent.CreateGroup(t.name)
	if err != nil {
		return err
	}

	if err := g.SetAttr(attrNeurodataType, neurodataType); err != nil {
		return err
	}
	if err := g.SetAttr("description", t.description); err != nil {
		return err
	}
	if err := g.SetAttr("colnames", t.order); err != nil {
		return err
	}

	for _, name := range t.order {
		col := t.cols[name]
		desc := hdf5.WithAttribute("description", col.description)

		switch col.kind {
		case FloatColumn:
			if _, err := g.CreateFloatDataset(name, []uint64{uint64(len(col.floats))}, col.floats, desc); err != nil {
				return fmt.Errorf("column %q: %w", name, err)
			}
		case StringColumn:
			if _, err := g.CreateStringDataset(name, col.strings, desc); err != nil {
				return fmt.Errorf("column %q: %w", name, err)
			}
		case RaggedColumn:
			values, index := raggedEncode(col.lists)
			if _, err := g.CreateFloatDataset(name, []uint64{uint64(len(values))}, values, desc); err != nil {
				return fmt.Errorf("column %q: %w", name, err)
			}
			indexName := name + "_index"
			target := hdf5.WithAttribute("target", name)
			if _, err := g.CreateUintDataset(indexName, []uint64{uint64(len(index))}, index, target); err != nil {
				return fmt.Errorf("column %q: %w", indexName, err)
			}
		}
	}

	return nil
}

// relativeTo expresses target relative to the directory of from, the base
// against which external links are resolved at read time.
func relativeTo(from, target string) string {
	rel, err := filepath.Rel(filepath.Dir(from), target)
	if err != nil {
		return filepath.Base(target)
	}
	return rel
}
