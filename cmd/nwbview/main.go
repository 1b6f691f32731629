// Command nwbview browses a session file interactively: a split view with
// the container tree on the left and the selected node's attributes on the
// right.
//
//	nwbview session.nwb
//	nwbview -remote https://example.org/data/session.nwb
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/robert-malhotra/go-nwb/nwb"
	"github.com/robert-malhotra/go-nwb/remote"
	"github.com/robert-malhotra/go-nwb/tui"
)

func main() {
	remoteURL := flag.Bool("remote", false, "treat the argument as a URL and stream it with range requests")
	flag.Parse()

	if err := run(context.Background(), *remoteURL, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "nwbview: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, remoteURL bool, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	name := args[0]

	var (
		f   *nwb.File
		err error
	)
	if remoteURL {
		var r *remote.Reader
		r, err = remote.Open(ctx, name)
		if err != nil {
			return err
		}
		f, err = nwb.OpenReaderAt(r, name)
	} else {
		f, err = nwb.Open(name)
	}
	if err != nil {
		return err
	}
	defer f.Close()

	root, err := tui.BuildTree(f.Container())
	if err != nil {
		return fmt.Errorf("building tree: %w", err)
	}

	p := tea.NewProgram(tui.New(name, root), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}
