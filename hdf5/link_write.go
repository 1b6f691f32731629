package hdf5

import (
	"fmt"

	"github.com/robert-malhotra/go-nwb/internal/message"
)

// CreateSoftLink creates a soft link in this group pointing to targetPath,
// an absolute path within the same file. The target does not need to exist
// yet; soft links are resolved at read time.
func (g *Group) CreateSoftLink(name, targetPath string) error {
	if !g.file.writable {
		return fmt.Errorf("file is not writable")
	}
	if name == "" {
		return fmt.Errorf("link name cannot be empty")
	}
	if targetPath == "" {
		return fmt.Errorf("link target cannot be empty")
	}

	link := message.NewSoftLink(name, targetPath)
	if err := g.addLink(link); err != nil {
		return fmt.Errorf("adding soft link %q: %w", name, err)
	}
	return nil
}

// CreateExternalLink creates an external link in this group pointing to
// targetPath inside externalFile. externalFile is interpreted relative to
// the directory of the file containing the link when the link is resolved.
// External links can become stale if the target file is moved or renamed;
// resolution failures surface at read time.
func (g *Group) CreateExternalLink(name, externalFile, targetPath string) error {
	if !g.file.writable {
		return fmt.Errorf("file is not writable")
	}
	if name == "" {
		return fmt.Errorf("link name cannot be empty")
	}
	if externalFile == "" || targetPath == "" {
		return fmt.Errorf("external link requires a file name and target path")
	}

	link := message.NewExternalLink(name, externalFile, targetPath)
	if err := g.addLink(link); err != nil {
		return fmt.Errorf("adding external link %q: %w", name, err)
	}
	return nil
}
