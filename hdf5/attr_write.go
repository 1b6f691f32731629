package hdf5

import (
	"fmt"
)

// SetAttr writes an attribute on this group. The value can be a scalar or
// slice of: int, int8-64, uint, uint8-64, float32, float64, string. Setting
// an attribute that already exists replaces its value.
func (g *Group) SetAttr(name string, value interface{}) error {
	if !g.file.writable {
		return fmt.Errorf("file is not writable")
	}
	if name == "" {
		return fmt.Errorf("attribute name cannot be empty")
	}

	// Load any existing links and attributes so the header rewrite keeps them.
	if g.pendingLinks == nil {
		if err := g.loadExistingLinks(); err != nil {
			return fmt.Errorf("loading existing links: %w", err)
		}
	}

	attrMsg, err := createAttributeMessage(name, value)
	if err != nil {
		return fmt.Errorf("creating attribute %q: %w", name, err)
	}

	// Replace if an attribute with this name is already pending.
	replaced := false
	for i, existing := range g.pendingAttrs {
		if existing.Name == name {
			g.pendingAttrs[i] = attrMsg
			replaced = true
			break
		}
	}
	if !replaced {
		g.pendingAttrs = append(g.pendingAttrs, attrMsg)
	}

	if err := g.rewriteHeader(); err != nil {
		return fmt.Errorf("writing attribute %q: %w", name, err)
	}
	return nil
}
