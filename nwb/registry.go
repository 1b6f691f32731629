package nwb

// LinkRegistry coordinates linking whole series between files. Pass the same
// registry to Open and Write: a series read through a registered file is
// written to other files as an external link to its original group instead
// of being copied.
//
// Without a shared registry, adding a series read from one file to another
// session copies its data.
type LinkRegistry struct {
	files map[string]bool
}

// NewLinkRegistry creates an empty registry.
func NewLinkRegistry() *LinkRegistry {
	return &LinkRegistry{files: make(map[string]bool)}
}

func (r *LinkRegistry) register(path string) {
	if path == "" {
		return
	}
	r.files[path] = true
}

func (r *LinkRegistry) knows(path string) bool {
	return path != "" && r.files[path]
}
