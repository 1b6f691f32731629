package nwb

// Option configures Open and Write.
type Option func(*options)

type options struct {
	registry *LinkRegistry
	linkData bool
}

func applyOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithRegistry attaches a link registry. On Open, the file is registered so
// its series can be linked to from other files. On Write, series whose
// source file is registered are written as external links to their original
// group instead of being copied.
func WithRegistry(r *LinkRegistry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithLinkData makes Write link every lazily-read data and timestamps array
// to its source dataset instead of copying the values. This is the file-wide
// default; individual arrays can opt in selectively with Linked.
func WithLinkData() Option {
	return func(o *options) {
		o.linkData = true
	}
}
