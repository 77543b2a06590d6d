package kdtree

// options holds Tree construction settings assembled from functional
// Option values.
type options struct {
	capacityHint int
	logger       *Logger
	diagnostics  bool
}

// Option configures Tree construction.
type Option func(*options)

// WithCapacityHint pre-sizes the tree's backing storage to the smallest
// supported capacity >= n, avoiding reallocation during the first
// several inserts. NewWithCapacity takes the same hint as a direct
// argument; passing both, this Option is applied last and wins.
func WithCapacityHint(n int) Option {
	return func(o *options) { o.capacityHint = n }
}

// WithLogger attaches a Logger. Trees are silent by default.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithDiagnostics enables Tree.Diagnostics. Disabled by default since it
// is purely an introspection aid or test.
func WithDiagnostics() Option {
	return func(o *options) { o.diagnostics = true }
}

func defaultOptions() *options {
	return &options{logger: NoopLogger()}
}
