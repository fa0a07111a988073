package cmd

// Options holds the shared command-line options for the orgscout CLI.
type Options struct {
	Format    string
	Since     string
	HTMLOut   string
	Verbosity int
	Limit     int
	DelayMS   int
	NoCache   bool
	FailFast  bool
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format (table, json, html).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithSince sets the activity window (e.g., "30d", "12mo", "2025-01-15").
func WithSince(since string) Option {
	return func(o *Options) {
		o.Since = since
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithLimit sets the maximum number of table rows.
func WithLimit(limit int) Option {
	return func(o *Options) {
		o.Limit = limit
	}
}

// WithNoCache disables the page cache for the run.
func WithNoCache(noCache bool) Option {
	return func(o *Options) {
		o.NoCache = noCache
	}
}

// WithFailFast stops a multi-target run at the first failure.
func WithFailFast(failFast bool) Option {
	return func(o *Options) {
		o.FailFast = failFast
	}
}
