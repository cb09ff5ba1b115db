package cmd

// Options holds the shared command-line options for the codewatch CLI.
type Options struct {
	Format    string
	Verbosity int
	Progress  ProgressMode // When to show lookup progress
	Stats     bool         // Print cache statistics after lookups

	// Profiling options
	CPUProfile string // Write CPU profile to file
	MemProfile string // Write memory profile to file
	Trace      string // Write execution trace to file
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

// WithFormat sets the output format (text, json).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithProgress sets when the lookup progress display runs.
func WithProgress(mode ProgressMode) Option {
	return func(o *Options) {
		o.Progress = mode
	}
}

// WithStats prints cache statistics after lookups.
func WithStats(stats bool) Option {
	return func(o *Options) {
		o.Stats = stats
	}
}

// WithCPUProfile sets the CPU profile output file.
func WithCPUProfile(path string) Option {
	return func(o *Options) {
		o.CPUProfile = path
	}
}

// WithMemProfile sets the memory profile output file.
func WithMemProfile(path string) Option {
	return func(o *Options) {
		o.MemProfile = path
	}
}

// WithTrace sets the execution trace output file.
func WithTrace(path string) Option {
	return func(o *Options) {
		o.Trace = path
	}
}
