package fmprobe

import (
	"io"
	"log/slog"

	"github.com/filemeta/fmprobe/internal/types"
)

// Option configures a probe.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	res, err := fmprobe.ProbeFile(os.Stdout, "photo.jpg",
//	    fmprobe.WithVerbosity(1),
//	    fmprobe.WithStrictParsing(),
//	)
type Option func(*probeOptions)

// probeOptions holds configuration for a probe.
type probeOptions struct {
	verbosity     int
	maxDepth      int
	maxIFDs       int
	concurrency   int // Files probed at once by ProbeFiles
	strictParsing bool
	logger        *slog.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() *probeOptions {
	return &probeOptions{
		maxDepth:    types.DefaultMaxDepth,
		maxIFDs:     types.DefaultMaxIFDs,
		concurrency: 1,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func buildOptions(opts []Option) *probeOptions {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// config returns the settings handed to the decoders.
func (o *probeOptions) config() types.Config {
	return types.Config{
		Verbosity: o.verbosity,
		MaxDepth:  o.maxDepth,
		MaxIFDs:   o.maxIFDs,
	}
}

// WithVerbosity sets the detail level. Zero prints decoded fields only;
// anything higher adds offsets, raw entry values and hex dumps of opaque
// regions.
func WithVerbosity(n int) Option {
	return func(o *probeOptions) {
		o.verbosity = n
	}
}

// WithMaxDepth bounds how deeply containers may nest: MP4 boxes inside
// boxes, EXIF sub-directories inside directories. Values below one select
// the default of 32.
func WithMaxDepth(n int) Option {
	return func(o *probeOptions) {
		o.maxDepth = n
	}
}

// WithMaxIFDs bounds the number of EXIF directories visited in one file.
// Values below one select the default of 64.
func WithMaxIFDs(n int) Option {
	return func(o *probeOptions) {
		o.maxIFDs = n
	}
}

// WithConcurrency sets how many files ProbeFiles decodes at once. The
// default of 1 probes files strictly one after another. Output order does
// not depend on this setting.
func WithConcurrency(n int) Option {
	return func(o *probeOptions) {
		o.concurrency = max(n, 1)
	}
}

// WithLogger sets the logger ProbeFiles reports per-file progress and
// failures to. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *probeOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStrictParsing treats any diagnostic as a fatal error.
//
// By default a failure confined to one directory entry, box, frame or
// track is printed inline and the walk carries on. With strict parsing the
// output is still written, but the probe returns an error if any such
// diagnostic was raised.
//
// Example:
//
//	_, err := fmprobe.ProbeFile(os.Stdout, "song.mp3", fmprobe.WithStrictParsing())
//	// err != nil if ANY issue is encountered
func WithStrictParsing() Option {
	return func(o *probeOptions) {
		o.strictParsing = true
	}
}
