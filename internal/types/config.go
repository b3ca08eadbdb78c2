package types

// Default limits applied when a Config leaves them at zero.
const (
	DefaultMaxDepth = 32
	DefaultMaxIFDs  = 64
)

// Config carries the settings every decoder receives. It is built once by
// the facade from its functional options and never mutated afterwards.
type Config struct {
	// Verbosity above zero adds offsets, raw field values and hex dumps of
	// opaque regions.
	Verbosity int

	// MaxDepth bounds container recursion (MP4 boxes, EXIF sub-directories).
	MaxDepth int

	// MaxIFDs bounds the number of EXIF directories visited in one walk.
	MaxIFDs int
}

// Verbose reports whether detail output is enabled.
func (c Config) Verbose() bool {
	return c.Verbosity > 0
}

// Depth returns MaxDepth, or DefaultMaxDepth if unset.
func (c Config) Depth() int {
	if c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

// IFDs returns MaxIFDs, or DefaultMaxIFDs if unset.
func (c Config) IFDs() int {
	if c.MaxIFDs <= 0 {
		return DefaultMaxIFDs
	}
	return c.MaxIFDs
}
