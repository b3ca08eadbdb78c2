// Package registry manages format-specific decoders.
package registry

import (
	"github.com/filemeta/fmprobe/internal/binary"
	"github.com/filemeta/fmprobe/internal/report"
	"github.com/filemeta/fmprobe/internal/types"
)

// Decoder is the interface all format decoders implement.
type Decoder interface {
	// Decode walks the structure in sr and writes what it finds to out.
	//
	// Failures confined to one unit are reported through out.Warn and the
	// walk continues. A returned error means the container framing itself
	// could not be decoded and the rest of the input was abandoned.
	Decode(sr *binary.SafeReader, out *report.Writer, cfg types.Config) error
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(sr *binary.SafeReader, out *report.Writer, cfg types.Config) error

// Decode calls f.
func (f DecoderFunc) Decode(sr *binary.SafeReader, out *report.Writer, cfg types.Config) error {
	return f(sr, out, cfg)
}

// decoders maps formats to their decoders.
var decoders = make(map[types.Format]Decoder)

// Register registers a decoder for a format.
// This is called by format packages during initialization (init functions).
func Register(format types.Format, d Decoder) {
	decoders[format] = d
}

// Get returns the decoder for a given format.
// Returns nil if no decoder is registered for the format.
func Get(format types.Format) Decoder {
	return decoders[format]
}
