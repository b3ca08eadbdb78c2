package fmprobe

import (
	"io"

	"github.com/filemeta/fmprobe/internal/sniff"
	"github.com/filemeta/fmprobe/internal/types"
)

// Format is an alias to types.Format.
type Format = types.Format

// Re-export all format constants.
const (
	FormatUnknown = types.FormatUnknown
	FormatMP3     = types.FormatMP3
	FormatJPEG    = types.FormatJPEG
	FormatTIFF    = types.FormatTIFF
	FormatMIDI    = types.FormatMIDI
	FormatMP4     = types.FormatMP4
)

// DetectFormat identifies the container format from the first bytes of r.
// It returns an *UnsupportedFormatError if no signature matches.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	return sniff.Detect(r, size, path)
}
