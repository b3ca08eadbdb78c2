// Package sniff identifies a file's container format from its first bytes.
package sniff

import (
	"io"

	"github.com/filemeta/fmprobe/internal/binary"
	"github.com/filemeta/fmprobe/internal/types"
)

// headerLen is how much of the file Detect looks at.
const headerLen = 12

// mp4Boxes are box types accepted as the first box of an ISO base media file.
var mp4Boxes = map[string]bool{
	"ftyp": true,
	"moov": true,
	"mdat": true,
	"free": true,
	"skip": true,
	"wide": true,
	"pnot": true,
}

// Detect determines the container format by examining magic bytes.
//
// Detection is based on file signatures at the beginning of the file and
// does not validate the rest of the structure.
func Detect(r io.ReaderAt, size int64, path string) (types.Format, error) {
	// File must be at least 4 bytes for any meaningful detection
	if size < 4 {
		return types.FormatUnknown, &types.UnsupportedFormatError{
			Path:   path,
			Reason: "file too small",
		}
	}

	sr := binary.NewSafeReader(r, size, path)
	header, err := sr.Bytes(0, int(min(size, headerLen)), "file magic bytes")
	if err != nil {
		return types.FormatUnknown, &types.UnsupportedFormatError{
			Path:   path,
			Reason: "failed to read file header",
		}
	}

	switch {
	case isID3(header):
		return types.FormatMP3, nil

	case header[0] == 0xFF && header[1] == 0xD8 && header[2] == 0xFF:
		return types.FormatJPEG, nil

	case string(header[:4]) == "II*\x00" || string(header[:4]) == "MM\x00*":
		return types.FormatTIFF, nil

	case string(header[:4]) == "MThd":
		return types.FormatMIDI, nil

	case len(header) >= 8 && mp4Boxes[string(header[4:8])]:
		return types.FormatMP4, nil
	}

	return types.FormatUnknown, &types.UnsupportedFormatError{
		Path:   path,
		Reason: "unrecognised file signature",
	}
}

// isID3 matches "ID3" followed by a major version of 2, 3 or 4.
func isID3(header []byte) bool {
	if len(header) < 5 || string(header[:3]) != "ID3" {
		return false
	}
	return header[3] >= 2 && header[3] <= 4 && header[4] != 0xFF
}
