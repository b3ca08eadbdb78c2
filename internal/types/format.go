package types

// Format identifies the container format a decoder handles.
type Format int

const (
	// FormatUnknown represents an unknown or unsupported format.
	FormatUnknown Format = iota
	// FormatMP3 represents MP3 files carrying an ID3v2 tag.
	FormatMP3
	// FormatJPEG represents JPEG files, possibly carrying EXIF in APP1.
	FormatJPEG
	// FormatTIFF represents bare TIFF files.
	FormatTIFF
	// FormatMIDI represents Standard MIDI Files.
	FormatMIDI
	// FormatMP4 represents ISO base media (MP4/QuickTime) files.
	FormatMP4
)

var formatNames = [...]string{
	FormatUnknown: "unknown",
	FormatMP3:     "mp3",
	FormatJPEG:    "jpeg",
	FormatTIFF:    "tiff",
	FormatMIDI:    "midi",
	FormatMP4:     "mp4",
}

// String returns the short lowercase name of the format.
func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return formatNames[FormatUnknown]
	}
	return formatNames[f]
}

// Extensions returns common file extensions for this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatMP3:
		return []string{".mp3"}
	case FormatJPEG:
		return []string{".jpg", ".jpeg"}
	case FormatTIFF:
		return []string{".tif", ".tiff"}
	case FormatMIDI:
		return []string{".mid", ".midi"}
	case FormatMP4:
		return []string{".mp4", ".m4a", ".m4v", ".mov"}
	case FormatUnknown:
		return nil
	default:
		return nil
	}
}
