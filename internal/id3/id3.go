// Package id3 decodes the ID3v2 tag at the start of an MP3 file.
//
// ID3v2.3 and ID3v2.4 frames are decoded. Older tags have a different frame
// layout; their header is shown and the body is dumped.
package id3

import (
	"fmt"

	"github.com/filemeta/fmprobe/internal/binary"
	"github.com/filemeta/fmprobe/internal/registry"
	"github.com/filemeta/fmprobe/internal/report"
	"github.com/filemeta/fmprobe/internal/types"
)

const (
	stage = "id3"

	headerSize      = 10
	frameHeaderSize = 10
)

// Tag header flags.
const (
	flagUnsync       = 0x80
	flagExtended     = 0x40
	flagExperimental = 0x20
	flagFooter       = 0x10
)

// header is the fixed 10-byte ID3v2 tag header.
type header struct {
	major byte
	minor byte
	flags byte
	size  uint32 // tag size excluding the header
}

// frame is one frame of the tag body.
type frame struct {
	id     string
	size   uint32
	flags  uint16
	offset int64 // position of the frame header, relative to the file
	body   []byte
}

type decoder struct {
	path string
	hdr  header
	out  *report.Writer
	cfg  types.Config
}

// Decode prints the tag header and every frame of the ID3v2 tag in sr.
//
// A bad or truncated tag header is returned as an error. A frame that cannot
// be decoded is reported inline and the walk continues at the next frame,
// found through the declared size.
func Decode(sr *binary.SafeReader, out *report.Writer, cfg types.Config) error {
	hdr, err := readHeader(sr)
	if err != nil {
		return err
	}

	out.Field("ID3v2_Version", fmt.Sprintf("%d.%d", hdr.major, hdr.minor))
	out.Field("Unsynchronization", bit(hdr.flags&flagUnsync))
	out.Field("ExtendedHeader", bit(hdr.flags&flagExtended))
	out.Field("Experimental", bit(hdr.flags&flagExperimental))
	out.Field("TagSize", hdr.size)
	if out.Verbose() {
		raw, _ := sr.Bytes(0, headerSize, "ID3v2 header")
		out.Dump(0, raw)
	}

	body, err := sr.Bytes(headerSize, int(hdr.size), "ID3v2 tag body")
	if err != nil {
		return &types.TruncatedError{
			Path:      sr.Path(),
			What:      "ID3v2 tag",
			Offset:    headerSize,
			Declared:  int64(hdr.size),
			Available: max(sr.Size()-headerSize, 0),
		}
	}

	if hdr.major < 3 {
		out.Line("ID3v2.%d frames are not supported", hdr.major)
		out.Dump(headerSize, body)
		return nil
	}

	// ID3v2.4 unsynchronises each frame separately
	if hdr.flags&flagUnsync != 0 && hdr.major == 3 {
		body = RemoveUnsync(body)
		out.Detail("Resynchronized body: %d bytes", len(body))
	}

	d := &decoder{path: sr.Path(), hdr: hdr, out: out, cfg: cfg}

	start := 0
	if hdr.flags&flagExtended != 0 {
		if start, err = d.extendedHeader(body); err != nil {
			return err
		}
	}

	d.frames(body, start)

	audio := int64(headerSize) + int64(hdr.size)
	if hdr.flags&flagFooter != 0 {
		audio += headerSize
	}
	out.Detail("AudioOffset: %d", audio)

	return nil
}

// readHeader validates the magic, version and size of the tag header.
func readHeader(sr *binary.SafeReader) (header, error) {
	raw, err := sr.Bytes(0, headerSize, "ID3v2 header")
	if err != nil {
		return header{}, &types.TruncatedError{
			Path:      sr.Path(),
			What:      "ID3v2 header",
			Declared:  headerSize,
			Available: sr.Size(),
		}
	}

	var reason string
	switch {
	case string(raw[:3]) != "ID3":
		reason = "missing ID3 magic"
	case raw[3] == 0xFF || raw[4] == 0xFF:
		reason = fmt.Sprintf("invalid version %d.%d", raw[3], raw[4])
	case !isSynchsafe(raw[6:10]):
		reason = "tag size is not synchsafe"
	}
	if reason != "" {
		return header{}, &types.InvalidHeaderError{Path: sr.Path(), Reason: reason}
	}

	return header{
		major: raw[3],
		minor: raw[4],
		flags: raw[5],
		size:  decodeSynchsafe(raw[6:10]),
	}, nil
}

// extendedHeader returns the number of body bytes the extended header
// occupies. ID3v2.3 stores a plain size that excludes the size field itself;
// ID3v2.4 stores a synchsafe size that includes it.
func (d *decoder) extendedHeader(body []byte) (int, error) {
	if len(body) < 4 {
		return 0, d.truncated("extended header", headerSize, 4, int64(len(body)))
	}

	var n int64
	if d.hdr.major >= 4 {
		n = int64(decodeSynchsafe(body))
	} else {
		n = 4 + int64(binary.Decode[uint32](body, binary.BigEndian))
	}
	if n < 4 || n > int64(len(body)) {
		return 0, d.truncated("extended header", headerSize, n, int64(len(body)))
	}

	d.out.Field("ExtendedHeaderSize", n)
	if d.out.Verbose() {
		d.out.Dump(headerSize, body[:n])
	}
	return int(n), nil
}

// frames walks the frame sequence starting at pos. It stops at padding, at
// a frame header that does not fit, or at a frame overrunning the tag.
func (d *decoder) frames(body []byte, pos int) {
	for len(body)-pos >= frameHeaderSize {
		raw := body[pos : pos+frameHeaderSize]
		offset := int64(headerSize + pos)

		if isPadding(raw[:4]) {
			d.out.Detail("Padding: %d bytes", len(body)-pos)
			return
		}

		f := frame{
			id:     string(raw[:4]),
			flags:  binary.Decode[uint16](raw[8:], binary.BigEndian),
			offset: offset,
		}
		if !validID(f.id) {
			d.out.Warn(stage, offset, d.malformed(offset, "invalid frame id %q", f.id))
			return
		}

		if d.hdr.major >= 4 {
			f.size = decodeSynchsafe(raw[4:8])
		} else {
			f.size = binary.Decode[uint32](raw[4:8], binary.BigEndian)
		}

		start := int64(pos + frameHeaderSize)
		end := start + int64(f.size)
		if end > int64(len(body)) {
			d.out.Warn(stage, offset, d.truncated("frame "+f.id, offset, int64(f.size), int64(len(body))-start))
			return
		}
		f.body = body[start:end]

		if err := d.frame(f); err != nil {
			d.out.Warn(stage, offset, fmt.Errorf("frame %s: %w", f.id, err))
		}

		pos = int(end)
	}
}

func isPadding(id []byte) bool {
	return id[0] == 0 && id[1] == 0 && id[2] == 0 && id[3] == 0
}

// validID reports whether id is four upper-case letters or digits.
func validID(id string) bool {
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func bit(b byte) int {
	if b != 0 {
		return 1
	}
	return 0
}

func (d *decoder) malformed(offset int64, format string, args ...any) error {
	return &types.CorruptedFileError{
		Path:   d.path,
		Reason: fmt.Sprintf(format, args...),
		Offset: offset,
	}
}

func (d *decoder) truncated(what string, offset, declared, available int64) error {
	return &types.TruncatedError{
		Path:      d.path,
		What:      what,
		Offset:    offset,
		Declared:  declared,
		Available: max(available, 0),
	}
}

func init() {
	registry.Register(types.FormatMP3, registry.DecoderFunc(Decode))
}
