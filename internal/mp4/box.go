package mp4

import (
	"fmt"

	"github.com/filemeta/fmprobe/internal/binary"
)

const (
	headerSize         = 8
	extendedHeaderSize = 16

	// sizeExtended in the 32-bit length field means a 64-bit length follows
	// the type.
	sizeExtended = 1
	// sizeToEnd in the 32-bit length field means the box runs to the end of
	// its parent.
	sizeToEnd = 0
)

// box is a decoded box header.
type box struct {
	typ      string
	offset   int64  // within the parent range
	declared uint64 // length as written, for display
	size     int64  // total length including the header
	header   int64  // 8, or 16 for an extended length
}

// bodyOffset returns the offset of the body within the parent range.
func (b box) bodyOffset() int64 {
	return b.offset + b.header
}

// bodySize returns the length of the body.
func (b box) bodySize() int64 {
	return b.size - b.header
}

// boxKind selects how a box body is decoded.
type boxKind int

const (
	kindUnknown boxKind = iota
	kindContainer
	kindMeta
	kindFileType
	kindMovieHeader
	kindHandler
	kindItemList
	kindXtra
)

var boxKinds = map[string]boxKind{
	"moov": kindContainer,
	"udta": kindContainer,
	"trak": kindContainer,
	"mdia": kindContainer,
	"minf": kindContainer,
	"dinf": kindContainer,
	"stbl": kindContainer,
	"edts": kindContainer,
	"meta": kindMeta,
	"ftyp": kindFileType,
	"mvhd": kindMovieHeader,
	"hdlr": kindHandler,
	"ilst": kindItemList,
	"Xtra": kindXtra,
}

func kindOf(typ string) boxKind {
	return boxKinds[typ]
}

// readBox reads the box header at off in sr. The returned length always
// fits in sr.
func (w *walker) readBox(sr *binary.SafeReader, off int64) (box, error) {
	remaining := sr.Size() - off
	if remaining < headerSize {
		return box{}, w.truncated("box header", sr.Base()+off, headerSize, remaining)
	}

	r := binary.NewChainReader(binary.NewReader(sr, off))
	size32 := binary.ReadChained[uint32](r, "box length")
	typ := r.String(4, "box type")
	if err := r.Error(); err != nil {
		return box{}, err
	}

	b := box{
		typ:      binary.Latin1.Decode([]byte(typ)),
		offset:   off,
		declared: uint64(size32),
		size:     int64(size32),
		header:   headerSize,
	}

	switch size32 {
	case sizeExtended:
		if remaining < extendedHeaderSize {
			return b, w.truncated(fmt.Sprintf("%q extended length", b.typ), sr.Base()+off, extendedHeaderSize, remaining)
		}
		size64, err := binary.Read[uint64](sr, off+headerSize, "extended box length")
		if err != nil {
			return b, err
		}
		b.declared = size64
		b.header = extendedHeaderSize
		if size64 > uint64(remaining) {
			return b, w.truncated(fmt.Sprintf("%q box", b.typ), sr.Base()+off, int64(min(size64, 1<<62)), remaining)
		}
		b.size = int64(size64)

	case sizeToEnd:
		b.size = remaining
	}

	if b.size < b.header {
		return b, w.malformed(sr.Base()+off, "%q box length %d is shorter than its %d byte header", b.typ, b.declared, b.header)
	}
	if b.size > remaining {
		return b, w.truncated(fmt.Sprintf("%q box", b.typ), sr.Base()+off, b.size, remaining)
	}
	return b, nil
}
