package exif

import (
	"bytes"

	"github.com/filemeta/fmprobe/internal/binary"
)

// testEntry describes one directory entry of a generated TIFF.
type testEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte // value bytes, already in the file's byte order
	sub   int    // 1-based index of the IFD this entry points at
}

// testIFD describes one directory of a generated TIFF.
type testIFD struct {
	entries []testEntry
	next    int // 1-based index of the next IFD in the chain
}

// buildTIFF lays out ifds one after the other, each followed by the values
// that do not fit inline. The first IFD is IFD0.
func buildTIFF(order binary.Endianness, ifds ...testIFD) []byte {
	offsets := make([]uint32, len(ifds))
	pos := uint32(tiffHeaderSize)
	for i, ifd := range ifds {
		offsets[i] = pos
		pos += 2 + entrySize*uint32(len(ifd.entries)) + 4
		for _, e := range ifd.entries {
			if e.sub == 0 && len(e.data) > 4 {
				pos += uint32(len(e.data))
			}
		}
	}

	var buf bytes.Buffer
	sw := binary.NewSafeWriter(&buf)

	if order == binary.LittleEndian {
		sw.WriteString("II")
	} else {
		sw.WriteString("MM")
	}
	binary.WriteEndian(sw, uint16(42), order)
	binary.WriteEndian(sw, offsets[0], order)

	for i, ifd := range ifds {
		n := uint32(len(ifd.entries))
		dataPos := offsets[i] + 2 + entrySize*n + 4
		var data []byte

		binary.WriteEndian(sw, uint16(n), order)
		for _, e := range ifd.entries {
			binary.WriteEndian(sw, e.tag, order)
			binary.WriteEndian(sw, e.typ, order)
			binary.WriteEndian(sw, e.count, order)

			switch {
			case e.sub > 0:
				binary.WriteEndian(sw, offsets[e.sub-1], order)
			case len(e.data) <= 4:
				inline := make([]byte, 4)
				copy(inline, e.data)
				sw.WriteBytes(inline)
			default:
				binary.WriteEndian(sw, dataPos+uint32(len(data)), order)
				data = append(data, e.data...)
			}
		}

		next := uint32(0)
		if ifd.next > 0 {
			next = offsets[ifd.next-1]
		}
		binary.WriteEndian(sw, next, order)
		sw.WriteBytes(data)
	}

	return buf.Bytes()
}

func u16s(order binary.Endianness, vals ...uint16) []byte {
	var buf bytes.Buffer
	sw := binary.NewSafeWriter(&buf)
	for _, v := range vals {
		binary.WriteEndian(sw, v, order)
	}
	return buf.Bytes()
}

func u32s(order binary.Endianness, vals ...uint32) []byte {
	var buf bytes.Buffer
	sw := binary.NewSafeWriter(&buf)
	for _, v := range vals {
		binary.WriteEndian(sw, v, order)
	}
	return buf.Bytes()
}

// withJPEG wraps a TIFF block in a minimal JPEG: SOI, APP1 Exif, EOI.
func withJPEG(tiff []byte) []byte {
	var buf bytes.Buffer
	sw := binary.NewSafeWriter(&buf)
	sw.WriteBytes([]byte{0xFF, markerSOI, 0xFF, markerAPP1})
	binary.Write(sw, uint16(2+len(exifHeader)+len(tiff)))
	sw.WriteBytes(exifHeader)
	sw.WriteBytes(tiff)
	sw.WriteBytes([]byte{0xFF, markerEOI})
	return buf.Bytes()
}
