// Package exif decodes TIFF/EXIF image file directories, either from a bare
// TIFF file or from the APP1 segment of a JPEG.
package exif

import (
	"fmt"

	"github.com/filemeta/fmprobe/internal/binary"
	"github.com/filemeta/fmprobe/internal/registry"
	"github.com/filemeta/fmprobe/internal/report"
	"github.com/filemeta/fmprobe/internal/types"
)

const (
	stage = "exif"

	tiffHeaderSize = 8
	entrySize      = 12
)

// entry is one raw 12-byte directory record.
type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	raw   [4]byte // inline value or offset
	pos   int64   // position of the record within the TIFF range
}

// walker carries the state of one TIFF walk. Offsets inside the TIFF are
// relative to the start of tiff.
type walker struct {
	tiff    *binary.SafeReader
	order   binary.Endianness
	out     *report.Writer
	cfg     types.Config
	visited map[uint32]bool
	dirs    int
}

// Walk decodes the TIFF header at the start of tiff and every directory
// reachable from it: the IFD0 chain, and the Exif, GPS and Interop
// sub-directories each directory points at.
//
// An invalid header or a broken main chain is returned as an error. Problems
// with single entries or sub-directories are reported inline.
func Walk(tiff *binary.SafeReader, out *report.Writer, cfg types.Config) error {
	order, ifd0, err := readHeader(tiff)
	if err != nil {
		return err
	}

	w := &walker{
		tiff:    tiff,
		order:   order,
		out:     out,
		cfg:     cfg,
		visited: make(map[uint32]bool),
	}

	out.Detail("Byte Order: %s", order)
	out.Detail("ifd0 Offset: %d", ifd0)

	offset := ifd0
	for i := 0; offset != 0; i++ {
		var next uint32
		out.Section(fmt.Sprintf("ifd%d", i), func() {
			next, err = w.directory(offset, nsImage, 0)
		})
		if err != nil {
			return err
		}
		offset = next
	}

	return nil
}

// readHeader validates the byte order mark and magic number and returns the
// offset of IFD0.
func readHeader(tiff *binary.SafeReader) (binary.Endianness, uint32, error) {
	if tiff.Size() < tiffHeaderSize {
		return 0, 0, &types.TruncatedError{
			Path:      tiff.Path(),
			What:      "TIFF header",
			Declared:  tiffHeaderSize,
			Available: tiff.Size(),
		}
	}

	var order binary.Endianness
	switch {
	case tiff.Match(0, []byte{'I', 'I', 42, 0}):
		order = binary.LittleEndian
	case tiff.Match(0, []byte{'M', 'M', 0, 42}):
		order = binary.BigEndian
	default:
		return 0, 0, &types.InvalidHeaderError{
			Path:   tiff.Path(),
			Reason: "TIFF byte order mark or magic number not recognised",
		}
	}

	ifd0, err := binary.ReadEndian[uint32](tiff, 4, "IFD0 offset", order)
	if err != nil {
		return 0, 0, err
	}
	return order, ifd0, nil
}

// directory decodes the IFD at offset and returns the offset of the next
// IFD in its chain. Sub-directories found among the entries are walked
// before returning, each at most once.
func (w *walker) directory(offset uint32, ns namespace, depth int) (uint32, error) {
	if w.visited[offset] {
		return 0, &types.CorruptedFileError{
			Path:   w.tiff.Path(),
			Reason: "IFD cycle detected",
			Offset: int64(offset),
		}
	}
	w.visited[offset] = true

	w.dirs++
	if w.dirs > w.cfg.IFDs() {
		return 0, &types.CorruptedFileError{
			Path:   w.tiff.Path(),
			Reason: fmt.Sprintf("more than %d IFDs", w.cfg.IFDs()),
			Offset: int64(offset),
		}
	}

	count, err := binary.ReadEndian[uint16](w.tiff, int64(offset), "IFD entry count", w.order)
	if err != nil {
		return 0, w.truncated("IFD entry count", int64(offset), 2)
	}

	// Entry table plus the next-IFD offset
	tableSize := int64(2 + entrySize*int(count) + 4)
	if int64(offset)+tableSize > w.tiff.Size() {
		return 0, w.truncated("IFD entry table", int64(offset), tableSize)
	}

	w.out.Detail("IfdOffset: 0x%08x", offset)
	w.out.Detail("IfdEntries: %d", count)

	table, err := w.tiff.Bytes(int64(offset), int(tableSize), "IFD entry table")
	if err != nil {
		return 0, err
	}

	// Pointers to nested directories, in discovery order
	var subs []SubIFD
	seen := make(map[kind]bool)

	for i := 0; i < int(count); i++ {
		rec := table[2+i*entrySize:]
		e := entry{
			tag:   binary.Decode[uint16](rec, w.order),
			typ:   binary.Decode[uint16](rec[2:], w.order),
			count: binary.Decode[uint32](rec[4:], w.order),
			pos:   int64(offset) + 2 + int64(i*entrySize),
		}
		copy(e.raw[:], rec[8:12])

		name := tagName(ns, e.tag)
		k := resolveKind(ns, e.tag, e.typ)

		if k.isPointer() {
			if seen[k] {
				w.out.Warn(stage, e.pos, fmt.Errorf("%s(0x%04x): %w", name, e.tag, &types.CorruptedFileError{
					Path:   w.tiff.Path(),
					Reason: fmt.Sprintf("second %s pointer in one directory", pointerNames[k]),
					Offset: e.pos,
				}))
				continue
			}
			seen[k] = true
		}

		v, err := w.value(e, k)
		if err != nil {
			w.out.Warn(stage, e.pos, fmt.Errorf("%s(0x%04x): %w", name, e.tag, err))
			continue
		}

		w.printEntry(i, e, name, v)

		if sub, ok := v.(SubIFD); ok {
			subs = append(subs, sub)
		}
	}

	next := binary.Decode[uint32](table[tableSize-4:], w.order)

	for _, sub := range subs {
		w.subDirectory(sub, depth+1)
	}

	return next, nil
}

// subDirectory walks a nested directory. Its failures stay inside it.
func (w *walker) subDirectory(sub SubIFD, depth int) {
	w.out.Section(sub.Name, func() {
		if depth > w.cfg.Depth() {
			w.out.Warn(stage, int64(sub.Offset), &types.CorruptedFileError{
				Path:   w.tiff.Path(),
				Reason: fmt.Sprintf("sub-directory nesting deeper than %d", w.cfg.Depth()),
				Offset: int64(sub.Offset),
			})
			return
		}
		if _, err := w.directory(sub.Offset, pointerNamespaces[sub.kind], depth); err != nil {
			w.out.Warn(stage, int64(sub.Offset), err)
		}
	})
}

// value resolves an entry to its Value, following the offset when the
// payload does not fit in the entry.
func (w *walker) value(e entry, k kind) (Value, error) {
	if k == kindUnknown {
		return Unknown{Type: e.typ, Count: e.count}, nil
	}

	if k == kindByteCount {
		// Opaque blobs are sized by their declared type and never read
		size := uint64(e.count) * uint64(max(kindOfType(e.typ).elemSize(), 1))
		return ByteCount(size), nil
	}

	size := uint64(e.count) * uint64(k.elemSize())
	if k.isPointer() && size < 4 {
		return nil, &types.CorruptedFileError{
			Path:   w.tiff.Path(),
			Reason: "directory pointer with no value",
			Offset: e.pos,
		}
	}
	if k.isPointer() {
		// Only the first offset is followed
		return decodeValue(k, e.raw[:], 1, w.order), nil
	}

	data, err := w.payload(e, size)
	if err != nil {
		return nil, err
	}
	return decodeValue(k, data, e.count, w.order), nil
}

// payload returns the size bytes of an entry's value: inline when they fit
// in four bytes, otherwise at the offset stored in the entry.
func (w *walker) payload(e entry, size uint64) ([]byte, error) {
	if size <= 4 {
		return e.raw[:size], nil
	}

	offset := binary.Decode[uint32](e.raw[:], w.order)
	if size > uint64(w.tiff.Size()) {
		return nil, &types.OutOfBoundsError{
			Path:   w.tiff.Path(),
			What:   "entry value",
			Offset: int64(offset),
			Length: int(min(size, uint64(1<<31-1))),
			Size:   w.tiff.Size(),
		}
	}
	return w.tiff.Bytes(int64(offset), int(size), "entry value")
}

// printEntry writes one entry line, plus its detail and dump in verbose mode.
func (w *walker) printEntry(i int, e entry, name string, v Value) {
	label := fmt.Sprintf("%s(0x%04x)", name, e.tag)

	b, long := v.(Bytes)
	long = long && len(b) > 16
	if long {
		w.out.Field(label, ByteCount(len(b)))
	} else {
		w.out.Field(label, v)
	}

	if !w.out.Verbose() {
		return
	}
	defer w.out.Indent()()
	w.out.Line("entry=%d, type=%d, count=%d", i, e.typ, e.count)
	if long {
		w.out.Dump(0, b)
	}
}

func (w *walker) truncated(what string, offset, declared int64) error {
	return &types.TruncatedError{
		Path:      w.tiff.Path(),
		What:      what,
		Offset:    offset,
		Declared:  declared,
		Available: max(w.tiff.Size()-offset, 0),
	}
}

func init() {
	registry.Register(types.FormatTIFF, registry.DecoderFunc(Walk))
}
