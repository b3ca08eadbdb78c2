package mp4

import (
	"fmt"
	"strconv"

	"github.com/filemeta/fmprobe/internal/binary"
)

// Well-known data atom types.
const (
	dataImplicit = 0
	dataUTF8     = 1
	dataUTF16    = 2
	dataUTF8Sort = 4
	dataUTF16Srt = 5
	dataJPEG     = 13
	dataPNG      = 14
	dataSigned   = 21
	dataUnsigned = 22
)

// freeform is the item type whose name comes from its mean and name atoms.
const freeform = "----"

// item is one metadata item after its sub-atoms have been read.
type item struct {
	name     string
	mean     string
	key      string
	hasData  bool
	dataType uint32
	locale   uint32
	payload  []byte
}

// label returns the displayed item name.
func (it item) label() string {
	if it.name == freeform && it.key != "" {
		return fmt.Sprintf("%s:%s:%s", freeform, it.mean, it.key)
	}
	return it.name
}

// itemList decodes ilst: a run of items, each a box holding data and, for
// freeform items, mean and name sub-atoms. Only the first data sub-atom of
// an item is kept.
func (w *walker) itemList(body *binary.SafeReader) error {
	for pos := int64(0); pos < body.Size(); {
		b, err := w.readBox(body, pos)
		if err != nil {
			return err
		}
		itemBody, err := body.Sub(b.bodyOffset(), b.bodySize(), b.typ+" item")
		if err != nil {
			return err
		}

		it, err := w.item(b.typ, itemBody)
		if err != nil {
			w.out.Warn(stage, itemBody.Base()-b.header, fmt.Errorf("item %s: %w", b.typ, err))
		} else {
			w.printItem(it)
		}

		pos += b.size
	}
	return nil
}

// item reads the sub-atoms of one metadata item.
func (w *walker) item(name string, body *binary.SafeReader) (item, error) {
	it := item{name: name}

	for pos := int64(0); pos < body.Size(); {
		b, err := w.readBox(body, pos)
		if err != nil {
			return it, err
		}
		pos += b.size

		switch b.typ {
		case "data":
			if it.hasData {
				continue
			}
			if b.bodySize() < 8 {
				return it, w.truncated("data atom", body.Base()+b.offset, 16, b.size)
			}
			r := binary.NewReader(body, b.bodyOffset())
			typ, _ := binary.ReadValue[uint32](r, "data type")
			it.locale, _ = binary.ReadValue[uint32](r, "data locale")
			if it.payload, err = r.ReadBytes(int(b.bodySize()-8), "data payload"); err != nil {
				return it, err
			}
			it.dataType = typ & 0x00FFFFFF
			it.hasData = true

		case "mean", "name":
			s, err := body.String(b.bodyOffset()+fullBoxPrefix, int(b.bodySize()-fullBoxPrefix), binary.UTF8, b.typ+" atom")
			if err != nil {
				return it, err
			}
			if b.typ == "mean" {
				it.mean = s
			} else {
				it.key = s
			}
		}
	}
	return it, nil
}

func (w *walker) printItem(it item) {
	w.out.Field(it.label(), w.itemValue(it))
	if !it.hasData {
		return
	}
	defer w.out.Indent()()
	w.out.Detail("data type=%d locale=%d", it.dataType, it.locale)
	if !isText(it.dataType) && len(it.payload) > 0 && w.out.Verbose() {
		w.out.Dump(0, it.payload[:min(len(it.payload), maxLeafDump)])
	}
}

func isText(t uint32) bool {
	switch t {
	case dataUTF8, dataUTF8Sort, dataUTF16, dataUTF16Srt:
		return true
	}
	return false
}

// itemValue renders the payload of the first data atom.
func (w *walker) itemValue(it item) string {
	p := it.payload
	switch it.dataType {
	case dataUTF8, dataUTF8Sort:
		return binary.UTF8.Decode(p)

	case dataUTF16, dataUTF16Srt:
		return binary.UTF16BE.Decode(p)

	case dataSigned:
		if v, ok := signed(p); ok {
			return strconv.FormatInt(v, 10)
		}

	case dataUnsigned:
		if len(p) > 0 && len(p) <= 8 {
			return strconv.FormatUint(unsigned(p), 10)
		}

	case dataJPEG:
		return fmt.Sprintf("JPEG image, %d bytes", len(p))

	case dataPNG:
		return fmt.Sprintf("PNG image, %d bytes", len(p))

	case dataImplicit:
		if !it.hasData {
			return ""
		}
		if (it.name == "trkn" || it.name == "disk") && len(p) >= 6 {
			n := binary.Decode[uint16](p[2:4], binary.BigEndian)
			total := binary.Decode[uint16](p[4:6], binary.BigEndian)
			if total == 0 {
				return strconv.Itoa(int(n))
			}
			return fmt.Sprintf("%d/%d", n, total)
		}
		return fmt.Sprintf("%d bytes", len(p))
	}

	return fmt.Sprintf("Unsupported type %d", it.dataType)
}

// signed decodes a big-endian two's complement integer of 1, 2, 3, 4 or 8
// bytes.
func signed(p []byte) (int64, bool) {
	switch len(p) {
	case 1, 2, 3, 4, 8:
	default:
		return 0, false
	}
	v := int64(unsigned(p))
	shift := uint(64 - 8*len(p))
	return v << shift >> shift, true
}

func unsigned(p []byte) uint64 {
	var v uint64
	for _, b := range p {
		v = v<<8 | uint64(b)
	}
	return v
}
