package id3

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/filemeta/fmprobe/internal/binary"
)

// maxInflated caps the output of a compressed frame that does not declare
// its decompressed size.
const maxInflated = 16 << 20

// pictureDumpLen is how much of an attached picture verbose output shows.
const pictureDumpLen = 64

var errEncrypted = errors.New("encrypted frame")

// formatFlags are the frame flags that change how the body is stored.
type formatFlags struct {
	grouped    bool
	compressed bool
	encrypted  bool
	unsync     bool
	dataLength bool
}

func (d *decoder) formatFlags(flags uint16) formatFlags {
	b := byte(flags)
	if d.hdr.major >= 4 {
		return formatFlags{
			grouped:    b&0x40 != 0,
			compressed: b&0x08 != 0,
			encrypted:  b&0x04 != 0,
			unsync:     b&0x02 != 0 || d.hdr.flags&flagUnsync != 0,
			dataLength: b&0x01 != 0,
		}
	}
	return formatFlags{
		compressed: b&0x80 != 0,
		encrypted:  b&0x40 != 0,
		grouped:    b&0x20 != 0,
	}
}

// content strips the extra header bytes the format flags add in front of a
// frame body, then reverses unsynchronisation and compression. Encrypted
// bodies are returned as stored along with errEncrypted.
func (d *decoder) content(f frame) ([]byte, error) {
	ff := d.formatFlags(f.flags)

	// ID3v2.3: decompressed size, encryption method, group id.
	// ID3v2.4: group id, encryption method, data length indicator.
	n, sizeAt := 0, -1
	if d.hdr.major >= 4 {
		n = count(ff.grouped) + count(ff.encrypted)
		if ff.dataLength {
			sizeAt = n
			n += 4
		}
	} else {
		if ff.compressed {
			sizeAt = 0
			n += 4
		}
		n += count(ff.encrypted) + count(ff.grouped)
	}
	if len(f.body) < n {
		return nil, d.malformed(f.offset, "%d-byte body is too short for its flags", len(f.body))
	}

	var size uint32
	if sizeAt >= 0 {
		raw := f.body[sizeAt : sizeAt+4]
		if d.hdr.major >= 4 {
			size = decodeSynchsafe(raw)
		} else {
			size = binary.Decode[uint32](raw, binary.BigEndian)
		}
	}

	data := f.body[n:]
	if ff.unsync {
		data = RemoveUnsync(data)
	}
	if ff.encrypted {
		return data, errEncrypted
	}
	if ff.compressed {
		return d.inflate(f, data, size)
	}
	return data, nil
}

func count(b bool) int {
	if b {
		return 1
	}
	return 0
}

// inflate decompresses a zlib frame body. size is the declared decompressed
// size, or zero if unknown.
func (d *decoder) inflate(f frame, data []byte, size uint32) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, d.malformed(f.offset, "compressed body: %v", err)
	}
	defer zr.Close()

	limit := int64(size)
	if limit == 0 {
		limit = maxInflated
	}
	out, err := io.ReadAll(io.LimitReader(zr, limit))
	if err != nil {
		return nil, d.malformed(f.offset, "compressed body: %v", err)
	}
	return out, nil
}

// frame decodes and prints one frame.
func (d *decoder) frame(f frame) error {
	info, known := lookupFrame(f.id)
	label := f.id
	if known {
		label = fmt.Sprintf("%s (%s)", f.id, info.name)
	}

	d.out.Detail("Frame %s at 0x%x: size=%d, flags=0x%04x", f.id, f.offset, f.size, f.flags)

	body, err := d.content(f)
	if errors.Is(err, errEncrypted) {
		d.out.Field(label, fmt.Sprintf("encrypted, %d bytes", len(body)))
		d.dump(body)
		return nil
	}
	if err != nil {
		return err
	}

	k := kindOf(f.id)
	if k == kindUnknown {
		d.out.Field(label, fmt.Sprintf("%d bytes", len(body)))
		d.dump(body)
		return nil
	}

	cs := binary.Latin1
	if info.hasEncoding {
		if cs, body, err = d.encoding(f, body); err != nil {
			return err
		}
	}

	switch k {
	case kindText:
		d.out.Field(label, textValue(body, cs))

	case kindGenre:
		d.out.Field(label, resolveGenre(textValue(body, cs)))

	case kindURL:
		d.out.Field(label, latin1(body))

	case kindUserText:
		desc, value := binary.SplitTerminated(body, cs)
		d.out.Field(label, fmt.Sprintf("%s = %s", cs.Decode(desc), textValue(value, cs)))

	case kindUserURL:
		desc, url := binary.SplitTerminated(body, cs)
		d.out.Field(label, fmt.Sprintf("%s = %s", cs.Decode(desc), latin1(url)))

	case kindComment:
		if len(body) < 3 {
			return d.malformed(f.offset, "no room for a language code")
		}
		lang := latin1(body[:3])
		desc, text := binary.SplitTerminated(body[3:], cs)
		d.out.Field(label, fmt.Sprintf("[%s] %s = %s", lang, cs.Decode(desc), textValue(text, cs)))

	case kindPrivate:
		owner, data := binary.SplitTerminated(body, binary.Latin1)
		d.out.Field(label, fmt.Sprintf("%s, %d bytes", latin1(owner), len(data)))
		d.dump(data)

	case kindPicture:
		mime, rest := binary.SplitTerminated(body, binary.Latin1)
		if len(rest) < 1 {
			return d.malformed(f.offset, "picture truncated after MIME type")
		}
		desc, data := binary.SplitTerminated(rest[1:], cs)
		d.out.Field(label, fmt.Sprintf("%s, %s, %q, %d bytes",
			latin1(mime), pictureType(rest[0]), cs.Decode(desc), len(data)))
		if d.out.Verbose() {
			d.dump(data[:min(len(data), pictureDumpLen)])
		}
	}

	return nil
}

// encoding reads the text encoding byte that starts body.
func (d *decoder) encoding(f frame, body []byte) (binary.Charset, []byte, error) {
	if len(body) == 0 {
		return binary.Latin1, body, nil
	}
	switch body[0] {
	case 0:
		return binary.Latin1, body[1:], nil
	case 1:
		return binary.UTF16, body[1:], nil
	case 2:
		return binary.UTF16BE, body[1:], nil
	case 3:
		return binary.UTF8, body[1:], nil
	default:
		return 0, nil, d.malformed(f.offset, "invalid text encoding 0x%02x", body[0])
	}
}

// textValue decodes a text field. ID3v2.4 separates multiple values with
// terminators; they are joined with " / ".
func textValue(b []byte, cs binary.Charset) string {
	b = binary.TrimTerminators(b, cs)
	var vals []string
	for b != nil {
		var field []byte
		field, b = binary.SplitTerminated(b, cs)
		vals = append(vals, cs.Decode(field))
	}
	return strings.Join(vals, " / ")
}

func latin1(b []byte) string {
	return binary.Latin1.Decode(binary.TrimTerminators(b, binary.Latin1))
}

func (d *decoder) dump(b []byte) {
	if len(b) == 0 {
		return
	}
	defer d.out.Indent()()
	d.out.Dump(0, b)
}
