package mp4

import (
	"fmt"
	"strings"
	"time"

	"github.com/filemeta/fmprobe/internal/binary"
)

// mp4Epoch is 1904-01-01 00:00:00 UTC, the zero of MP4 timestamps.
var mp4Epoch = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

const timeLayout = "2006-01-02 15:04:05"

// fileType decodes ftyp: a major brand, a minor version and a list of
// compatible brands.
func (w *walker) fileType(body *binary.SafeReader) error {
	r := binary.NewChainReader(binary.NewReader(body, 0))
	major := r.String(4, "major brand")
	minor := binary.ReadChained[uint32](r, "minor version")
	if err := r.Error(); err != nil {
		return err
	}

	var compatible []string
	for r.Remaining() >= 4 {
		compatible = append(compatible, brand(r.String(4, "compatible brand")))
	}

	w.out.Field("MajorBrand", brand(major))
	w.out.Field("MinorVersion", minor)
	if len(compatible) > 0 {
		w.out.Field("CompatibleBrands", strings.Join(compatible, ", "))
	}
	return r.Error()
}

func brand(s string) string {
	return strings.TrimRight(binary.Latin1.Decode([]byte(s)), " \x00")
}

// movieHeader decodes mvhd. Version 1 widens the time fields and the
// duration to 64 bits.
func (w *walker) movieHeader(body *binary.SafeReader) error {
	r := binary.NewChainReader(binary.NewReader(body, 0))
	version := binary.ReadChained[uint8](r, "mvhd version")
	r.Skip(3) // flags

	var created, modified, duration uint64
	var timescale uint32
	switch version {
	case 0:
		created = uint64(binary.ReadChained[uint32](r, "creation time"))
		modified = uint64(binary.ReadChained[uint32](r, "modification time"))
		timescale = binary.ReadChained[uint32](r, "timescale")
		duration = uint64(binary.ReadChained[uint32](r, "duration"))
	case 1:
		created = binary.ReadChained[uint64](r, "creation time")
		modified = binary.ReadChained[uint64](r, "modification time")
		timescale = binary.ReadChained[uint32](r, "timescale")
		duration = binary.ReadChained[uint64](r, "duration")
	default:
		if err := r.Error(); err != nil {
			return err
		}
		return w.malformed(body.Base(), "mvhd version %d", version)
	}
	if err := r.Error(); err != nil {
		return err
	}

	w.out.Field("version", version)
	w.out.Field("DateCreated (utc)", mp4Time(created))
	w.out.Field("DateModified (utc)", mp4Time(modified))
	w.out.Field("Timescale", timescale)
	if timescale > 0 {
		w.out.Field("Duration", fmt.Sprintf("%d (%.3f s)", duration, float64(duration)/float64(timescale)))
	} else {
		w.out.Field("Duration", duration)
	}
	return nil
}

// mp4Time renders seconds since the MP4 epoch.
func mp4Time(secs uint64) string {
	// Keeps the year at four digits.
	const maxSecs = 1 << 37
	if secs > maxSecs {
		return fmt.Sprintf("%d seconds after 1904-01-01", secs)
	}
	return time.Unix(mp4Epoch.Unix()+int64(secs), 0).UTC().Format(timeLayout)
}

// handler decodes hdlr. The type, subtype and reserved words are read as
// null-terminated strings of at most four bytes each. A name may follow,
// as a C string (ISO) or a counted string (QuickTime).
func (w *walker) handler(body *binary.SafeReader) error {
	const fixedSize = 16
	if body.Size() < fixedSize {
		return w.truncated("hdlr box", body.Base(), fixedSize, body.Size())
	}

	r := binary.NewChainReader(binary.NewReader(body, 0))
	versionFlags := binary.ReadChained[uint32](r, "hdlr version")
	typ := w.fourCC(r, "handler type")
	subtype := w.fourCC(r, "handler subtype")
	reserved := w.fourCC(r, "handler reserved")
	if err := r.Error(); err != nil {
		return err
	}

	w.out.Line("version: %08x", versionFlags)
	w.out.Field("Type", typ)
	w.out.Field("Subtype", subtype)
	w.out.Field("reserved", reserved)

	const nameOffset = 24
	if body.Size() <= nameOffset {
		return nil
	}
	raw, err := body.Bytes(nameOffset, int(body.Size()-nameOffset), "handler name")
	if err != nil {
		return err
	}
	if int(raw[0]) == len(raw)-1 && raw[0] > 0 {
		raw = raw[1:]
	} else {
		raw, _ = binary.SplitTerminated(raw, binary.UTF8)
	}
	if len(raw) > 0 {
		w.out.Field("Name", binary.UTF8.Decode(raw))
	}
	return nil
}

// fourCC reads a four byte field as a null-terminated Latin-1 string and
// always advances four bytes.
func (w *walker) fourCC(r *binary.ChainReader, what string) string {
	start := r.Offset()
	s := r.CString(4, binary.Latin1, what)
	r.SeekTo(start + 4)
	return s
}
