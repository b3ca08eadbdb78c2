package mp4

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/filemeta/fmprobe/internal/binary"
)

// Xtra value types.
const (
	xtraUnicode  = 8
	xtraInt64    = 19
	xtraFileTime = 21
	xtraGUID     = 72
)

// fileTimeEpoch is the distance in seconds from 1601-01-01, the FILETIME
// epoch, to the Unix epoch.
const fileTimeEpoch = 11644473600

// xtra decodes the Xtra box Windows Media Player writes into udta.
//
// Each entry is laid out as
//
//	entry length  u32 (includes itself)
//	label length  u32
//	label         Latin-1
//	value count   u32
//	values        value length u32 (includes itself), type u16, data
//
// Integers and times inside the values are little-endian.
func (w *walker) xtra(body *binary.SafeReader) error {
	for pos := int64(0); pos < body.Size(); {
		entryLen, err := binary.Read[uint32](body, pos, "Xtra entry length")
		if err != nil {
			return err
		}
		if int64(entryLen) > body.Size()-pos {
			return w.truncated("Xtra entry", body.Base()+pos, int64(entryLen), body.Size()-pos)
		}
		if entryLen < 12 {
			return w.malformed(body.Base()+pos, "Xtra entry length %d", entryLen)
		}
		entry, err := body.Sub(pos, int64(entryLen), "Xtra entry")
		if err != nil {
			return err
		}

		if err := w.xtraEntry(entry); err != nil {
			return err
		}

		pos += int64(entryLen)
	}
	return nil
}

// xtraEntry decodes and prints one entry. Its values are joined with "; ".
// A value run that does not end exactly at the end of the entry is reported
// after the values read so far.
func (w *walker) xtraEntry(entry *binary.SafeReader) error {
	r := binary.NewChainReader(binary.NewReader(entry, 4))
	labelLen := binary.ReadChained[uint32](r, "Xtra label length")
	if err := r.Error(); err != nil {
		return err
	}
	if int64(labelLen) > entry.Size()-12 {
		return w.malformed(entry.Base(), "Xtra label length %d in a %d byte entry", labelLen, entry.Size())
	}
	label := r.String(int(labelLen), "Xtra label")
	count := binary.ReadChained[uint32](r, "Xtra value count")
	if err := r.Error(); err != nil {
		return err
	}

	var values []string
	pos := r.Offset()
	for i := uint32(0); i < count && pos < entry.Size(); i++ {
		valueLen, err := binary.Read[uint32](entry, pos, "Xtra value length")
		if err != nil {
			return err
		}
		if valueLen < 6 || int64(valueLen) > entry.Size()-pos {
			break
		}
		typ, err := binary.Read[uint16](entry, pos+4, "Xtra value type")
		if err != nil {
			return err
		}
		data, err := entry.Bytes(pos+6, int(valueLen-6), "Xtra value")
		if err != nil {
			return err
		}
		values = append(values, xtraValue(typ, data))
		pos += int64(valueLen)
	}

	name := binary.Latin1.Decode([]byte(label))
	w.out.Field(name, strings.Join(values, "; "))
	if pos != entry.Size() {
		w.out.Warn(stage, entry.Base(), w.malformed(entry.Base()+pos, "Xtra entry %q: data length mismatch", name))
	}
	return nil
}

func xtraValue(typ uint16, data []byte) string {
	switch {
	case typ == xtraUnicode:
		return binary.UTF16LE.Decode(binary.TrimTerminators(data, binary.UTF16LE))

	case typ == xtraInt64 && len(data) == 8:
		return strconv.FormatInt(int64(binary.Decode[uint64](data, binary.LittleEndian)), 10)

	case typ == xtraFileTime && len(data) == 8:
		ticks := binary.Decode[uint64](data, binary.LittleEndian)
		return fileTime(ticks).Format(timeLayout)

	case typ == xtraGUID && len(data) == 16:
		return guid(data)
	}
	return fmt.Sprintf("Unsupported: dataType=%d dataLen=%d", typ, len(data))
}

// fileTime converts a count of 100ns ticks since 1601-01-01 UTC.
func fileTime(ticks uint64) time.Time {
	secs := int64(ticks/10_000_000) - fileTimeEpoch
	nsec := int64(ticks%10_000_000) * 100
	return time.Unix(secs, nsec).UTC()
}

// guid formats a Windows GUID, whose first three groups are little-endian.
func guid(b []byte) string {
	return fmt.Sprintf("{%08X-%04X-%04X-%X-%X}",
		binary.Decode[uint32](b[0:4], binary.LittleEndian),
		binary.Decode[uint16](b[4:6], binary.LittleEndian),
		binary.Decode[uint16](b[6:8], binary.LittleEndian),
		b[8:10], b[10:16])
}
