package midi

import (
	"fmt"

	"github.com/filemeta/fmprobe/internal/binary"
)

// Meta event types.
const (
	metaSequenceNumber = 0x00
	metaChannelPrefix  = 0x20
	metaPort           = 0x21
	metaEndOfTrack     = 0x2F
	metaTempo          = 0x51
	metaSMPTEOffset    = 0x54
	metaTimeSignature  = 0x58
	metaKeySignature   = 0x59
	metaSequencer      = 0x7F
)

// textEvents labels the meta types that carry text.
var textEvents = map[byte]string{
	0x01: "Text",
	0x02: "Copyright",
	0x03: "Track Name",
	0x04: "Instrument Name",
	0x05: "Lyric",
	0x06: "Marker",
	0x07: "Cue Point",
}

var (
	majorKeys = [...]string{"Cb", "Gb", "Db", "Ab", "Eb", "Bb", "F", "C", "G", "D", "A", "E", "B", "F#", "C#"}
	minorKeys = [...]string{"Ab", "Eb", "Bb", "F", "C", "G", "D", "A", "E", "B", "F#", "C#", "G#", "D#", "A#"}
)

// meta decodes a meta event: a type byte, a variable-length length, and
// that many bytes of data.
func (d *decoder) meta(r *binary.Reader, st trackState) (trackState, error) {
	typ, err := binary.ReadValue[uint8](r, "meta event type")
	if err != nil {
		return st, err
	}
	n, err := d.readVLQ(r)
	if err != nil {
		return st, err
	}
	data, err := r.ReadBytes(int(n), fmt.Sprintf("meta event 0x%02x", typ))
	if err != nil {
		return st, err
	}

	if name, ok := textEvents[typ]; ok {
		d.out.Field(name, binary.Latin1.Decode(data))
		return st, nil
	}

	switch {
	case typ == metaEndOfTrack:
		st = d.flush(st)
		d.out.Line("End of Track")
		st.done = true

	case typ == metaSequenceNumber && n == 2:
		d.out.Field("Sequence Number", uint16(data[0])<<8|uint16(data[1]))

	case typ == metaChannelPrefix && n >= 1:
		d.out.Line("MIDI Channel Prefix: channel=%d", data[0])

	case typ == metaPort && n >= 1:
		d.out.Line("MIDI Port: port=%d", data[0])

	case typ == metaTempo && n == 3:
		tempo := uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])
		if tempo == 0 {
			d.out.Field("Tempo", "0 microseconds/beat")
			break
		}
		d.out.Field("Tempo", fmt.Sprintf("%d microseconds/beat (%.2f BPM)", tempo, 60e6/float64(tempo)))

	case typ == metaSMPTEOffset && n == 5:
		d.out.Field("SMPTE Offset", fmt.Sprintf("%02d:%02d:%02d.%03d +%d", data[0], data[1], data[2], data[3], data[4]))

	case typ == metaTimeSignature:
		if n == 4 {
			d.out.Field("Time Signature", fmt.Sprintf("%d/%d, %d clocks/click, %d 32nds/quarter",
				data[0], 1<<min(data[1], 31), data[2], data[3]))
		} else {
			d.out.Line("Time Signature")
		}
		d.dump(data)

	case typ == metaKeySignature:
		if key, ok := keyName(data); ok {
			d.out.Field("Key Signature", key)
		} else {
			d.out.Line("Key Signature")
		}
		d.dump(data)

	case typ == metaSequencer:
		d.out.Field("Sequencer Specific", fmt.Sprintf("%d bytes", n))
		d.dump(data)

	default:
		d.out.Line("Meta event: type=0x%02x len=%d", typ, n)
		d.dump(data)
	}

	return st, nil
}

// keyName decodes a key signature: sharps (positive) or flats (negative)
// and a major/minor flag.
func keyName(data []byte) (string, bool) {
	if len(data) != 2 {
		return "", false
	}
	sf := int(int8(data[0]))
	if sf < -7 || sf > 7 || data[1] > 1 {
		return "", false
	}
	if data[1] == 1 {
		return minorKeys[sf+7] + " minor", true
	}
	return majorKeys[sf+7] + " major", true
}

func (d *decoder) dump(b []byte) {
	if len(b) == 0 {
		return
	}
	defer d.out.Indent()()
	d.out.Dump(0, b)
}
