package midi

import (
	"bytes"
	"io"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/filemeta/fmprobe/internal/binary"
	"github.com/filemeta/fmprobe/internal/report"
	"github.com/filemeta/fmprobe/internal/types"
)

func chunk(id string, body []byte) []byte {
	var buf bytes.Buffer
	sw := binary.NewSafeWriter(&buf)
	sw.WriteString(id)
	binary.Write(sw, uint32(len(body)))
	sw.WriteBytes(body)
	return buf.Bytes()
}

func headerChunk(format, tracks, division uint16) []byte {
	var buf bytes.Buffer
	sw := binary.NewSafeWriter(&buf)
	binary.Write(sw, format)
	binary.Write(sw, tracks)
	binary.Write(sw, division)
	return chunk("MThd", buf.Bytes())
}

func smf(chunks ...[]byte) []byte {
	return bytes.Join(chunks, nil)
}

func decode(data []byte, verbose bool) (string, *report.Writer, error) {
	var buf bytes.Buffer
	out := report.New(&buf, verbose)
	err := Decode(binary.FromBytes(data, "test.mid"), out, types.Config{})
	return buf.String(), out, err
}

func TestDecodeHeader(t *testing.T) {
	c := qt.New(t)

	got, out, err := decode(headerChunk(1, 2, 480), false)
	c.Assert(err, qt.IsNil)
	c.Assert(out.Warnings(), qt.HasLen, 0)
	c.Assert(got, qt.Equals, "Header\n  Format: 1\n  Tracks: 2\n  Ticks per beat: 480\n")
}

func TestDecodeHeaderSMPTE(t *testing.T) {
	c := qt.New(t)

	// -25 frames per second, 40 ticks per frame
	got, _, err := decode(headerChunk(0, 1, 0xE728), false)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Contains, "  SMPTE frames per second: 25\n  SMPTE ticks per frame: 40\n")
}

func TestDecodeHeaderErrors(t *testing.T) {
	c := qt.New(t)

	c.Run("format", func(c *qt.C) {
		_, out, err := decode(headerChunk(3, 1, 96), false)
		c.Assert(err, qt.IsNil)
		c.Assert(out.Err(), qt.ErrorIs, types.ErrInvalidHeader)
	})

	c.Run("length", func(c *qt.C) {
		data := smf(
			chunk("MThd", []byte{0, 1, 0, 1}),
			chunk("MTrk", []byte{0x00, 0xFF, 0x2F, 0x00}),
		)
		got, out, err := decode(data, false)
		c.Assert(err, qt.IsNil)
		c.Assert(out.Err(), qt.ErrorIs, types.ErrMalformed)
		c.Assert(got, qt.Contains, "Track 1\n  Length: 4\n  End of Track\n")
	})
}

func TestRunningStatus(t *testing.T) {
	c := qt.New(t)

	// Note-on, then a note-off written as velocity 0 under running status
	track := []byte{0x00, 0x90, 0x40, 0x60, 0x00, 0x40, 0x00}

	got, out, err := decode(chunk("MTrk", track), false)
	c.Assert(err, qt.IsNil)
	c.Assert(out.Warnings(), qt.HasLen, 0)
	c.Assert(got, qt.Equals, "Track 1\n  Length: 7\n  1 Notes\n")
}

func TestRunningStatusThreading(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	d := &decoder{path: "test.mid", out: report.New(&buf, false)}
	r := binary.NewReader(binary.FromBytes([]byte{0x00, 0x90, 0x40, 0x60, 0x05, 0x40, 0x00}, "test.mid"), 0)

	st, err := d.event(r, trackState{})
	c.Assert(err, qt.IsNil)
	c.Assert(st, qt.Equals, trackState{status: 0x90, notes: 1})
	c.Assert(r.Offset(), qt.Equals, int64(4))

	st, err = d.event(r, st)
	c.Assert(err, qt.IsNil)
	c.Assert(st, qt.Equals, trackState{status: 0x90, notes: 1, tick: 5})
	c.Assert(r.Offset(), qt.Equals, int64(7))
}

func TestDecodeTrack(t *testing.T) {
	c := qt.New(t)

	track := smf(
		[]byte{0x00, 0xFF, 0x03, 0x05}, []byte("Piano"),
		[]byte{0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20},
		[]byte{0x00, 0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08},
		[]byte{0x00, 0xFF, 0x59, 0x02, 0x00, 0x00},
		[]byte{0x00, 0xC0, 0x05},
		[]byte{0x00, 0x90, 0x3C, 0x40},
		[]byte{0x10, 0x3C, 0x00},
		[]byte{0x00, 0x3E, 0x40},
		[]byte{0x00, 0xB0, 0x78, 0x00},
		[]byte{0x00, 0x91, 0x40, 0x40},
		[]byte{0x00, 0xC1, 0x07},
		[]byte{0x00, 0xB0, 0x00, 0x02},
		[]byte{0x00, 0xF0, 0x05, 0x7E, 0x7F, 0x09, 0x01, 0xF7},
		[]byte{0x00, 0xFF, 0x2F, 0x00},
		// Ignored: after the end of track
		[]byte{0x00, 0x90, 0x40, 0x40},
	)

	got, out, err := decode(smf(headerChunk(0, 1, 96), chunk("MTrk", track)), false)
	c.Assert(err, qt.IsNil)
	c.Assert(out.Warnings(), qt.HasLen, 0)

	want := []string{
		"Header",
		"  Format: 0",
		"  Tracks: 1",
		"  Ticks per beat: 96",
		"Track 1",
		"  Length: 74",
		"  Track Name: Piano",
		"  Tempo: 500000 microseconds/beat (120.00 BPM)",
		"  Time Signature: 4/4, 24 clocks/click, 8 32nds/quarter",
		"    " + report.DumpLines(0, []byte{0x04, 0x02, 0x18, 0x08})[0],
		"  Key Signature: C major",
		"    " + report.DumpLines(0, []byte{0x00, 0x00})[0],
		"  Program Change: channel=0 program=5",
		"  2 Notes",
		"  All Sound Off: channel=0",
		"  1 Notes",
		"  Program Change: channel=1 program=7",
		"  Bank Select: channel=0 bank=2",
		"  End of Track",
	}
	c.Assert(strings.Split(strings.TrimSuffix(got, "\n"), "\n"), qt.DeepEquals, want)
}

func TestMetaEvents(t *testing.T) {
	tests := []struct {
		name string
		body []byte
		want string
	}{
		{"sequence number", []byte{0x00, 0x02, 0x01, 0x02}, "Sequence Number: 258"},
		{"copyright", append([]byte{0x02, 0x04}, "(c)x"...), "Copyright: (c)x"},
		{"marker", append([]byte{0x06, 0x05}, "Verse"...), "Marker: Verse"},
		{"cue point", append([]byte{0x07, 0x03}, "Cue"...), "Cue Point: Cue"},
		{"channel prefix", []byte{0x20, 0x01, 0x09}, "MIDI Channel Prefix: channel=9"},
		{"port", []byte{0x21, 0x01, 0x02}, "MIDI Port: port=2"},
		{"smpte offset", []byte{0x54, 0x05, 0x01, 0x02, 0x03, 0x04, 0x05}, "SMPTE Offset: 01:02:03.004 +5"},
		{"minor key", []byte{0x59, 0x02, 0xFD, 0x01}, "Key Signature: C minor"},
		{"sharp key", []byte{0x59, 0x02, 0x02, 0x00}, "Key Signature: D major"},
		{"sequencer specific", []byte{0x7F, 0x03, 0x00, 0x00, 0x41}, "Sequencer Specific: 3 bytes"},
		{"short tempo", []byte{0x51, 0x02, 0x07, 0xA1}, "Meta event: type=0x51 len=2"},
		{"unknown", []byte{0x60, 0x01, 0xAA}, "Meta event: type=0x60 len=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			track := append([]byte{0x00, 0xFF}, tt.body...)
			got, out, err := decode(chunk("MTrk", track), false)
			c.Assert(err, qt.IsNil)
			c.Assert(out.Warnings(), qt.HasLen, 0)

			lines := strings.Split(got, "\n")
			c.Assert(lines[2], qt.Equals, "  "+tt.want)
		})
	}
}

func TestReadVLQ(t *testing.T) {
	tests := []struct {
		in      []byte
		want    uint32
		wantErr error
	}{
		{[]byte{0x00}, 0, nil},
		{[]byte{0x7F}, 0x7F, nil},
		{[]byte{0x81, 0x00}, 0x80, nil},
		{[]byte{0xC0, 0x00}, 0x2000, nil},
		{[]byte{0xFF, 0xFF, 0xFF, 0x7F}, 0x0FFFFFFF, nil},
		{[]byte{0x80, 0x80, 0x80, 0x80, 0x00}, 0, types.ErrMalformed},
		{[]byte{0x81}, 0, types.ErrOutOfRange},
	}

	for _, tt := range tests {
		c := qt.New(t)
		d := &decoder{path: "test.mid", out: report.New(io.Discard, false)}
		r := binary.NewReader(binary.FromBytes(tt.in, "test.mid"), 0)

		got, err := d.readVLQ(r)
		if tt.wantErr != nil {
			c.Assert(err, qt.ErrorIs, tt.wantErr, qt.Commentf("% x", tt.in))
			continue
		}
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, tt.want, qt.Commentf("% x", tt.in))
	}
}

func TestTrackErrors(t *testing.T) {
	c := qt.New(t)

	c.Run("meta event overruns chunk", func(c *qt.C) {
		data := smf(
			chunk("MTrk", []byte{0x00, 0x90, 0x40, 0x40, 0x00, 0xFF, 0x03, 0x10, 'a', 'b'}),
			chunk("MTrk", []byte{0x00, 0xFF, 0x03, 0x02, 'o', 'k'}),
		)
		got, out, err := decode(data, false)
		c.Assert(err, qt.IsNil)
		c.Assert(out.Err(), qt.ErrorIs, types.ErrTruncated)
		c.Assert(got, qt.Contains, "Track 1\n  Length: 10\n  1 Notes\n  !! ")
		c.Assert(got, qt.Contains, "Track 2\n  Length: 6\n  Track Name: ok\n")
	})

	c.Run("operands cut off", func(c *qt.C) {
		_, out, err := decode(chunk("MTrk", []byte{0x00, 0x90, 0x40}), false)
		c.Assert(err, qt.IsNil)
		c.Assert(out.Err(), qt.ErrorIs, types.ErrTruncated)
	})

	c.Run("no running status", func(c *qt.C) {
		_, out, err := decode(chunk("MTrk", []byte{0x00, 0x40, 0x00}), false)
		c.Assert(err, qt.IsNil)
		c.Assert(out.Err(), qt.ErrorIs, types.ErrMalformed)
	})

	c.Run("delta too long", func(c *qt.C) {
		_, out, err := decode(chunk("MTrk", []byte{0x80, 0x80, 0x80, 0x80, 0x00, 0x90, 0x40, 0x40}), false)
		c.Assert(err, qt.IsNil)
		c.Assert(out.Err(), qt.ErrorIs, types.ErrMalformed)
	})
}

func TestChunkErrors(t *testing.T) {
	c := qt.New(t)

	full := smf(headerChunk(0, 1, 96), chunk("MTrk", []byte{0x00, 0xFF, 0x2F, 0x00}))

	for _, n := range []int{3, 14 + 5, len(full) - 1} {
		_, _, err := decode(full[:n], false)
		c.Assert(err, qt.ErrorIs, types.ErrTruncated, qt.Commentf("cut at %d", n))
	}
}

func TestUnknownChunk(t *testing.T) {
	c := qt.New(t)

	data := smf(headerChunk(0, 0, 96), chunk("XFIH", []byte{1, 2, 3}))

	got, _, err := decode(data, true)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Contains, "Chunk \"XFIH\"\n  Length: 3\n  0000: 01 02 03")
}

func TestVerboseEvents(t *testing.T) {
	c := qt.New(t)

	track := []byte{0x00, 0x90, 0x40, 0x40, 0x83, 0x60, 0x40, 0x00, 0x00, 0xF0, 0x01, 0xF7}
	got, _, err := decode(chunk("MTrk", track), true)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Contains, "Event at 0x8: tick=0, status=0x90\n")
	c.Assert(got, qt.Contains, "Event at 0xc: tick=480, status=0x90\n")
	c.Assert(got, qt.Contains, "SysEx: 2 bytes\n")
}

func FuzzDecode(f *testing.F) {
	f.Add(smf(headerChunk(1, 1, 480), chunk("MTrk", []byte{
		0x00, 0xFF, 0x03, 0x01, 'x',
		0x00, 0x90, 0x40, 0x40, 0x10, 0x40, 0x00,
		0x00, 0xF0, 0x01, 0xF7,
		0x00, 0xFF, 0x2F, 0x00,
	})))
	f.Add([]byte("MThd\x00\x00\x00\x06\x00\x00\x00\x01\xe7\x28"))

	f.Fuzz(func(t *testing.T, data []byte) {
		Decode(binary.FromBytes(data, "fuzz.mid"), report.New(io.Discard, true), types.Config{})
	})
}
