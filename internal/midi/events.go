package midi

import (
	"github.com/filemeta/fmprobe/internal/binary"
)

// maxVLQBytes is the longest variable-length quantity SMF allows.
const maxVLQBytes = 4

// Channel message types, the high nibble of a status byte.
const (
	noteOff         = 0x80
	noteOn          = 0x90
	keyPressure     = 0xA0
	controlChange   = 0xB0
	programChange   = 0xC0
	channelPressure = 0xD0
	pitchBend       = 0xE0
	system          = 0xF0
)

// Control change numbers that are reported.
const (
	ctrlBankSelect  = 0x00
	ctrlAllSoundOff = 0x78
	ctrlAllNotesOff = 0x79
)

// System message status bytes.
const (
	sysex          = 0xF0
	quarterFrame   = 0xF1
	songPosition   = 0xF2
	songSelect     = 0xF3
	sysexContinued = 0xF7
	metaEvent      = 0xFF
)

// trackState is threaded through the events of one track. Each event step
// takes the state left by the previous one and returns the next.
type trackState struct {
	status byte   // last channel status, for running status
	notes  int    // note-ons since the last flush
	tick   uint64 // absolute time of the current event
	done   bool   // end of track seen
}

// event decodes one delta-time and event. On error the state as far as it
// got is returned along with the error.
func (d *decoder) event(r *binary.Reader, st trackState) (trackState, error) {
	start := r.Offset()

	delta, err := d.readVLQ(r)
	if err != nil {
		return st, err
	}
	st.tick += uint64(delta)

	next, err := binary.ReadValue[uint8](r, "status")
	if err != nil {
		return st, err
	}

	status := next
	if next < 0x80 {
		// Running status: next is the first operand of a repeated message
		if st.status == 0 {
			return st, d.malformed(r.Base()+start, "data byte 0x%02x with no running status", next)
		}
		status = st.status
		r.Skip(-1)
	}

	d.out.Detail("Event at 0x%x: tick=%d, status=0x%02x", r.Base()+start, st.tick, status)

	if status >= system {
		return d.systemEvent(r, st, status)
	}
	st.status = status
	return d.channelEvent(r, st, status)
}

// channelEvent decodes the operands of a channel message.
func (d *decoder) channelEvent(r *binary.Reader, st trackState, status byte) (trackState, error) {
	channel := status & 0x0F

	switch status & 0xF0 {
	case programChange:
		program, err := binary.ReadValue[uint8](r, "program")
		if err != nil {
			return st, err
		}
		st = d.flush(st)
		d.out.Line("Program Change: channel=%d program=%d", channel, program)
		return st, nil

	case channelPressure:
		_, err := r.ReadBytes(1, "channel pressure")
		return st, err
	}

	ops, err := r.ReadBytes(2, "channel message operands")
	if err != nil {
		return st, err
	}

	switch status & 0xF0 {
	case noteOn:
		// Velocity zero is a note-off
		if ops[1] > 0 {
			st.notes++
		}

	case controlChange:
		switch ops[0] {
		case ctrlBankSelect:
			d.out.Line("Bank Select: channel=%d bank=%d", channel, ops[1])
		case ctrlAllSoundOff:
			st = d.flush(st)
			d.out.Line("All Sound Off: channel=%d", channel)
		case ctrlAllNotesOff:
			st = d.flush(st)
			d.out.Line("All Notes Off: channel=%d", channel)
		}

	case noteOff, keyPressure, pitchBend:
		// Operands only
	}

	return st, nil
}

// systemEvent decodes a system message or meta event. These never replace
// the running status.
func (d *decoder) systemEvent(r *binary.Reader, st trackState, status byte) (trackState, error) {
	switch status {
	case sysex, sysexContinued:
		n := d.scanSysex(r)
		d.out.Detail("SysEx: %d bytes", n)
		return st, nil

	case quarterFrame, songSelect:
		_, err := r.ReadBytes(1, "system message operand")
		return st, err

	case songPosition:
		_, err := r.ReadBytes(2, "song position")
		return st, err

	case metaEvent:
		return d.meta(r, st)
	}

	// Real-time and undefined messages carry no operands
	return st, nil
}

// scanSysex skips to just past the terminating 0xF7, or to the end of the
// chunk if there is none, and returns the number of bytes skipped.
func (d *decoder) scanSysex(r *binary.Reader) int64 {
	start := r.Offset()
	for r.Remaining() > 0 {
		b, err := binary.ReadValue[uint8](r, "sysex")
		if err != nil || b == sysexContinued {
			break
		}
	}
	return r.Offset() - start
}

// flush reports the notes counted since the previous flush.
func (d *decoder) flush(st trackState) trackState {
	if st.notes > 0 {
		d.out.Line("%d Notes", st.notes)
		st.notes = 0
	}
	return st
}

// readVLQ reads a variable-length quantity: seven bits per byte, most
// significant group first, high bit set on every byte but the last.
func (d *decoder) readVLQ(r *binary.Reader) (uint32, error) {
	start := r.Offset()
	var v uint32
	for n := 0; n < maxVLQBytes; n++ {
		b, err := binary.ReadValue[uint8](r, "variable-length quantity")
		if err != nil {
			return 0, err
		}
		v = v<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, d.malformed(r.Base()+start, "variable-length quantity longer than %d bytes", maxVLQBytes)
}
