// Package midi decodes Standard MIDI Files: the MThd header chunk and the
// event stream of every MTrk chunk.
package midi

import (
	"errors"
	"fmt"

	"github.com/filemeta/fmprobe/internal/binary"
	"github.com/filemeta/fmprobe/internal/registry"
	"github.com/filemeta/fmprobe/internal/report"
	"github.com/filemeta/fmprobe/internal/types"
)

const (
	stage = "midi"

	chunkHeaderSize = 8
	headerChunkSize = 6
)

type decoder struct {
	path string
	out  *report.Writer
	cfg  types.Config
}

// Decode walks the chunks of the MIDI file in sr.
//
// A chunk header that does not fit, or a chunk longer than the rest of the
// file, ends the walk with a Truncated error. A failure inside a chunk is
// reported inline; the next chunk is found through the declared length.
func Decode(sr *binary.SafeReader, out *report.Writer, cfg types.Config) error {
	d := &decoder{path: sr.Path(), out: out, cfg: cfg}

	tracks := 0
	for pos := int64(0); pos < sr.Size(); {
		if sr.Size()-pos < chunkHeaderSize {
			return d.truncated("chunk header", pos, chunkHeaderSize, sr.Size()-pos)
		}

		r := binary.NewChainReader(binary.NewReader(sr, pos))
		id := r.String(4, "chunk type")
		length := binary.ReadChained[uint32](r, "chunk length")
		if err := r.Error(); err != nil {
			return err
		}

		if int64(length) > sr.Size()-pos-chunkHeaderSize {
			return d.truncated(fmt.Sprintf("%q chunk", id), pos, int64(length), sr.Size()-pos-chunkHeaderSize)
		}
		chunk, err := sr.Sub(pos+chunkHeaderSize, int64(length), id+" chunk")
		if err != nil {
			return err
		}

		switch id {
		case "MThd":
			out.Section("Header", func() {
				if err := d.header(chunk); err != nil {
					out.Warn(stage, pos, err)
				}
			})

		case "MTrk":
			tracks++
			out.Section(fmt.Sprintf("Track %d", tracks), func() {
				if err := d.track(chunk); err != nil {
					out.Warn(stage, pos, err)
				}
			})

		default:
			out.Section(fmt.Sprintf("Chunk %q", id), func() {
				out.Field("Length", length)
				if out.Verbose() {
					raw, _ := chunk.All("chunk body")
					out.Dump(0, raw)
				}
			})
		}

		pos += chunkHeaderSize + int64(length)
	}

	return nil
}

// header decodes an MThd chunk.
func (d *decoder) header(chunk *binary.SafeReader) error {
	if chunk.Size() != headerChunkSize {
		return d.malformed(chunk.Base(), "header chunk is %d bytes, expected %d", chunk.Size(), headerChunkSize)
	}

	r := binary.NewChainReader(binary.NewReader(chunk, 0))
	format := binary.ReadChained[uint16](r, "format")
	tracks := binary.ReadChained[uint16](r, "track count")
	division := binary.ReadChained[uint16](r, "division")
	if err := r.Error(); err != nil {
		return err
	}

	d.out.Field("Format", format)
	if format > 2 {
		return &types.InvalidHeaderError{
			Path:   d.path,
			Reason: fmt.Sprintf("MIDI format %d, expected 0, 1 or 2", format),
			Offset: chunk.Base(),
		}
	}
	d.out.Field("Tracks", tracks)

	if division&0x8000 == 0 {
		d.out.Field("Ticks per beat", division)
	} else {
		fps := -int(int8(division >> 8))
		d.out.Field("SMPTE frames per second", fps)
		d.out.Field("SMPTE ticks per frame", division&0xFF)
	}
	return nil
}

// track decodes the event stream of an MTrk chunk until the chunk is
// exhausted or an end-of-track event is seen.
func (d *decoder) track(chunk *binary.SafeReader) error {
	d.out.Field("Length", chunk.Size())

	r := binary.NewReader(chunk, 0)
	var st trackState
	for r.Remaining() > 0 && !st.done {
		start := r.Offset()

		var err error
		if st, err = d.event(r, st); err != nil {
			d.flush(st)
			return d.eventError(chunk, start, err)
		}
	}

	d.flush(st)
	return nil
}

// eventError turns a read past the end of the chunk into a Truncated error
// for the event that started at start.
func (d *decoder) eventError(chunk *binary.SafeReader, start int64, err error) error {
	var oob *types.OutOfBoundsError
	if !errors.As(err, &oob) {
		return err
	}
	return d.truncated("event", chunk.Base()+start, int64(oob.Length)+oob.Offset-start, chunk.Size()-start)
}

func (d *decoder) malformed(offset int64, format string, args ...any) error {
	return &types.CorruptedFileError{
		Path:   d.path,
		Reason: fmt.Sprintf(format, args...),
		Offset: offset,
	}
}

func (d *decoder) truncated(what string, offset, declared, available int64) error {
	return &types.TruncatedError{
		Path:      d.path,
		What:      what,
		Offset:    offset,
		Declared:  declared,
		Available: max(available, 0),
	}
}

func init() {
	registry.Register(types.FormatMIDI, registry.DecoderFunc(Decode))
}
