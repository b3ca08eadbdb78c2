package exif

import (
	"fmt"
	"strings"

	"github.com/filemeta/fmprobe/internal/binary"
	"github.com/filemeta/fmprobe/internal/registry"
	"github.com/filemeta/fmprobe/internal/report"
	"github.com/filemeta/fmprobe/internal/types"
)

// JPEG markers the decoder cares about.
const (
	markerPrefix = 0xFF
	markerSOI    = 0xD8
	markerEOI    = 0xD9
	markerSOS    = 0xDA
	markerAPP1   = 0xE1
	markerTEM    = 0x01
	markerRST0   = 0xD0
	markerRST7   = 0xD7
)

var (
	exifHeader = []byte("Exif\x00\x00")
	xmpHeader  = []byte("http://ns.adobe.com/xap/1.0/\x00")
)

// markerNames labels segments in verbose output.
var markerNames = map[byte]string{
	0xC0: "SOF0",
	0xC1: "SOF1",
	0xC2: "SOF2",
	0xC4: "DHT",
	0xDB: "DQT",
	0xDD: "DRI",
	0xFE: "COM",
}

func markerName(m byte) string {
	if name, ok := markerNames[m]; ok {
		return name
	}
	if m >= 0xE0 && m <= 0xEF {
		return fmt.Sprintf("APP%d", m-0xE0)
	}
	return fmt.Sprintf("0x%02x", m)
}

// DecodeJPEG walks the marker segments of a JPEG up to the start of scan
// and decodes the EXIF and XMP APP1 segments it meets.
//
// A segment whose length runs past the end of the file stops the walk. A
// broken EXIF block inside a well-formed segment is reported inline and the
// walk moves on to the next segment.
func DecodeJPEG(sr *binary.SafeReader, out *report.Writer, cfg types.Config) error {
	if !sr.Match(0, []byte{markerPrefix, markerSOI}) {
		return &types.InvalidHeaderError{
			Path:   sr.Path(),
			Reason: "missing JPEG start-of-image marker",
		}
	}

	pos := int64(2)
	for pos < sr.Size() {
		prefix, err := binary.Read[uint8](sr, pos, "marker prefix")
		if err != nil {
			return err
		}
		if prefix != markerPrefix {
			return &types.CorruptedFileError{
				Path:   sr.Path(),
				Reason: fmt.Sprintf("expected marker, found 0x%02x", prefix),
				Offset: pos,
			}
		}

		m, err := binary.Read[uint8](sr, pos+1, "marker")
		if err != nil {
			return truncatedSegment(sr, "JPEG marker", pos, 2)
		}

		switch {
		case m == markerPrefix:
			// Fill byte
			pos++
			continue
		case m == markerSOS || m == markerEOI:
			return nil
		case m == markerTEM || (m >= markerRST0 && m <= markerRST7):
			// Standalone markers carry no length
			pos += 2
			continue
		}

		length, err := binary.Read[uint16](sr, pos+2, "segment length")
		if err != nil {
			return truncatedSegment(sr, "segment length", pos, 4)
		}
		if length < 2 {
			return &types.CorruptedFileError{
				Path:   sr.Path(),
				Reason: fmt.Sprintf("segment length %d", length),
				Offset: pos,
			}
		}
		if pos+2+int64(length) > sr.Size() {
			return truncatedSegment(sr, markerName(m)+" segment", pos, 2+int64(length))
		}

		out.Detail("Marker %s at 0x%x, length %d", markerName(m), pos, length)

		if m == markerAPP1 {
			seg, err := sr.Sub(pos+4, int64(length)-2, "APP1 segment")
			if err != nil {
				return err
			}
			app1(seg, out, cfg)
		}

		pos += 2 + int64(length)
	}

	return nil
}

// app1 decodes an APP1 payload holding either EXIF or XMP. Anything else is
// skipped.
func app1(seg *binary.SafeReader, out *report.Writer, cfg types.Config) {
	switch {
	case seg.Match(0, exifHeader):
		tiff, err := seg.Sub(int64(len(exifHeader)), seg.Size()-int64(len(exifHeader)), "EXIF TIFF block")
		if err == nil {
			err = Walk(tiff, out, cfg)
		}
		if err != nil {
			out.Warn(stage, seg.Base(), err)
		}

	case seg.Match(0, xmpHeader):
		packet, err := seg.Bytes(int64(len(xmpHeader)), int(seg.Size())-len(xmpHeader), "XMP packet")
		if err != nil {
			out.Warn(stage, seg.Base(), err)
			return
		}
		out.Section("XMP", func() {
			text := strings.TrimSpace(binary.UTF8.Decode(packet))
			for _, line := range strings.Split(text, "\n") {
				out.Line("%s", strings.TrimRight(line, "\r"))
			}
		})
	}
}

func truncatedSegment(sr *binary.SafeReader, what string, pos, declared int64) error {
	return &types.TruncatedError{
		Path:      sr.Path(),
		What:      what,
		Offset:    pos,
		Declared:  declared,
		Available: max(sr.Size()-pos, 0),
	}
}

func init() {
	registry.Register(types.FormatJPEG, registry.DecoderFunc(DecodeJPEG))
}
