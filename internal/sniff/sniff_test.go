package sniff

import (
	"bytes"
	"errors"
	"testing"

	"github.com/filemeta/fmprobe/internal/types"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want types.Format
	}{
		{"id3v2.3", []byte("ID3\x03\x00\x00\x00\x00\x00\x00"), types.FormatMP3},
		{"id3v2.4", []byte("ID3\x04\x00\x00\x00\x00\x00\x00"), types.FormatMP3},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x00, 0x10}, types.FormatJPEG},
		{"tiff little-endian", []byte("II*\x00\x08\x00\x00\x00"), types.FormatTIFF},
		{"tiff big-endian", []byte("MM\x00*\x00\x00\x00\x08"), types.FormatTIFF},
		{"midi", []byte("MThd\x00\x00\x00\x06\x00\x01\x00\x02"), types.FormatMIDI},
		{"mp4 ftyp", []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00"), types.FormatMP4},
		{"quicktime moov first", []byte("\x00\x00\x00\x08moov"), types.FormatMP4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(bytes.NewReader(tt.data), int64(len(tt.data)), "test")
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetect_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"too small", []byte("ID")},
		{"id3 bad version", []byte("ID3\xFF\x00\x00\x00\x00\x00\x00")},
		{"random", []byte("hello world!")},
		{"flac", []byte("fLaC\x00\x00\x00\x22")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(bytes.NewReader(tt.data), int64(len(tt.data)), "test")
			if err == nil {
				t.Fatalf("expected error, got format %v", got)
			}
			var ufe *types.UnsupportedFormatError
			if !errors.As(err, &ufe) {
				t.Errorf("expected UnsupportedFormatError, got %T", err)
			}
			if got != types.FormatUnknown {
				t.Errorf("expected FormatUnknown, got %v", got)
			}
		})
	}
}
