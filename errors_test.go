package fmprobe_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/filemeta/fmprobe"
)

func TestErrors_Classification(t *testing.T) {
	// An MThd chunk that declares more bytes than the file holds.
	data := []byte("MThd\x00\x00\x00\x40\x00\x00")

	var buf bytes.Buffer
	_, err := fmprobe.Probe(&buf, bytes.NewReader(data), int64(len(data)), "short.mid")
	if err == nil {
		t.Fatal("Probe() error = nil, want truncation")
	}
	if !errors.Is(err, fmprobe.ErrTruncated) {
		t.Errorf("errors.Is(%v, ErrTruncated) = false", err)
	}
	if errors.Is(err, fmprobe.ErrMalformed) {
		t.Errorf("errors.Is(%v, ErrMalformed) = true", err)
	}

	var te *fmprobe.TruncatedError
	if !errors.As(err, &te) {
		t.Fatalf("errors.As(%v, *TruncatedError) = false", err)
	}
	if te.Path != "short.mid" {
		t.Errorf("TruncatedError.Path = %q, want %q", te.Path, "short.mid")
	}
}

func TestErrors_Unsupported(t *testing.T) {
	data := []byte("not a media file")

	var buf bytes.Buffer
	_, err := fmprobe.Probe(&buf, bytes.NewReader(data), int64(len(data)), "x.bin")

	var ue *fmprobe.UnsupportedFormatError
	if !errors.As(err, &ue) {
		t.Fatalf("Probe() error = %v, want *UnsupportedFormatError", err)
	}
	for _, s := range []error{fmprobe.ErrTruncated, fmprobe.ErrInvalidHeader, fmprobe.ErrOutOfRange, fmprobe.ErrMalformed} {
		if errors.Is(err, s) {
			t.Errorf("errors.Is(%v, %v) = true", err, s)
		}
	}
}
