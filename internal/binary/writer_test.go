package binary

import (
	"bytes"
	"errors"
	"testing"
)

func TestSafeWriter_Values(t *testing.T) {
	var buf bytes.Buffer
	sw := NewSafeWriter(&buf)

	if err := Write[uint32](sw, 0x10); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := sw.WriteString("moov"); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	if err := WriteLE[uint16](sw, 0x1234); err != nil {
		t.Fatalf("WriteLE failed: %v", err)
	}
	if err := Write[uint8](sw, 0x7F); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	want := []byte{0, 0, 0, 0x10, 'm', 'o', 'o', 'v', 0x34, 0x12, 0x7F}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got % x, want % x", buf.Bytes(), want)
	}
	if sw.Offset() != int64(len(want)) {
		t.Errorf("expected offset %d, got %d", len(want), sw.Offset())
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestSafeWriter_StickyError(t *testing.T) {
	sw := NewSafeWriter(failingWriter{})

	first := sw.Printf("line %d\n", 1)
	if first == nil {
		t.Fatal("expected error")
	}
	if err := sw.WriteString("more"); err != first {
		t.Errorf("expected sticky error %v, got %v", first, err)
	}
	if sw.Err() != first {
		t.Errorf("Err() = %v, want %v", sw.Err(), first)
	}
}
