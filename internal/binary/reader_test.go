package binary

import (
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/filemeta/fmprobe/internal/types"
)

// mockReader implements io.ReaderAt for testing.
type mockReader struct {
	data []byte
}

func (m *mockReader) ReadAt(p []byte, off int64) (n int, err error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n = copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func TestSafeReader_ReadAt_Success(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	mock := &mockReader{data: data}
	sr := NewSafeReader(mock, int64(len(data)), "test.jpg")

	buf := make([]byte, 2)
	err := sr.ReadAt(buf, 0, "test read")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buf[0] != 0x01 || buf[1] != 0x02 {
		t.Errorf("expected [0x01, 0x02], got [0x%02x, 0x%02x]", buf[0], buf[1])
	}
}

func TestSafeReader_ReadAt_OutOfBounds(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	mock := &mockReader{data: data}
	sr := NewSafeReader(mock, int64(len(data)), "test.jpg")

	tests := []struct {
		name string
		off  int64
		n    int
	}{
		{"past end", 10, 2},
		{"straddles end", 3, 2},
		{"negative offset", -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sr.ReadAt(make([]byte, tt.n), tt.off, "out of bounds read")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, types.ErrOutOfRange) {
				t.Errorf("expected ErrOutOfRange, got %v", err)
			}

			// Check error message contains useful info
			errMsg := err.Error()
			if !strings.Contains(errMsg, "test.jpg") {
				t.Errorf("error should contain filename: %v", errMsg)
			}
			if !strings.Contains(errMsg, "out of bounds read") {
				t.Errorf("error should contain context: %v", errMsg)
			}
		})
	}
}

func TestSafeReader_Sub(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	sr := FromBytes(data, "test.bin")

	sub, err := sr.Sub(4, 4, "sub range")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Size() != 4 || sub.Base() != 4 {
		t.Fatalf("expected size 4 base 4, got size %d base %d", sub.Size(), sub.Base())
	}

	v, err := Read[uint8](sub, 0, "first byte")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 4 {
		t.Errorf("expected 4, got %d", v)
	}

	// Reads must not leak into bytes after the window
	if _, err := Read[uint16](sub, 3, "past window"); !errors.Is(err, types.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}

	// Nested views are relative to their parent
	inner, err := sub.Sub(2, 2, "inner")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := inner.All("inner bytes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b[0] != 6 || b[1] != 7 {
		t.Errorf("expected [6 7], got %v", b)
	}

	if _, err := sub.Sub(2, 3, "too long"); !errors.Is(err, types.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange for oversized sub range, got %v", err)
	}
}

func TestSafeReader_EmptyReadAtEnd(t *testing.T) {
	sr := FromBytes([]byte{1, 2}, "test.bin")

	if err := sr.ReadAt(nil, 2, "empty read"); err != nil {
		t.Errorf("zero-length read at end should succeed: %v", err)
	}
}

func TestSafeReader_Match(t *testing.T) {
	sr := FromBytes([]byte("MThd\x00\x00\x00\x06"), "test.mid")

	if !sr.Match(0, []byte("MThd")) {
		t.Error("expected MThd to match at 0")
	}
	if sr.Match(4, []byte("MThd")) {
		t.Error("unexpected match at 4")
	}
	if sr.Match(6, []byte("MThd")) {
		t.Error("signature past the end must not match")
	}
}

func TestRead_Uint8(t *testing.T) {
	data := []byte{0x42}
	mock := &mockReader{data: data}
	sr := NewSafeReader(mock, int64(len(data)), "test.bin")

	val, err := Read[uint8](sr, 0, "test uint8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if val != 0x42 {
		t.Errorf("expected 0x42, got 0x%02x", val)
	}
}

func TestRead_Uint32(t *testing.T) {
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, 0x12345678)
	sr := FromBytes(data, "test.bin")

	val, err := Read[uint32](sr, 0, "test uint32")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if val != 0x12345678 {
		t.Errorf("expected 0x12345678, got 0x%08x", val)
	}
}

func TestReader_Sequential(t *testing.T) {
	data := []byte{
		0x00, 0x10, // uint16
		0x00, 0x00, 0x00, 0x20, // uint32
		'm', 'o', 'o', 'v',
	}
	r := NewReader(FromBytes(data, "test.mp4"), 0)

	a, err := ReadValue[uint16](r, "a")
	if err != nil || a != 0x10 {
		t.Fatalf("ReadValue[uint16] = %d, %v", a, err)
	}
	b, err := ReadValue[uint32](r, "b")
	if err != nil || b != 0x20 {
		t.Fatalf("ReadValue[uint32] = %d, %v", b, err)
	}
	s, err := r.ReadString(4, "type")
	if err != nil || s != "moov" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}

	if r.Offset() != 10 {
		t.Errorf("expected offset 10, got %d", r.Offset())
	}
	if r.Remaining() != 0 {
		t.Errorf("expected 0 remaining, got %d", r.Remaining())
	}
}

func TestReader_LittleEndian(t *testing.T) {
	r := NewReaderEndian(FromBytes([]byte{0x34, 0x12}, "test.tif"), 0, LittleEndian)

	v, err := ReadValue[uint16](r, "value")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0x1234 {
		t.Errorf("expected 0x1234, got 0x%04x", v)
	}
}

func TestReader_SeekTo(t *testing.T) {
	r := NewReader(FromBytes([]byte{0x01, 0x02, 0x03, 0x04}, "test.mp4"), 0)
	r.Skip(3)
	r.SeekTo(1)

	if r.Offset() != 1 {
		t.Fatalf("Offset() = %d, want 1", r.Offset())
	}
	v, err := ReadValue[uint16](r, "value")
	if err != nil {
		t.Fatalf("ReadValue() error = %v", err)
	}
	if v != 0x0203 {
		t.Errorf("ReadValue() = 0x%04x, want 0x0203", v)
	}
	if r.Remaining() != 1 {
		t.Errorf("Remaining() = %d, want 1", r.Remaining())
	}
}

func TestChainReader_DefersError(t *testing.T) {
	data := []byte{0x01, 0x00, 0x00, 0x00, 0x02}
	cr := NewChainReader(NewReader(FromBytes(data, "test.mp4"), 0))

	v := ReadChained[uint8](cr, "version")
	n := ReadChained[uint32](cr, "count")
	missing := ReadChained[uint32](cr, "missing")

	if v != 1 || n != 2 {
		t.Errorf("expected 1 and 2, got %d and %d", v, n)
	}
	if missing != 0 {
		t.Errorf("expected zero value after failure, got %d", missing)
	}
	if err := cr.Error(); !errors.Is(err, types.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestChainReader_CString(t *testing.T) {
	data := []byte{'m', 'h', 'l', 'r', 'm', 'd', 'i', 'r', 0, 0, 0, 0}
	cr := NewChainReader(NewReader(FromBytes(data, "test.mp4"), 0))

	a := cr.CString(4, Latin1, "type")
	b := cr.CString(4, Latin1, "subtype")
	c := cr.CString(4, Latin1, "reserved")

	if err := cr.Error(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != "mhlr" || b != "mdir" || c != "" {
		t.Errorf("got %q %q %q", a, b, c)
	}
}
