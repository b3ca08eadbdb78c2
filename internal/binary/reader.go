// Package binary provides type-safe binary reading primitives with bounds checking
package binary

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/filemeta/fmprobe/internal/types"
)

// SafeReader is a read-only view over a window of an io.ReaderAt.
//
// Offsets passed to its methods are relative to the start of the window, and
// no read may leave the window. Nested structures get narrower views through
// Sub, so a decoder working on a sub-range can never touch bytes outside it.
type SafeReader struct {
	r    io.ReaderAt
	path string
	base int64
	size int64
}

// NewSafeReader creates a new SafeReader covering [0, size) of r.
func NewSafeReader(r io.ReaderAt, size int64, path string) *SafeReader {
	return &SafeReader{
		r:    r,
		size: size,
		path: path,
	}
}

// FromBytes creates a SafeReader over an in-memory buffer.
func FromBytes(b []byte, path string) *SafeReader {
	return NewSafeReader(bytes.NewReader(b), int64(len(b)), path)
}

// Path returns the file path associated with this reader.
func (sr *SafeReader) Path() string {
	return sr.path
}

// Size returns the length of the window.
func (sr *SafeReader) Size() int64 {
	return sr.size
}

// Base returns the absolute offset of the window within the underlying source.
func (sr *SafeReader) Base() int64 {
	return sr.base
}

// ReadAt reads bytes at the given offset with context for error messages.
func (sr *SafeReader) ReadAt(b []byte, off int64, what string) error {
	if err := sr.check(off, int64(len(b)), what); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}

	n, err := sr.r.ReadAt(b, sr.base+off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%s: failed to read %s at offset %d: %w", sr.path, what, off, err)
	}

	if n < len(b) {
		return &types.OutOfBoundsError{
			Path:   sr.path,
			What:   what,
			Offset: off,
			Length: len(b),
			Size:   off + int64(n),
		}
	}

	return nil
}

// check validates that [off, off+n) lies inside the window.
func (sr *SafeReader) check(off, n int64, what string) error {
	if off < 0 || n < 0 || off > sr.size || n > sr.size-off {
		return &types.OutOfBoundsError{Path: sr.path, What: what, Offset: off, Length: int(n), Size: sr.size}
	}
	return nil
}

// Sub returns a view of n bytes starting at off. The new view must lie
// entirely within the current one.
func (sr *SafeReader) Sub(off, n int64, what string) (*SafeReader, error) {
	if err := sr.check(off, n, what); err != nil {
		return nil, err
	}
	return &SafeReader{
		r:    sr.r,
		path: sr.path,
		base: sr.base + off,
		size: n,
	}, nil
}

// Bytes reads n bytes at off into a new slice.
func (sr *SafeReader) Bytes(off int64, n int, what string) ([]byte, error) {
	if err := sr.check(off, int64(n), what); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := sr.ReadAt(buf, off, what); err != nil {
		return nil, err
	}
	return buf, nil
}

// All reads the whole window.
func (sr *SafeReader) All(what string) ([]byte, error) {
	return sr.Bytes(0, int(sr.size), what)
}

// Match reports whether the bytes at off equal sig. A signature that does
// not fit in the window never matches.
func (sr *SafeReader) Match(off int64, sig []byte) bool {
	if sr.check(off, int64(len(sig)), "signature") != nil {
		return false
	}
	buf := make([]byte, len(sig))
	if err := sr.ReadAt(buf, off, "signature"); err != nil {
		return false
	}
	return bytes.Equal(buf, sig)
}

// Read reads a value of type T from the given offset.
// T must be uint8, uint16, uint32, or uint64.
func Read[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, BigEndian)
}

// sizeOf returns the encoded width of T.
func sizeOf[T uint8 | uint16 | uint32 | uint64]() int {
	var zero T
	switch any(zero).(type) {
	case uint16:
		return 2
	case uint32:
		return 4
	case uint64:
		return 8
	default:
		return 1
	}
}

// Reader provides sequential reading with automatic offset tracking.
type Reader struct {
	*SafeReader
	offset int64
	endian Endianness
}

// NewReader creates a new big-endian Reader starting at the given offset.
func NewReader(sr *SafeReader, offset int64) *Reader {
	return &Reader{
		SafeReader: sr,
		offset:     offset,
	}
}

// NewReaderEndian creates a new Reader with the given byte order.
func NewReaderEndian(sr *SafeReader, offset int64, endian Endianness) *Reader {
	return &Reader{
		SafeReader: sr,
		offset:     offset,
		endian:     endian,
	}
}

// ReadValue reads a numeric value and advances the offset.
func ReadValue[T uint8 | uint16 | uint32 | uint64](r *Reader, what string) (T, error) {
	val, err := ReadEndian[T](r.SafeReader, r.offset, what, r.endian)
	if err != nil {
		var zero T
		return zero, err
	}

	r.offset += int64(sizeOf[T]())
	return val, nil
}

// ReadString reads a string of the given length and advances the offset.
func (r *Reader) ReadString(length int, what string) (string, error) {
	buf, err := r.ReadBytes(length, what)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadBytes reads n raw bytes and advances the offset.
func (r *Reader) ReadBytes(n int, what string) ([]byte, error) {
	buf, err := r.SafeReader.Bytes(r.offset, n, what)
	if err != nil {
		return nil, err
	}

	r.offset += int64(n)
	return buf, nil
}

// Skip advances the offset by n bytes.
func (r *Reader) Skip(n int64) {
	r.offset += n
}

// SeekTo moves the offset to an absolute position within the window.
func (r *Reader) SeekTo(off int64) {
	r.offset = off
}

// Offset returns the current offset.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Remaining returns the number of bytes between the offset and the end of
// the window. It is never negative.
func (r *Reader) Remaining() int64 {
	return max(r.SafeReader.size-r.offset, 0)
}

// ChainReader allows chaining multiple reads with deferred error checking.
// This avoids repetitive "if err != nil" checks.
type ChainReader struct {
	*Reader
	err error
}

// NewChainReader creates a new ChainReader.
func NewChainReader(r *Reader) *ChainReader {
	return &ChainReader{Reader: r}
}

// ReadChained reads a value with deferred error checking.
// If a previous read failed, returns zero value without attempting read.
func ReadChained[T uint8 | uint16 | uint32 | uint64](cr *ChainReader, what string) T {
	if cr.err != nil {
		var zero T
		return zero
	}

	val, err := ReadValue[T](cr.Reader, what)
	if err != nil {
		cr.err = err
		var zero T
		return zero
	}

	return val
}

// String reads a string, accumulating any error.
func (cr *ChainReader) String(length int, what string) string {
	if cr.err != nil {
		return ""
	}

	val, err := cr.Reader.ReadString(length, what)
	if err != nil {
		cr.err = err
		return ""
	}

	return val
}

// CString reads a null-terminated string of at most max bytes in charset cs,
// accumulating any error.
func (cr *ChainReader) CString(maxLen int, cs Charset, what string) string {
	if cr.err != nil {
		return ""
	}

	s, n, err := cr.SafeReader.CString(cr.offset, maxLen, cs, what)
	if err != nil {
		cr.err = err
		return ""
	}

	cr.offset += int64(n)
	return s
}

// Error returns the accumulated error, if any.
func (cr *ChainReader) Error() error {
	return cr.err
}

// byteOrder maps Endianness to the standard library's ByteOrder.
func byteOrder(e Endianness) binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}
