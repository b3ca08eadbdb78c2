package binary

import "encoding/binary"

// Endianness represents byte order for multi-byte values.
type Endianness int

const (
	// BigEndian uses big-endian byte order.
	// Used by: MP4/QuickTime boxes, ID3v2, MIDI, TIFF "MM" files.
	BigEndian Endianness = iota

	// LittleEndian uses little-endian byte order.
	// Used by: TIFF "II" files, Windows Xtra values, EXIF XP* strings.
	LittleEndian
)

// String returns "big-endian" or "little-endian".
func (e Endianness) String() string {
	if e == LittleEndian {
		return "little-endian"
	}
	return "big-endian"
}

// ByteOrder returns the encoding/binary equivalent of e.
func (e Endianness) ByteOrder() binary.ByteOrder {
	return byteOrder(e)
}

// ReadLE reads a numeric value of type T at the given offset using little-endian byte order.
//
// This is a convenience wrapper for ReadEndian with LittleEndian.
//
// Example:
//
//	ticks, err := binary.ReadLE[uint64](sr, offset, "FILETIME value")
func ReadLE[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, LittleEndian)
}

// ReadBE reads a numeric value of type T at the given offset using big-endian byte order.
//
// This is a convenience wrapper for ReadEndian with BigEndian.
// Equivalent to Read() but more explicit about byte order.
//
// Example:
//
//	boxSize, err := binary.ReadBE[uint32](sr, offset, "box size")
func ReadBE[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, BigEndian)
}

// ReadEndian reads a numeric value of type T at the given offset with specified byte order.
//
// This is the low-level function used by Read, ReadLE, and ReadBE.
// Decoders whose byte order is only known at run time (TIFF) call it
// directly.
//
// Example:
//
//	count, err := binary.ReadEndian[uint16](sr, ifdOffset, "IFD entry count", order)
func ReadEndian[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string, endian Endianness) (T, error) {
	var zero T
	size := sizeOf[T]()

	buf := make([]byte, size)
	if err := sr.ReadAt(buf, off, what); err != nil {
		return zero, err
	}

	return Decode[T](buf, endian), nil
}

// Decode converts the first bytes of buf to T in the given byte order.
// buf must hold at least as many bytes as T is wide.
func Decode[T uint8 | uint16 | uint32 | uint64](buf []byte, endian Endianness) T {
	order := byteOrder(endian)

	var zero T
	switch any(zero).(type) {
	case uint16:
		return T(order.Uint16(buf))
	case uint32:
		return T(order.Uint32(buf))
	case uint64:
		return T(order.Uint64(buf))
	default:
		return T(buf[0])
	}
}
