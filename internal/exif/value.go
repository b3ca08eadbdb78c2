package exif

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/filemeta/fmprobe/internal/binary"
	"github.com/filemeta/fmprobe/internal/report"
)

// TIFF field type codes.
const (
	typeByte      = 1
	typeASCII     = 2
	typeShort     = 3
	typeLong      = 4
	typeRational  = 5
	typeSByte     = 6
	typeUndefined = 7
	typeSShort    = 8
	typeSLong     = 9
	typeSRational = 10
	typeFloat     = 11
	typeDouble    = 12
)

// kind is the decoded shape of an entry's value. It comes from the declared
// type code unless the tag has an entry in the override table.
type kind int

const (
	kindUnknown kind = iota
	kindBytes
	kindASCII
	kindUint16
	kindUint32
	kindRational
	kindSBytes
	kindInt16
	kindInt32
	kindSRational
	kindFloat
	kindDouble
	kindUTF16
	kindUserComment
	kindExifIFD
	kindGPSIFD
	kindInteropIFD
	kindByteCount
)

// kindOfType maps a declared type code to its kind.
func kindOfType(typ uint16) kind {
	switch typ {
	case typeByte, typeUndefined:
		return kindBytes
	case typeASCII:
		return kindASCII
	case typeShort:
		return kindUint16
	case typeLong:
		return kindUint32
	case typeRational:
		return kindRational
	case typeSByte:
		return kindSBytes
	case typeSShort:
		return kindInt16
	case typeSLong:
		return kindInt32
	case typeSRational:
		return kindSRational
	case typeFloat:
		return kindFloat
	case typeDouble:
		return kindDouble
	default:
		return kindUnknown
	}
}

// elemSize returns the width of one element of k in bytes.
func (k kind) elemSize() int {
	switch k {
	case kindUint16, kindInt16:
		return 2
	case kindUint32, kindInt32, kindFloat, kindExifIFD, kindGPSIFD, kindInteropIFD:
		return 4
	case kindRational, kindSRational, kindDouble:
		return 8
	case kindUnknown:
		return 0
	default:
		return 1
	}
}

// isPointer reports whether k refers to a nested directory.
func (k kind) isPointer() bool {
	return k == kindExifIFD || k == kindGPSIFD || k == kindInteropIFD
}

// Value is a decoded directory entry value. The set of implementations is
// closed; every variant is declared in this file.
type Value interface {
	String() string
	isValue()
}

// Bytes holds BYTE and UNDEFINED values.
type Bytes []byte

// ASCII holds an ASCII value with trailing NULs removed.
type ASCII string

// Uint16s holds SHORT values.
type Uint16s []uint16

// Uint32s holds LONG values.
type Uint32s []uint32

// SBytes holds SBYTE values.
type SBytes []int8

// Int16s holds SSHORT values.
type Int16s []int16

// Int32s holds SLONG values.
type Int32s []int32

// Rational is an unsigned fraction.
type Rational struct {
	Num, Den uint32
}

// Rationals holds RATIONAL values.
type Rationals []Rational

// SRational is a signed fraction.
type SRational struct {
	Num, Den int32
}

// SRationals holds SRATIONAL values.
type SRationals []SRational

// Floats holds FLOAT values.
type Floats []float32

// Doubles holds DOUBLE values.
type Doubles []float64

// UTF16 holds a Windows XP* string.
type UTF16 string

// UserComment holds a value prefixed with an 8-byte character code.
type UserComment struct {
	Charset string // "ASCII", "UNICODE", "JIS" or "" if absent
	Text    string
}

// SubIFD is a pointer to a nested directory, walked after the entries of
// the directory that holds it.
type SubIFD struct {
	Name   string
	Offset uint32
	kind   kind
}

// ByteCount stands in for opaque blobs that are never decoded.
type ByteCount uint64

// Unknown is a value whose declared type code is not defined by TIFF.
type Unknown struct {
	Type  uint16
	Count uint32
}

func (Bytes) isValue()       {}
func (ASCII) isValue()       {}
func (Uint16s) isValue()     {}
func (Uint32s) isValue()     {}
func (SBytes) isValue()      {}
func (Int16s) isValue()      {}
func (Int32s) isValue()      {}
func (Rationals) isValue()   {}
func (SRationals) isValue()  {}
func (Floats) isValue()      {}
func (Doubles) isValue()     {}
func (UTF16) isValue()       {}
func (UserComment) isValue() {}
func (SubIFD) isValue()      {}
func (ByteCount) isValue()   {}
func (Unknown) isValue()     {}

func (v Bytes) String() string { return report.HexBytes(v) }
func (v ASCII) String() string { return string(v) }
func (v UTF16) String() string { return string(v) }

func (v Uint16s) String() string {
	return join(v, func(x uint16) string { return strconv.FormatUint(uint64(x), 10) })
}

func (v Uint32s) String() string {
	return join(v, func(x uint32) string { return strconv.FormatUint(uint64(x), 10) })
}

func (v SBytes) String() string {
	return join(v, func(x int8) string { return strconv.Itoa(int(x)) })
}

func (v Int16s) String() string {
	return join(v, func(x int16) string { return strconv.Itoa(int(x)) })
}

func (v Int32s) String() string {
	return join(v, func(x int32) string { return strconv.Itoa(int(x)) })
}

func (v Rationals) String() string {
	return join(v, func(r Rational) string { return fmt.Sprintf("%d/%d", r.Num, r.Den) })
}

func (v SRationals) String() string {
	return join(v, func(r SRational) string { return fmt.Sprintf("%d/%d", r.Num, r.Den) })
}

func (v Floats) String() string {
	return join(v, func(x float32) string { return strconv.FormatFloat(float64(x), 'g', -1, 32) })
}

func (v Doubles) String() string {
	return join(v, func(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) })
}

func (v UserComment) String() string {
	if v.Charset == "JIS" {
		return "Unsupported: JIS string"
	}
	return v.Text
}

func (v SubIFD) String() string {
	return fmt.Sprintf("%s at offset 0x%x", v.Name, v.Offset)
}

func (v ByteCount) String() string {
	return fmt.Sprintf("%d bytes", uint64(v))
}

func (v Unknown) String() string {
	return fmt.Sprintf("unknown type %d, count %d", v.Type, v.Count)
}

func join[T any](vals []T, format func(T) string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = format(v)
	}
	return strings.Join(parts, " ")
}

// decodeValue converts the payload bytes of an entry to a Value. data holds
// exactly count elements of k.
func decodeValue(k kind, data []byte, count uint32, order binary.Endianness) Value {
	n := int(count)

	switch k {
	case kindBytes:
		return Bytes(data)

	case kindASCII:
		return ASCII(decodeASCII(data))

	case kindSBytes:
		out := make(SBytes, n)
		for i := range out {
			out[i] = int8(data[i])
		}
		return out

	case kindUint16:
		out := make(Uint16s, n)
		for i := range out {
			out[i] = binary.Decode[uint16](data[i*2:], order)
		}
		return out

	case kindInt16:
		out := make(Int16s, n)
		for i := range out {
			out[i] = int16(binary.Decode[uint16](data[i*2:], order))
		}
		return out

	case kindUint32:
		out := make(Uint32s, n)
		for i := range out {
			out[i] = binary.Decode[uint32](data[i*4:], order)
		}
		return out

	case kindInt32:
		out := make(Int32s, n)
		for i := range out {
			out[i] = int32(binary.Decode[uint32](data[i*4:], order))
		}
		return out

	case kindRational:
		out := make(Rationals, n)
		for i := range out {
			out[i] = Rational{
				Num: binary.Decode[uint32](data[i*8:], order),
				Den: binary.Decode[uint32](data[i*8+4:], order),
			}
		}
		return out

	case kindSRational:
		out := make(SRationals, n)
		for i := range out {
			out[i] = SRational{
				Num: int32(binary.Decode[uint32](data[i*8:], order)),
				Den: int32(binary.Decode[uint32](data[i*8+4:], order)),
			}
		}
		return out

	case kindFloat:
		out := make(Floats, n)
		for i := range out {
			out[i] = math.Float32frombits(binary.Decode[uint32](data[i*4:], order))
		}
		return out

	case kindDouble:
		out := make(Doubles, n)
		for i := range out {
			out[i] = math.Float64frombits(binary.Decode[uint64](data[i*8:], order))
		}
		return out

	case kindUTF16:
		// XP* tags are written by Windows and are always little-endian.
		return UTF16(decodeUTF16(data, binary.UTF16LE))

	case kindUserComment:
		return decodeUserComment(data, order)

	case kindExifIFD, kindGPSIFD, kindInteropIFD:
		return SubIFD{Name: pointerNames[k], Offset: binary.Decode[uint32](data, order), kind: k}

	case kindByteCount:
		return ByteCount(len(data))

	case kindUnknown:
		return Unknown{Count: count}

	default:
		return Unknown{Count: count}
	}
}

// decodeASCII trims trailing NULs. Cameras often store UTF-8 in ASCII
// fields, so valid UTF-8 is kept as is and anything else is read as Latin-1.
func decodeASCII(data []byte) string {
	data = binary.TrimTerminators(data, binary.ASCII)
	if utf8.Valid(data) {
		return string(data)
	}
	return binary.Latin1.Decode(data)
}

// Character codes that prefix a UserComment value.
var (
	codeASCII   = "ASCII\x00\x00\x00"
	codeJIS     = "JIS\x00\x00\x00\x00\x00"
	codeUnicode = "UNICODE\x00"
)

// decodeUTF16 drops a dangling odd byte, then trailing zero code units.
func decodeUTF16(b []byte, cs binary.Charset) string {
	b = b[:len(b)&^1]
	return cs.Decode(binary.TrimTerminators(b, cs))
}

// decodeUserComment splits the 8-byte character code from the payload. A
// missing or unrecognised code gives an empty value. UNICODE text follows a
// leading byte order mark if there is one, the directory byte order if not.
func decodeUserComment(data []byte, order binary.Endianness) UserComment {
	if len(data) < 8 {
		return UserComment{}
	}

	code, payload := string(data[:8]), data[8:]
	switch code {
	case codeASCII:
		return UserComment{Charset: "ASCII", Text: decodeASCII(payload)}
	case codeUnicode:
		cs := binary.UTF16BE
		if order == binary.LittleEndian {
			cs = binary.UTF16LE
		}
		switch {
		case len(payload) >= 2 && payload[0] == 0xFF && payload[1] == 0xFE:
			cs, payload = binary.UTF16LE, payload[2:]
		case len(payload) >= 2 && payload[0] == 0xFE && payload[1] == 0xFF:
			cs, payload = binary.UTF16BE, payload[2:]
		}
		return UserComment{Charset: "UNICODE", Text: decodeUTF16(payload, cs)}
	case codeJIS:
		return UserComment{Charset: "JIS"}
	default:
		return UserComment{}
	}
}
