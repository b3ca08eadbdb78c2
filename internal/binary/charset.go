package binary

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Charset names a text encoding found in metadata fields.
type Charset int

const (
	// Latin1 is ISO-8859-1.
	Latin1 Charset = iota
	// ASCII is 7-bit text; bytes above 0x7F are decoded as Latin-1.
	ASCII
	// UTF8 is UTF-8; invalid sequences become U+FFFD.
	UTF8
	// UTF16 is UTF-16 with an optional byte order mark, big-endian if absent.
	UTF16
	// UTF16BE is UTF-16 big-endian without a byte order mark.
	UTF16BE
	// UTF16LE is UTF-16 little-endian without a byte order mark.
	UTF16LE
)

// Width returns the size in bytes of one code unit, which is also the width
// of the string terminator.
func (cs Charset) Width() int {
	switch cs {
	case UTF16, UTF16BE, UTF16LE:
		return 2
	default:
		return 1
	}
}

func (cs Charset) encoding() encoding.Encoding {
	switch cs {
	case UTF8:
		return unicode.UTF8
	case UTF16:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	default:
		return charmap.ISO8859_1
	}
}

// Decode converts b to a Go string. A trailing odd byte in a UTF-16 buffer
// is dropped.
func (cs Charset) Decode(b []byte) string {
	if cs.Width() == 2 && len(b)%2 == 1 {
		b = b[:len(b)-1]
	}
	if len(b) == 0 {
		return ""
	}
	out, err := cs.encoding().NewDecoder().Bytes(b)
	if err != nil {
		// The x/text decoders replace rather than fail; keep the raw bytes
		// visible if one ever does.
		return string(b)
	}
	return string(out)
}

// IndexTerminator returns the index of the first terminator in b for the
// given charset, or -1. Two-byte terminators are only matched on code unit
// boundaries.
func IndexTerminator(b []byte, cs Charset) int {
	if cs.Width() == 1 {
		return bytes.IndexByte(b, 0)
	}
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			return i
		}
	}
	return -1
}

// SplitTerminated splits b at the first terminator. The second result holds
// the bytes after the terminator, or nil if none was found.
func SplitTerminated(b []byte, cs Charset) (field, rest []byte) {
	i := IndexTerminator(b, cs)
	if i < 0 {
		return b, nil
	}
	return b[:i], b[i+cs.Width():]
}

// TrimTerminators removes trailing terminators from b.
func TrimTerminators(b []byte, cs Charset) []byte {
	w := cs.Width()
	for len(b) >= w && isZero(b[len(b)-w:]) {
		b = b[:len(b)-w]
	}
	return b
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// String reads a fixed-length string of n bytes at off. Trailing terminators
// are removed.
func (sr *SafeReader) String(off int64, n int, cs Charset, what string) (string, error) {
	buf, err := sr.Bytes(off, n, what)
	if err != nil {
		return "", err
	}
	return cs.Decode(TrimTerminators(buf, cs)), nil
}

// CString reads a null-terminated string of at most maxLen bytes at off,
// also stopping at the end of the window. It returns the decoded text and
// the number of bytes consumed including the terminator.
func (sr *SafeReader) CString(off int64, maxLen int, cs Charset, what string) (string, int, error) {
	if off < 0 || off > sr.size {
		_, err := sr.Bytes(off, 0, what)
		return "", 0, err
	}
	n := int(min(int64(maxLen), sr.size-off))
	buf, err := sr.Bytes(off, n, what)
	if err != nil {
		return "", 0, err
	}
	field, rest := SplitTerminated(buf, cs)
	consumed := len(field)
	if rest != nil {
		consumed += cs.Width()
	}
	return cs.Decode(field), consumed, nil
}
