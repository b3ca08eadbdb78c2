package types

import (
	"errors"
	"fmt"
)

// Error classes. Every typed error in this package matches exactly one of
// these through errors.Is.
var (
	// ErrTruncated means fewer bytes are available than a structure declares.
	ErrTruncated = errors.New("truncated")

	// ErrInvalidHeader means a magic number or version did not match.
	ErrInvalidHeader = errors.New("invalid header")

	// ErrOutOfRange means an offset or length points outside a byte range.
	ErrOutOfRange = errors.New("out of range")

	// ErrMalformed means the structure is internally inconsistent.
	ErrMalformed = errors.New("malformed structure")
)

// OutOfBoundsError is returned when attempting to read beyond the bounds of a
// byte range.
type OutOfBoundsError struct {
	Path   string
	What   string
	Offset int64
	Length int
	Size   int64
}

func (e *OutOfBoundsError) Error() string {
	if e.Offset < 0 || e.Offset >= e.Size {
		return fmt.Sprintf("%s: offset %d out of bounds (range size: %d) while reading %s",
			e.Path, e.Offset, e.Size, e.What)
	}
	return fmt.Sprintf("%s: read of %d bytes at offset %d would exceed range size %d while reading %s",
		e.Path, e.Length, e.Offset, e.Size, e.What)
}

// Is reports whether target is ErrOutOfRange.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfRange
}

// TruncatedError is returned when a structure declares more bytes than
// remain in its enclosing range.
type TruncatedError struct {
	Path      string
	What      string
	Offset    int64
	Declared  int64
	Available int64
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("%s: truncated %s at offset %d: declares %d bytes, %d available",
		e.Path, e.What, e.Offset, e.Declared, e.Available)
}

// Is reports whether target is ErrTruncated.
func (e *TruncatedError) Is(target error) bool {
	return target == ErrTruncated
}

// InvalidHeaderError is returned when a magic number or version field does
// not match what the format requires.
type InvalidHeaderError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *InvalidHeaderError) Error() string {
	return fmt.Sprintf("%s: invalid header at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// Is reports whether target is ErrInvalidHeader.
func (e *InvalidHeaderError) Is(target error) bool {
	return target == ErrInvalidHeader
}

// UnsupportedFormatError is returned when no decoder recognises the file.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported format: %s", e.Path, e.Reason)
}

// CorruptedFileError is returned when file structure is invalid.
type CorruptedFileError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *CorruptedFileError) Error() string {
	return fmt.Sprintf("%s: corrupted file at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// Is reports whether target is ErrMalformed.
func (e *CorruptedFileError) Is(target error) bool {
	return target == ErrMalformed
}

// Warning represents a non-fatal issue encountered while decoding.
//
// Warnings are raised for failures confined to one unit (a directory entry,
// a box, a frame, a track) after which the walk carried on. They are
// collected in Result.Warnings.
type Warning struct {
	// Stage where the warning occurred
	Stage string // "exif", "mp4", "id3", "midi"

	// Warning message
	Message string

	// Offset of the unit within its enclosing range (0 if not applicable)
	Offset int64

	// Err is the underlying error, kept for errors.Is classification.
	Err error
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
