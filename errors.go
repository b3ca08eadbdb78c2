package fmprobe

import (
	"github.com/filemeta/fmprobe/internal/types"
)

// Error classes. Every error a probe reports matches one of these through
// errors.Is, apart from I/O failures and UnsupportedFormatError.
var (
	ErrTruncated     = types.ErrTruncated
	ErrInvalidHeader = types.ErrInvalidHeader
	ErrOutOfRange    = types.ErrOutOfRange
	ErrMalformed     = types.ErrMalformed
)

// OutOfBoundsError is an alias to types.OutOfBoundsError.
type OutOfBoundsError = types.OutOfBoundsError

// TruncatedError is an alias to types.TruncatedError.
type TruncatedError = types.TruncatedError

// InvalidHeaderError is an alias to types.InvalidHeaderError.
type InvalidHeaderError = types.InvalidHeaderError

// UnsupportedFormatError is an alias to types.UnsupportedFormatError.
type UnsupportedFormatError = types.UnsupportedFormatError

// CorruptedFileError is an alias to types.CorruptedFileError.
type CorruptedFileError = types.CorruptedFileError

// Warning is an alias to types.Warning.
type Warning = types.Warning
