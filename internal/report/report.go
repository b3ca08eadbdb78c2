// Package report implements the line-oriented text sink decoders write to.
//
// A Writer prints labelled fields with nesting indentation, renders opaque
// byte regions as hex/ASCII dumps, and records per-unit diagnostics so that
// callers can inspect them after the walk.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/filemeta/fmprobe/internal/binary"
	"github.com/filemeta/fmprobe/internal/types"
)

// indentUnit is prepended once per nesting level.
const indentUnit = "  "

// Writer is the output sink shared by all decoders.
type Writer struct {
	sw       *binary.SafeWriter
	depth    int
	verbose  bool
	warnings []types.Warning
	errs     *multierror.Error
}

// New creates a Writer. Detail output is enabled when verbose is true.
func New(w io.Writer, verbose bool) *Writer {
	return &Writer{
		sw:      binary.NewSafeWriter(w),
		verbose: verbose,
	}
}

// Verbose reports whether detail output is enabled.
func (w *Writer) Verbose() bool {
	return w.verbose
}

// Line writes one formatted line at the current indentation.
func (w *Writer) Line(format string, args ...any) {
	w.sw.WriteString(strings.Repeat(indentUnit, w.depth))
	w.sw.Printf(format, args...)
	w.sw.WriteString("\n")
}

// Field writes a "label: value" line.
func (w *Writer) Field(label string, value any) {
	w.Line("%s: %v", label, value)
}

// Detail writes a line only in verbose mode.
func (w *Writer) Detail(format string, args ...any) {
	if w.verbose {
		w.Line(format, args...)
	}
}

// Indent increases nesting by one level and returns a function restoring it.
//
//	defer out.Indent()()
func (w *Writer) Indent() func() {
	w.depth++
	return func() { w.depth-- }
}

// Section writes a heading line and runs fn one level deeper.
func (w *Writer) Section(heading string, fn func()) {
	w.Line("%s", heading)
	defer w.Indent()()
	fn()
}

// Dump writes b as a hex/ASCII dump. Offsets in the left column start at
// displayOffset.
func (w *Writer) Dump(displayOffset int64, b []byte) {
	prefix := strings.Repeat(indentUnit, w.depth)
	for _, line := range DumpLines(displayOffset, b) {
		w.sw.WriteString(prefix)
		w.sw.WriteString(line)
		w.sw.WriteString("\n")
	}
}

// Warn reports a failure confined to one unit. The diagnostic is printed
// inline and kept for Warnings and Err.
func (w *Writer) Warn(stage string, offset int64, err error) {
	w.Line("!! %v", err)
	w.warnings = append(w.warnings, types.Warning{
		Stage:   stage,
		Message: err.Error(),
		Offset:  offset,
		Err:     err,
	})
	w.errs = multierror.Append(w.errs, fmt.Errorf("%s: %w", stage, err))
}

// Warnings returns the diagnostics recorded so far.
func (w *Writer) Warnings() []types.Warning {
	return w.warnings
}

// Err returns all recorded diagnostics as one error, or nil if there were none.
func (w *Writer) Err() error {
	return w.errs.ErrorOrNil()
}

// WriteErr returns the first error from the underlying io.Writer.
func (w *Writer) WriteErr() error {
	return w.sw.Err()
}

// Written returns the number of bytes written so far.
func (w *Writer) Written() int64 {
	return w.sw.Offset()
}
