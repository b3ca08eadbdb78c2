// Package mp4 walks the box tree of ISO base media files (MP4, M4A,
// QuickTime) and decodes the boxes that carry descriptive metadata.
package mp4

import (
	"fmt"

	"github.com/filemeta/fmprobe/internal/binary"
	"github.com/filemeta/fmprobe/internal/registry"
	"github.com/filemeta/fmprobe/internal/report"
	"github.com/filemeta/fmprobe/internal/types"
)

const (
	stage = "mp4"

	// fullBoxPrefix is the version and flags word that opens a full box.
	fullBoxPrefix = 4

	// maxLeafDump bounds the hex dump of a single leaf in verbose mode.
	maxLeafDump = 256
)

type walker struct {
	path string
	out  *report.Writer
	cfg  types.Config
}

// Decode walks the top-level boxes of the file in sr.
//
// A box header that is inconsistent with the bytes left in its parent ends
// the walk of that parent: there is no other way to find the next sibling.
// At the top level this is returned as an error; inside a container it is
// reported inline and the walk resumes after the container. Leaf decode
// failures are reported inline and never stop the walk.
func Decode(sr *binary.SafeReader, out *report.Writer, cfg types.Config) error {
	w := &walker{path: sr.Path(), out: out, cfg: cfg}
	return w.boxes(sr, 0)
}

// boxes walks the sibling boxes filling sr.
func (w *walker) boxes(sr *binary.SafeReader, depth int) error {
	for pos := int64(0); pos < sr.Size(); {
		b, err := w.readBox(sr, pos)
		if err != nil {
			return err
		}
		w.out.Line("%s: len=0x%08x", b.typ, b.declared)

		body, err := sr.Sub(b.bodyOffset(), b.bodySize(), b.typ+" box")
		if err != nil {
			return err
		}

		func() {
			defer w.out.Indent()()
			if err := w.decode(b, body, depth); err != nil {
				w.out.Warn(stage, body.Base()-b.header, err)
			}
		}()

		pos += b.size
	}
	return nil
}

// decode dispatches one box body on the box type.
func (w *walker) decode(b box, body *binary.SafeReader, depth int) error {
	kind := kindOf(b.typ)

	switch kind {
	case kindContainer:
		return w.container(b, body, depth)

	case kindMeta:
		// ISO meta is a full box; QuickTime meta has no version word and
		// starts directly with its hdlr child.
		if body.Match(4, []byte("hdlr")) {
			return w.container(b, body, depth)
		}
		if body.Size() < fullBoxPrefix {
			return w.truncated("meta version", body.Base(), fullBoxPrefix, body.Size())
		}
		children, err := body.Sub(fullBoxPrefix, body.Size()-fullBoxPrefix, "meta children")
		if err != nil {
			return err
		}
		return w.container(b, children, depth)

	case kindUnknown:
		w.dumpLeaf(body)
		return nil
	}

	w.dumpLeaf(body)
	switch kind {
	case kindFileType:
		return w.fileType(body)
	case kindMovieHeader:
		return w.movieHeader(body)
	case kindHandler:
		return w.handler(body)
	case kindItemList:
		return w.itemList(body)
	case kindXtra:
		return w.xtra(body)
	}
	return nil
}

// container walks the children of a container box one level deeper.
func (w *walker) container(b box, body *binary.SafeReader, depth int) error {
	if depth+1 > w.cfg.Depth() {
		return w.malformed(body.Base(), "%q box nested deeper than %d", b.typ, w.cfg.Depth())
	}
	return w.boxes(body, depth+1)
}

// dumpLeaf dumps the start of a leaf body in verbose mode.
func (w *walker) dumpLeaf(body *binary.SafeReader) {
	if !w.out.Verbose() || body.Size() == 0 {
		return
	}
	n := min(body.Size(), maxLeafDump)
	raw, err := body.Bytes(0, int(n), "box body")
	if err != nil {
		return
	}
	w.out.Dump(body.Base(), raw)
	if rest := body.Size() - n; rest > 0 {
		w.out.Line("... %d more bytes", rest)
	}
}

func (w *walker) malformed(offset int64, format string, args ...any) error {
	return &types.CorruptedFileError{
		Path:   w.path,
		Reason: fmt.Sprintf(format, args...),
		Offset: offset,
	}
}

func (w *walker) truncated(what string, offset, declared, available int64) error {
	return &types.TruncatedError{
		Path:      w.path,
		What:      what,
		Offset:    offset,
		Declared:  declared,
		Available: max(available, 0),
	}
}

func init() {
	registry.Register(types.FormatMP4, registry.DecoderFunc(Decode))
}
