package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/filemeta/fmprobe/internal/types"
)

func TestDumpLines_FullLine(t *testing.T) {
	data := []byte("ID3\x03\x00\x00\x00\x00\x00\x21TIT2\x00\x00")

	lines := DumpLines(0, data)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	want := "0000: 49 44 33 03 00 00 00 00  00 21 54 49 54 32 00 00  ID3····· ·!TIT2··"
	if lines[0] != want {
		t.Errorf("got  %q\nwant %q", lines[0], want)
	}
}

func TestDumpLines_ShortLineIsPadded(t *testing.T) {
	lines := DumpLines(0x20, []byte("abc"))

	want := "0020: 61 62 63" + strings.Repeat(" ", 42) + "abc"
	if len(lines) != 1 || lines[0] != want {
		t.Errorf("got %q, want %q", lines, want)
	}
}

func TestDumpLines_Offsets(t *testing.T) {
	lines := DumpLines(0x100, make([]byte, 40))

	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, prefix := range []string{"0100: ", "0110: ", "0120: "} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d: expected prefix %q, got %q", i, prefix, lines[i])
		}
	}
}

func TestHexBytes(t *testing.T) {
	if got := HexBytes([]byte{0x01, 0xAB, 0xFF}); got != "01 ab ff" {
		t.Errorf("HexBytes = %q", got)
	}
	if got := HexBytes(nil); got != "" {
		t.Errorf("HexBytes(nil) = %q", got)
	}
}

func TestWriter_Indentation(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, false)

	w.Section("moov: len=0x00000010", func() {
		w.Field("Version", 0)
		w.Section("udta: len=0x00000008", func() {
			w.Line("leaf")
		})
	})
	w.Line("done")

	want := "moov: len=0x00000010\n" +
		"  Version: 0\n" +
		"  udta: len=0x00000008\n" +
		"    leaf\n" +
		"done\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
	if w.Written() != int64(len(want)) {
		t.Errorf("Written() = %d, want %d", w.Written(), len(want))
	}
}

func TestWriter_Detail(t *testing.T) {
	var quiet, loud bytes.Buffer

	New(&quiet, false).Detail("entry=%d", 1)
	New(&loud, true).Detail("entry=%d", 1)

	if quiet.Len() != 0 {
		t.Errorf("expected no detail output, got %q", quiet.String())
	}
	if loud.String() != "entry=1\n" {
		t.Errorf("expected detail output, got %q", loud.String())
	}
}

func TestWriter_Warn(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, false)

	if w.Err() != nil {
		t.Fatalf("expected nil Err before any warning, got %v", w.Err())
	}

	w.Warn("id3", 42, &types.TruncatedError{Path: "a.mp3", What: "frame TIT2", Offset: 42, Declared: 100, Available: 10})
	w.Warn("id3", 90, &types.CorruptedFileError{Path: "a.mp3", Reason: "bad encoding", Offset: 90})

	if !strings.HasPrefix(buf.String(), "!! a.mp3: truncated frame TIT2") {
		t.Errorf("unexpected diagnostic line: %q", buf.String())
	}

	warnings := w.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(warnings))
	}
	if warnings[0].Stage != "id3" || warnings[0].Offset != 42 {
		t.Errorf("unexpected warning: %+v", warnings[0])
	}

	err := w.Err()
	if !errors.Is(err, types.ErrTruncated) {
		t.Errorf("aggregate should match ErrTruncated: %v", err)
	}
	if !errors.Is(err, types.ErrMalformed) {
		t.Errorf("aggregate should match ErrMalformed: %v", err)
	}
}
