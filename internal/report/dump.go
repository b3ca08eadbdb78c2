package report

import (
	"fmt"
	"strings"
)

const (
	bytesPerLine = 16
	groupSize    = 8

	// nonPrintable stands in for control and high bytes in the ASCII column.
	nonPrintable = '·'
)

// DumpLines formats b as hex/ASCII dump lines, 16 bytes per line:
//
//	0000: 49 44 33 03 00 00 00 00  00 21 54 49 54 32 00 00  ID3····· ·!TIT2··
//
// A wider gap separates the two groups of eight in both columns.
func DumpLines(displayOffset int64, b []byte) []string {
	lines := make([]string, 0, (len(b)+bytesPerLine-1)/bytesPerLine)

	for start := 0; start < len(b); start += bytesPerLine {
		chunk := b[start:min(start+bytesPerLine, len(b))]

		var sb strings.Builder
		fmt.Fprintf(&sb, "%04x: ", displayOffset+int64(start))

		for i := 0; i < bytesPerLine; i++ {
			if i < len(chunk) {
				fmt.Fprintf(&sb, "%02x ", chunk[i])
			} else {
				sb.WriteString("   ")
			}
			if i == groupSize-1 {
				sb.WriteByte(' ')
			}
		}

		sb.WriteByte(' ')
		for i, c := range chunk {
			if c >= 0x20 && c < 0x7F {
				sb.WriteByte(c)
			} else {
				sb.WriteRune(nonPrintable)
			}
			if i == groupSize-1 {
				sb.WriteByte(' ')
			}
		}

		lines = append(lines, strings.TrimRight(sb.String(), " "))
	}

	return lines
}

// HexBytes renders b as space-separated hex pairs on one line.
func HexBytes(b []byte) string {
	var sb strings.Builder
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", c)
	}
	return sb.String()
}
