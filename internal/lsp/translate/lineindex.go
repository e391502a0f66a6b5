// Package translate implements the coordinate-translation subsystem:
// converting protocol (line, UTF-16 column) positions to byte offsets and
// back, plus the edit-aware translation used to reposition a cursor inside
// a just-applied edit without rebuilding the line index.
package translate

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// LineCol is a zero-based line number and a UTF-16-code-unit column, as
// required by the LSP wire protocol.
type LineCol struct {
	Line uint32
	Col  uint32
}

// LineIndex answers byte-offset <-> (line, UTF-16 column) queries for one
// snapshot of a file's text. A query finds the line by binary search over the
// line starts and then scans that line up to the column, so its cost grows
// with the number of lines and the line's length; it is not constant time.
// It is immutable: build a new one whenever the text changes.
type LineIndex struct {
	text       string
	lineStarts []int // byte offset of the start of each line; lineStarts[0] == 0
}

// NewLineIndex builds a LineIndex over text. Lines are delimited by '\n';
// a trailing '\r' is left as part of the preceding line's content, matching
// how byte offsets are computed (CRLF is not special-cased).
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, lineStarts: starts}
}

// LineCol maps a byte offset into the indexed text to (line, UTF-16 col).
// offset is clamped to [0, len(text)].
func (li *LineIndex) LineCol(offset int) LineCol {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.text) {
		offset = len(li.text)
	}

	line := sort.Search(len(li.lineStarts), func(i int) bool {
		return li.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}

	lineStart := li.lineStarts[line]
	col := utf16Len(li.text[lineStart:offset])
	return LineCol{Line: uint32(line), Col: uint32(col)}
}

// Offset maps (line, UTF-16 col) back to a byte offset. A line or column
// beyond the end of the text clamps to the end of the text.
func (li *LineIndex) Offset(lc LineCol) int {
	line := int(lc.Line)
	if line >= len(li.lineStarts) {
		return len(li.text)
	}
	lineStart := li.lineStarts[line]
	lineEnd := len(li.text)
	if line+1 < len(li.lineStarts) {
		lineEnd = li.lineStarts[line+1]
	}

	remaining := int(lc.Col)
	offset := lineStart
	for offset < lineEnd && remaining > 0 {
		r, size := utf8.DecodeRuneInString(li.text[offset:])
		units := 1
		if r > 0xFFFF {
			units = 2
		}
		if units > remaining {
			break
		}
		remaining -= units
		offset += size
	}
	return offset
}

// utf16Len counts the number of UTF-16 code units s would encode to.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++ // replacement character encodes as one unit
		}
	}
	return n
}
