package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateWithEdit_NoEdits(t *testing.T) {
	li := NewLineIndex("abc\ndef\n")
	got := TranslateWithEdit(li, 5, nil)
	assert.Equal(t, li.LineCol(5), got)
}

func TestTranslateWithEdit_OffsetOutsideEditRange(t *testing.T) {
	li := NewLineIndex("abcdef")
	edits := []AtomEdit{{Delete: ByteRange{Start: 2, End: 2}, Insert: "XY"}}

	// offset 0 is before the edit window [2, 4]
	got := TranslateWithEdit(li, 0, edits)
	assert.Equal(t, li.LineCol(0), got)
}

func TestTranslateWithEdit_AtEditStart(t *testing.T) {
	li := NewLineIndex("abcdef")
	edits := []AtomEdit{{Delete: ByteRange{Start: 2, End: 2}, Insert: "x"}}

	// offset == start returns the pre-edit (line, col) of start.
	got := TranslateWithEdit(li, 2, edits)
	assert.Equal(t, li.LineCol(2), got)
}

func TestTranslateWithEdit_SingleLineInsert(t *testing.T) {
	li := NewLineIndex("abcdef")
	edits := []AtomEdit{{Delete: ByteRange{Start: 3, End: 3}, Insert: "XYZ"}}

	// offset in the middle of the inserted text stays on the same line,
	// column advances by the in-edit column.
	got := TranslateWithEdit(li, 5, edits)
	assert.Equal(t, uint32(0), got.Line)
	assert.Equal(t, li.LineCol(3).Col+2, got.Col)
}

func TestTranslateWithEdit_MultiLineInsert(t *testing.T) {
	li := NewLineIndex("abcdef")
	edits := []AtomEdit{{Delete: ByteRange{Start: 3, End: 3}, Insert: "X\nYZ"}}

	// offset lands after the embedded newline: line advances, column is
	// purely the in-edit column (not added to the pre-edit column).
	got := TranslateWithEdit(li, 6, edits)
	editLine := li.LineCol(3).Line
	assert.Equal(t, editLine+1, got.Line)
	assert.Equal(t, uint32(1), got.Col) // "YZ" offset 1 char in is col 1
}

func TestTranslateWithEdit_DeleteOnly(t *testing.T) {
	li := NewLineIndex("abcdef")
	edits := []AtomEdit{{Delete: ByteRange{Start: 2, End: 4}, Insert: ""}}

	// end == start since insert is empty; offset must equal start exactly.
	got := TranslateWithEdit(li, 2, edits)
	assert.Equal(t, li.LineCol(2), got)
}
