package translate

// ByteRange is a half-open byte range [Start, End) within some text.
type ByteRange struct {
	Start int
	End   int
}

// AtomEdit is a single-range edit: delete the bytes in Delete and replace
// them with Insert. An insert is the degenerate case where Delete is empty;
// a delete is the degenerate case where Insert is empty.
type AtomEdit struct {
	Delete ByteRange
	Insert string
}

// TranslateWithEdit returns the (line, UTF-16 col) that offset (given in
// post-edit coordinates) would map to after edits are applied to the text
// preEdit indexes, without rebuilding the line index over the edited text.
//
// This is an intentional approximation, not a general multi-edit algorithm:
// it only ever looks at the first edit in the list. It is sufficient for
// repositioning a cursor immediately after a just-applied edit. Preserve
// this exact policy; do not attempt to generalize it to the full edit list.
func TranslateWithEdit(preEdit *LineIndex, offset int, edits []AtomEdit) LineCol {
	fallback := preEdit.LineCol(offset)
	if len(edits) == 0 {
		return fallback
	}
	edit := edits[0]

	start := edit.Delete.Start
	end := start + len(edit.Insert)
	if offset < start || offset > end {
		return fallback
	}

	rel := offset - start
	inEditLineCol := NewLineIndex(edit.Insert).LineCol(rel)
	editLineCol := preEdit.LineCol(start)

	if inEditLineCol.Line == 0 {
		return LineCol{
			Line: editLineCol.Line,
			Col:  editLineCol.Col + inEditLineCol.Col,
		}
	}
	return LineCol{
		Line: editLineCol.Line + inEditLineCol.Line,
		Col:  inEditLineCol.Col,
	}
}
