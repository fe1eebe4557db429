package editor

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field is the single-line text buffer behind the inline caption editor.
// Offsets are byte positions kept on rune boundaries.
type Field struct {
	text      []byte
	CaretByte int

	selectionAnchor    int
	selectionAnchored  bool
	selectionIsVisible bool
}

// NewField opens a field on text with everything selected, so typing
// replaces the caption and arrow keys keep it.
func NewField(text string) *Field {
	f := &Field{}
	f.SetText(text)
	f.SelectAll()
	return f
}

func (f *Field) Text() string {
	return string(f.text)
}

func (f *Field) SetText(text string) {
	f.text = []byte(flattenLine(text))
	f.CaretByte = len(f.text)
	f.ClearSelection()
}

func (f *Field) Normalize() {
	f.CaretByte = clampToRuneBoundary(f.text, f.CaretByte)
	if f.selectionAnchored {
		f.selectionAnchor = clampToRuneBoundary(f.text, f.selectionAnchor)
		f.selectionIsVisible = f.selectionAnchor != f.CaretByte
	}
}

func (f *Field) SetCaret(bytePos int) {
	f.CaretByte = clampToRuneBoundary(f.text, bytePos)
	if f.selectionAnchored {
		f.selectionIsVisible = f.selectionAnchor != f.CaretByte
	}
}

func (f *Field) MoveCaretLeft() {
	f.Normalize()
	f.CaretByte = previousRuneBoundary(f.text, f.CaretByte)
}

func (f *Field) MoveCaretRight() {
	f.Normalize()
	f.CaretByte = nextRuneBoundary(f.text, f.CaretByte)
}

func (f *Field) MoveCaretWordLeft() {
	f.Normalize()
	pos := f.CaretByte
	for pos > 0 {
		r, size := utf8.DecodeLastRune(f.text[:pos])
		if size <= 0 {
			size = 1
		}
		if isWordRune(r) {
			break
		}
		pos -= size
	}
	for pos > 0 {
		r, size := utf8.DecodeLastRune(f.text[:pos])
		if size <= 0 {
			size = 1
		}
		if !isWordRune(r) {
			break
		}
		pos -= size
	}
	f.CaretByte = clampToRuneBoundary(f.text, pos)
}

func (f *Field) MoveCaretWordRight() {
	f.Normalize()
	pos := f.CaretByte
	for pos < len(f.text) {
		r, size := utf8.DecodeRune(f.text[pos:])
		if size <= 0 {
			size = 1
		}
		if isWordRune(r) {
			break
		}
		pos += size
	}
	for pos < len(f.text) {
		r, size := utf8.DecodeRune(f.text[pos:])
		if size <= 0 {
			size = 1
		}
		if !isWordRune(r) {
			break
		}
		pos += size
	}
	f.CaretByte = clampToRuneBoundary(f.text, pos)
}

func (f *Field) MoveCaretToLineStart() {
	f.CaretByte = 0
}

func (f *Field) MoveCaretToLineEnd() {
	f.CaretByte = len(f.text)
}

// InsertTextAtCaret replaces any selection with input. Line breaks become
// spaces; captions are a single line.
func (f *Field) InsertTextAtCaret(input string) error {
	if input == "" {
		return nil
	}
	if !utf8.ValidString(input) {
		return fmt.Errorf("input must be valid UTF-8")
	}
	f.Normalize()
	if f.HasSelection() {
		f.DeleteSelection()
	}
	ins := []byte(flattenLine(input))
	pos := f.CaretByte
	f.replaceRange(pos, pos, ins)
	f.CaretByte = pos + len(ins)
	f.ClearSelection()
	return nil
}

func (f *Field) Backspace() {
	f.Normalize()
	if f.DeleteSelection() {
		return
	}
	if f.CaretByte == 0 {
		return
	}
	start := previousRuneBoundary(f.text, f.CaretByte)
	f.replaceRange(start, f.CaretByte, nil)
	f.CaretByte = start
}

func (f *Field) DeleteForward() {
	f.Normalize()
	if f.DeleteSelection() {
		return
	}
	if f.CaretByte >= len(f.text) {
		return
	}
	end := nextRuneBoundary(f.text, f.CaretByte)
	f.replaceRange(f.CaretByte, end, nil)
}

func (f *Field) DeleteWordBackward() {
	f.Normalize()
	if f.DeleteSelection() {
		return
	}
	start := previousWordBoundary(f.text, f.CaretByte)
	f.replaceRange(start, f.CaretByte, nil)
	f.CaretByte = start
}

func (f *Field) DeleteWordForward() {
	f.Normalize()
	if f.DeleteSelection() {
		return
	}
	end := nextWordBoundary(f.text, f.CaretByte)
	f.replaceRange(f.CaretByte, end, nil)
}

func (f *Field) HasSelection() bool {
	f.Normalize()
	return f.selectionIsVisible
}

func (f *Field) EnsureSelectionAnchor() {
	f.Normalize()
	if f.selectionAnchored {
		return
	}
	f.selectionAnchor = f.CaretByte
	f.selectionAnchored = true
	f.selectionIsVisible = false
}

func (f *Field) UpdateSelectionFromCaret() {
	f.Normalize()
	if !f.selectionAnchored {
		f.selectionAnchor = f.CaretByte
		f.selectionAnchored = true
	}
	f.selectionIsVisible = f.selectionAnchor != f.CaretByte
}

func (f *Field) ClearSelection() {
	f.selectionAnchored = false
	f.selectionIsVisible = false
}

func (f *Field) SelectionRange() (int, int, bool) {
	f.Normalize()
	if !f.selectionIsVisible {
		return 0, 0, false
	}
	a, b := f.selectionAnchor, f.CaretByte
	if a <= b {
		return a, b, true
	}
	return b, a, true
}

func (f *Field) SelectAll() {
	f.selectionAnchor = 0
	f.selectionAnchored = true
	f.CaretByte = len(f.text)
	f.selectionIsVisible = f.selectionAnchor != f.CaretByte
}

func (f *Field) SelectedText() string {
	start, end, ok := f.SelectionRange()
	if !ok {
		return ""
	}
	return string(f.text[start:end])
}

func (f *Field) DeleteSelection() bool {
	start, end, ok := f.SelectionRange()
	if !ok {
		return false
	}
	f.replaceRange(start, end, nil)
	f.CaretByte = start
	f.ClearSelection()
	return true
}

func (f *Field) replaceRange(start, end int, insert []byte) {
	out := make([]byte, 0, len(f.text)-(end-start)+len(insert))
	out = append(out, f.text[:start]...)
	out = append(out, insert...)
	out = append(out, f.text[end:]...)
	f.text = out
}

func flattenLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		return r
	}, s)
}

func clampToRuneBoundary(text []byte, pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(text) {
		pos = len(text)
	}
	if pos == len(text) || utf8.Valid(text[:pos]) {
		return pos
	}
	for pos > 0 && !utf8.Valid(text[:pos]) {
		pos--
	}
	return pos
}

func previousRuneBoundary(text []byte, pos int) int {
	pos = clampToRuneBoundary(text, pos)
	if pos == 0 {
		return 0
	}
	_, size := utf8.DecodeLastRune(text[:pos])
	if size <= 0 {
		size = 1
	}
	return pos - size
}

func nextRuneBoundary(text []byte, pos int) int {
	pos = clampToRuneBoundary(text, pos)
	if pos >= len(text) {
		return len(text)
	}
	_, size := utf8.DecodeRune(text[pos:])
	if size <= 0 {
		size = 1
	}
	return pos + size
}

func previousWordBoundary(text []byte, pos int) int {
	pos = clampToRuneBoundary(text, pos)
	for pos > 0 {
		r, size := utf8.DecodeLastRune(text[:pos])
		if size <= 0 {
			size = 1
		}
		if !unicode.IsSpace(r) {
			break
		}
		pos -= size
	}
	for pos > 0 {
		r, size := utf8.DecodeLastRune(text[:pos])
		if size <= 0 {
			size = 1
		}
		if unicode.IsSpace(r) {
			break
		}
		pos -= size
	}
	return clampToRuneBoundary(text, pos)
}

func nextWordBoundary(text []byte, pos int) int {
	pos = clampToRuneBoundary(text, pos)
	for pos < len(text) {
		r, size := utf8.DecodeRune(text[pos:])
		if size <= 0 {
			size = 1
		}
		if !unicode.IsSpace(r) {
			break
		}
		pos += size
	}
	for pos < len(text) {
		r, size := utf8.DecodeRune(text[pos:])
		if size <= 0 {
			size = 1
		}
		if unicode.IsSpace(r) {
			break
		}
		pos += size
	}
	return clampToRuneBoundary(text, pos)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
