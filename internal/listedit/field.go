package listedit

import (
	"strings"
	"unicode/utf8"
)

// Field is a multi-line text buffer with a cursor, moved by runes.
type Field struct {
	text   string
	cursor int
}

// NewField returns a field holding text with the cursor at the end.
func NewField(text string) Field {
	return Field{text: text, cursor: len(text)}
}

func (f Field) Value() string { return f.text }
func (f Field) Cursor() int   { return f.cursor }

// State returns the field contents for the editor.
func (f Field) State() State {
	return State{Text: f.text, Cursor: f.cursor}
}

// SetState replaces the contents, clamping the cursor.
func (f *Field) SetState(st State) {
	st = clampState(st)
	f.text, f.cursor = st.Text, st.Cursor
}

// InsertString inserts s at the cursor.
func (f *Field) InsertString(s string) {
	f.text = f.text[:f.cursor] + s + f.text[f.cursor:]
	f.cursor += len(s)
}

// Backspace deletes the rune before the cursor.
func (f *Field) Backspace() {
	if f.cursor == 0 {
		return
	}
	_, size := utf8.DecodeLastRuneInString(f.text[:f.cursor])
	f.text = f.text[:f.cursor-size] + f.text[f.cursor:]
	f.cursor -= size
}

// Delete removes the rune under the cursor.
func (f *Field) Delete() {
	if f.cursor >= len(f.text) {
		return
	}
	_, size := utf8.DecodeRuneInString(f.text[f.cursor:])
	f.text = f.text[:f.cursor] + f.text[f.cursor+size:]
}

func (f *Field) Left() {
	if f.cursor == 0 {
		return
	}
	_, size := utf8.DecodeLastRuneInString(f.text[:f.cursor])
	f.cursor -= size
}

func (f *Field) Right() {
	if f.cursor >= len(f.text) {
		return
	}
	_, size := utf8.DecodeRuneInString(f.text[f.cursor:])
	f.cursor += size
}

// Home moves to the start of the cursor line.
func (f *Field) Home() {
	f.cursor = strings.LastIndexByte(f.text[:f.cursor], '\n') + 1
}

// End moves to the end of the cursor line.
func (f *Field) End() {
	if idx := strings.IndexByte(f.text[f.cursor:], '\n'); idx >= 0 {
		f.cursor += idx
		return
	}
	f.cursor = len(f.text)
}

// Up moves to the same rune column on the previous line.
func (f *Field) Up() {
	line, col := f.Position()
	if line == 0 {
		f.cursor = 0
		return
	}
	f.moveTo(line-1, col)
}

// Down moves to the same rune column on the next line.
func (f *Field) Down() {
	line, col := f.Position()
	if line >= strings.Count(f.text, "\n") {
		f.cursor = len(f.text)
		return
	}
	f.moveTo(line+1, col)
}

// Lines splits the text on newlines.
func (f Field) Lines() []string {
	return strings.Split(f.text, "\n")
}

// Position returns the zero-based line and rune column of the cursor.
func (f Field) Position() (line, col int) {
	before := f.text[:f.cursor]
	line = strings.Count(before, "\n")
	start := strings.LastIndexByte(before, '\n') + 1
	return line, utf8.RuneCountInString(before[start:])
}

func (f *Field) moveTo(line, col int) {
	offset := 0
	for idx, text := range f.Lines() {
		if idx < line {
			offset += len(text) + 1
			continue
		}
		for col > 0 && text != "" {
			_, size := utf8.DecodeRuneInString(text)
			text = text[size:]
			offset += size
			col--
		}
		break
	}
	f.cursor = offset
}
