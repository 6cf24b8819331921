// Package listedit implements markdown list editing for multi-line fields:
// Tab and Shift+Tab indent list items, Enter continues or terminates lists.
//
// Cursor positions are byte offsets into the field text.
package listedit

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// IndentWidth is the number of spaces Tab inserts.
const IndentWidth = 4

var (
	listItemPattern = regexp.MustCompile(`^(\s*)([*-]|\d+\.)\s`)
	// A single indentation-aware pattern for numbered and bulleted items.
	continuationPattern = regexp.MustCompile(`^(\s*)(?:(\d+)\.|([-*]))\s(.*)$`)
)

// Key is a key the editor reacts to.
type Key uint8

const (
	KeyOther Key = iota
	KeyTab
	KeyEnter
)

// Event is one key press.
type Event struct {
	Key   Key
	Shift bool
}

// State is the text of a field and its cursor.
type State struct {
	Text   string
	Cursor int
}

// Result is the outcome of a key press. Handled means the event was
// consumed and default field behavior must not run.
type Result struct {
	State
	Handled bool
	Changed bool
}

// Line describes the line holding the cursor.
type Line struct {
	Start        int
	End          int
	BeforeCursor string
	Full         string
	IsListItem   bool
	Indent       string
	Bullet       string
	Number       int
	Numbered     bool
	Content      string
}

// Inspect derives the list state of the cursor line.
func Inspect(st State) Line {
	st = clampState(st)
	before := st.Text[:st.Cursor]
	start := strings.LastIndexByte(before, '\n') + 1
	end := len(st.Text)
	if idx := strings.IndexByte(st.Text[st.Cursor:], '\n'); idx >= 0 {
		end = st.Cursor + idx
	}
	line := Line{
		Start:        start,
		End:          end,
		BeforeCursor: before[start:],
		Full:         st.Text[start:end],
	}
	line.IsListItem = listItemPattern.MatchString(line.BeforeCursor)

	m := continuationPattern.FindStringSubmatch(line.BeforeCursor)
	if m == nil {
		return line
	}
	line.Indent = m[1]
	line.Content = m[4]
	if m[2] != "" {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			line.Indent, line.Content = "", ""
			return line
		}
		line.Numbered = true
		line.Number = n
		return line
	}
	line.Bullet = m[3]
	return line
}

func (l Line) continuable() bool {
	return l.Numbered || l.Bullet != ""
}

// Tab indents a list line by IndentWidth spaces at the line start, or
// inserts IndentWidth spaces at the cursor on any other line.
func Tab(st State) Result {
	st = clampState(st)
	line := Inspect(st)
	indent := strings.Repeat(" ", IndentWidth)
	at := st.Cursor
	if line.IsListItem {
		at = line.Start
	}
	return Result{
		State: State{
			Text:   st.Text[:at] + indent + st.Text[at:],
			Cursor: st.Cursor + IndentWidth,
		},
		Handled: true,
		Changed: true,
	}
}

// ShiftTab outdents a list line by four spaces, or by two when only two are
// present. Other lines are left untouched. The event is always consumed.
func ShiftTab(st State) Result {
	st = clampState(st)
	line := Inspect(st)
	if !line.IsListItem {
		return Result{State: st, Handled: true}
	}
	var n int
	switch {
	case strings.HasPrefix(line.Full, "    "):
		n = 4
	case strings.HasPrefix(line.Full, "  "):
		n = 2
	default:
		return Result{State: st, Handled: true}
	}
	return Result{
		State: State{
			Text:   st.Text[:line.Start] + st.Text[line.Start+n:],
			Cursor: st.Cursor - min(n, st.Cursor-line.Start),
		},
		Handled: true,
		Changed: true,
	}
}

// Enter continues a list item with the next marker, or terminates the list
// when the item is empty. Lines that are not list items are not handled.
func Enter(st State) Result {
	st = clampState(st)
	line := Inspect(st)
	if !line.continuable() {
		return Result{State: st}
	}
	if strings.TrimSpace(line.Content) == "" {
		return Result{
			State: State{
				Text:   st.Text[:line.Start] + st.Text[st.Cursor:],
				Cursor: line.Start,
			},
			Handled: true,
			Changed: true,
		}
	}
	marker := line.Bullet
	if line.Numbered {
		marker = strconv.Itoa(line.Number+1) + "."
	}
	prefix := "\n" + line.Indent + marker + " "
	return Result{
		State: State{
			Text:   st.Text[:st.Cursor] + prefix + st.Text[st.Cursor:],
			Cursor: st.Cursor + len(prefix),
		},
		Handled: true,
		Changed: true,
	}
}

// Binding is notified after every programmatic change of a field.
type Binding func(fieldID, text string, cursor int)

// Editor dispatches key events and notifies the form binding of mutations.
type Editor struct {
	onFieldMutated Binding
}

// New constructs an editor. onFieldMutated may be nil.
func New(onFieldMutated Binding) *Editor {
	return &Editor{onFieldMutated: onFieldMutated}
}

// HandleKey applies ev to the field state.
func (e *Editor) HandleKey(fieldID string, ev Event, st State) Result {
	var res Result
	switch {
	case ev.Key == KeyTab && ev.Shift:
		res = ShiftTab(st)
	case ev.Key == KeyTab:
		res = Tab(st)
	case ev.Key == KeyEnter && !ev.Shift:
		res = Enter(st)
	default:
		return Result{State: clampState(st)}
	}
	if res.Changed {
		e.notify(fieldID, res.State)
	}
	return res
}

// Wrap inserts startTag and endTag around the cursor. With a selection the
// tags surround it and the cursor lands after endTag; without one the cursor
// lands between the tags.
func (e *Editor) Wrap(fieldID string, st State, selEnd int, startTag, endTag string) State {
	st = clampState(st)
	start, end := st.Cursor, clampOffset(st.Text, selEnd)
	if end < start {
		start, end = end, start
	}
	selected := st.Text[start:end]
	next := State{Text: st.Text[:start] + startTag + selected + endTag + st.Text[end:]}
	if selected != "" {
		next.Cursor = start + len(startTag) + len(selected) + len(endTag)
	} else {
		next.Cursor = start + len(startTag)
	}
	e.notify(fieldID, next)
	return next
}

// Insert places text at the cursor and moves the cursor after it.
func (e *Editor) Insert(fieldID string, st State, text string) State {
	st = clampState(st)
	if text == "" {
		return st
	}
	next := State{
		Text:   st.Text[:st.Cursor] + text + st.Text[st.Cursor:],
		Cursor: st.Cursor + len(text),
	}
	e.notify(fieldID, next)
	return next
}

func (e *Editor) notify(fieldID string, st State) {
	if e == nil || e.onFieldMutated == nil {
		return
	}
	e.onFieldMutated(fieldID, st.Text, st.Cursor)
}

func clampState(st State) State {
	st.Cursor = clampOffset(st.Text, st.Cursor)
	return st
}

func clampOffset(text string, offset int) int {
	offset = max(0, min(offset, len(text)))
	for offset > 0 && offset < len(text) && !utf8.RuneStart(text[offset]) {
		offset--
	}
	return offset
}
