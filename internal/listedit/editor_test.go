package listedit

import "testing"

type mutation struct {
	field  string
	text   string
	cursor int
}

func recordingEditor() (*Editor, *[]mutation) {
	var got []mutation
	return New(func(fieldID, text string, cursor int) {
		got = append(got, mutation{field: fieldID, text: text, cursor: cursor})
	}), &got
}

func TestEnterContinuesAndTerminatesNumberedList(t *testing.T) {
	ed, mutations := recordingEditor()
	st := State{Text: "1. First", Cursor: len("1. First")}

	res := ed.HandleKey("description", Event{Key: KeyEnter}, st)
	if !res.Handled || res.Text != "1. First\n2. " || res.Cursor != len("1. First\n2. ") {
		t.Fatalf("first Enter = %#v", res)
	}

	res = ed.HandleKey("description", Event{Key: KeyEnter}, res.State)
	if !res.Handled || res.Text != "1. First\n" || res.Cursor != len("1. First\n") {
		t.Fatalf("second Enter = %#v", res)
	}
	if len(*mutations) != 2 {
		t.Fatalf("expected a notification per mutation, got %v", *mutations)
	}
	last := (*mutations)[1]
	if last.field != "description" || last.text != res.Text || last.cursor != res.Cursor {
		t.Fatalf("unexpected notification %#v", last)
	}
}

func TestEnterCases(t *testing.T) {
	cases := []struct {
		name        string
		in          State
		wantText    string
		wantCursor  int
		wantHandled bool
	}{
		{
			name:        "bullet keeps indentation and marker",
			in:          State{Text: "  * item", Cursor: 8},
			wantText:    "  * item\n  * ",
			wantCursor:  13,
			wantHandled: true,
		},
		{
			name:        "numbered increments by one regardless of gaps",
			in:          State{Text: "1. a\n7. b", Cursor: 9},
			wantText:    "1. a\n7. b\n8. ",
			wantCursor:  13,
			wantHandled: true,
		},
		{
			name:        "indented numbered item",
			in:          State{Text: "    3. x", Cursor: 8},
			wantText:    "    3. x\n    4. ",
			wantCursor:  16,
			wantHandled: true,
		},
		{
			name:        "empty bullet at field start terminates",
			in:          State{Text: "- ", Cursor: 2},
			wantText:    "",
			wantCursor:  0,
			wantHandled: true,
		},
		{
			name:        "whitespace-only content terminates and keeps tail",
			in:          State{Text: "a\n    -   \nb", Cursor: 10},
			wantText:    "a\n\nb",
			wantCursor:  2,
			wantHandled: true,
		},
		{
			name:        "enter mid item splits at cursor",
			in:          State{Text: "- abcd", Cursor: 4},
			wantText:    "- ab\n- cd",
			wantCursor:  7,
			wantHandled: true,
		},
		{
			name:       "plain line falls through",
			in:         State{Text: "hello", Cursor: 5},
			wantText:   "hello",
			wantCursor: 5,
		},
		{
			name:       "marker without space falls through",
			in:         State{Text: "-item", Cursor: 5},
			wantText:   "-item",
			wantCursor: 5,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Enter(tc.in)
			if res.Handled != tc.wantHandled {
				t.Fatalf("Handled = %v, want %v", res.Handled, tc.wantHandled)
			}
			if res.Text != tc.wantText || res.Cursor != tc.wantCursor {
				t.Fatalf("Enter() = %q@%d, want %q@%d", res.Text, res.Cursor, tc.wantText, tc.wantCursor)
			}
		})
	}
}

func TestShiftEnterIsNotIntercepted(t *testing.T) {
	ed, mutations := recordingEditor()
	res := ed.HandleKey("f", Event{Key: KeyEnter, Shift: true}, State{Text: "- a", Cursor: 3})
	if res.Handled || res.Text != "- a" || len(*mutations) != 0 {
		t.Fatalf("shift+enter = %#v, mutations %v", res, *mutations)
	}
}

func TestTabThenShiftTabRoundTrips(t *testing.T) {
	ed, mutations := recordingEditor()
	orig := State{Text: "- item", Cursor: 3}

	res := ed.HandleKey("f", Event{Key: KeyTab}, orig)
	if res.Text != "    - item" || res.Cursor != 7 || !res.Handled {
		t.Fatalf("Tab = %#v", res)
	}
	res = ed.HandleKey("f", Event{Key: KeyTab, Shift: true}, res.State)
	if res.State != orig {
		t.Fatalf("Shift+Tab = %#v, want %#v", res.State, orig)
	}
	if len(*mutations) != 2 {
		t.Fatalf("expected two notifications, got %d", len(*mutations))
	}
}

func TestTabOnPlainLineInsertsAtCursor(t *testing.T) {
	res := Tab(State{Text: "ab", Cursor: 1})
	if res.Text != "a    b" || res.Cursor != 5 || !res.Handled {
		t.Fatalf("Tab() = %#v", res)
	}
}

func TestTabIndentsSecondLine(t *testing.T) {
	res := Tab(State{Text: "x\n1. one", Cursor: 7})
	if res.Text != "x\n    1. one" || res.Cursor != 11 {
		t.Fatalf("Tab() = %#v", res)
	}
}

func TestShiftTabCases(t *testing.T) {
	cases := []struct {
		name       string
		in         State
		wantText   string
		wantCursor int
		changed    bool
	}{
		{name: "two spaces", in: State{Text: "  - a", Cursor: 5}, wantText: "- a", wantCursor: 3, changed: true},
		{name: "six spaces removes four", in: State{Text: "      - a", Cursor: 9}, wantText: "  - a", wantCursor: 5, changed: true},
		{name: "second line cursor moves back", in: State{Text: "q\n    - a", Cursor: 8}, wantText: "q\n- a", wantCursor: 4, changed: true},
		{name: "unindented list is a no-op", in: State{Text: "- a", Cursor: 3}, wantText: "- a", wantCursor: 3},
		{name: "plain line is a no-op", in: State{Text: "    text", Cursor: 8}, wantText: "    text", wantCursor: 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ShiftTab(tc.in)
			if !res.Handled {
				t.Fatal("Shift+Tab must always be consumed")
			}
			if res.Changed != tc.changed || res.Text != tc.wantText || res.Cursor != tc.wantCursor {
				t.Fatalf("ShiftTab() = %#v, want %q@%d changed=%v", res, tc.wantText, tc.wantCursor, tc.changed)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	line := Inspect(State{Text: "a\n  12. twelve\nz", Cursor: 10})
	if line.Start != 2 || line.End != 14 {
		t.Fatalf("unexpected bounds %d..%d", line.Start, line.End)
	}
	if !line.IsListItem || !line.Numbered || line.Number != 12 || line.Indent != "  " {
		t.Fatalf("unexpected line %#v", line)
	}
	if line.Content != "tw" || line.Full != "  12. twelve" {
		t.Fatalf("unexpected content %#v", line)
	}
	if got := Inspect(State{Text: "abc", Cursor: 99}); got.BeforeCursor != "abc" {
		t.Fatalf("cursor must clamp, got %#v", got)
	}
}

func TestWrapAndInsert(t *testing.T) {
	ed, mutations := recordingEditor()
	st := ed.Wrap("f", State{Text: "ab", Cursor: 1}, 1, "**", "**")
	if st.Text != "a****b" || st.Cursor != 3 {
		t.Fatalf("Wrap() without selection = %#v", st)
	}
	st = ed.Wrap("f", State{Text: "hello world", Cursor: 6}, 11, "_", "_")
	if st.Text != "hello _world_" || st.Cursor != 13 {
		t.Fatalf("Wrap() with selection = %#v", st)
	}
	st = ed.Insert("f", State{Text: "ab", Cursor: 1}, "XY")
	if st.Text != "aXYb" || st.Cursor != 3 {
		t.Fatalf("Insert() = %#v", st)
	}
	if len(*mutations) != 3 {
		t.Fatalf("expected three notifications, got %d", len(*mutations))
	}
}

func TestNilBindingIsAllowed(t *testing.T) {
	res := New(nil).HandleKey("f", Event{Key: KeyTab}, State{Text: "", Cursor: 0})
	if res.Text != "    " {
		t.Fatalf("HandleKey() = %#v", res)
	}
}
