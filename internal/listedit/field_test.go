package listedit

import "testing"

func TestFieldEditing(t *testing.T) {
	f := NewField("ab")
	if f.Cursor() != 2 {
		t.Fatalf("NewField cursor = %d", f.Cursor())
	}
	f.InsertString("č")
	f.Left()
	f.Backspace()
	if f.Value() != "ač" || f.Cursor() != 1 {
		t.Fatalf("after edits = %q@%d", f.Value(), f.Cursor())
	}
	f.Delete()
	if f.Value() != "a" {
		t.Fatalf("Delete() = %q", f.Value())
	}
	f.Right()
	f.Right()
	if f.Cursor() != 1 {
		t.Fatalf("Right() must stop at end, got %d", f.Cursor())
	}
}

func TestFieldLineNavigation(t *testing.T) {
	f := NewField("first\nab\nthird")
	f.Up()
	if line, col := f.Position(); line != 1 || col != 2 {
		t.Fatalf("Up() position = %d,%d", line, col)
	}
	f.Up()
	if line, col := f.Position(); line != 0 || col != 2 {
		t.Fatalf("Up() position = %d,%d", line, col)
	}
	f.End()
	if f.Cursor() != 5 {
		t.Fatalf("End() cursor = %d", f.Cursor())
	}
	f.Down()
	if line, col := f.Position(); line != 1 || col != 2 {
		t.Fatalf("Down() must clamp to short line, got %d,%d", line, col)
	}
	f.Home()
	if f.Cursor() != 6 {
		t.Fatalf("Home() cursor = %d", f.Cursor())
	}
	f.Down()
	f.Down()
	if f.Cursor() != len(f.Value()) {
		t.Fatalf("Down() on last line must move to end, got %d", f.Cursor())
	}
	if got := len(f.Lines()); got != 3 {
		t.Fatalf("Lines() = %d", got)
	}
}

func TestFieldAppliesEditorResults(t *testing.T) {
	f := NewField("- a")
	res := Enter(f.State())
	f.SetState(res.State)
	if f.Value() != "- a\n- " || f.Cursor() != 6 {
		t.Fatalf("SetState() = %q@%d", f.Value(), f.Cursor())
	}
	f.SetState(State{Text: "xy", Cursor: 50})
	if f.Cursor() != 2 {
		t.Fatalf("SetState must clamp, got %d", f.Cursor())
	}
}
