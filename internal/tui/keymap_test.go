package tui

import (
	"testing"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

// TestKeyMapHelpGroups verifies every binding is reachable from full help.
func TestKeyMapHelpGroups(t *testing.T) {
	km := newKeyMap()
	seen := map[string]bool{}
	for _, group := range km.FullHelp() {
		for _, b := range group {
			seen[b.Help().Desc] = true
		}
	}
	for _, b := range []key.Binding{
		km.quit, km.reload, km.toggleHelp, km.moveLeft, km.moveRight, km.moveUp, km.moveDown,
		km.addTask, km.taskInfo, km.editTask, km.deleteTask, km.moveTaskLeft, km.moveTaskRight,
		km.shiftTaskUp, km.shiftTaskDown, km.shiftColumnLeft, km.shiftColRight,
		km.copyDescription, km.nextBoard, km.cancelDrag,
	} {
		if !seen[b.Help().Desc] {
			t.Fatalf("binding %q missing from full help", b.Help().Desc)
		}
	}
	if len(km.ShortHelp()) == 0 {
		t.Fatal("expected short help bindings")
	}
}

// TestKeyMapMatches verifies representative key presses.
func TestKeyMapMatches(t *testing.T) {
	km := newKeyMap()
	cases := []struct {
		name    string
		msg     tea.KeyPressMsg
		binding key.Binding
	}{
		{name: "shift task up", msg: keyRune('K'), binding: km.shiftTaskUp},
		{name: "move up", msg: keyRune('k'), binding: km.moveUp},
		{name: "info enter", msg: tea.KeyPressMsg{Code: tea.KeyEnter}, binding: km.taskInfo},
		{name: "cancel drag", msg: tea.KeyPressMsg{Code: tea.KeyEscape}, binding: km.cancelDrag},
		{name: "quit ctrl+c", msg: tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}, binding: km.quit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !key.Matches(tc.msg, tc.binding) {
				t.Fatalf("expected %q to match %v", tc.msg.String(), tc.binding.Keys())
			}
		})
	}
	if key.Matches(keyRune('k'), km.shiftTaskUp) {
		t.Fatal("expected lowercase k not to shift the task")
	}
}

// TestFormKeyMap verifies behavior for the covered scenario.
func TestFormKeyMap(t *testing.T) {
	km := newFormKeyMap()
	if !key.Matches(tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}, km.save) {
		t.Fatal("expected ctrl+s to save")
	}
	if !key.Matches(tea.KeyPressMsg{Code: 'g', Mod: tea.ModCtrl}, km.attachImage) {
		t.Fatal("expected ctrl+g to attach an image")
	}
	if got := len(km.FullHelp()); got != 2 {
		t.Fatalf("expected 2 help groups, got %d", got)
	}
}
