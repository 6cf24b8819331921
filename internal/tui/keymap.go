package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit            key.Binding
	reload          key.Binding
	toggleHelp      key.Binding
	moveLeft        key.Binding
	moveRight       key.Binding
	moveUp          key.Binding
	moveDown        key.Binding
	addTask         key.Binding
	taskInfo        key.Binding
	editTask        key.Binding
	deleteTask      key.Binding
	moveTaskLeft    key.Binding
	moveTaskRight   key.Binding
	shiftTaskUp     key.Binding
	shiftTaskDown   key.Binding
	shiftColumnLeft key.Binding
	shiftColRight   key.Binding
	copyDescription key.Binding
	nextBoard       key.Binding
	cancelDrag      key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:            key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:          key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:        key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:       key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		addTask:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		taskInfo:        key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i/enter", "task info")),
		editTask:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		deleteTask:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		moveTaskLeft:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move task left")),
		moveTaskRight:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move task right")),
		shiftTaskUp:     key.NewBinding(key.WithKeys("K", "shift+k"), key.WithHelp("K", "shift task up")),
		shiftTaskDown:   key.NewBinding(key.WithKeys("J", "shift+j"), key.WithHelp("J", "shift task down")),
		shiftColumnLeft: key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "move column left")),
		shiftColRight:   key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "move column right")),
		copyDescription: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy description")),
		nextBoard:       key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "next board")),
		cancelDrag:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addTask, k.taskInfo, k.editTask, k.moveTaskLeft, k.moveTaskRight, k.nextBoard, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addTask, k.taskInfo, k.editTask, k.deleteTask, k.copyDescription, k.nextBoard, k.toggleHelp, k.reload, k.quit},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.moveTaskLeft, k.moveTaskRight, k.shiftTaskUp, k.shiftTaskDown, k.shiftColumnLeft, k.shiftColRight, k.cancelDrag},
	}
}

// formKeyMap holds the task form bindings.
type formKeyMap struct {
	save        key.Binding
	cancel      key.Binding
	nextField   key.Binding
	prevField   key.Binding
	bold        key.Binding
	italic      key.Binding
	code        key.Binding
	attachImage key.Binding
}

// newFormKeyMap constructs form key map.
func newFormKeyMap() formKeyMap {
	return formKeyMap{
		save:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		nextField:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "next field")),
		prevField:   key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "previous field")),
		bold:        key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "bold")),
		italic:      key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "italic")),
		code:        key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "code")),
		attachImage: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "attach image")),
	}
}

// ShortHelp handles short help.
func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.save, k.cancel, k.nextField, k.bold, k.italic, k.code, k.attachImage}
}

// FullHelp handles full help.
func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.prevField}}
}
