package tui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/cereboard/internal/domain"
	"github.com/evanschultz/cereboard/internal/listedit"
)

// descriptionFieldID names the description field for editor notifications.
const descriptionFieldID = "description"

// formField identifies the focused task form field.
type formField int

const (
	fieldTitle formField = iota
	fieldDue
	fieldPriority
	fieldDescription
	formFieldCount
)

// taskForm holds task form state. It is shared by pointer so the list
// editor binding can write back into it.
type taskForm struct {
	taskID   int64
	columnID int64

	title       textinput.Model
	due         textinput.Model
	priority    domain.Priority
	description listedit.Field
	focus       formField

	editor    *listedit.Editor
	mutations int

	imagePrompt   bool
	imagePath     textinput.Model
	imagePending  bool
	imageAttached int
}

// newTaskForm builds a form for task, or an empty form for columnID.
func newTaskForm(task *domain.Task, columnID int64, priority domain.Priority) *taskForm {
	f := &taskForm{
		columnID: columnID,
		title:    newModalInput("title: ", "task title", "", 200),
		due:      newModalInput("due: ", "YYYY-MM-DD (empty clears)", "", 32),
		priority: priority,
		imagePath: newModalInput(
			"image: ", "path to png, jpeg, gif or webp", "", 512,
		),
	}
	if task != nil {
		f.taskID = task.ID
		f.columnID = task.ColumnID
		f.title.SetValue(task.Title)
		f.due.SetValue(formatDueValue(task.DueDate))
		f.priority = task.Priority
		f.description = listedit.NewField(task.Description)
	}
	if f.priority == "" {
		f.priority = domain.PriorityLow
	}
	f.editor = listedit.New(func(fieldID, text string, cursor int) {
		if fieldID != descriptionFieldID {
			return
		}
		f.description.SetState(listedit.State{Text: text, Cursor: cursor})
		f.mutations++
	})
	f.setFocus(fieldTitle)
	return f
}

// newModalInput constructs one single-line text input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.SetValue(value)
	return in
}

// editing reports whether the form edits an existing task.
func (f *taskForm) editing() bool {
	return f.taskID > 0
}

// setFocus moves focus to field.
func (f *taskForm) setFocus(field formField) {
	f.focus = (field + formFieldCount) % formFieldCount
	f.title.Blur()
	f.due.Blur()
	switch f.focus {
	case fieldTitle:
		_ = f.title.Focus()
	case fieldDue:
		_ = f.due.Focus()
	}
}

// openImagePrompt shows the image path input.
func (f *taskForm) openImagePrompt() {
	f.imagePrompt = true
	f.imagePath.SetValue("")
	_ = f.imagePath.Focus()
}

// closeImagePrompt hides the image path input.
func (f *taskForm) closeImagePrompt() {
	f.imagePrompt = false
	f.imagePath.Blur()
}

// insertImage places an image placeholder at the description cursor.
func (f *taskForm) insertImage(placeholder string) {
	f.editor.Insert(descriptionFieldID, f.description.State(), placeholder)
	f.imageAttached++
}

// wrapDescription surrounds the description cursor with tags.
func (f *taskForm) wrapDescription(startTag, endTag string) {
	st := f.description.State()
	f.editor.Wrap(descriptionFieldID, st, st.Cursor, startTag, endTag)
}

// handleDescriptionKey routes one key press to the description field. It
// reports whether the key was consumed.
func (f *taskForm) handleDescriptionKey(msg tea.KeyPressMsg) bool {
	switch msg.String() {
	case "tab":
		f.editor.HandleKey(descriptionFieldID, listedit.Event{Key: listedit.KeyTab}, f.description.State())
	case "shift+tab":
		f.editor.HandleKey(descriptionFieldID, listedit.Event{Key: listedit.KeyTab, Shift: true}, f.description.State())
	case "enter":
		res := f.editor.HandleKey(descriptionFieldID, listedit.Event{Key: listedit.KeyEnter}, f.description.State())
		if !res.Handled {
			f.description.InsertString("\n")
		}
	case "shift+enter":
		f.description.InsertString("\n")
	case "backspace":
		f.description.Backspace()
	case "delete":
		f.description.Delete()
	case "left":
		f.description.Left()
	case "right":
		f.description.Right()
	case "up":
		f.description.Up()
	case "down":
		f.description.Down()
	case "home", "ctrl+a":
		f.description.Home()
	case "end", "ctrl+e":
		f.description.End()
	default:
		if msg.Text == "" || msg.Mod&(tea.ModCtrl|tea.ModAlt) != 0 {
			return false
		}
		f.description.InsertString(msg.Text)
	}
	return true
}

// values validates the form and returns its parsed values.
func (f *taskForm) values() (title string, due *time.Time, err error) {
	title = strings.TrimSpace(f.title.Value())
	if title == "" {
		return "", nil, fmt.Errorf("title is required")
	}
	due, err = parseDueInput(f.due.Value())
	if err != nil {
		return "", nil, err
	}
	return title, due, nil
}

// descriptionView renders the description with a block cursor.
func (f *taskForm) descriptionView(focused bool) []string {
	text := f.description.Value()
	if focused {
		cursor := f.description.Cursor()
		text = text[:cursor] + "▏" + text[cursor:]
	}
	if text == "" {
		return []string{""}
	}
	return strings.Split(text, "\n")
}

// parseDueInput parses a due date as YYYY-MM-DD or RFC3339. Empty clears it.
func parseDueInput(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse("2006-01-02", raw); err == nil {
		return &ts, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("due date must be YYYY-MM-DD or RFC3339")
	}
	ts = ts.UTC()
	return &ts, nil
}

// formatDueValue formats a due date for the form input.
func formatDueValue(due *time.Time) string {
	if due == nil {
		return ""
	}
	return due.UTC().Format("2006-01-02")
}
