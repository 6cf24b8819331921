package tui

import (
	"context"
	"fmt"
	"image/color"
	"slices"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/evanschultz/cereboard/internal/app"
	"github.com/evanschultz/cereboard/internal/domain"
	"github.com/evanschultz/cereboard/internal/dragdrop"
	"github.com/evanschultz/cereboard/internal/images"
)

// Service represents service data used by this package.
type Service interface {
	dragdrop.BoardData
	EnsureDefaultBoard(context.Context) (domain.Board, error)
	ListBoards(context.Context) ([]domain.Board, error)
	GetBoard(context.Context, int64) (domain.Board, error)
	CreateTask(context.Context, app.CreateTaskInput) (domain.Task, error)
	UpdateTask(context.Context, app.UpdateTaskInput) (domain.Task, error)
	DeleteTask(context.Context, int64) error
	ShiftTask(context.Context, int64, int) error
	MoveTaskToAdjacentColumn(context.Context, int64, int) (int64, error)
	ShiftColumn(context.Context, int64, int) error
	AttachImage(context.Context, []byte) (images.Image, error)
	ResolveImageTokens(context.Context, string, func(images.Image) string) (string, error)
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeTaskForm
	modeTaskInfo
	modeConfirmDelete
)

// Model is the bubbletea board model.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	err    error

	status string

	help     help.Model
	keys     keyMap
	formKeys formKeyMap

	logger dragdrop.Logger
	drag   *dragdrop.Controller
	armed  bool
	armX   int
	armY   int

	boards         []domain.Board
	boardID        int64
	board          domain.Board
	selectedColumn int
	selectedTask   int
	boxes          []columnBox

	pendingFocusTaskID   int64
	pendingFocusColumnID int64

	mode         inputMode
	form         *taskForm
	infoTaskID   int64
	infoText     string
	deleteTaskID int64

	markdown        *markdownRenderer
	showPreview     bool
	defaultPriority domain.Priority
	writeClipboard  ClipboardFunc
	readFile        ReadFileFunc
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	boards []domain.Board
	board  domain.Board
	err    error
}

// actionMsg carries message data through update handling.
type actionMsg struct {
	err           error
	status        string
	reload        bool
	focusTaskID   int64
	focusColumnID int64
}

// infoLoadedMsg carries a task description with image references resolved.
type infoLoadedMsg struct {
	taskID int64
	text   string
	err    error
}

// imageAttachedMsg carries the result of an asynchronous image attach.
type imageAttachedMsg struct {
	form  *taskForm
	image images.Image
	err   error
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:             svc,
		status:          "loading...",
		help:            h,
		keys:            newKeyMap(),
		formKeys:        newFormKeyMap(),
		markdown:        &markdownRenderer{style: "dark"},
		showPreview:     true,
		defaultPriority: domain.PriorityLow,
		writeClipboard:  defaultClipboard,
		readFile:        defaultReadFile,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	var dragOpts []dragdrop.Option
	if m.logger != nil {
		dragOpts = append(dragOpts, dragdrop.WithLogger(m.logger))
	}
	m.drag = dragdrop.NewController(svc, dragOpts...)
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update applies msg and re-runs the layout pass so registered drop zones
// always match the rendered board.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.relayout()
	return next, cmd
}

// update routes one message.
func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.boards = msg.boards
		m.board = msg.board
		m.boardID = msg.board.ID
		if m.pendingFocusTaskID > 0 {
			m.focusTask(m.pendingFocusTaskID)
			m.pendingFocusTaskID = 0
		}
		if m.pendingFocusColumnID > 0 {
			m.focusColumn(m.pendingFocusColumnID)
			m.pendingFocusColumnID = 0
		}
		m.clampSelections()
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.focusTaskID > 0 {
			m.pendingFocusTaskID = msg.focusTaskID
		}
		if msg.focusColumnID > 0 {
			m.pendingFocusColumnID = msg.focusColumnID
		}
		if msg.reload {
			return m, m.loadData
		}
		return m, nil

	case infoLoadedMsg:
		if m.mode != modeTaskInfo || msg.taskID != m.infoTaskID {
			return m, nil
		}
		if msg.err != nil {
			m.status = "resolve images failed: " + msg.err.Error()
			return m, nil
		}
		m.infoText = msg.text
		return m, nil

	case imageAttachedMsg:
		if msg.form != nil {
			msg.form.imagePending = false
		}
		if msg.err != nil {
			m.status = "attach image failed: " + msg.err.Error()
			return m, nil
		}
		if m.form == nil || m.form != msg.form {
			m.status = "image stored; form already closed"
			return m, nil
		}
		m.form.insertImage(images.Placeholder(msg.image.ID))
		m.status = fmt.Sprintf("image attached (%dx%d)", msg.image.Width, msg.image.Height)
		return m, nil

	case tea.KeyPressMsg:
		switch m.mode {
		case modeTaskForm:
			return m.handleFormKey(msg)
		case modeTaskInfo:
			return m.handleInfoKey(msg)
		case modeConfirmDelete:
			return m.handleConfirmKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	default:
		return m, nil
	}
}

// relayout recomputes board geometry and syncs it into the drop-zone registry.
func (m *Model) relayout() {
	m.boxes = layoutBoard(m.board.Columns, m.width, m.height, m.selectedColumn, m.selectedTask)
	syncRegistry(m.drag.Zones(), m.boxes)
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	ctx := context.Background()
	boards, err := m.svc.ListBoards(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	if len(boards) == 0 {
		board, err := m.svc.EnsureDefaultBoard(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		boards = []domain.Board{board}
	}
	idx := slices.IndexFunc(boards, func(b domain.Board) bool { return b.ID == m.boardID })
	if idx < 0 {
		idx = 0
	}
	board, err := m.svc.GetBoard(ctx, boards[idx].ID)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{boards: boards, board: board}
}

// handleNormalModeKey handles board navigation and task commands.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (Model, tea.Cmd) {
	if m.help.ShowAll {
		if key.Matches(msg, m.keys.toggleHelp) || msg.String() == "esc" {
			m.help.ShowAll = false
		}
		return m, nil
	}
	if m.drag.Session().IsActive() || m.armed {
		switch {
		case key.Matches(msg, m.keys.cancelDrag):
			m.drag.End()
			m.armed = false
			m.status = "drag cancelled"
		case key.Matches(msg, m.keys.quit):
			m.drag.End()
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = true
		return m, nil
	}
	if m.err != nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.moveLeft):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			m.selectedTask = 0
		}
	case key.Matches(msg, m.keys.moveRight):
		if m.selectedColumn < len(m.board.Columns)-1 {
			m.selectedColumn++
			m.selectedTask = 0
		}
	case key.Matches(msg, m.keys.moveUp):
		if m.selectedTask > 0 {
			m.selectedTask--
		}
	case key.Matches(msg, m.keys.moveDown):
		if m.selectedTask < len(m.currentColumnTasks())-1 {
			m.selectedTask++
		}
	case key.Matches(msg, m.keys.nextBoard):
		if len(m.boards) < 2 {
			m.status = "only one board"
			return m, nil
		}
		idx := slices.IndexFunc(m.boards, func(b domain.Board) bool { return b.ID == m.boardID })
		m.boardID = m.boards[(idx+1)%len(m.boards)].ID
		m.selectedColumn, m.selectedTask = 0, 0
		return m, m.loadData
	case key.Matches(msg, m.keys.addTask):
		column, ok := m.currentColumn()
		if !ok {
			m.status = "no column selected"
			return m, nil
		}
		m.form = newTaskForm(nil, column.ID, m.defaultPriority)
		m.mode = modeTaskForm
		m.status = "new task in " + column.Name
	case key.Matches(msg, m.keys.editTask):
		task, ok := m.currentTask()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.form = newTaskForm(&task, task.ColumnID, m.defaultPriority)
		m.mode = modeTaskForm
		m.status = "editing " + task.Title
	case key.Matches(msg, m.keys.taskInfo):
		task, ok := m.currentTask()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.mode = modeTaskInfo
		m.infoTaskID = task.ID
		m.infoText = task.Description
		return m, m.loadTaskInfo(task)
	case key.Matches(msg, m.keys.deleteTask):
		task, ok := m.currentTask()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.deleteTaskID = task.ID
	case key.Matches(msg, m.keys.moveTaskLeft):
		return m.moveSelectedTask(-1)
	case key.Matches(msg, m.keys.moveTaskRight):
		return m.moveSelectedTask(1)
	case key.Matches(msg, m.keys.shiftTaskUp):
		return m.shiftSelectedTask(-1)
	case key.Matches(msg, m.keys.shiftTaskDown):
		return m.shiftSelectedTask(1)
	case key.Matches(msg, m.keys.shiftColumnLeft):
		return m.shiftSelectedColumn(-1)
	case key.Matches(msg, m.keys.shiftColRight):
		return m.shiftSelectedColumn(1)
	case key.Matches(msg, m.keys.copyDescription):
		task, ok := m.currentTask()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.copyDescription(task)
	}
	return m, nil
}

// handleFormKey handles key presses while the task form is open.
func (m Model) handleFormKey(msg tea.KeyPressMsg) (Model, tea.Cmd) {
	f := m.form
	if f == nil {
		m.mode = modeNone
		return m, nil
	}
	if f.imagePrompt {
		switch msg.String() {
		case "esc":
			f.closeImagePrompt()
			return m, nil
		case "enter":
			path := strings.TrimSpace(f.imagePath.Value())
			f.closeImagePrompt()
			if path == "" {
				return m, nil
			}
			f.imagePending = true
			m.status = "optimizing image..."
			return m, m.attachImage(f, path)
		}
		var cmd tea.Cmd
		f.imagePath, cmd = f.imagePath.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.formKeys.cancel):
		m.mode = modeNone
		m.form = nil
		m.status = "cancelled"
		return m, nil
	case key.Matches(msg, m.formKeys.save):
		return m.submitForm()
	case key.Matches(msg, m.formKeys.nextField):
		f.setFocus(f.focus + 1)
		return m, nil
	case key.Matches(msg, m.formKeys.prevField):
		f.setFocus(f.focus - 1)
		return m, nil
	case key.Matches(msg, m.formKeys.attachImage):
		f.openImagePrompt()
		return m, nil
	}

	switch f.focus {
	case fieldDescription:
		switch {
		case key.Matches(msg, m.formKeys.bold):
			f.wrapDescription("**", "**")
		case key.Matches(msg, m.formKeys.italic):
			f.wrapDescription("_", "_")
		case key.Matches(msg, m.formKeys.code):
			f.wrapDescription("`", "`")
		default:
			f.handleDescriptionKey(msg)
		}
		return m, nil
	case fieldPriority:
		switch msg.String() {
		case "left", "h":
			f.priority = previousPriority(f.priority)
		case "right", "l", "space", " ":
			f.priority = f.priority.Next()
		case "tab", "enter":
			f.setFocus(f.focus + 1)
		case "shift+tab":
			f.setFocus(f.focus - 1)
		}
		return m, nil
	}

	switch msg.String() {
	case "tab", "enter":
		f.setFocus(f.focus + 1)
		return m, nil
	case "shift+tab":
		f.setFocus(f.focus - 1)
		return m, nil
	}
	var cmd tea.Cmd
	if f.focus == fieldTitle {
		f.title, cmd = f.title.Update(msg)
	} else {
		f.due, cmd = f.due.Update(msg)
	}
	return m, cmd
}

// submitForm validates the form and saves the task.
func (m Model) submitForm() (Model, tea.Cmd) {
	f := m.form
	if f.imagePending {
		m.status = "image still processing"
		return m, nil
	}
	title, due, err := f.values()
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	description := f.description.Value()
	priority := f.priority
	m.mode = modeNone
	m.form = nil
	svc := m.svc

	if f.editing() {
		taskID := f.taskID
		m.status = "saving..."
		return m, func() tea.Msg {
			task, err := svc.UpdateTask(context.Background(), app.UpdateTaskInput{
				TaskID:      taskID,
				Title:       title,
				Description: description,
				Priority:    priority,
				DueDate:     due,
			})
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{status: "task updated", reload: true, focusTaskID: task.ID}
		}
	}
	columnID := f.columnID
	m.status = "creating..."
	return m, func() tea.Msg {
		task, err := svc.CreateTask(context.Background(), app.CreateTaskInput{
			ColumnID:    columnID,
			Title:       title,
			Description: description,
			Priority:    priority,
			DueDate:     due,
		})
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "task created", reload: true, focusTaskID: task.ID}
	}
}

// handleInfoKey handles key presses in the task info view.
func (m Model) handleInfoKey(msg tea.KeyPressMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.editTask):
		task, ok := m.taskByID(m.infoTaskID)
		m.mode = modeNone
		if !ok {
			return m, nil
		}
		m.form = newTaskForm(&task, task.ColumnID, m.defaultPriority)
		m.mode = modeTaskForm
		return m, nil
	case key.Matches(msg, m.keys.copyDescription):
		if task, ok := m.taskByID(m.infoTaskID); ok {
			return m, m.copyDescription(task)
		}
		return m, nil
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.taskInfo), msg.String() == "esc":
		m.mode = modeNone
		m.infoTaskID = 0
		m.infoText = ""
	}
	return m, nil
}

// handleConfirmKey handles the delete confirmation prompt.
func (m Model) handleConfirmKey(msg tea.KeyPressMsg) (Model, tea.Cmd) {
	taskID := m.deleteTaskID
	m.mode = modeNone
	m.deleteTaskID = 0
	switch msg.String() {
	case "y", "Y", "enter":
		svc := m.svc
		return m, func() tea.Msg {
			if err := svc.DeleteTask(context.Background(), taskID); err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{status: "task deleted", reload: true}
		}
	}
	m.status = "delete cancelled"
	return m, nil
}

// moveSelectedTask moves the selected task to the adjacent column.
func (m Model) moveSelectedTask(delta int) (Model, tea.Cmd) {
	task, ok := m.currentTask()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	svc := m.svc
	return m, func() tea.Msg {
		target, err := svc.MoveTaskToAdjacentColumn(context.Background(), task.ID, delta)
		if err != nil {
			return actionMsg{err: err}
		}
		if target == 0 {
			return actionMsg{status: "no column in that direction"}
		}
		return actionMsg{status: "task moved", reload: true, focusTaskID: task.ID}
	}
}

// shiftSelectedTask moves the selected task within its column.
func (m Model) shiftSelectedTask(delta int) (Model, tea.Cmd) {
	task, ok := m.currentTask()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	svc := m.svc
	return m, func() tea.Msg {
		if err := svc.ShiftTask(context.Background(), task.ID, delta); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "task reordered", reload: true, focusTaskID: task.ID}
	}
}

// shiftSelectedColumn swaps the selected column with a neighbor.
func (m Model) shiftSelectedColumn(delta int) (Model, tea.Cmd) {
	column, ok := m.currentColumn()
	if !ok {
		m.status = "no column selected"
		return m, nil
	}
	svc := m.svc
	return m, func() tea.Msg {
		if err := svc.ShiftColumn(context.Background(), column.ID, delta); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "column moved", reload: true, focusColumnID: column.ID}
	}
}

// copyDescription writes a task description to the clipboard.
func (m Model) copyDescription(task domain.Task) tea.Cmd {
	write := m.writeClipboard
	return func() tea.Msg {
		if err := write(task.Description); err != nil {
			return actionMsg{status: "copy failed: " + err.Error()}
		}
		return actionMsg{status: "description copied"}
	}
}

// loadTaskInfo resolves image references in a task description.
func (m Model) loadTaskInfo(task domain.Task) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		text, err := svc.ResolveImageTokens(context.Background(), task.Description, app.ImageLabel)
		return infoLoadedMsg{taskID: task.ID, text: text, err: err}
	}
}

// attachImage reads, optimizes and stores an image off the update loop.
func (m Model) attachImage(form *taskForm, path string) tea.Cmd {
	svc, read := m.svc, m.readFile
	return func() tea.Msg {
		data, err := read(path)
		if err != nil {
			return imageAttachedMsg{form: form, err: fmt.Errorf("read image: %w", err)}
		}
		img, err := svc.AttachImage(context.Background(), data)
		if err != nil {
			return imageAttachedMsg{form: form, err: err}
		}
		return imageAttachedMsg{form: form, image: img}
	}
}

// handleMouseWheel scrolls the task selection.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (Model, tea.Cmd) {
	if m.mode != modeNone || m.help.ShowAll {
		return m, nil
	}
	tasks := m.currentColumnTasks()
	switch msg.Button {
	case tea.MouseWheelUp:
		if m.selectedTask > 0 {
			m.selectedTask--
		}
	case tea.MouseWheelDown:
		if m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
	}
	return m, nil
}

// handleMouseClick selects the clicked column or card and arms a drag when
// the press lands on a column header or task card.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (Model, tea.Cmd) {
	if m.mode != modeNone || m.help.ShowAll || msg.Button != tea.MouseLeft {
		return m, nil
	}
	m.selectAt(msg.X, msg.Y)
	region := m.drag.Zones().HitTest(msg.X, msg.Y)
	switch region.Kind {
	case dragdrop.RegionColumnHeader, dragdrop.RegionTask:
		m.armed = true
		m.armX, m.armY = msg.X, msg.Y
	default:
		m.armed = false
	}
	return m, nil
}

// handleMouseMotion begins an armed drag on first motion and feeds pointer
// moves to the controller.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (Model, tea.Cmd) {
	session := m.drag.Session()
	if !session.IsActive() {
		if !m.armed || (msg.X == m.armX && msg.Y == m.armY) {
			return m, nil
		}
		m.armed = false
		started, err := m.drag.BeginAt(m.armX, m.armY)
		if err != nil {
			m.status = "drag failed: " + err.Error()
			return m, nil
		}
		if !started {
			return m, nil
		}
		m.status = "dragging " + session.DragType().String()
	}
	if err := m.drag.PointerMove(msg.X, msg.Y); err != nil {
		m.status = "drag failed: " + err.Error()
	}
	return m, nil
}

// handleMouseRelease drops an active drag and reloads the board on commit.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (Model, tea.Cmd) {
	m.armed = false
	if !m.drag.Session().IsActive() {
		return m, nil
	}
	commit, ok, err := m.drag.Drop(context.Background(), msg.X, msg.Y)
	if err != nil {
		m.status = "drop failed: " + err.Error()
		return m, m.loadData
	}
	if !ok {
		m.status = "drop cancelled"
		return m, nil
	}
	switch commit.Kind {
	case dragdrop.DropTask:
		m.pendingFocusTaskID = commit.TaskID
		m.status = "task moved"
	case dragdrop.DropColumn:
		m.pendingFocusColumnID = commit.ColumnID
		m.status = "column moved"
	}
	return m, m.loadData
}

// selectAt selects the column and card under (x, y).
func (m *Model) selectAt(x, y int) {
	idx := boxIndexAt(m.boxes, x, y)
	if idx < 0 {
		return
	}
	if idx != m.selectedColumn {
		m.selectedColumn = idx
		m.selectedTask = 0
	}
	box := m.boxes[idx]
	for slot, card := range box.cards {
		if card.rect.Contains(x, y) {
			m.selectedTask = box.scroll + slot
			return
		}
	}
}

// clampSelections clamps selections.
func (m *Model) clampSelections() {
	m.selectedColumn = clamp(m.selectedColumn, 0, len(m.board.Columns)-1)
	m.selectedTask = clamp(m.selectedTask, 0, len(m.currentColumnTasks())-1)
}

// focusTask selects a task by id.
func (m *Model) focusTask(taskID int64) bool {
	for ci, column := range m.board.Columns {
		for ti, task := range column.Tasks {
			if task.ID == taskID {
				m.selectedColumn, m.selectedTask = ci, ti
				return true
			}
		}
	}
	return false
}

// focusColumn selects a column by id.
func (m *Model) focusColumn(columnID int64) bool {
	idx := slices.IndexFunc(m.board.Columns, func(c domain.Column) bool { return c.ID == columnID })
	if idx < 0 {
		return false
	}
	m.selectedColumn = idx
	return true
}

// currentColumn returns the selected column.
func (m Model) currentColumn() (domain.Column, bool) {
	if m.selectedColumn < 0 || m.selectedColumn >= len(m.board.Columns) {
		return domain.Column{}, false
	}
	return m.board.Columns[m.selectedColumn], true
}

// currentColumnTasks returns the tasks of the selected column.
func (m Model) currentColumnTasks() []domain.Task {
	column, ok := m.currentColumn()
	if !ok {
		return nil
	}
	return column.Tasks
}

// currentTask returns the selected task.
func (m Model) currentTask() (domain.Task, bool) {
	tasks := m.currentColumnTasks()
	if m.selectedTask < 0 || m.selectedTask >= len(tasks) {
		return domain.Task{}, false
	}
	return tasks[m.selectedTask], true
}

// taskByID finds a loaded task.
func (m Model) taskByID(taskID int64) (domain.Task, bool) {
	for _, column := range m.board.Columns {
		for _, task := range column.Tasks {
			if task.ID == taskID {
				return task, true
			}
		}
	}
	return domain.Task{}, false
}

// previousPriority cycles the priority set backwards.
func previousPriority(p domain.Priority) domain.Priority {
	all := domain.Priorities()
	idx := slices.Index(all, p)
	if idx <= 0 {
		return all[len(all)-1]
	}
	return all[idx-1]
}

// modeLabel names the active interaction mode.
func (m Model) modeLabel() string {
	if session := m.drag.Session(); session.IsActive() {
		return "drag: " + session.DragType().String()
	}
	switch m.mode {
	case modeTaskForm:
		if m.form != nil && m.form.editing() {
			return "edit task"
		}
		return "new task"
	case modeTaskInfo:
		return "task info"
	case modeConfirmDelete:
		return "confirm delete"
	default:
		return "board"
	}
}

// View handles view.
func (m Model) View() tea.View {
	view := tea.NewView(m.viewContent())
	view.MouseMode = tea.MouseModeCellMotion
	view.AltScreen = true
	return view
}

// viewContent renders the full screen as a string.
func (m Model) viewContent() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n\npress r to retry • q quit\n"
	}
	if !m.ready {
		return "loading..."
	}

	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render("cereboard") + "  " + m.board.Name
	if len(m.boards) > 1 {
		idx := slices.IndexFunc(m.boards, func(b domain.Board) bool { return b.ID == m.boardID })
		header += statusStyle.Render(fmt.Sprintf("  (%d/%d)", idx+1, len(m.boards)))
	}
	header += statusStyle.Render("  [" + m.modeLabel() + "]")
	subtitle := statusStyle.Render(truncate(m.board.Description, max(0, m.width)))

	sections := []string{header, subtitle}
	if len(m.boxes) == 0 {
		sections = append(sections, "", "This board has no columns.")
	} else {
		sections = append(sections, m.renderBoard())
	}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	} else {
		sections = append(sections, "")
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	var helpText string
	if m.mode == modeTaskForm {
		helpText = helpBubble.View(m.formKeys)
	} else {
		helpText = helpBubble.View(m.keys)
	}
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpText)

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	fullContent := content + "\n" + helpLine
	if overlay := m.renderOverlay(m.width - 8); overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}
	return fullContent
}

// renderBoard draws every column box and joins them row by row.
func (m Model) renderBoard() string {
	rendered := make([][]string, 0, len(m.boxes))
	height := 0
	for idx, box := range m.boxes {
		lines := m.renderColumn(idx, box)
		height = max(height, len(lines))
		rendered = append(rendered, lines)
	}
	gap := strings.Repeat(" ", columnGap)
	rows := make([]string, 0, height)
	for row := 0; row < height; row++ {
		parts := make([]string, 0, len(rendered))
		for _, lines := range rendered {
			if row < len(lines) {
				parts = append(parts, lines[row])
			}
		}
		rows = append(rows, strings.Join(parts, gap))
	}
	return strings.Join(rows, "\n")
}

// renderColumn draws one column box with drag highlights.
func (m Model) renderColumn(idx int, box columnBox) []string {
	inner := max(0, box.layout.Bounds.W-2)
	border := lipgloss.NewStyle().Foreground(m.columnBorderColor(idx, box.column.ID))
	edge := border.Render("│")

	lines := make([]string, 0, box.layout.Bounds.H)
	lines = append(lines, border.Render("╭"+strings.Repeat("─", inner)+"╮"))
	lines = append(lines, edge+m.columnHeader(box, inner)+edge)
	lines = append(lines, border.Render("├"+strings.Repeat("─", inner)+"┤"))
	for _, row := range m.columnContent(idx, box, inner) {
		lines = append(lines, edge+row+edge)
	}
	lines = append(lines, border.Render("╰"+strings.Repeat("─", inner)+"╯"))
	return lines
}

// columnBorderColor picks the border color from selection and drop-zone state.
func (m Model) columnBorderColor(idx int, columnID int64) color.Color {
	zones := m.drag.Zones()
	if target, ok := zones.DropTarget(); ok && target == columnID {
		return lipgloss.Color("212")
	}
	if active, ok := zones.DropActive(); ok && active == columnID {
		return lipgloss.Color("42")
	}
	if idx == m.selectedColumn {
		return lipgloss.Color("62")
	}
	return lipgloss.Color("239")
}

// columnHeader renders the header row with shift and return cues.
func (m Model) columnHeader(box columnBox, width int) string {
	session := m.drag.Session()
	cue := ""
	switch m.drag.Zones().Shift(box.column.ID) {
	case dragdrop.ShiftLeft:
		cue = "← "
	case dragdrop.ShiftRight:
		cue = "→ "
	}
	if session.IsActive() && session.DragType() == dragdrop.DragColumn && session.SourceID() == box.column.ID {
		cue = "⠿ "
		if session.ReturningToOriginal() {
			cue = "↺ "
		}
	}
	title := fmt.Sprintf("%s (%d)", box.column.Name, len(box.column.Tasks))
	style := lipgloss.NewStyle().Bold(true)
	if box.column.Color != "" {
		style = style.Foreground(lipgloss.Color(box.column.Color))
	}
	return padCell(" "+cue+style.Render(title), width)
}

// columnContent renders the card rows of a column, including the insertion
// marker of an in-progress task drag.
func (m Model) columnContent(idx int, box columnBox, width int) []string {
	rows := make([]string, box.contentRows())
	for i := range rows {
		rows[i] = padCell("", width)
	}
	contentTop := box.layout.Content.Y
	session := m.drag.Session()
	draggingTask := session.IsActive() && session.DragType() == dragdrop.DragTask

	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	draggedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Faint(true)
	metaStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	markerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	for slot, card := range box.cards {
		row := card.rect.Y - contentTop
		if row < 0 || row+1 >= len(rows) {
			continue
		}
		selected := idx == m.selectedColumn && box.scroll+slot == m.selectedTask
		dragged := draggingTask && session.SourceID() == card.task.ID
		prefix := "  "
		title := card.task.Title
		switch {
		case dragged:
			prefix = "⠿ "
			title = draggedStyle.Render(title)
		case selected:
			prefix = "› "
			title = selectedStyle.Render(title)
		}
		rows[row] = padCell(" "+prefix+title, width)
		rows[row+1] = padCell("   "+metaStyle.Render(taskMeta(card.task)), width)
	}

	if draggingTask {
		if active, ok := m.drag.Zones().DropActive(); ok && active == box.column.ID {
			if index, ok := m.drag.InsertionPreview(); ok {
				row := (index - box.scroll) * cardStride
				if row >= 0 && row < len(rows) {
					rows[row] = padCell(" "+markerStyle.Render(strings.Repeat("┄", max(1, width-2))), width)
				}
			}
		}
	}
	return rows
}

// taskMeta summarizes priority, due date and attached images.
func taskMeta(task domain.Task) string {
	parts := []string{string(task.Priority)}
	if task.DueDate != nil {
		parts = append(parts, "due "+task.DueDate.UTC().Format("2006-01-02"))
	}
	if n := len(images.TokenIDs(task.Description)); n > 0 {
		parts = append(parts, fmt.Sprintf("img:%d", n))
	}
	return strings.Join(parts, " · ")
}

// renderOverlay renders the modal for the active mode.
func (m Model) renderOverlay(maxWidth int) string {
	width := clamp(maxWidth, 24, 96)
	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(width)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)

	if m.help.ShowAll {
		h := m.help
		h.ShowAll = true
		h.SetWidth(max(0, width-4))
		return box.Render(titleStyle.Render("keys") + "\n\n" + h.View(m.keys) + "\n\n" + hintStyle.Render("? or esc to close"))
	}

	switch m.mode {
	case modeTaskForm:
		if m.form == nil {
			return ""
		}
		return box.Render(m.renderForm(width-4, titleStyle, hintStyle))
	case modeTaskInfo:
		task, ok := m.taskByID(m.infoTaskID)
		if !ok {
			return ""
		}
		lines := []string{
			titleStyle.Render(task.Title),
			hintStyle.Render(taskMeta(task)),
			"",
		}
		body := m.infoText
		if m.showPreview {
			body = m.markdown.render(body, width-4)
		}
		if strings.TrimSpace(body) == "" {
			body = hintStyle.Render("(no description)")
		}
		lines = append(lines, body, "", hintStyle.Render("e edit • y copy • esc close"))
		return box.Render(strings.Join(lines, "\n"))
	case modeConfirmDelete:
		task, _ := m.taskByID(m.deleteTaskID)
		return box.Render(titleStyle.Render("Delete task?") + "\n\n" + task.Title + "\n\n" + hintStyle.Render("y confirm • any other key cancels"))
	}
	return ""
}

// renderForm renders the task form body.
func (m Model) renderForm(width int, titleStyle, hintStyle lipgloss.Style) string {
	f := m.form
	heading := "New task"
	if f.editing() {
		heading = "Edit task"
	}
	focusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	label := func(field formField, text string) string {
		if f.focus == field {
			return focusStyle.Render(text)
		}
		return text
	}

	lines := []string{
		titleStyle.Render(heading),
		"",
		f.title.View(),
		f.due.View(),
		label(fieldPriority, "priority: ") + "‹ " + string(f.priority) + " ›",
		label(fieldDescription, "description:"),
	}
	for _, line := range f.descriptionView(f.focus == fieldDescription) {
		lines = append(lines, "  "+truncate(line, max(1, width-2)))
	}
	if f.imagePrompt {
		lines = append(lines, "", f.imagePath.View())
	}
	if f.imagePending {
		lines = append(lines, hintStyle.Render("optimizing image..."))
	}
	return strings.Join(lines, "\n")
}

// padCell truncates or pads s to exactly width display cells.
func padCell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, "…")
	if gap := width - ansi.StringWidth(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}

// clamp clamps v into [minV, maxV].
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates s to max display cells.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	return ansi.Truncate(s, max, "…")
}
