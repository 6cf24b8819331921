package dragdrop

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/evanschultz/cereboard/internal/domain"
)

// BoardData is the board-data collaborator that drops are committed to.
type BoardData interface {
	ApplyTaskMove(ctx context.Context, taskID, sourceColumnID, targetColumnID int64, insertionIndex int) error
	ApplyColumnMove(ctx context.Context, columnID, targetColumnID int64) error
	GetColumnTasksOrdered(ctx context.Context, columnID int64) ([]domain.TaskSummary, error)
}

// Logger receives diagnostic events for ignored or reverted drags.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
}

// DropKind identifies what a committed drop moved.
type DropKind uint8

const (
	DropColumn DropKind = iota + 1
	DropTask
)

func (k DropKind) String() string {
	switch k {
	case DropColumn:
		return "column"
	case DropTask:
		return "task"
	default:
		return "unknown"
	}
}

// DropCommit is the payload of a committed drop. ColumnID is set for column
// drops; TaskID, SourceColumnID and InsertionIndex for task drops.
type DropCommit struct {
	Kind           DropKind
	ColumnID       int64
	TaskID         int64
	SourceColumnID int64
	TargetColumnID int64
	InsertionIndex int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the diagnostic logger.
func WithLogger(logger Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStrict makes pointer events without an active session return
// ErrInvalidState instead of being ignored.
func WithStrict(strict bool) Option {
	return func(c *Controller) { c.strict = strict }
}

// WithDropHandler registers a callback invoked once per committed drop.
func WithDropHandler(fn func(DropCommit)) Option {
	return func(c *Controller) { c.onDrop = fn }
}

// Controller turns pointer events into session and zone transitions and
// commits finished drops to the board data.
type Controller struct {
	board   BoardData
	session *Session
	zones   *Registry
	logger  Logger
	strict  bool
	onDrop  func(DropCommit)

	zone    Region
	pointer [2]int
	preview int
}

// NewController constructs a controller with its own session and registry.
func NewController(board BoardData, opts ...Option) *Controller {
	session := &Session{}
	c := &Controller{
		board:   board,
		session: session,
		zones:   NewRegistry(session),
		logger:  nopLogger{},
		preview: -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	session.OnEnd(c.resetPointerState)
	return c
}

// Session returns the drag session owned by the controller.
func (c *Controller) Session() *Session { return c.session }

// Zones returns the region registry owned by the controller.
func (c *Controller) Zones() *Registry { return c.zones }

// BeginColumnDrag starts dragging a registered column.
func (c *Controller) BeginColumnDrag(columnID int64) error {
	layout, ok := c.zones.Column(columnID)
	if !ok {
		c.logger.Debug("column drag ignored", "column_id", columnID, "reason", "unregistered")
		return nil
	}
	if err := c.begin(DragColumn, columnID, 0); err != nil {
		return err
	}
	c.session.SetOriginalPosition(layout.Bounds)
	return nil
}

// BeginTaskDrag starts dragging a registered task card.
func (c *Controller) BeginTaskDrag(taskID int64) error {
	columnID, _, ok := c.zones.Task(taskID)
	if !ok {
		c.logger.Debug("task drag ignored", "task_id", taskID, "reason", "unregistered")
		return nil
	}
	return c.begin(DragTask, taskID, columnID)
}

// BeginAt starts a column drag on a header or a task drag on a card found
// at (x, y). It reports whether a drag started.
func (c *Controller) BeginAt(x, y int) (bool, error) {
	region := c.zones.HitTest(x, y)
	var err error
	switch region.Kind {
	case RegionColumnHeader:
		err = c.BeginColumnDrag(region.ID)
	case RegionTask:
		err = c.BeginTaskDrag(region.ID)
	default:
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.session.IsActive() {
		c.PointerMove(x, y)
	}
	return c.session.IsActive(), nil
}

func (c *Controller) begin(dragType DragType, sourceID, sourceColumnID int64) error {
	err := c.session.Begin(dragType, sourceID, sourceColumnID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMalformedID):
		c.logger.Warn("drag ignored", "type", dragType, "source_id", sourceID, "err", err)
		return nil
	default:
		return fmt.Errorf("begin %s drag: %w", dragType, err)
	}
}

// PointerMove processes pointer motion during a drag: zone leave and enter
// transitions followed by drag-over updates.
func (c *Controller) PointerMove(x, y int) error {
	if !c.session.IsActive() {
		return c.inactive("pointer move")
	}
	c.pointer = [2]int{x, y}
	region := c.zones.HitTest(x, y)
	zone := c.zoneFor(region)
	if zone != c.zone {
		if !c.zone.IsZero() {
			c.zones.LeaveZone(c.zone, region)
		}
		c.zone = zone
		c.enter(zone)
	}
	c.dragOver()
	return nil
}

func (c *Controller) zoneFor(region Region) Region {
	if region.IsZero() {
		return Region{}
	}
	columnID := region.ID
	if region.Kind == RegionTask {
		columnID = c.zones.Parent(region).ID
	}
	if columnID <= 0 {
		return Region{}
	}
	switch c.session.DragType() {
	case DragColumn:
		return ColumnRegion(columnID)
	case DragTask:
		if region.Kind == RegionColumnContent || region.Kind == RegionTask {
			return ContentRegion(columnID)
		}
	}
	return Region{}
}

func (c *Controller) enter(zone Region) {
	var entered bool
	switch c.session.DragType() {
	case DragColumn:
		entered = c.zones.EnterColumnZone(zone)
	case DragTask:
		entered = c.zones.EnterTaskZone(zone)
	}
	if entered {
		c.session.SetTarget(zone.ID)
		return
	}
	c.session.SetTarget(0)
}

func (c *Controller) dragOver() {
	switch c.session.DragType() {
	case DragColumn:
		c.columnDragOver()
	case DragTask:
		c.taskDragOver()
	}
}

func (c *Controller) columnDragOver() {
	sourceID := c.session.SourceID()
	if c.zone.IsZero() {
		c.session.MarkReturningToOriginal(false)
		c.zones.setShifting(nil)
		return
	}
	if c.zone.ID == sourceID {
		c.session.MarkReturningToOriginal(true)
		c.zones.setShifting(nil)
		return
	}
	c.session.MarkReturningToOriginal(false)

	source := c.session.OriginalPosition()
	target, ok := c.zones.Column(c.zone.ID)
	if !ok {
		c.zones.setShifting(nil)
		return
	}
	shifting := map[int64]ShiftDirection{}
	for _, id := range c.zones.ColumnIDs() {
		if id == sourceID || id == c.zone.ID {
			continue
		}
		layout, _ := c.zones.Column(id)
		x := layout.Bounds.X
		switch {
		case target.Bounds.X > source.X && x > source.X && x < target.Bounds.X:
			shifting[id] = ShiftLeft
		case target.Bounds.X < source.X && x < source.X && x > target.Bounds.X:
			shifting[id] = ShiftRight
		}
	}
	c.zones.setShifting(shifting)
}

func (c *Controller) taskDragOver() {
	columnID, ok := c.session.TargetColumnID()
	if !ok || columnID == c.session.SourceColumnID() {
		c.preview = -1
		return
	}
	cards := c.zones.taskSiblings(columnID)
	rects := make([]Rect, 0, len(cards))
	for _, id := range sortedByY(cards) {
		rects = append(rects, cards[id])
	}
	c.preview = InsertionIndex(c.pointer[1], rects)
}

// InsertionPreview returns the insertion index a task drop at the current
// pointer position would use.
func (c *Controller) InsertionPreview() (int, bool) {
	return c.preview, c.preview >= 0
}

// Drop finishes the drag at (x, y). A drop onto the origin or outside any
// zone commits nothing. The session ends in every case.
func (c *Controller) Drop(ctx context.Context, x, y int) (DropCommit, bool, error) {
	if !c.session.IsActive() {
		return DropCommit{}, false, c.inactive("drop")
	}
	defer c.End()
	if err := c.PointerMove(x, y); err != nil {
		return DropCommit{}, false, err
	}

	var (
		commit DropCommit
		err    error
	)
	switch c.session.DragType() {
	case DragColumn:
		commit, err = c.dropColumn(ctx)
	case DragTask:
		commit, err = c.dropTask(ctx, y)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.logger.Warn("drop reverted", "err", err)
			return DropCommit{}, false, fmt.Errorf("%w: %w", ErrTargetNotFound, err)
		}
		return DropCommit{}, false, err
	}
	if commit.Kind == 0 {
		return DropCommit{}, false, nil
	}
	if c.onDrop != nil {
		c.onDrop(commit)
	}
	return commit, true, nil
}

func (c *Controller) dropColumn(ctx context.Context) (DropCommit, error) {
	sourceID := c.session.SourceID()
	targetID, ok := c.zones.DropTarget()
	if !ok || targetID == sourceID {
		return DropCommit{}, nil
	}
	if err := c.board.ApplyColumnMove(ctx, sourceID, targetID); err != nil {
		return DropCommit{}, fmt.Errorf("apply column move: %w", err)
	}
	return DropCommit{Kind: DropColumn, ColumnID: sourceID, TargetColumnID: targetID}, nil
}

func (c *Controller) dropTask(ctx context.Context, pointerY int) (DropCommit, error) {
	taskID := c.session.SourceID()
	sourceColumnID := c.session.SourceColumnID()
	targetID, ok := c.zones.DropActive()
	if !ok || targetID == sourceColumnID {
		return DropCommit{}, nil
	}
	ordered, err := c.board.GetColumnTasksOrdered(ctx, targetID)
	if err != nil {
		return DropCommit{}, fmt.Errorf("list target tasks: %w", err)
	}
	rects := make([]Rect, 0, len(ordered))
	for _, summary := range ordered {
		if summary.ID == taskID {
			continue
		}
		var rect Rect
		if columnID, bounds, ok := c.zones.Task(summary.ID); ok && columnID == targetID {
			rect = bounds
		}
		rects = append(rects, rect)
	}
	index := InsertionIndex(pointerY, rects)
	if err := c.board.ApplyTaskMove(ctx, taskID, sourceColumnID, targetID, index); err != nil {
		return DropCommit{}, fmt.Errorf("apply task move: %w", err)
	}
	return DropCommit{
		Kind:           DropTask,
		TaskID:         taskID,
		SourceColumnID: sourceColumnID,
		TargetColumnID: targetID,
		InsertionIndex: index,
	}, nil
}

// End cancels any drag and clears all highlight state. It is idempotent.
func (c *Controller) End() {
	c.session.End()
}

func (c *Controller) resetPointerState() {
	c.zone = Region{}
	c.preview = -1
}

func (c *Controller) inactive(op string) error {
	if c.strict {
		return fmt.Errorf("%s: %w", op, ErrInvalidState)
	}
	return nil
}

func sortedByY(cards map[int64]Rect) []int64 {
	ids := make([]int64, 0, len(cards))
	for id := range cards {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b int64) int {
		if d := cards[a].Y - cards[b].Y; d != 0 {
			return d
		}
		return int(a - b)
	})
	return ids
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
