package dragdrop

import (
	"fmt"
	"maps"
	"slices"
)

// ShiftDirection is the visual cue for a column between the source and the
// hovered target of a column drag.
type ShiftDirection int8

const (
	ShiftNone  ShiftDirection = 0
	ShiftLeft  ShiftDirection = -1
	ShiftRight ShiftDirection = 1
)

// ColumnLayout is the geometry of one rendered column.
type ColumnLayout struct {
	Bounds  Rect
	Header  Rect
	Content Rect
}

type taskEntry struct {
	columnID int64
	bounds   Rect
}

// Registry tracks registered regions and the highlight state of drop zones.
// At most one column is highlighted as a drop target and at most one column
// content area is drop-active at any time.
type Registry struct {
	session *Session

	columns map[int64]ColumnLayout
	tasks   map[int64]taskEntry

	dropTarget int64
	dropActive int64
	shifting   map[int64]ShiftDirection
}

// NewRegistry constructs a registry whose highlights are cleared whenever
// session ends.
func NewRegistry(session *Session) *Registry {
	r := &Registry{
		session:  session,
		columns:  map[int64]ColumnLayout{},
		tasks:    map[int64]taskEntry{},
		shifting: map[int64]ShiftDirection{},
	}
	session.OnEnd(r.ClearAll)
	return r
}

// RegisterColumn registers or updates the regions of a column.
func (r *Registry) RegisterColumn(id int64, layout ColumnLayout) error {
	if id <= 0 {
		return fmt.Errorf("register column %d: %w", id, ErrMalformedID)
	}
	r.columns[id] = layout
	return nil
}

// RegisterTask registers or updates the card region of a task. The owning
// column must already be registered.
func (r *Registry) RegisterTask(id, columnID int64, bounds Rect) error {
	if id <= 0 || columnID <= 0 {
		return fmt.Errorf("register task %d in column %d: %w", id, columnID, ErrMalformedID)
	}
	if _, ok := r.columns[columnID]; !ok {
		return fmt.Errorf("register task %d: column %d: %w", id, columnID, ErrTargetNotFound)
	}
	r.tasks[id] = taskEntry{columnID: columnID, bounds: bounds}
	return nil
}

// DeregisterColumn removes a column, its task cards, and any highlight it carries.
func (r *Registry) DeregisterColumn(id int64) {
	delete(r.columns, id)
	maps.DeleteFunc(r.tasks, func(_ int64, entry taskEntry) bool {
		return entry.columnID == id
	})
	delete(r.shifting, id)
	if r.dropTarget == id {
		r.dropTarget = 0
	}
	if r.dropActive == id {
		r.dropActive = 0
	}
}

// DeregisterTask removes a task card region.
func (r *Registry) DeregisterTask(id int64) {
	delete(r.tasks, id)
}

// ColumnIDs returns registered columns from left to right.
func (r *Registry) ColumnIDs() []int64 {
	ids := slices.Collect(maps.Keys(r.columns))
	slices.SortFunc(ids, func(a, b int64) int {
		if d := r.columns[a].Bounds.X - r.columns[b].Bounds.X; d != 0 {
			return d
		}
		return int(a - b)
	})
	return ids
}

// TaskIDs returns all registered task ids in ascending order.
func (r *Registry) TaskIDs() []int64 {
	ids := slices.Collect(maps.Keys(r.tasks))
	slices.Sort(ids)
	return ids
}

// Column returns the layout of a registered column.
func (r *Registry) Column(id int64) (ColumnLayout, bool) {
	layout, ok := r.columns[id]
	return layout, ok
}

// Task returns the owning column and bounds of a registered task.
func (r *Registry) Task(id int64) (int64, Rect, bool) {
	entry, ok := r.tasks[id]
	return entry.columnID, entry.bounds, ok
}

// HitTest returns the innermost registered region containing (x, y).
func (r *Registry) HitTest(x, y int) Region {
	for id, entry := range r.tasks {
		if entry.bounds.Contains(x, y) {
			return TaskRegion(id)
		}
	}
	for id, layout := range r.columns {
		switch {
		case layout.Header.Contains(x, y):
			return HeaderRegion(id)
		case layout.Content.Contains(x, y):
			return ContentRegion(id)
		case layout.Bounds.Contains(x, y):
			return ColumnRegion(id)
		}
	}
	return Region{}
}

// Parent returns the enclosing region: task cards sit in column content,
// headers and content sit in their column.
func (r *Registry) Parent(region Region) Region {
	switch region.Kind {
	case RegionTask:
		if entry, ok := r.tasks[region.ID]; ok {
			return ContentRegion(entry.columnID)
		}
	case RegionColumnHeader, RegionColumnContent:
		return ColumnRegion(region.ID)
	}
	return Region{}
}

// Contains reports whether region equals ancestor or lies inside it.
func (r *Registry) Contains(ancestor, region Region) bool {
	if ancestor.IsZero() {
		return false
	}
	for cur := region; !cur.IsZero(); cur = r.Parent(cur) {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// EnterColumnZone highlights a column as the drop target of a column drag.
// It is a no-op for other drag types, for the dragged column itself, and
// for unregistered columns. It reports whether the highlight was applied.
func (r *Registry) EnterColumnZone(zone Region) bool {
	if zone.Kind != RegionColumn || r.session.DragType() != DragColumn {
		return false
	}
	if zone.ID == r.session.SourceID() {
		return false
	}
	if _, ok := r.columns[zone.ID]; !ok {
		return false
	}
	r.dropTarget = zone.ID
	return true
}

// EnterTaskZone marks a column content area drop-active for a task drag.
func (r *Registry) EnterTaskZone(zone Region) bool {
	if zone.Kind != RegionColumnContent || r.session.DragType() != DragTask {
		return false
	}
	if _, ok := r.columns[zone.ID]; !ok {
		return false
	}
	r.dropActive = zone.ID
	return true
}

// LeaveZone clears the highlight of zone unless related, the region the
// pointer moved into, lies inside zone.
func (r *Registry) LeaveZone(zone, related Region) bool {
	if r.Contains(zone, related) {
		return false
	}
	switch zone.Kind {
	case RegionColumn:
		if r.dropTarget == zone.ID {
			r.dropTarget = 0
			return true
		}
	case RegionColumnContent:
		if r.dropActive == zone.ID {
			r.dropActive = 0
			return true
		}
	}
	return false
}

// ClearAll removes every highlight and shift cue.
func (r *Registry) ClearAll() {
	r.dropTarget = 0
	r.dropActive = 0
	clear(r.shifting)
}

// DropTarget returns the highlighted column of a column drag.
func (r *Registry) DropTarget() (int64, bool) {
	return r.dropTarget, r.dropTarget > 0
}

// DropActive returns the drop-active column content of a task drag.
func (r *Registry) DropActive() (int64, bool) {
	return r.dropActive, r.dropActive > 0
}

// Shift returns the shift cue of a column.
func (r *Registry) Shift(columnID int64) ShiftDirection {
	return r.shifting[columnID]
}

func (r *Registry) setShifting(next map[int64]ShiftDirection) {
	clear(r.shifting)
	maps.Copy(r.shifting, next)
}

// taskSiblings returns the card bounds of a column keyed by task id.
func (r *Registry) taskSiblings(columnID int64) map[int64]Rect {
	out := map[int64]Rect{}
	for id, entry := range r.tasks {
		if entry.columnID == columnID {
			out[id] = entry.bounds
		}
	}
	return out
}
