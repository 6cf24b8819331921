package dragdrop

import "fmt"

// Rect is a cell-aligned rectangle in screen coordinates.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether the cell (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	if r.Empty() {
		return false
	}
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// MidY returns the vertical midpoint row.
func (r Rect) MidY() int {
	return r.Y + r.H/2
}

// RegionKind identifies what a registered region represents.
type RegionKind uint8

const (
	RegionNone RegionKind = iota
	RegionColumn
	RegionColumnHeader
	RegionColumnContent
	RegionTask
)

func (k RegionKind) String() string {
	switch k {
	case RegionColumn:
		return "column"
	case RegionColumnHeader:
		return "column-header"
	case RegionColumnContent:
		return "column-content"
	case RegionTask:
		return "task"
	default:
		return "none"
	}
}

// Region is a typed reference to a registered area. Column, header and
// content regions carry the column id; task regions carry the task id.
type Region struct {
	Kind RegionKind
	ID   int64
}

// ColumnRegion returns the column-drop zone of a column.
func ColumnRegion(id int64) Region { return Region{Kind: RegionColumn, ID: id} }

// HeaderRegion returns the draggable header of a column.
func HeaderRegion(id int64) Region { return Region{Kind: RegionColumnHeader, ID: id} }

// ContentRegion returns the task-drop zone of a column.
func ContentRegion(id int64) Region { return Region{Kind: RegionColumnContent, ID: id} }

// TaskRegion returns the draggable card of a task.
func TaskRegion(id int64) Region { return Region{Kind: RegionTask, ID: id} }

// IsZero reports whether the region refers to nothing.
func (r Region) IsZero() bool {
	return r.Kind == RegionNone
}

func (r Region) String() string {
	if r.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// InsertionIndex returns the position a dropped task takes among siblings
// listed top to bottom: before the first sibling whose midpoint lies below
// pointerY, otherwise after the last one. Empty rectangles stand for
// siblings without a known region; they are counted but never chosen.
func InsertionIndex(pointerY int, siblings []Rect) int {
	for idx, rect := range siblings {
		if rect.Empty() {
			continue
		}
		if rect.MidY() > pointerY {
			return idx
		}
	}
	return len(siblings)
}
