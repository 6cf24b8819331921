package tui

import (
	"slices"

	"github.com/evanschultz/cereboard/internal/domain"
	"github.com/evanschultz/cereboard/internal/dragdrop"
)

// Board geometry in terminal cells. Each column box is a top border, a
// header row and a separator followed by content and a bottom border.
// Cards take two rows and are preceded by one blank row.
const (
	boardTop       = 2
	headerRows     = 3
	cardHeight     = 2
	cardStride     = cardHeight + 1
	columnGap      = 1
	minColumnWidth = 18
	minColumnRows  = headerRows + cardStride + 1
	footerRows     = 3
)

// columnBox is the laid-out geometry of one column.
type columnBox struct {
	column domain.Column
	layout dragdrop.ColumnLayout
	scroll int
	cards  []cardBox
}

// cardBox is the laid-out geometry of one visible task card.
type cardBox struct {
	task domain.Task
	rect dragdrop.Rect
}

// contentRows returns the number of rows inside a column below the header.
func (b columnBox) contentRows() int {
	return max(0, b.layout.Bounds.H-headerRows-1)
}

// columnWidthFor splits width across n columns.
func columnWidthFor(width, n int) int {
	if n <= 0 {
		return minColumnWidth
	}
	if width <= 0 {
		return minColumnWidth + 8
	}
	return max(minColumnWidth, (width-columnGap*(n-1))/n)
}

// columnHeightFor returns the column box height for a terminal height.
func columnHeightFor(height int) int {
	if height <= 0 {
		return minColumnRows + 3*cardStride
	}
	return max(minColumnRows, height-boardTop-footerRows)
}

// layoutBoard computes column and card geometry. The selected column is
// scrolled so its selected task stays visible.
func layoutBoard(columns []domain.Column, width, height, selectedColumn, selectedTask int) []columnBox {
	colWidth := columnWidthFor(width, len(columns))
	colHeight := columnHeightFor(height)
	boxes := make([]columnBox, 0, len(columns))
	for idx, column := range columns {
		x := idx * (colWidth + columnGap)
		box := columnBox{
			column: column,
			layout: dragdrop.ColumnLayout{
				Bounds:  dragdrop.Rect{X: x, Y: boardTop, W: colWidth, H: colHeight},
				Header:  dragdrop.Rect{X: x, Y: boardTop, W: colWidth, H: headerRows},
				Content: dragdrop.Rect{X: x, Y: boardTop + headerRows, W: colWidth, H: max(0, colHeight-headerRows-1)},
			},
		}
		visible := box.contentRows() / cardStride
		if idx == selectedColumn && selectedTask >= visible && visible > 0 {
			box.scroll = selectedTask - visible + 1
		}
		contentTop := box.layout.Content.Y
		for slot := 0; slot < visible; slot++ {
			taskIdx := box.scroll + slot
			if taskIdx >= len(column.Tasks) {
				break
			}
			box.cards = append(box.cards, cardBox{
				task: column.Tasks[taskIdx],
				rect: dragdrop.Rect{X: x + 1, Y: contentTop + 1 + slot*cardStride, W: max(1, colWidth-2), H: cardHeight},
			})
		}
		boxes = append(boxes, box)
	}
	return boxes
}

// syncRegistry registers every laid-out region and deregisters regions
// that are no longer rendered.
func syncRegistry(zones *dragdrop.Registry, boxes []columnBox) {
	liveColumns := map[int64]struct{}{}
	liveTasks := map[int64]struct{}{}
	for _, box := range boxes {
		if err := zones.RegisterColumn(box.column.ID, box.layout); err != nil {
			continue
		}
		liveColumns[box.column.ID] = struct{}{}
		for _, card := range box.cards {
			if err := zones.RegisterTask(card.task.ID, box.column.ID, card.rect); err != nil {
				continue
			}
			liveTasks[card.task.ID] = struct{}{}
		}
	}
	for _, id := range zones.ColumnIDs() {
		if _, ok := liveColumns[id]; !ok {
			zones.DeregisterColumn(id)
		}
	}
	for _, id := range zones.TaskIDs() {
		if _, ok := liveTasks[id]; !ok {
			zones.DeregisterTask(id)
		}
	}
}

// boxIndexAt returns the index of the column box under x, or -1.
func boxIndexAt(boxes []columnBox, x, y int) int {
	return slices.IndexFunc(boxes, func(b columnBox) bool {
		return b.layout.Bounds.Contains(x, y)
	})
}
