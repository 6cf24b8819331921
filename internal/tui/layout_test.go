package tui

import (
	"testing"

	"github.com/evanschultz/cereboard/internal/domain"
	"github.com/evanschultz/cereboard/internal/dragdrop"
)

func layoutColumns(taskCounts ...int) []domain.Column {
	columns := make([]domain.Column, 0, len(taskCounts))
	nextTask := int64(100)
	for i, n := range taskCounts {
		column := domain.Column{ID: int64(i + 1), Name: "c", Order: i + 1}
		for j := 0; j < n; j++ {
			column.Tasks = append(column.Tasks, domain.Task{ID: nextTask, ColumnID: column.ID, Order: j + 1, Title: "t"})
			nextTask++
		}
		columns = append(columns, column)
	}
	return columns
}

// TestLayoutBoardGeometry verifies column and card rectangles.
func TestLayoutBoardGeometry(t *testing.T) {
	boxes := layoutBoard(layoutColumns(2, 0, 1), 120, 40, 0, 0)
	if len(boxes) != 3 {
		t.Fatalf("expected 3 boxes, got %d", len(boxes))
	}
	first := boxes[0]
	if first.layout.Bounds != (dragdrop.Rect{X: 0, Y: boardTop, W: 39, H: 35}) {
		t.Fatalf("unexpected first bounds %#v", first.layout.Bounds)
	}
	if boxes[1].layout.Bounds.X != 40 || boxes[2].layout.Bounds.X != 80 {
		t.Fatalf("unexpected column offsets %d %d", boxes[1].layout.Bounds.X, boxes[2].layout.Bounds.X)
	}
	if first.layout.Header.H != headerRows || first.layout.Content.Y != boardTop+headerRows {
		t.Fatalf("unexpected header/content split %#v", first.layout)
	}
	if len(first.cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(first.cards))
	}
	if got := first.cards[1].rect.Y - first.cards[0].rect.Y; got != cardStride {
		t.Fatalf("expected card stride %d, got %d", cardStride, got)
	}
	if !first.layout.Content.Contains(first.cards[1].rect.X, first.cards[1].rect.Y+1) {
		t.Fatal("expected cards inside the content rect")
	}
	if boxIndexAt(boxes, 45, 10) != 1 || boxIndexAt(boxes, 39, 10) != -1 {
		t.Fatal("unexpected boxIndexAt results")
	}
}

// TestLayoutBoardScrollsSelection verifies the selected task stays visible.
func TestLayoutBoardScrollsSelection(t *testing.T) {
	boxes := layoutBoard(layoutColumns(20), 60, 24, 0, 15)
	box := boxes[0]
	visible := box.contentRows() / cardStride
	if visible <= 0 || visible >= 20 {
		t.Fatalf("expected a partial window, got %d", visible)
	}
	if box.scroll != 15-visible+1 {
		t.Fatalf("unexpected scroll %d for %d visible", box.scroll, visible)
	}
	last := box.cards[len(box.cards)-1]
	if last.task.ID != 100+15 {
		t.Fatalf("expected selected task in the last slot, got %d", last.task.ID)
	}
}

// TestSyncRegistryDeregistersStale verifies behavior for the covered scenario.
func TestSyncRegistryDeregistersStale(t *testing.T) {
	zones := dragdrop.NewRegistry(&dragdrop.Session{})
	syncRegistry(zones, layoutBoard(layoutColumns(2, 1), 80, 30, 0, 0))
	if len(zones.ColumnIDs()) != 2 || len(zones.TaskIDs()) != 3 {
		t.Fatalf("unexpected registry %v %v", zones.ColumnIDs(), zones.TaskIDs())
	}
	if region := zones.HitTest(3, boardTop+1); region != dragdrop.HeaderRegion(1) {
		t.Fatalf("expected header hit, got %v", region)
	}

	syncRegistry(zones, layoutBoard(layoutColumns(1), 80, 30, 0, 0))
	if got := zones.ColumnIDs(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected only column 1, got %v", got)
	}
	if got := zones.TaskIDs(); len(got) != 1 || got[0] != 100 {
		t.Fatalf("expected only task 100, got %v", got)
	}
}

// TestColumnSizing verifies behavior for the covered scenario.
func TestColumnSizing(t *testing.T) {
	if got := columnWidthFor(30, 4); got != minColumnWidth {
		t.Fatalf("expected minimum width, got %d", got)
	}
	if got := columnWidthFor(0, 2); got != minColumnWidth+8 {
		t.Fatalf("expected unsized default, got %d", got)
	}
	if got := columnHeightFor(5); got != minColumnRows {
		t.Fatalf("expected minimum rows, got %d", got)
	}
}
