package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/evanschultz/cereboard/internal/app"
	"github.com/evanschultz/cereboard/internal/domain"
)

func TestBoardFromDomainUsesCamelCaseFields(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	board := domain.Board{
		ID:        1,
		Name:      "Inbox",
		CreatedAt: now,
		Columns: []domain.Column{{
			ID:      2,
			BoardID: 1,
			Name:    "To Do",
			Order:   1,
			Tasks:   []domain.Task{{ID: 3, ColumnID: 2, Order: 1, Title: "a", Priority: domain.PriorityHigh}},
		}},
	}
	raw, err := json.Marshal(BoardFromDomain(board))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, field := range []string{`"createdAt"`, `"boardId":1`, `"columnId":2`, `"dueDate":null`, `"priority":"high"`} {
		if !strings.Contains(string(raw), field) {
			t.Fatalf("encoded board missing %s: %s", field, raw)
		}
	}
}

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{err: fmt.Errorf("task 3: %w", app.ErrNotFound), want: CodeNotFound},
		{err: app.ErrInvalidMove, want: CodeInvalidMove},
		{err: domain.ErrInvalidTitle, want: CodeInvalidRequest},
		{err: errors.Join(ErrInvalidRequest, errors.New("bad json")), want: CodeInvalidRequest},
		{err: errors.New("disk full"), want: CodeInternal},
		{err: nil, want: CodeInternal},
	}
	for _, tc := range cases {
		if got := ErrorCode(tc.err); got != tc.want {
			t.Fatalf("ErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestPriority(t *testing.T) {
	if got := Priority(""); got != "" {
		t.Fatalf("Priority(\"\") = %q", got)
	}
	if got := Priority("urgent"); got != domain.PriorityLow {
		t.Fatalf("Priority(urgent) = %q", got)
	}
	if got := Priority("Medium"); got != domain.PriorityMedium {
		t.Fatalf("Priority(Medium) = %q", got)
	}
}
