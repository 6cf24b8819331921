package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/evanschultz/cereboard/internal/adapters/server/common"
	"github.com/evanschultz/cereboard/internal/adapters/storage/sqlite"
	"github.com/evanschultz/cereboard/internal/app"
	"github.com/evanschultz/cereboard/internal/domain"
)

// newTestHandler builds a handler over an in-memory store seeded with the default board.
func newTestHandler(t *testing.T) (*Handler, *app.Service, domain.Board) {
	t.Helper()
	repo, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	now := func() time.Time { return time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC) }
	svc := app.NewService(repo, nil, now, app.ServiceConfig{})
	board, err := svc.EnsureDefaultBoard(context.Background())
	if err != nil {
		t.Fatalf("EnsureDefaultBoard() error = %v", err)
	}
	return NewHandler(svc), svc, board
}

// serve runs one request through the handler.
func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeBody decodes one JSON response body into the requested type.
func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return out
}

func TestHandlerBoards(t *testing.T) {
	h, _, board := newTestHandler(t)

	rec := serve(t, h, http.MethodGet, "/boards", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	boards := decodeBody[[]common.Board](t, rec)
	if len(boards) != 1 || boards[0].Name != "Inbox" {
		t.Fatalf("unexpected boards %#v", boards)
	}

	rec = serve(t, h, http.MethodGet, "/boards/"+itoa(board.ID), "")
	got := decodeBody[common.Board](t, rec)
	if len(got.Columns) != 3 || got.Columns[0].BoardID != board.ID {
		t.Fatalf("unexpected board %#v", got)
	}

	rec = serve(t, h, http.MethodPost, "/boards", `{"name":"Roadmap","description":"Q3"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[common.Board](t, rec)
	if created.Name != "Roadmap" || len(created.Columns) != 3 {
		t.Fatalf("unexpected created board %#v", created)
	}
}

func TestHandlerTaskLifecycle(t *testing.T) {
	h, _, board := newTestHandler(t)
	todo, doing := board.Columns[0].ID, board.Columns[1].ID

	rec := serve(t, h, http.MethodPost, "/tasks", `{"title":"Write docs","description":"- a","columnId":`+itoa(todo)+`,"priority":"high","dueDate":"2026-03-01T00:00:00Z"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	task := decodeBody[common.Task](t, rec)
	if task.Order != 1 || task.Priority != "high" || task.DueDate == nil {
		t.Fatalf("unexpected task %#v", task)
	}

	rec = serve(t, h, http.MethodPut, "/tasks/"+itoa(task.ID), `{"id":`+itoa(task.ID)+`,"title":"Write more docs","description":"","columnId":`+itoa(todo)+`,"dueDate":null,"priority":"bogus"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[common.Task](t, rec)
	if updated.Title != "Write more docs" || updated.Priority != "low" || updated.DueDate != nil {
		t.Fatalf("unexpected updated task %#v", updated)
	}

	rec = serve(t, h, http.MethodPatch, "/tasks/"+itoa(task.ID)+"/move", `{"columnId":`+itoa(doing)+`,"order":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("move status = %d, body %s", rec.Code, rec.Body.String())
	}
	moved := decodeBody[common.Task](t, rec)
	if moved.ColumnID != doing || moved.Order != 1 {
		t.Fatalf("unexpected moved task %#v", moved)
	}

	rec = serve(t, h, http.MethodGet, "/tasks/column/"+itoa(doing), "")
	inColumn := decodeBody[[]common.Task](t, rec)
	if len(inColumn) != 1 || inColumn[0].ID != task.ID {
		t.Fatalf("unexpected column tasks %#v", inColumn)
	}

	rec = serve(t, h, http.MethodGet, "/tasks", "")
	if all := decodeBody[[]common.Task](t, rec); len(all) != 1 {
		t.Fatalf("unexpected task list %#v", all)
	}

	rec = serve(t, h, http.MethodDelete, "/tasks/"+itoa(task.ID), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = serve(t, h, http.MethodGet, "/tasks/"+itoa(task.ID), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
	envelope := decodeBody[ErrorEnvelope](t, rec)
	if envelope.Error.Code != common.CodeNotFound {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}

func TestHandlerMoveColumn(t *testing.T) {
	h, svc, board := newTestHandler(t)
	a, c := board.Columns[0].ID, board.Columns[2].ID

	rec := serve(t, h, http.MethodPatch, "/columns/"+itoa(a)+"/move", `{"targetColumnId":`+itoa(c)+`}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	columns, err := svc.ListColumns(context.Background(), board.ID)
	if err != nil {
		t.Fatalf("ListColumns() error = %v", err)
	}
	if columns[2].ID != a {
		t.Fatalf("expected moved column last, got %#v", columns)
	}
}

func TestHandlerErrorMapping(t *testing.T) {
	h, _, board := newTestHandler(t)
	todo := itoa(board.Columns[0].ID)

	cases := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   string
	}{
		{name: "unknown route", method: http.MethodGet, target: "/nope", status: http.StatusNotFound, code: common.CodeNotFound},
		{name: "bad id", method: http.MethodGet, target: "/tasks/abc", status: http.StatusBadRequest, code: common.CodeInvalidRequest},
		{name: "method", method: http.MethodDelete, target: "/boards", status: http.StatusMethodNotAllowed, code: "method_not_allowed"},
		{name: "unknown field", method: http.MethodPost, target: "/tasks", body: `{"title":"x","columnId":` + todo + `,"extra":1}`, status: http.StatusBadRequest, code: common.CodeInvalidRequest},
		{name: "trailing body", method: http.MethodPost, target: "/boards", body: `{"name":"x"}{}`, status: http.StatusBadRequest, code: common.CodeInvalidRequest},
		{name: "empty title", method: http.MethodPost, target: "/tasks", body: `{"title":" ","columnId":` + todo + `}`, status: http.StatusBadRequest, code: common.CodeInvalidRequest},
		{name: "missing column", method: http.MethodPost, target: "/tasks", body: `{"title":"x","columnId":999}`, status: http.StatusNotFound, code: common.CodeNotFound},
		{name: "id mismatch", method: http.MethodPut, target: "/tasks/5", body: `{"id":6,"title":"x"}`, status: http.StatusBadRequest, code: common.CodeInvalidRequest},
		{name: "zero order", method: http.MethodPatch, target: "/tasks/5/move", body: `{"columnId":` + todo + `,"order":0}`, status: http.StatusBadRequest, code: common.CodeInvalidRequest},
		{name: "missing board", method: http.MethodGet, target: "/boards/999", status: http.StatusNotFound, code: common.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, h, tc.method, tc.target, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.status, rec.Body.String())
			}
			envelope := decodeBody[ErrorEnvelope](t, rec)
			if envelope.Error.Code != tc.code {
				t.Fatalf("code = %q, want %q", envelope.Error.Code, tc.code)
			}
		})
	}
}

func TestHandlerWithoutService(t *testing.T) {
	rec := serve(t, NewHandler(nil), http.MethodGet, "/boards", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
