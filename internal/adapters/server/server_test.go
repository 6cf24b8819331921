package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/evanschultz/cereboard/internal/adapters/storage/sqlite"
	"github.com/evanschultz/cereboard/internal/app"
)

// newTestDependencies builds server dependencies over an in-memory store.
func newTestDependencies(t *testing.T) Dependencies {
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
	if _, err := svc.EnsureDefaultBoard(context.Background()); err != nil {
		t.Fatalf("EnsureDefaultBoard() error = %v", err)
	}
	return Dependencies{Boards: svc, Ready: repo.Ping}
}

func TestNormalizeConfigDefaults(t *testing.T) {
	cfg, err := normalizeConfig(Config{APIEndpoint: "api/v2/", MCPEndpoint: " "})
	if err != nil {
		t.Fatalf("normalizeConfig() error = %v", err)
	}
	if cfg.HTTPBind != defaultBindAddress {
		t.Fatalf("HTTPBind = %q, want %q", cfg.HTTPBind, defaultBindAddress)
	}
	if cfg.APIEndpoint != "/api/v2" || cfg.MCPEndpoint != "/mcp" {
		t.Fatalf("unexpected endpoints %#v", cfg)
	}
	if cfg.ServerName != "cereboard" || cfg.ServerVersion != "dev" {
		t.Fatalf("unexpected server identity %#v", cfg)
	}

	if _, err := normalizeConfig(Config{APIEndpoint: "/same", MCPEndpoint: "same"}); err == nil {
		t.Fatal("normalizeConfig() error = nil, want endpoint collision error")
	}
}

func TestNewHandlerRequiresBoards(t *testing.T) {
	if _, _, err := NewHandler(Config{}, Dependencies{}); err == nil {
		t.Fatal("NewHandler() error = nil, want error")
	}
}

func TestNewHandlerRoutes(t *testing.T) {
	handler, _, err := NewHandler(Config{}, newTestDependencies(t))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	cases := []struct {
		target string
		status int
		want   string
	}{
		{target: "/healthz", status: http.StatusOK, want: `"ok"`},
		{target: "/readyz", status: http.StatusOK, want: `"ok"`},
		{target: "/api/v1/boards", status: http.StatusOK, want: `"Inbox"`},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))
		if rec.Code != tc.status {
			t.Fatalf("%s status = %d, want %d", tc.target, rec.Code, tc.status)
		}
		if !strings.Contains(rec.Body.String(), tc.want) {
			t.Fatalf("%s body = %q, want %s", tc.target, rec.Body.String(), tc.want)
		}
	}
}

func TestReadyzReportsStorageFailure(t *testing.T) {
	deps := newTestDependencies(t)
	deps.Ready = func(context.Context) error { return errors.New("database locked") }
	handler, _, err := NewHandler(Config{}, deps)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	deps := newTestDependencies(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{HTTPBind: "127.0.0.1:0"}, deps)
	}()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
