package tui

import (
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/evanschultz/cereboard/internal/domain"
	"github.com/evanschultz/cereboard/internal/dragdrop"
)

// Option configures a Model.
type Option func(*Model)

// ClipboardFunc writes text to the system clipboard.
type ClipboardFunc func(string) error

// ReadFileFunc reads an image file for attachment.
type ReadFileFunc func(string) ([]byte, error)

// WithLogger routes drag diagnostics to logger.
func WithLogger(logger dragdrop.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// WithDefaultPriority preselects priority in the new-task form.
func WithDefaultPriority(priority domain.Priority) Option {
	return func(m *Model) {
		if priority != "" {
			m.defaultPriority = domain.ParsePriority(string(priority))
		}
	}
}

// WithMarkdownStyle selects the glamour style used by the task info view.
func WithMarkdownStyle(style string) Option {
	return func(m *Model) {
		if style = strings.TrimSpace(strings.ToLower(style)); style != "" {
			m.markdown.style = style
		}
	}
}

// WithShowPreview toggles glamour rendering in the task info view.
func WithShowPreview(show bool) Option {
	return func(m *Model) {
		m.showPreview = show
	}
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(fn ClipboardFunc) Option {
	return func(m *Model) {
		if fn != nil {
			m.writeClipboard = fn
		}
	}
}

// WithReadFile replaces the image file reader.
func WithReadFile(fn ReadFileFunc) Option {
	return func(m *Model) {
		if fn != nil {
			m.readFile = fn
		}
	}
}

func defaultClipboard(text string) error {
	return clipboard.WriteAll(text)
}

func defaultReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
