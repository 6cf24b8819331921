package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// EditorIndentWidth is the fixed list indentation step in spaces.
const EditorIndentWidth = 4

// Config represents config data used by this package.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Board    BoardConfig    `toml:"board"`
	Editor   EditorConfig   `toml:"editor"`
	Images   ImagesConfig   `toml:"images"`
	Server   ServerConfig   `toml:"server"`
}

// DatabaseConfig represents database config data used by this package.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig configures runtime log level and the optional dev-file sink.
type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// DevFileConfig configures workspace-local log files in dev mode.
type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// BoardConfig configures board seeding.
type BoardConfig struct {
	DefaultColumns  []ColumnConfig `toml:"default_columns"`
	DefaultPriority string         `toml:"default_priority"`
}

// ColumnConfig is one seeded column.
type ColumnConfig struct {
	Name  string `toml:"name"`
	Color string `toml:"color"`
}

// EditorConfig configures the task description editor.
type EditorConfig struct {
	IndentWidth   int    `toml:"indent_width"`
	MarkdownStyle string `toml:"markdown_style"` // dark | light | notty
	ShowPreview   bool   `toml:"show_preview"`
}

// ImagesConfig configures the image optimizer.
type ImagesConfig struct {
	MaxWidth  int     `toml:"max_width"`
	MaxHeight int     `toml:"max_height"`
	Quality   float64 `toml:"quality"`
}

// ServerConfig configures serve-mode endpoints.
type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

var (
	validLogLevels      = []string{"debug", "info", "warn", "error", "fatal"}
	validPriorities     = []string{"low", "medium", "high"}
	validMarkdownStyles = []string{"dark", "light", "notty"}
)

func defaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{Name: "To Do", Color: "#3b82f6"},
		{Name: "In Progress", Color: "#f59e0b"},
		{Name: "Done", Color: "#10b981"},
	}
}

// Default returns default configuration rooted at dbPath.
func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".cereboard/log",
			},
		},
		Board: BoardConfig{
			DefaultColumns:  defaultColumns(),
			DefaultPriority: "low",
		},
		Editor: EditorConfig{
			IndentWidth:   EditorIndentWidth,
			MarkdownStyle: "dark",
			ShowPreview:   true,
		},
		Images: ImagesConfig{
			MaxWidth:  1280,
			MaxHeight: 1280,
			Quality:   0.7,
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
	}
}

// Load reads path over defaults. A missing or empty file yields defaults.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	// Array tables append onto existing slices; file columns replace the defaults.
	cfg.Board.DefaultColumns = nil
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	if cfg.Board.DefaultColumns == nil {
		cfg.Board.DefaultColumns = slices.Clone(defaults.Board.DefaultColumns)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	level := strings.TrimSpace(strings.ToLower(c.Logging.Level))
	if !slices.Contains(validLogLevels, level) {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if len(c.Board.DefaultColumns) == 0 {
		return errors.New("board.default_columns must include at least one column")
	}
	seenColumn := map[string]struct{}{}
	for idx, column := range c.Board.DefaultColumns {
		name := strings.TrimSpace(column.Name)
		if name == "" {
			return fmt.Errorf("board.default_columns[%d].name is required", idx)
		}
		key := strings.ToLower(name)
		if _, ok := seenColumn[key]; ok {
			return fmt.Errorf("board.default_columns[%d].name is duplicated: %s", idx, name)
		}
		seenColumn[key] = struct{}{}
	}
	priority := strings.TrimSpace(strings.ToLower(c.Board.DefaultPriority))
	if priority != "" && !slices.Contains(validPriorities, priority) {
		return fmt.Errorf("invalid board.default_priority: %q", c.Board.DefaultPriority)
	}

	if c.Editor.IndentWidth != 0 && c.Editor.IndentWidth != EditorIndentWidth {
		return fmt.Errorf("editor.indent_width must be %d", EditorIndentWidth)
	}
	style := strings.TrimSpace(strings.ToLower(c.Editor.MarkdownStyle))
	if style != "" && !slices.Contains(validMarkdownStyles, style) {
		return fmt.Errorf("invalid editor.markdown_style: %q", c.Editor.MarkdownStyle)
	}

	if c.Images.MaxWidth < 0 || c.Images.MaxHeight < 0 {
		return errors.New("images.max_width and images.max_height must be >= 0")
	}
	if c.Images.Quality < 0 || c.Images.Quality > 1 {
		return fmt.Errorf("images.quality must be within [0, 1], got %v", c.Images.Quality)
	}

	api := strings.Trim(strings.TrimSpace(c.Server.APIEndpoint), "/")
	mcp := strings.Trim(strings.TrimSpace(c.Server.MCPEndpoint), "/")
	if api != "" && api == mcp {
		return errors.New("server.api_endpoint and server.mcp_endpoint must differ")
	}

	return nil
}

// EnsureConfigDir creates the parent directory of path.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
