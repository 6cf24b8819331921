package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanschultz/cereboard/internal/app"
	"github.com/evanschultz/cereboard/internal/domain"
	"github.com/evanschultz/cereboard/internal/images"
	"github.com/evanschultz/cereboard/internal/reorder"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

//go:embed migrations/*.sql
var migrations embed.FS

// Repository stores boards, columns, tasks, change events and images.
type Repository struct {
	db *sql.DB
}

var _ app.Repository = (*Repository)(nil)

// Open opens the database at path, creating its directory, and applies
// pending migrations.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db, `PRAGMA journal_mode = WAL;`, `PRAGMA busy_timeout = 5000;`)
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	return newRepository(db)
}

func newRepository(db *sql.DB, pragmas ...string) (*Repository, error) {
	// One connection: sqlite has a single writer and an in-memory database
	// lives only as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(context.Background(), pragmas); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate applies connection pragmas and the embedded goose migrations.
func (r *Repository) migrate(ctx context.Context, pragmas []string) error {
	for _, stmt := range append([]string{`PRAGMA foreign_keys = ON;`}, pragmas...) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("configure sqlite: %w", err)
		}
	}

	// goose logs to stdout, which would corrupt the TUI.
	goose.SetLogger(log.New(io.Discard, "", 0))
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, r.db, "migrations"); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

// CreateBoard creates board.
func (r *Repository) CreateBoard(ctx context.Context, b domain.Board) (domain.Board, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO boards(id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, nullableID(b.ID), b.Name, b.Description, ts(b.CreatedAt), ts(b.UpdatedAt))
	if err != nil {
		return domain.Board{}, fmt.Errorf("insert board: %w", err)
	}
	b.ID, err = res.LastInsertId()
	return b, err
}

// UpdateBoard updates state for the requested operation.
func (r *Repository) UpdateBoard(ctx context.Context, b domain.Board) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE boards
		SET name = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, b.Name, b.Description, ts(b.UpdatedAt), b.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetBoard returns board without its columns.
func (r *Repository) GetBoard(ctx context.Context, id int64) (domain.Board, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM boards
		WHERE id = ?
	`, id)
	return scanBoard(row)
}

// ListBoards lists boards.
func (r *Repository) ListBoards(ctx context.Context) ([]domain.Board, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM boards
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Board{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteBoard deletes a board. Columns, tasks and events cascade.
func (r *Repository) DeleteBoard(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// CreateColumn creates column.
func (r *Repository) CreateColumn(ctx context.Context, c domain.Column) (domain.Column, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO board_columns(id, board_id, name, position, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, nullableID(c.ID), c.BoardID, c.Name, c.Order, c.Color, ts(c.CreatedAt), ts(c.UpdatedAt))
	if err != nil {
		return domain.Column{}, fmt.Errorf("insert column: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return c, err
}

// UpdateColumn updates state for the requested operation.
func (r *Repository) UpdateColumn(ctx context.Context, c domain.Column) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE board_columns
		SET board_id = ?, name = ?, position = ?, color = ?, updated_at = ?
		WHERE id = ?
	`, c.BoardID, c.Name, c.Order, c.Color, ts(c.UpdatedAt), c.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetColumn returns column without its tasks.
func (r *Repository) GetColumn(ctx context.Context, id int64) (domain.Column, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, board_id, name, position, color, created_at, updated_at
		FROM board_columns
		WHERE id = ?
	`, id)
	return scanColumn(row)
}

// ListColumns lists the columns of a board by position.
func (r *Repository) ListColumns(ctx context.Context, boardID int64) ([]domain.Column, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, board_id, name, position, color, created_at, updated_at
		FROM board_columns
		WHERE board_id = ?
		ORDER BY position ASC, id ASC
	`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Column{}
	for rows.Next() {
		c, err := scanColumn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteColumn deletes a column and its tasks.
func (r *Repository) DeleteColumn(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM board_columns WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// SetColumnOrders writes column positions in one transaction.
func (r *Repository) SetColumnOrders(ctx context.Context, assignments []reorder.Assignment) (err error) {
	if len(assignments) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, a := range assignments {
		res, execErr := tx.ExecContext(ctx, `UPDATE board_columns SET position = ? WHERE id = ?`, a.Order, a.ID)
		if execErr != nil {
			return execErr
		}
		if err = translateNoRows(res); err != nil {
			return fmt.Errorf("column %d: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

// CreateTask creates task.
func (r *Repository) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks(id, column_id, position, title, description, priority, due_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		nullableID(t.ID),
		t.ColumnID,
		t.Order,
		t.Title,
		t.Description,
		string(t.Priority),
		nullableTS(t.DueDate),
		ts(t.CreatedAt),
		ts(t.UpdatedAt),
	)
	if err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}
	t.ID, err = res.LastInsertId()
	return t, err
}

// UpdateTask updates state for the requested operation.
func (r *Repository) UpdateTask(ctx context.Context, t domain.Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET column_id = ?, position = ?, title = ?, description = ?, priority = ?, due_at = ?, updated_at = ?
		WHERE id = ?
	`, t.ColumnID, t.Order, t.Title, t.Description, string(t.Priority), nullableTS(t.DueDate), ts(t.UpdatedAt), t.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetTask returns task.
func (r *Repository) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx, taskSelect+` WHERE id = ?`, id)
	return scanTask(row)
}

// ListTasks lists the tasks of a column by position.
func (r *Repository) ListTasks(ctx context.Context, columnID int64) ([]domain.Task, error) {
	return r.queryTasks(ctx, taskSelect+` WHERE column_id = ? ORDER BY position ASC, id ASC`, columnID)
}

// ListBoardTasks lists every task on a board.
func (r *Repository) ListBoardTasks(ctx context.Context, boardID int64) ([]domain.Task, error) {
	return r.queryTasks(ctx, taskSelect+`
		WHERE column_id IN (SELECT id FROM board_columns WHERE board_id = ?)
		ORDER BY column_id ASC, position ASC, id ASC
	`, boardID)
}

// ListAllTasks lists every stored task.
func (r *Repository) ListAllTasks(ctx context.Context) ([]domain.Task, error) {
	return r.queryTasks(ctx, taskSelect+` ORDER BY column_id ASC, position ASC, id ASC`)
}

// DeleteTask deletes task.
func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// PlaceTasks writes task columns and positions in one transaction, so a
// cross-column move never leaves either column half reindexed.
func (r *Repository) PlaceTasks(ctx context.Context, placements []app.TaskPlacement) (err error) {
	if len(placements) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, p := range placements {
		res, execErr := tx.ExecContext(ctx, `UPDATE tasks SET column_id = ?, position = ? WHERE id = ?`, p.ColumnID, p.Order, p.TaskID)
		if execErr != nil {
			return execErr
		}
		if err = translateNoRows(res); err != nil {
			return fmt.Errorf("task %d: %w", p.TaskID, err)
		}
	}
	return tx.Commit()
}

// CreateChangeEvent appends an activity ledger record.
func (r *Repository) CreateChangeEvent(ctx context.Context, event domain.ChangeEvent) error {
	metadataJSON, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("encode change event metadata: %w", err)
	}
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO change_events(board_id, task_id, operation, metadata_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, event.BoardID, event.TaskID, string(event.Operation), string(metadataJSON), ts(occurred))
	if err != nil {
		return fmt.Errorf("insert change event: %w", err)
	}
	return nil
}

// ListBoardChangeEvents lists recent board events, newest first.
func (r *Repository) ListBoardChangeEvents(ctx context.Context, boardID int64, limit int) ([]domain.ChangeEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, board_id, task_id, operation, metadata_json, created_at
		FROM change_events
		WHERE board_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, boardID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ChangeEvent, 0)
	for rows.Next() {
		var (
			event       domain.ChangeEvent
			opRaw       string
			metadataRaw string
			createdRaw  string
		)
		if err := rows.Scan(&event.ID, &event.BoardID, &event.TaskID, &opRaw, &metadataRaw, &createdRaw); err != nil {
			return nil, err
		}
		event.Operation = domain.ChangeOperation(opRaw)
		event.OccurredAt = parseTS(createdRaw)
		if strings.TrimSpace(metadataRaw) == "" {
			metadataRaw = "{}"
		}
		if err := json.Unmarshal([]byte(metadataRaw), &event.Metadata); err != nil {
			return nil, fmt.Errorf("decode change_events.metadata_json: %w", err)
		}
		if event.Metadata == nil {
			event.Metadata = map[string]string{}
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

// SaveImage stores an optimized image, replacing any image with the same id.
func (r *Repository) SaveImage(ctx context.Context, img images.Image) error {
	if strings.TrimSpace(img.ID) == "" {
		return domain.ErrInvalidID
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO images(id, content_type, width, height, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content_type = excluded.content_type,
			width = excluded.width,
			height = excluded.height,
			data = excluded.data
	`, img.ID, img.ContentType, img.Width, img.Height, img.Data, ts(img.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

// GetImage returns image.
func (r *Repository) GetImage(ctx context.Context, id string) (images.Image, error) {
	var (
		img        images.Image
		createdRaw string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, content_type, width, height, data, created_at
		FROM images
		WHERE id = ?
	`, id).Scan(&img.ID, &img.ContentType, &img.Width, &img.Height, &img.Data, &createdRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return images.Image{}, app.ErrNotFound
		}
		return images.Image{}, err
	}
	img.CreatedAt = parseTS(createdRaw)
	return img, nil
}

// taskSelect is the column list every task query scans.
const taskSelect = `
	SELECT id, column_id, position, title, description, priority, due_at, created_at, updated_at
	FROM tasks`

func (r *Repository) queryTasks(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// scanner represents scanner data used by this package.
type scanner interface {
	Scan(dest ...any) error
}

// scanBoard handles scan board.
func scanBoard(s scanner) (domain.Board, error) {
	var (
		b          domain.Board
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(&b.ID, &b.Name, &b.Description, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Board{}, app.ErrNotFound
		}
		return domain.Board{}, err
	}
	b.CreatedAt = parseTS(createdRaw)
	b.UpdatedAt = parseTS(updatedRaw)
	return b, nil
}

// scanColumn handles scan column.
func scanColumn(s scanner) (domain.Column, error) {
	var (
		c          domain.Column
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(&c.ID, &c.BoardID, &c.Name, &c.Order, &c.Color, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Column{}, app.ErrNotFound
		}
		return domain.Column{}, err
	}
	c.CreatedAt = parseTS(createdRaw)
	c.UpdatedAt = parseTS(updatedRaw)
	return c, nil
}

// scanTask handles scan task.
func scanTask(s scanner) (domain.Task, error) {
	var (
		t          domain.Task
		priority   string
		dueRaw     sql.NullString
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(&t.ID, &t.ColumnID, &t.Order, &t.Title, &t.Description, &priority, &dueRaw, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, app.ErrNotFound
		}
		return domain.Task{}, err
	}
	t.Priority = domain.ParsePriority(priority)
	t.DueDate = parseNullTS(dueRaw)
	t.CreatedAt = parseTS(createdRaw)
	t.UpdatedAt = parseTS(updatedRaw)
	return t, nil
}

// translateNoRows handles translate no rows.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// nullableID lets sqlite assign a row id when none is given.
func nullableID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// nullableTS handles nullable ts.
func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// parseNullTS parses input into a normalized form.
func parseNullTS(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	ts := parseTS(v.String)
	return &ts
}
