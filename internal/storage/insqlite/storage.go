// Package insqlite provides data types and methods for SQLite and libsql
// (Turso) storage operations.
package insqlite

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/localan/shortener/internal/config"
	"github.com/localan/shortener/internal/storage"
	storageErrors "github.com/localan/shortener/internal/storage/errors"
	"github.com/localan/shortener/internal/storage/modelstorage"
)

// Check interface implementation explicitly
var (
	_ storage.LinkStorage = (*Storage)(nil)
)

const selectColumns = `id, source, destination, title, description, status, created_at, updated_at`

// Storage struct defines data structure handling and provides support for
// adding new implementations.
type Storage struct {
	cfg *config.StorageConfig
	log *zap.Logger
	DB  *sql.DB
}

// InitStorage initializes a Storage object, sets its attributes and starts
// a listener for graceful connection closure. The driver is picked from the
// DSN: libsql URLs go through the Turso client, everything else through the
// local SQLite driver.
func InitStorage(ctx context.Context, wg *sync.WaitGroup, cfg *config.StorageConfig, log *zap.Logger) (*Storage, error) {
	driverName := "sqlite"
	if strings.Contains(cfg.DatabaseDSN, "libsql://") || strings.Contains(cfg.DatabaseDSN, "wss://") {
		driverName = "libsql"
	}
	db, err := sql.Open(driverName, cfg.DatabaseDSN)
	if err != nil {
		return nil, &storageErrors.ExecutionError{Err: err}
	}
	st := Storage{
		cfg: cfg,
		log: log,
		DB:  db,
	}
	if err := st.migrate(ctx); err != nil {
		return nil, err
	}
	go func() {
		defer wg.Done()
		<-ctx.Done()
		if err := st.DB.Close(); err != nil {
			log.Error("SQLite DB connection closure failed", zap.Error(err))
			return
		}
		log.Info("SQLite DB connection closed successfully")
	}()
	return &st, nil
}

// Create stores a new link; the store assigns id and timestamps.
func (s *Storage) Create(ctx context.Context, link modelstorage.Link) (modelstorage.Link, error) {
	now := time.Now().UTC()
	query := `INSERT INTO links (source, destination, title, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := s.DB.ExecContext(ctx, query, link.Source, link.Destination, link.Title, link.Description, link.Status,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return modelstorage.Link{}, s.wrapWriteError(ctx, err, link.Source)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return modelstorage.Link{}, &storageErrors.ExecutionError{Err: err}
	}
	return s.Get(ctx, id)
}

// Get returns a link by its id.
func (s *Storage) Get(ctx context.Context, id int64) (modelstorage.Link, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM links WHERE id = ?`, id)
	link, err := scanLink(row)
	if err != nil {
		return modelstorage.Link{}, s.wrapReadError(ctx, err, strconv.FormatInt(id, 10))
	}
	return link, nil
}

// GetBySource returns a link by its source path.
func (s *Storage) GetBySource(ctx context.Context, source string) (modelstorage.Link, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM links WHERE source = ?`, source)
	link, err := scanLink(row)
	if err != nil {
		return modelstorage.Link{}, s.wrapReadError(ctx, err, source)
	}
	return link, nil
}

// List returns links filtered by status, newest created_at first.
func (s *Storage) List(ctx context.Context, statuses ...string) ([]modelstorage.Link, error) {
	query := `SELECT ` + selectColumns + ` FROM links`
	var args []interface{}
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + placeholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		if isCtxExpired(ctx, err) {
			return nil, &storageErrors.ContextTimeoutExceededError{Err: err}
		}
		return nil, &storageErrors.ExecutionError{Err: err}
	}
	defer rows.Close()
	var links []modelstorage.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, &storageErrors.ScanningError{Err: err}
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, &storageErrors.ScanningError{Err: err}
	}
	return links, nil
}

// Update replaces a link's content fields refreshing updated_at. The status
// field is written only when set by the caller.
func (s *Storage) Update(ctx context.Context, link modelstorage.Link) (modelstorage.Link, error) {
	if _, err := s.Get(ctx, link.ID); err != nil {
		return modelstorage.Link{}, err
	}
	now := time.Now().UTC()
	query := `UPDATE links
		SET source = ?, destination = ?, title = ?, description = ?,
			status = CASE WHEN ? = '' THEN status ELSE ? END, updated_at = ?
		WHERE id = ?`
	_, err := s.DB.ExecContext(ctx, query, link.Source, link.Destination, link.Title, link.Description,
		link.Status, link.Status, now.Format(time.RFC3339Nano), link.ID)
	if err != nil {
		return modelstorage.Link{}, s.wrapWriteError(ctx, err, link.Source)
	}
	return s.Get(ctx, link.ID)
}

// Delete removes a link by id and reports whether a record was removed.
func (s *Storage) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, id)
	if err != nil {
		if isCtxExpired(ctx, err) {
			return false, &storageErrors.ContextTimeoutExceededError{Err: err}
		}
		return false, &storageErrors.ExecutionError{Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &storageErrors.ExecutionError{Err: err}
	}
	return n > 0, nil
}

// MarkSynced moves published links with the given ids to synced.
func (s *Storage) MarkSynced(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE links SET status = ?, updated_at = ? WHERE id IN (` + placeholders(len(ids)) + `) AND status = ?`
	args := []interface{}{modelstorage.StatusSynced, time.Now().UTC().Format(time.RFC3339Nano)}
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, modelstorage.StatusPublished)
	_, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		if isCtxExpired(ctx, err) {
			return &storageErrors.ContextTimeoutExceededError{Err: err}
		}
		return &storageErrors.ExecutionError{Err: err}
	}
	return nil
}

// PingDB verifies the DB connection.
func (s *Storage) PingDB() error {
	return s.DB.Ping()
}

// CloseDB closes the DB connection.
func (s *Storage) CloseDB() error {
	return s.DB.Close()
}

// migrate creates the links table if not exist and backfills the status
// column on databases predating it. SQLite has no ADD COLUMN IF NOT EXISTS,
// so the ALTER is attempted and its error ignored.
func (s *Storage) migrate(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL UNIQUE,
		destination TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_links_source ON links(source);`
	if _, err := s.DB.ExecContext(ctx, query); err != nil {
		return &storageErrors.ExecutionError{Err: err}
	}
	_, _ = s.DB.ExecContext(ctx, `ALTER TABLE links ADD COLUMN status TEXT NOT NULL DEFAULT 'draft'`)
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLink(row rowScanner) (modelstorage.Link, error) {
	var link modelstorage.Link
	var createdAt, updatedAt string
	err := row.Scan(&link.ID, &link.Source, &link.Destination, &link.Title, &link.Description, &link.Status,
		&createdAt, &updatedAt)
	if err != nil {
		return modelstorage.Link{}, err
	}
	link.CreatedAt = parseTimestamp(createdAt)
	link.UpdatedAt = parseTimestamp(updatedAt)
	return link, nil
}

// parseTimestamp accepts both the RFC3339 values written here and the
// `CURRENT_TIMESTAMP` format of rows created by earlier schema revisions.
func parseTimestamp(value string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t
	}
	return time.Time{}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (s *Storage) wrapReadError(ctx context.Context, err error, key string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &storageErrors.NotFoundError{Key: key, Err: err}
	}
	if isCtxExpired(ctx, err) {
		return &storageErrors.ContextTimeoutExceededError{Err: err}
	}
	return &storageErrors.ScanningError{Err: err}
}

func (s *Storage) wrapWriteError(ctx context.Context, err error, source string) error {
	if strings.Contains(err.Error(), "UNIQUE constraint") {
		return &storageErrors.AlreadyExistsError{Source: source, Err: err}
	}
	if isCtxExpired(ctx, err) {
		return &storageErrors.ContextTimeoutExceededError{Err: err}
	}
	return &storageErrors.ExecutionError{Err: err}
}

func isCtxExpired(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
