// Package inpsql provides data types and methods for PostgreSQL storage
// operations.
package inpsql

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"sync"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

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
	DB  *sqlx.DB
}

// InitStorage initializes a Storage object, sets its attributes and starts
// a listener for graceful connection closure.
func InitStorage(ctx context.Context, wg *sync.WaitGroup, cfg *config.StorageConfig, log *zap.Logger) (*Storage, error) {
	db, err := sqlx.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, &storageErrors.ExecutionError{Err: err}
	}
	st := Storage{
		cfg: cfg,
		log: log,
		DB:  db,
	}
	if err := st.createTable(ctx); err != nil {
		return nil, err
	}
	go func() {
		defer wg.Done()
		<-ctx.Done()
		if err := st.DB.Close(); err != nil {
			log.Error("PSQL DB connection closure failed", zap.Error(err))
			return
		}
		log.Info("PSQL DB connection closed successfully")
	}()
	return &st, nil
}

// Create stores a new link; the store assigns id and timestamps.
func (s *Storage) Create(ctx context.Context, link modelstorage.Link) (modelstorage.Link, error) {
	query := `INSERT INTO links (source, destination, title, description, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING ` + selectColumns
	var stored modelstorage.Link
	err := s.DB.GetContext(ctx, &stored, query, link.Source, link.Destination, link.Title, link.Description, link.Status)
	if err != nil {
		return modelstorage.Link{}, s.wrapWriteError(ctx, err, link.Source)
	}
	return stored, nil
}

// Get returns a link by its id.
func (s *Storage) Get(ctx context.Context, id int64) (modelstorage.Link, error) {
	query := `SELECT ` + selectColumns + ` FROM links WHERE id = $1`
	var link modelstorage.Link
	err := s.DB.GetContext(ctx, &link, query, id)
	if err != nil {
		return modelstorage.Link{}, s.wrapReadError(ctx, err, formatKey(id))
	}
	return link, nil
}

// GetBySource returns a link by its source path.
func (s *Storage) GetBySource(ctx context.Context, source string) (modelstorage.Link, error) {
	query := `SELECT ` + selectColumns + ` FROM links WHERE source = $1`
	var link modelstorage.Link
	err := s.DB.GetContext(ctx, &link, query, source)
	if err != nil {
		return modelstorage.Link{}, s.wrapReadError(ctx, err, source)
	}
	return link, nil
}

// List returns links filtered by status, newest created_at first.
func (s *Storage) List(ctx context.Context, statuses ...string) ([]modelstorage.Link, error) {
	var (
		query string
		args  []interface{}
		err   error
	)
	if len(statuses) == 0 {
		query = `SELECT ` + selectColumns + ` FROM links ORDER BY created_at DESC, id DESC`
	} else {
		query, args, err = sqlx.In(`SELECT `+selectColumns+` FROM links WHERE status IN (?) ORDER BY created_at DESC, id DESC`, statuses)
		if err != nil {
			return nil, &storageErrors.StatementError{Err: err}
		}
		query = s.DB.Rebind(query)
	}
	var links []modelstorage.Link
	err = s.DB.SelectContext(ctx, &links, query, args...)
	if err != nil {
		if isCtxExpired(ctx, err) {
			return nil, &storageErrors.ContextTimeoutExceededError{Err: err}
		}
		return nil, &storageErrors.ScanningError{Err: err}
	}
	return links, nil
}

// Update replaces a link's content fields refreshing updated_at. The status
// field is written only when set by the caller.
func (s *Storage) Update(ctx context.Context, link modelstorage.Link) (modelstorage.Link, error) {
	query := `UPDATE links
		SET source = $1, destination = $2, title = $3, description = $4,
			status = COALESCE(NULLIF($5, ''), status), updated_at = now()
		WHERE id = $6 RETURNING ` + selectColumns
	var stored modelstorage.Link
	err := s.DB.GetContext(ctx, &stored, query, link.Source, link.Destination, link.Title, link.Description, link.Status, link.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return modelstorage.Link{}, &storageErrors.NotFoundError{Key: formatKey(link.ID), Err: err}
		}
		return modelstorage.Link{}, s.wrapWriteError(ctx, err, link.Source)
	}
	return stored, nil
}

// Delete removes a link by id and reports whether a record was removed.
func (s *Storage) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM links WHERE id = $1`, id)
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

// MarkSynced moves published links with the given ids to synced. Links
// already synced (or no longer published) are left untouched, making the
// operation idempotent.
func (s *Storage) MarkSynced(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`UPDATE links SET status = ?, updated_at = now() WHERE id IN (?) AND status = ?`,
		modelstorage.StatusSynced, ids, modelstorage.StatusPublished)
	if err != nil {
		return &storageErrors.StatementError{Err: err}
	}
	query = s.DB.Rebind(query)
	_, err = s.DB.ExecContext(ctx, query, args...)
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

// createTable creates a table for PSQL DB storage if not exist.
func (s *Storage) createTable(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS links (
		id bigserial PRIMARY KEY,
		source text NOT NULL UNIQUE,
		destination text NOT NULL,
		title text NOT NULL DEFAULT '',
		description text NOT NULL DEFAULT '',
		status text NOT NULL DEFAULT 'draft',
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	);`
	_, err := s.DB.ExecContext(ctx, query)
	if err != nil {
		return &storageErrors.ExecutionError{Err: err}
	}
	return nil
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
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
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

func formatKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
