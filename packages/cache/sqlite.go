package cache

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/lazyreq/packages/core/errs"
	"github.com/pkg/errors"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS macro_cache (
	key        TEXT PRIMARY KEY,
	expires_at INTEGER NOT NULL,
	value      TEXT NOT NULL
)`

// SQLiteStore keeps entries in a single sqlite database file.
type SQLiteStore struct {
	db      *sql.DB
	path    string
	timeout time.Duration
}

// NewSQLiteStore opens (and creates if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errs.New(errs.ErrCacheIO, path, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errs.New(errs.ErrCacheIO, path, errors.Wrap(err, "failed to open database"))
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errs.New(errs.ErrCacheIO, path, errors.Wrap(err, "failed to connect to database"))
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errs.New(errs.ErrCacheIO, path, errors.Wrap(err, "failed to create schema"))
	}

	return &SQLiteStore{db: db, path: path, timeout: 10 * time.Second}, nil
}

// DefaultSQLitePath returns the database path used when no cache dir is set.
func DefaultSQLitePath(dir string) string {
	if dir == "" {
		dir = DefaultDir()
	}
	return filepath.Join(dir, "macros.db")
}

func (s *SQLiteStore) Location() string {
	return s.path
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) ReadEntry(ctx context.Context, key string) (*Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		value   string
		expires int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM macro_cache WHERE key = ?`, key,
	).Scan(&value, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, errs.New(errs.ErrCacheIO, key, err)
	}

	return &Entry{Key: key, Value: value, ExpiresAt: time.Unix(expires, 0)}, nil
}

func (s *SQLiteStore) WriteEntry(ctx context.Context, entry *Entry) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO macro_cache (key, expires_at, value) VALUES (?, ?, ?)`,
		entry.Key, entry.ExpiresAt.Unix(), entry.Value,
	)
	if err != nil {
		return errs.New(errs.ErrCacheIO, entry.Key, err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT key, expires_at, value FROM macro_cache ORDER BY key`)
	if err != nil {
		return nil, errs.New(errs.ErrCacheIO, s.path, errors.Wrap(err, "query failed"))
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			entry   Entry
			expires int64
		)
		if err := rows.Scan(&entry.Key, &expires, &entry.Value); err != nil {
			return nil, errs.New(errs.ErrCacheIO, s.path, errors.Wrap(err, "failed to scan row"))
		}
		entry.ExpiresAt = time.Unix(expires, 0)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.New(errs.ErrCacheIO, s.path, errors.Wrap(err, "row iteration error"))
	}
	return entries, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM macro_cache WHERE key = ?`, key); err != nil {
		return errs.New(errs.ErrCacheIO, key, err)
	}
	return nil
}
