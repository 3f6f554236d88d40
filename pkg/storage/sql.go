package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DBTX is the subset of *sql.DB and *sql.Tx used by SQLStore.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type dialect struct {
	schema string
	get    string
	set    string
}

var sqliteDialect = dialect{
	schema: `CREATE TABLE IF NOT EXISTS kv_store (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
)`,
	get: `SELECT value FROM kv_store WHERE key = ?`,
	set: `INSERT INTO kv_store (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
}

var postgresDialect = dialect{
	schema: `CREATE TABLE IF NOT EXISTS kv_store (
  key   TEXT PRIMARY KEY,
  value BYTEA NOT NULL
)`,
	get: `SELECT value FROM kv_store WHERE key = $1`,
	set: `INSERT INTO kv_store (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
}

// SQLStore keeps key-value pairs in a kv_store table.
type SQLStore struct {
	db DBTX
	q  dialect
}

// NewSQLiteStore wraps a database opened with the sqlite driver.
func NewSQLiteStore(db DBTX) *SQLStore {
	return &SQLStore{db: db, q: sqliteDialect}
}

// NewPostgresStore wraps a database opened with the postgres driver.
func NewPostgresStore(db DBTX) *SQLStore {
	return &SQLStore{db: db, q: postgresDialect}
}

// Migrate creates the kv_store table if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.q.schema); err != nil {
		return fmt.Errorf("failed to create kv_store: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.q.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.q.set, key, value); err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}
