package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	_ "github.com/lib/pq" // postgres driver
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/invoice-generator/pkg/config"
)

// Backend is a Store holding resources released by Close.
type Backend interface {
	Store
	io.Closer
}

type closer struct {
	Store
	close func() error
}

func (c closer) Close() error { return c.close() }

// Open builds the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return closer{Store: NewMemory(), close: func() error { return nil }}, nil

	case config.DriverSQLite:
		return openSQL(ctx, "sqlite", cfg.Path, NewSQLiteStore)

	case config.DriverPostgres:
		return openSQL(ctx, "postgres", cfg.DSN, NewPostgresStore)

	case config.DriverBolt:
		return OpenBolt(cfg.Path)

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		return NewRedis(client, cfg.RedisPrefix), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func openSQL(ctx context.Context, driver, dsn string, wrap func(DBTX) *SQLStore) (Backend, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}
	s := wrap(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return closer{Store: s, close: db.Close}, nil
}
