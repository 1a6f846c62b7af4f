package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrStoreUnavailable marks failures to open, reach or migrate the store.
var ErrStoreUnavailable = errors.New("store unavailable")

type DB struct {
	*sql.DB
	path string
}

// Open opens the SQLite file at path and applies pending migrations.
// The pool holds a single connection, so concurrent writers queue.
func Open(ctx context.Context, path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("%w: failed to create database directory: %w", ErrStoreUnavailable, err)
		}
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrStoreUnavailable, err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: failed to connect to database: %w", ErrStoreUnavailable, err)
	}

	db := &DB{DB: sqlDB, path: path}

	version, dirty, err := RunMigrations(db)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	slog.Debug("Database opened", "path", path, "schema_version", version, "dirty", dirty)

	return db, nil
}

func (db *DB) Path() string {
	return db.path
}

// WithStore opens the store, runs fn and closes the store on every path.
func WithStore(ctx context.Context, path string, fn func(db *DB) error) error {
	db, err := Open(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Warn("Failed to close database", "path", path, "error", err)
		}
	}()

	return fn(db)
}

// OpenReadOnly opens an existing, fully migrated store for reading. It never
// creates files or applies migrations; a missing file or an outdated schema
// is ErrStoreUnavailable.
func OpenReadOnly(ctx context.Context, path string) (*DB, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrStoreUnavailable, path)
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=query_only(1)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrStoreUnavailable, err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: failed to connect to database: %w", ErrStoreUnavailable, err)
	}

	db := &DB{DB: sqlDB, path: path}

	if err := CheckSchema(ctx, db); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return db, nil
}

// WithReadOnlyStore is WithStore for the read side.
func WithReadOnlyStore(ctx context.Context, path string, fn func(db *DB) error) error {
	db, err := OpenReadOnly(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Warn("Failed to close database", "path", path, "error", err)
		}
	}()

	return fn(db)
}
