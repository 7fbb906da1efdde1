package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/antonk9218/skdesk/internal/client/storage/migrations"
	"github.com/pressly/goose/v3"
)

// Open opens (creating if needed) the sqlite database at dsn, runs the
// embedded migrations, and returns a ready KV plus the handle for the
// caller to close.
func Open(ctx context.Context, dsn string) (*SQLiteKV, *sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to migrate storage: %w", err)
	}

	return NewSQLiteKV(db), db, nil
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}
