// Package migrations owns the ticket schema. SQL files are embedded and
// applied with goose over a database/sql handle borrowed from the pgx pool.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var files embed.FS

const dir = "sql"

type Migrator struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(pool *pgxpool.Pool, logger *slog.Logger) (*Migrator, error) {
	const op = "migrations.New"

	goose.SetBaseFS(files)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Migrator{
		db:     stdlib.OpenDBFromPool(pool),
		logger: logger,
	}, nil
}

func (m *Migrator) Up(ctx context.Context) error {
	const op = "migrations.Up"

	from, err := goose.GetDBVersionContext(ctx, m.db)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := goose.UpContext(ctx, m.db, dir); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	to, err := goose.GetDBVersionContext(ctx, m.db)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.logger.Info("schema migrated", "from_version", from, "to_version", to)
	return nil
}

// Down rolls back one migration.
func (m *Migrator) Down(ctx context.Context) error {
	const op = "migrations.Down"

	if err := goose.DownContext(ctx, m.db, dir); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (m *Migrator) Version(ctx context.Context) (int64, error) {
	const op = "migrations.Version"

	v, err := goose.GetDBVersionContext(ctx, m.db)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

// Close releases the database/sql handle. The pool it borrows from stays open.
func (m *Migrator) Close() error { return m.db.Close() }
