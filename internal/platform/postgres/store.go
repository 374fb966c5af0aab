// Package postgres implements store.Repository on PostgreSQL through
// database/sql with the pgx driver. Schema changes ship as embedded
// goose migrations applied on open.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/pressly/goose/v3"

	"github.com/flashmark/flashmark/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a PostgreSQL-backed store.Repository.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure Store implements store.Repository
var _ store.Repository = (*Store)(nil)

// Open connects to the database at url, verifies the connection and
// applies any pending migrations.
func Open(ctx context.Context, url string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", store.ErrStorage, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to database: %w", store.ErrStorage, err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		logger: logger.With(slog.String("component", "postgres")),
	}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%w: setting migration dialect: %w", store.ErrStorage, err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("%w: applying migrations: %w", store.ErrStorage, err)
	}
	return nil
}

// Reset truncates all core tables. Integration test support.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "TRUNCATE decks, cards, reviews CASCADE"); err != nil {
		return fmt.Errorf("%w: truncating tables: %w", store.ErrStorage, err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
