// Package sqlite implements store.Repository on an embedded SQLite
// database via the modernc.org pure-Go driver. Timestamps are stored as
// RFC 3339 text, tags as a JSON array, grades as their ordinal score.
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/flashmark/flashmark/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS decks (
  id         TEXT PRIMARY KEY,
  name       TEXT NOT NULL UNIQUE,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cards (
  id               TEXT PRIMARY KEY,
  deck_id          TEXT NOT NULL,
  front            TEXT NOT NULL,
  back             TEXT NOT NULL,
  hint             TEXT,
  tags             TEXT NOT NULL,
  reps             INTEGER NOT NULL DEFAULT 0,
  interval_days    INTEGER NOT NULL DEFAULT 0,
  ef               REAL    NOT NULL DEFAULT 2.5,
  due_at           TEXT    NOT NULL,
  last_grade       INTEGER,
  last_reviewed_at TEXT,
  suspended        INTEGER NOT NULL DEFAULT 0,
  created_at       TEXT NOT NULL,
  FOREIGN KEY(deck_id) REFERENCES decks(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS reviews (
  id               TEXT PRIMARY KEY,
  card_id          TEXT NOT NULL,
  grade            INTEGER NOT NULL,
  reviewed_at      TEXT NOT NULL,
  interval_applied INTEGER NOT NULL,
  ef_after         REAL NOT NULL,
  FOREIGN KEY(card_id) REFERENCES cards(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_cards_deck_due ON cards (deck_id, due_at);
CREATE INDEX IF NOT EXISTS idx_reviews_card_time ON reviews (card_id, reviewed_at);
`

// Store is a SQLite-backed store.Repository.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure Store implements store.Repository
var _ store.Repository = (*Store)(nil)

// Open opens (creating if necessary) the database file at path and
// ensures the schema exists.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: database path cannot be empty", store.ErrStorage)
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%w: creating database directory: %w", store.ErrStorage, err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	return openDSN(dsn, logger)
}

var memoryDBID atomic.Int64

// OpenMemory opens a private in-memory database, used in tests. Each
// call gets its own uniquely named database; cache=shared ties its
// lifetime to the pool rather than to any single connection, so a
// recycled connection cannot drop the schema.
func OpenMemory(logger *slog.Logger) (*Store, error) {
	dsn := fmt.Sprintf(
		"file:memdb%d?mode=memory&cache=shared&_pragma=foreign_keys(1)",
		memoryDBID.Add(1))
	return openDSN(dsn, logger)
}

func openDSN(dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", store.ErrStorage, err)
	}

	// One connection serializes writers, which sidesteps SQLITE_BUSY
	// under concurrent reviews and keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to database: %w", store.ErrStorage, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: applying schema: %w", store.ErrStorage, err)
	}

	return &Store{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite")),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// isUniqueViolation matches the driver's text for UNIQUE constraint
// failures. The driver does not export a typed error for this.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
