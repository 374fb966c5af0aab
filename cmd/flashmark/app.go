package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flashmark/flashmark/internal/config"
	"github.com/flashmark/flashmark/internal/domain/srs"
	"github.com/flashmark/flashmark/internal/platform/jsonstore"
	"github.com/flashmark/flashmark/internal/platform/postgres"
	"github.com/flashmark/flashmark/internal/platform/sqlite"
	"github.com/flashmark/flashmark/internal/service/review"
	"github.com/flashmark/flashmark/internal/store"
)

// dueDefaults carries the due-query flags shared by the due and review
// commands.
type dueDefaults struct {
	IncludeNew    bool
	IncludeLapsed bool
	Max           int
}

// application holds the initialized dependencies every command runs
// against.
type application struct {
	config        *config.Config
	logger        *slog.Logger
	repo          store.Repository
	reviewService review.Service
	dueDefaults   dueDefaults
}

// newApplication opens the configured storage backend and wires the
// services on top of it.
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	repo, err := openRepository(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	return &application{
		config:        cfg,
		logger:        log,
		repo:          repo,
		reviewService: review.NewService(repo, srs.New(), log),
	}, nil
}

func openRepository(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (store.Repository, error) {
	switch cfg.Backend {
	case "json":
		return jsonstore.Open(cfg.Path, cfg.MaxBackups, log)
	case "sqlite":
		return sqlite.Open(cfg.Path, log)
	case "postgres":
		return postgres.Open(ctx, cfg.URL, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// cleanup releases application resources. Safe to call once at exit.
func (app *application) cleanup() {
	if err := app.repo.Close(); err != nil {
		app.logger.Error("failed to close repository", "error", err)
	}
}
