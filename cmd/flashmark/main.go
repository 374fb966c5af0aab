// Package main implements the flashmark command: a spaced-repetition
// flashcard manager with deck and card management, interactive review
// sessions, study statistics, and an HTTP API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/flashmark/flashmark/internal/config"
	"github.com/flashmark/flashmark/internal/platform/logger"
)

const usageText = `Usage: flashmark [flags] <command> [args]

Commands:
  deck add <name>              create a deck
  deck list                    list decks
  deck rename <id> <name>      rename a deck
  deck rm <id>                 delete a deck and its cards
  card add <deck-id> <front> <back> [hint]
                               create a card
  card list [deck-id]          list cards
  card rm <id>                 delete a card
  card suspend <id> <on|off>   suspend or resume a card
  due [deck-id]                list cards due for review
  review [deck-id]             run an interactive review session
  stats                        show study statistics
  serve                        start the HTTP API server

Flags:
`

func main() {
	flags := pflag.NewFlagSet("flashmark", pflag.ContinueOnError)
	flags.Int("port", 8488, "HTTP server port")
	flags.String("log-level", "info", "log level: debug, info, warn, or error")
	flags.String("store", "json", "storage backend: json, sqlite, or postgres")
	flags.String("data", "flashmark.json", "data file for the json and sqlite backends")
	flags.String("database-url", "", "connection string for the postgres backend")
	flags.Int("max-backups", 10, "backup files to keep (json backend)")
	flags.Bool("include-new", true, "include never-reviewed cards in due queries")
	flags.Bool("include-lapsed", true, "include lapsed cards in due queries")
	flags.Int("max", 0, "limit due queries to this many cards (0 means no limit)")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usageText)
		fmt.Fprintln(os.Stderr, flags.FlagUsages())
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(flags); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(flags *pflag.FlagSet) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	ctx := context.Background()

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.cleanup()

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		return errors.New("no command given")
	}

	includeNew, _ := flags.GetBool("include-new")
	includeLapsed, _ := flags.GetBool("include-lapsed")
	maxCards, _ := flags.GetInt("max")
	app.dueDefaults = dueDefaults{
		IncludeNew:    includeNew,
		IncludeLapsed: includeLapsed,
		Max:           maxCards,
	}

	return app.dispatch(ctx, args[0], args[1:])
}
