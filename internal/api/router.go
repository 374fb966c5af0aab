// Package api exposes the flashcard catalog over HTTP: deck and card
// management, review submission, due-card queries, and study statistics.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/flashmark/flashmark/internal/api/middleware"
	"github.com/flashmark/flashmark/internal/service/review"
	"github.com/flashmark/flashmark/internal/store"
)

// NewRouter builds the full route tree. Every /api route runs behind
// the trace middleware, so handlers can rely on a trace ID and a
// trace-scoped logger in the request context.
func NewRouter(repo store.Repository, reviewService review.Service, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	deckHandler := NewDeckHandler(repo, logger)
	cardHandler := NewCardHandler(repo, logger)
	reviewHandler := NewReviewHandler(reviewService, logger)
	statsHandler := NewStatsHandler(repo, logger)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Trace(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", "error", err)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/decks", func(r chi.Router) {
			r.Post("/", deckHandler.CreateDeck)
			r.Get("/", deckHandler.ListDecks)
			r.Get("/{id}", deckHandler.GetDeck)
			r.Patch("/{id}", deckHandler.RenameDeck)
			r.Delete("/{id}", deckHandler.DeleteDeck)
		})

		r.Route("/cards", func(r chi.Router) {
			r.Post("/", cardHandler.CreateCard)
			r.Get("/", cardHandler.ListCards)
			r.Get("/due", cardHandler.DueCards)
			r.Get("/{id}", cardHandler.GetCard)
			r.Put("/{id}", cardHandler.UpdateCard)
			r.Delete("/{id}", cardHandler.DeleteCard)
			r.Post("/{id}/suspend", cardHandler.SuspendCard)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Post("/", reviewHandler.SubmitReview)
			r.Get("/next", reviewHandler.NextCard)
		})

		r.Get("/stats", statsHandler.GetStats)
	})

	return r
}
