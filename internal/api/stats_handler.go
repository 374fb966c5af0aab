package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/flashmark/flashmark/internal/api/shared"
	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/domain/stats"
	"github.com/flashmark/flashmark/internal/store"
)

// StatsResponse is the wire form of an aggregation pass. Accuracy is
// precomputed so clients need not reimplement the no-data rule.
type StatsResponse struct {
	Totals   stats.Totals              `json:"totals"`
	Accuracy float64                   `json:"accuracy"`
	Daily    map[string]*stats.Totals  `json:"daily"`
	PerDeck  map[string]*DeckStatsItem `json:"per_deck"`
	Streak   int                       `json:"streak"`
}

// DeckStatsItem extends the per-deck rollup with its accuracy.
type DeckStatsItem struct {
	stats.DeckTotals
	Accuracy float64 `json:"accuracy"`
}

// StatsHandler handles GET /api/stats.
type StatsHandler struct {
	repo   store.Repository
	logger *slog.Logger
}

// NewStatsHandler creates a StatsHandler. If logger is nil, the default
// logger is used.
func NewStatsHandler(repo store.Repository, logger *slog.Logger) *StatsHandler {
	if repo == nil {
		panic("repo cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsHandler{
		repo:   repo,
		logger: logger.With(slog.String("component", "stats_handler")),
	}
}

// GetStats handles GET /api/stats. Query parameters: from and to bound
// the reviews in scope (RFC 3339, from inclusive, to exclusive), and
// deck_id restricts the summary to a single deck's cards.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	opts := stats.Options{Now: time.Now().UTC()}

	query := r.URL.Query()
	if raw := query.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		opts.From = &t
	}
	if raw := query.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "invalid to timestamp")
			return
		}
		opts.To = &t
	}

	var deckID *uuid.UUID
	if raw := query.Get("deck_id"); raw != "" {
		id, ok := parseUUIDParam(w, r, raw, "deck_id")
		if !ok {
			return
		}
		deckID = &id
	}

	cards, err := h.repo.ListCards(r.Context(), deckID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), SafeErrorMessage(err), err)
		return
	}
	reviews, err := h.repo.ListReviews(r.Context(), store.ReviewFilter{From: opts.From, To: opts.To})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), SafeErrorMessage(err), err)
		return
	}

	cardsByID := make(map[uuid.UUID]*domain.Card, len(cards))
	for _, c := range cards {
		cardsByID[c.ID] = c
	}

	// When scoped to a deck, history for other decks' cards is out of
	// scope entirely, not just absent from the per-deck rollup.
	if deckID != nil {
		scoped := reviews[:0:0]
		for _, rv := range reviews {
			if _, ok := cardsByID[rv.CardID]; ok {
				scoped = append(scoped, rv)
			}
		}
		reviews = scoped
	}

	summary := stats.Aggregate(reviews, cardsByID, opts)

	perDeck := make(map[string]*DeckStatsItem, len(summary.PerDeck))
	for deckID, dt := range summary.PerDeck {
		perDeck[deckID.String()] = &DeckStatsItem{
			DeckTotals: *dt,
			Accuracy:   dt.Accuracy(),
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, StatsResponse{
		Totals:   summary.Totals,
		Accuracy: summary.Totals.Accuracy(),
		Daily:    summary.Daily,
		PerDeck:  perDeck,
		Streak:   stats.DailyStreak(reviews, opts.Now),
	})
}
