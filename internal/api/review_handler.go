package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/flashmark/flashmark/internal/api/shared"
	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/platform/logger"
	"github.com/flashmark/flashmark/internal/service/review"
	"github.com/flashmark/flashmark/internal/store"
)

// ReviewHandler handles review submission and the review queue.
type ReviewHandler struct {
	service review.Service
	logger  *slog.Logger
}

// NewReviewHandler creates a ReviewHandler. If logger is nil, the
// default logger is used.
func NewReviewHandler(service review.Service, logger *slog.Logger) *ReviewHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewHandler{
		service: service,
		logger:  logger.With(slog.String("component", "review_handler")),
	}
}

// SubmitReview handles POST /api/reviews.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req SubmitReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	grade, err := domain.ParseGrade(req.Grade)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, SafeErrorMessage(err))
		return
	}

	outcome, err := h.service.SubmitReview(r.Context(), req.CardID, grade)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), SafeErrorMessage(err), err)
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Info("review submitted",
		slog.String("card_id", req.CardID.String()),
		slog.String("grade", req.Grade),
		slog.Int("interval_days", outcome.Card.IntervalDays))
	shared.RespondWithJSON(w, r, http.StatusCreated, ReviewOutcomeResponse{
		Card:   outcome.Card,
		Review: outcome.Review,
	})
}

// NextCard handles GET /api/reviews/next. Responds 204 when nothing is
// due.
func (h *ReviewHandler) NextCard(w http.ResponseWriter, r *http.Request) {
	q := store.DueQuery{}
	query := r.URL.Query()
	if raw := query.Get("deck_id"); raw != "" {
		id, ok := parseUUIDParam(w, r, raw, "deck_id")
		if !ok {
			return
		}
		q.DeckID = &id
	}
	q.IncludeNew = query.Get("include_new") == "true"
	q.IncludeLapsed = query.Get("include_lapsed") == "true"

	card, err := h.service.NextCard(r.Context(), q)
	if errors.Is(err, review.ErrNoCardsDue) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), SafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}
