package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/flashmark/flashmark/internal/api/shared"
	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/domain/filter"
	"github.com/flashmark/flashmark/internal/platform/logger"
	"github.com/flashmark/flashmark/internal/store"
)

// CardHandler handles card management and due-queue requests.
type CardHandler struct {
	repo   store.Repository
	logger *slog.Logger
}

// NewCardHandler creates a CardHandler. If logger is nil, the default
// logger is used.
func NewCardHandler(repo store.Repository, logger *slog.Logger) *CardHandler {
	if repo == nil {
		panic("repo cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CardHandler{
		repo:   repo,
		logger: logger.With(slog.String("component", "card_handler")),
	}
}

// CreateCard handles POST /api/cards.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := domain.NewCard(req.DeckID, req.Front, req.Back)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	card.Hint = req.Hint
	card.Tags = domain.NormalizeTags(req.Tags)

	if err := h.repo.AddCard(r.Context(), card); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), SafeErrorMessage(err), err)
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Info("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", card.DeckID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// ListCards handles GET /api/cards. Optional query parameters:
// deck_id restricts to one deck, q searches front/back/hint/tags, tag
// filters by exact tag.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	var deckID *uuid.UUID
	if raw := r.URL.Query().Get("deck_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "invalid deck_id")
			return
		}
		deckID = &id
	}

	cards, err := h.repo.ListCards(r.Context(), deckID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), SafeErrorMessage(err), err)
		return
	}

	if q := r.URL.Query().Get("q"); q != "" {
		cards = filter.Search(cards, q)
	}
	if tag := r.URL.Query().Get("tag"); tag != "" {
		cards = filter.ByTag(cards, tag)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// GetCard handles GET /api/cards/{id}.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	card, err := h.repo.GetCard(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), SafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// UpdateCard handles PUT /api/cards/{id}. Only content fields change;
// scheduling state is untouched.
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.repo.GetCard(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), SafeErrorMessage(err), err)
		return
	}

	card.Front = req.Front
	card.Back = req.Back
	card.Hint = req.Hint
	card.Tags = domain.NormalizeTags(req.Tags)

	if err := h.repo.UpdateCard(r.Context(), card); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), SafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// DeleteCard handles DELETE /api/cards/{id}. Reviews go with the card.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.repo.DeleteCard(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), SafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SuspendCard handles POST /api/cards/{id}/suspend.
func (h *CardHandler) SuspendCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req SuspendCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.repo.SetSuspended(r.Context(), id, req.Suspended); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), SafeErrorMessage(err), err)
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Info("card suspension changed",
		slog.String("card_id", id.String()),
		slog.Bool("suspended", req.Suspended))
	w.WriteHeader(http.StatusNoContent)
}

// DueCards handles GET /api/cards/due. Query parameters: deck_id,
// include_new, include_lapsed, tag, q, max.
func (h *CardHandler) DueCards(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	q := store.DueQuery{}
	q.Now = time.Now().UTC()
	if raw := query.Get("deck_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "invalid deck_id")
			return
		}
		q.DeckID = &id
	}
	q.IncludeNew = query.Get("include_new") == "true"
	q.IncludeLapsed = query.Get("include_lapsed") == "true"
	q.Tag = query.Get("tag")
	q.Text = query.Get("q")
	if raw := query.Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "invalid max")
			return
		}
		q.Max = n
	}

	cards, err := h.repo.DueCards(r.Context(), q)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), SafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// cardsToResponse avoids returning null for an empty list.
func cardsToResponse(cards []*domain.Card) []*domain.Card {
	if cards == nil {
		return []*domain.Card{}
	}
	return cards
}
