package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashmark/flashmark/internal/api"
	"github.com/flashmark/flashmark/internal/api/shared"
	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/domain/srs"
	"github.com/flashmark/flashmark/internal/platform/memory"
	"github.com/flashmark/flashmark/internal/service/review"
)

// newTestRouter wires the full route tree against an in-memory
// repository so tests exercise real handlers, middleware, and JSON
// encoding end to end.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.New()
	svc := review.NewService(repo, srs.New(), logger)
	return api.NewRouter(repo, svc, logger)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &out),
		"body: %s", recorder.Body.String())
	return out
}

func createDeck(t *testing.T, router http.Handler, name string) api.DeckResponse {
	t.Helper()
	recorder := doJSON(t, router, http.MethodPost, "/api/decks", api.CreateDeckRequest{Name: name})
	require.Equal(t, http.StatusCreated, recorder.Code, "body: %s", recorder.Body.String())
	return decodeBody[api.DeckResponse](t, recorder)
}

func createCard(t *testing.T, router http.Handler, deckID uuid.UUID, front, back string) domain.Card {
	t.Helper()
	recorder := doJSON(t, router, http.MethodPost, "/api/cards", api.CreateCardRequest{
		DeckID: deckID,
		Front:  front,
		Back:   back,
	})
	require.Equal(t, http.StatusCreated, recorder.Code, "body: %s", recorder.Body.String())
	return decodeBody[domain.Card](t, recorder)
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "OK", recorder.Body.String())
}

func TestDeckLifecycle(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	deck := createDeck(t, router, "Spanish")
	assert.NotEqual(t, uuid.Nil, deck.ID)
	assert.Equal(t, "Spanish", deck.Name)
	assert.False(t, deck.CreatedAt.IsZero())

	recorder := doJSON(t, router, http.MethodGet, "/api/decks/"+deck.ID.String(), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	fetched := decodeBody[api.DeckResponse](t, recorder)
	assert.Equal(t, deck.ID, fetched.ID)

	recorder = doJSON(t, router, http.MethodPatch, "/api/decks/"+deck.ID.String(),
		api.CreateDeckRequest{Name: "Castilian"})
	require.Equal(t, http.StatusOK, recorder.Code)
	renamed := decodeBody[api.DeckResponse](t, recorder)
	assert.Equal(t, "Castilian", renamed.Name)

	recorder = doJSON(t, router, http.MethodGet, "/api/decks", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	decks := decodeBody[[]api.DeckResponse](t, recorder)
	require.Len(t, decks, 1)
	assert.Equal(t, "Castilian", decks[0].Name)

	recorder = doJSON(t, router, http.MethodDelete, "/api/decks/"+deck.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/api/decks/"+deck.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCreateDeckValidation(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{name: "missing name", body: map[string]string{}, wantStatus: http.StatusBadRequest},
		{name: "empty name", body: api.CreateDeckRequest{Name: ""}, wantStatus: http.StatusBadRequest},
		{name: "valid", body: api.CreateDeckRequest{Name: "Geography"}, wantStatus: http.StatusCreated},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := doJSON(t, router, http.MethodPost, "/api/decks", tc.body)
			assert.Equal(t, tc.wantStatus, recorder.Code, "body: %s", recorder.Body.String())
		})
	}
}

func TestCreateDeckDuplicateNameConflicts(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	createDeck(t, router, "Spanish")

	recorder := doJSON(t, router, http.MethodPost, "/api/decks", api.CreateDeckRequest{Name: "Spanish"})
	assert.Equal(t, http.StatusConflict, recorder.Code)

	errResp := decodeBody[shared.ErrorResponse](t, recorder)
	assert.Equal(t, "a deck with that name already exists", errResp.Error)
	assert.NotEmpty(t, errResp.TraceID)
}

func TestErrorResponseCarriesTraceID(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodGet, "/api/decks/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)

	errResp := decodeBody[shared.ErrorResponse](t, recorder)
	assert.Equal(t, "deck not found", errResp.Error)
	assert.NotEmpty(t, errResp.TraceID)
}

func TestCardLifecycle(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	deck := createDeck(t, router, "Biology")
	card := createCard(t, router, deck.ID, "mitochondria", "powerhouse of the cell")
	assert.Equal(t, deck.ID, card.DeckID)
	assert.Equal(t, domain.EaseFactorDefault, card.EaseFactor)
	assert.True(t, card.IsNew())

	recorder := doJSON(t, router, http.MethodPut, "/api/cards/"+card.ID.String(),
		api.UpdateCardRequest{
			Front: "mitochondrion",
			Back:  "powerhouse of the cell",
			Tags:  []string{"organelles"},
		})
	require.Equal(t, http.StatusOK, recorder.Code)
	updated := decodeBody[domain.Card](t, recorder)
	assert.Equal(t, "mitochondrion", updated.Front)
	assert.Equal(t, []string{"organelles"}, updated.Tags)
	assert.Equal(t, card.EaseFactor, updated.EaseFactor, "content edits must not touch scheduling state")

	recorder = doJSON(t, router, http.MethodDelete, "/api/cards/"+card.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/api/cards/"+card.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCreateCardUnknownDeck(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodPost, "/api/cards", api.CreateCardRequest{
		DeckID: uuid.New(),
		Front:  "front",
		Back:   "back",
	})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestListCardsFilters(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	spanish := createDeck(t, router, "Spanish")
	french := createDeck(t, router, "French")

	recorder := doJSON(t, router, http.MethodPost, "/api/cards", api.CreateCardRequest{
		DeckID: spanish.ID,
		Front:  "perro",
		Back:   "dog",
		Tags:   []string{"animals"},
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	createCard(t, router, spanish.ID, "hola", "hello")
	createCard(t, router, french.ID, "chien", "dog")

	recorder = doJSON(t, router, http.MethodGet, "/api/cards?deck_id="+spanish.ID.String(), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Len(t, decodeBody[[]domain.Card](t, recorder), 2)

	recorder = doJSON(t, router, http.MethodGet, "/api/cards?q=dog", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Len(t, decodeBody[[]domain.Card](t, recorder), 2)

	recorder = doJSON(t, router, http.MethodGet, "/api/cards?tag=animals", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	byTag := decodeBody[[]domain.Card](t, recorder)
	require.Len(t, byTag, 1)
	assert.Equal(t, "perro", byTag[0].Front)

	recorder = doJSON(t, router, http.MethodGet, "/api/cards?deck_id=not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestListCardsEmptyIsArray(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodGet, "/api/cards", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, "[]", recorder.Body.String())
}

func TestSuspendCardExcludesFromDueQueue(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	deck := createDeck(t, router, "Chemistry")
	card := createCard(t, router, deck.ID, "Au", "gold")

	recorder := doJSON(t, router, http.MethodGet, "/api/cards/due?include_new=true", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, decodeBody[[]domain.Card](t, recorder), 1)

	recorder = doJSON(t, router, http.MethodPost, "/api/cards/"+card.ID.String()+"/suspend",
		api.SuspendCardRequest{Suspended: true})
	require.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/api/cards/due?include_new=true", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, decodeBody[[]domain.Card](t, recorder))

	recorder = doJSON(t, router, http.MethodPost, "/api/cards/"+card.ID.String()+"/suspend",
		api.SuspendCardRequest{Suspended: false})
	require.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/api/cards/due?include_new=true", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Len(t, decodeBody[[]domain.Card](t, recorder), 1)
}

func TestDueCardsQueryParameters(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	deck := createDeck(t, router, "History")
	other := createDeck(t, router, "Math")
	for i := 0; i < 3; i++ {
		createCard(t, router, deck.ID, fmt.Sprintf("event %d", i), "answer")
	}
	createCard(t, router, other.ID, "2+2", "4")

	// New cards are gated behind include_new.
	recorder := doJSON(t, router, http.MethodGet, "/api/cards/due", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, decodeBody[[]domain.Card](t, recorder))

	recorder = doJSON(t, router, http.MethodGet,
		"/api/cards/due?include_new=true&deck_id="+deck.ID.String(), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Len(t, decodeBody[[]domain.Card](t, recorder), 3)

	recorder = doJSON(t, router, http.MethodGet, "/api/cards/due?include_new=true&max=2", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Len(t, decodeBody[[]domain.Card](t, recorder), 2)

	recorder = doJSON(t, router, http.MethodGet, "/api/cards/due?max=-1", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSubmitReview(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	deck := createDeck(t, router, "Physics")
	card := createCard(t, router, deck.ID, "c", "speed of light")

	recorder := doJSON(t, router, http.MethodPost, "/api/reviews", api.SubmitReviewRequest{
		CardID: card.ID,
		Grade:  "easy",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, "body: %s", recorder.Body.String())
	outcome := decodeBody[api.ReviewOutcomeResponse](t, recorder)
	assert.Equal(t, card.ID, outcome.Card.ID)
	assert.Equal(t, 1, outcome.Card.Reps)
	assert.Equal(t, 1, outcome.Card.IntervalDays)
	assert.InDelta(t, domain.EaseFactorDefault+0.10, outcome.Card.EaseFactor, 1e-9)
	assert.Equal(t, domain.GradeEasy, outcome.Review.Grade)
	assert.Equal(t, 1, outcome.Review.IntervalApplied)

	// The persisted card matches the returned one.
	recorder = doJSON(t, router, http.MethodGet, "/api/cards/"+card.ID.String(), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	persisted := decodeBody[domain.Card](t, recorder)
	assert.Equal(t, outcome.Card.Reps, persisted.Reps)
	assert.Equal(t, outcome.Card.DueAt.UTC(), persisted.DueAt.UTC())
}

func TestSubmitReviewErrors(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	deck := createDeck(t, router, "Art")
	card := createCard(t, router, deck.ID, "front", "back")

	suspendResp := doJSON(t, router, http.MethodPost, "/api/cards/"+card.ID.String()+"/suspend",
		api.SuspendCardRequest{Suspended: true})
	require.Equal(t, http.StatusNoContent, suspendResp.Code)

	tests := []struct {
		name       string
		body       api.SubmitReviewRequest
		wantStatus int
	}{
		{
			name:       "unknown card",
			body:       api.SubmitReviewRequest{CardID: uuid.New(), Grade: "easy"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid grade",
			body:       api.SubmitReviewRequest{CardID: card.ID, Grade: "amazing"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "suspended card",
			body:       api.SubmitReviewRequest{CardID: card.ID, Grade: "easy"},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := doJSON(t, router, http.MethodPost, "/api/reviews", tc.body)
			assert.Equal(t, tc.wantStatus, recorder.Code, "body: %s", recorder.Body.String())
		})
	}
}

func TestNextCard(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	// Nothing due yet.
	recorder := doJSON(t, router, http.MethodGet, "/api/reviews/next", nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	deck := createDeck(t, router, "Music")
	card := createCard(t, router, deck.ID, "forte", "loud")

	recorder = doJSON(t, router, http.MethodGet, "/api/reviews/next?include_new=true", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	next := decodeBody[domain.Card](t, recorder)
	assert.Equal(t, card.ID, next.ID)
}

func TestStatsEndpoint(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	deck := createDeck(t, router, "Latin")
	first := createCard(t, router, deck.ID, "aqua", "water")
	second := createCard(t, router, deck.ID, "ignis", "fire")

	for _, submission := range []struct {
		cardID uuid.UUID
		grade  string
	}{
		{first.ID, "easy"},
		{second.ID, "hard"},
	} {
		recorder := doJSON(t, router, http.MethodPost, "/api/reviews", api.SubmitReviewRequest{
			CardID: submission.cardID,
			Grade:  submission.grade,
		})
		require.Equal(t, http.StatusCreated, recorder.Code)
	}

	recorder := doJSON(t, router, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	summary := decodeBody[api.StatsResponse](t, recorder)

	assert.Equal(t, 2, summary.Totals.Total)
	assert.Equal(t, 1, summary.Totals.Easy)
	assert.Equal(t, 1, summary.Totals.Hard)
	assert.InDelta(t, 0.5, summary.Accuracy, 1e-9)
	assert.Equal(t, 1, summary.Streak)
	assert.Len(t, summary.Daily, 1)

	deckStats, ok := summary.PerDeck[deck.ID.String()]
	require.True(t, ok)
	assert.Equal(t, 2, deckStats.Total)

	// deck_id scoping drops everything else.
	recorder = doJSON(t, router, http.MethodGet, "/api/stats?deck_id="+uuid.NewString(), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	scoped := decodeBody[api.StatsResponse](t, recorder)
	assert.Equal(t, 0, scoped.Totals.Total)

	recorder = doJSON(t, router, http.MethodGet, "/api/stats?from=not-a-time", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
