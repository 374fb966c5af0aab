package api

import (
	"errors"
	"net/http"

	"github.com/flashmark/flashmark/internal/domain"
	"github.com/flashmark/flashmark/internal/service/review"
	"github.com/flashmark/flashmark/internal/store"
)

// MapErrorToStatusCode maps internal errors onto HTTP status codes
// without leaking internal error text to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, store.ErrValidation),
		errors.Is(err, domain.ErrInvalidGrade),
		errors.Is(err, review.ErrCardSuspended):
		return http.StatusUnprocessableEntity

	case errors.Is(err, review.ErrNoCardsDue):
		return http.StatusNoContent

	default:
		return http.StatusInternalServerError
	}
}

// SafeErrorMessage returns a client-safe message for an error. Known
// error categories keep their own text; anything else collapses to a
// generic message so storage details never leak.
func SafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrDeckNotFound):
		return "deck not found"
	case errors.Is(err, store.ErrCardNotFound):
		return "card not found"
	case errors.Is(err, store.ErrNotFound):
		return "not found"
	case errors.Is(err, store.ErrDeckNameExists):
		return "a deck with that name already exists"
	case errors.Is(err, store.ErrConflict):
		return "conflict"
	case errors.Is(err, review.ErrCardSuspended):
		return "card is suspended"
	case errors.Is(err, domain.ErrInvalidGrade):
		return "grade must be one of hard, medium, easy"
	case errors.Is(err, store.ErrValidation):
		return "invalid input"
	default:
		return "internal server error"
	}
}
