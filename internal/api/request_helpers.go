package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/flashmark/flashmark/internal/api/shared"
)

var validate = validator.New()

// decodeAndValidate decodes the request body into dst and runs struct
// validation. On failure a 400 response has already been written and
// false is returned.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

// pathUUID extracts and parses a UUID path parameter. On failure a 400
// response has already been written and false is returned.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	return parseUUIDParam(w, r, chi.URLParam(r, name), name)
}

// parseUUIDParam parses a raw UUID value from the request, writing a
// 400 response on failure.
func parseUUIDParam(w http.ResponseWriter, r *http.Request, raw, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
