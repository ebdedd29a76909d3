package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/professor/internal/a2ui"
	"github.com/starford/professor/internal/apperr"
	"github.com/starford/professor/internal/models"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// decodeJSON reads a size-limited JSON body into v and validates it.
// On failure it writes a 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v validation.Validatable) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	if err := v.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return false
	}
	return true
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("lecture not found"))
	case errors.Is(err, apperr.ErrInvalidAction):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// writePayload writes a slide payload, as an A2UI message when the client
// asks for ?format=a2ui.
func writePayload(w http.ResponseWriter, r *http.Request, status int, p *models.SlidePayload) {
	if r.URL.Query().Get("format") == "a2ui" {
		writeJSON(w, status, a2ui.FromPayload(*p))
		return
	}
	writeJSON(w, status, p)
}
