package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/professor/internal/lecture"
	"github.com/starford/professor/internal/refcheck"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *lecture.Service, refiner *refcheck.Refiner, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, refiner)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Lectures.
	r.Post("/lecture/start", h.StartLecture)
	r.Get("/lecture/{id}", h.GetLecture)
	r.Delete("/lecture/{id}", h.DeleteLecture)
	r.Post("/lecture/{id}/action", h.Act)
	r.Get("/lectures", h.ListLectures)

	// Reference validation.
	r.Post("/references/validate", h.ValidateReferences)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
