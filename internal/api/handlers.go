package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/professor/internal/lecture"
	"github.com/starford/professor/internal/refcheck"
)

// Handler holds API route handlers.
type Handler struct {
	svc     *lecture.Service
	refiner *refcheck.Refiner
}

// NewHandler creates a new Handler.
func NewHandler(svc *lecture.Service, refiner *refcheck.Refiner) *Handler {
	return &Handler{svc: svc, refiner: refiner}
}

// StartLecture handles POST /api/lecture/start.
//
//	@Summary		Start a lecture on a topic
//	@Tags			lectures
//	@Accept			json
//	@Produce		json
//	@Param			body	body		StartLectureRequest	true	"Lecture topic"
//	@Param			format	query		string				false	"Response format"	Enums(a2ui)
//	@Success		201		{object}	models.SlidePayload
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/lecture/start [post]
func (h *Handler) StartLecture(w http.ResponseWriter, r *http.Request) {
	var req StartLectureRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.Start(r.Context(), req.Topic)
	if err != nil {
		writeError(w, "start lecture", err)
		return
	}
	writePayload(w, r, http.StatusCreated, p)
}

// GetLecture handles GET /api/lecture/{id}.
//
//	@Summary		Get the current slide of a lecture
//	@Tags			lectures
//	@Produce		json
//	@Param			id		path		string	true	"Session ID"
//	@Param			format	query		string	false	"Response format"	Enums(a2ui)
//	@Success		200		{object}	models.SlidePayload
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/lecture/{id} [get]
func (h *Handler) GetLecture(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get lecture", err)
		return
	}
	writePayload(w, r, http.StatusOK, p)
}

// Act handles POST /api/lecture/{id}/action.
//
//	@Summary		Trigger a slide control
//	@Tags			lectures
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Session ID"
//	@Param			body	body		ActionRequest	true	"Action and params"
//	@Param			format	query		string			false	"Response format"	Enums(a2ui)
//	@Success		200		{object}	models.SlidePayload
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/lecture/{id}/action [post]
func (h *Handler) Act(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.Act(r.Context(), chi.URLParam(r, "id"), req.Action, req.Params)
	if err != nil {
		writeError(w, "lecture action", err)
		return
	}
	writePayload(w, r, http.StatusOK, p)
}

// DeleteLecture handles DELETE /api/lecture/{id}.
//
//	@Summary		Delete a lecture
//	@Tags			lectures
//	@Param			id	path	string	true	"Session ID"
//	@Success		204	"Lecture deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/lecture/{id} [delete]
func (h *Handler) DeleteLecture(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete lecture", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListLectures handles GET /api/lectures.
//
//	@Summary		List lectures, most recently updated first
//	@Tags			lectures
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			offset	query		int	false	"Page offset"
//	@Success		200		{object}	LectureListResponse
//	@Security		BearerAuth
//	@Router			/lectures [get]
func (h *Handler) ListLectures(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	items, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, "list lectures", err)
		return
	}
	writeJSON(w, http.StatusOK, LectureListResponse{Lectures: items, Limit: limit, Offset: offset})
}

// ValidateReferences handles POST /api/references/validate.
//
//	@Summary		Check every link in a markdown reference list
//	@Tags			references
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ValidateReferencesRequest	true	"Markdown to check"
//	@Success		200		{object}	ValidateReferencesResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/references/validate [post]
func (h *Handler) ValidateReferences(w http.ResponseWriter, r *http.Request) {
	var req ValidateReferencesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, outcomes := h.refiner.Inspect(r.Context(), req.Markdown)
	writeJSON(w, http.StatusOK, ValidateReferencesResponse{Result: res, Links: outcomes})
}
