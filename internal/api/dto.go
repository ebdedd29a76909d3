package api

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/professor/internal/models"
	"github.com/starford/professor/internal/refcheck"
)

// StartLectureRequest is the request body for starting a lecture.
type StartLectureRequest struct {
	Topic string `json:"topic" example:"Rust ownership" validate:"required"`
}

// Validate validates the request.
func (r *StartLectureRequest) Validate() error {
	r.Topic = strings.TrimSpace(r.Topic)
	return validation.ValidateStruct(r,
		validation.Field(&r.Topic, validation.Required, validation.RuneLength(1, 500)),
	)
}

// ActionRequest is the request body for triggering a slide control.
type ActionRequest struct {
	Action string         `json:"action" example:"advance_main_thread" validate:"required"`
	Params map[string]any `json:"params,omitempty"`
}

var knownActions = []any{
	models.ActionAdvance, models.ActionPrevious, models.ActionClarify,
	models.ActionDeepDive, models.ActionReturnToMain, models.ActionShowExample,
	models.ActionQuizMe, models.ActionQuizAnswer, models.ActionExtend,
	models.ActionShowReferences, models.ActionConceptMap, models.ActionRegenerate,
}

// Validate validates the request.
func (r *ActionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Action, validation.Required, validation.In(knownActions...)),
	)
}

// ValidateReferencesRequest is the request body for checking a reference list.
type ValidateReferencesRequest struct {
	Markdown string `json:"markdown" example:"- [Go](https://go.dev)" validate:"required"`
}

// Validate validates the request.
func (r *ValidateReferencesRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Markdown, validation.Required),
	)
}

// ValidateReferencesResponse is a refinement result with per-link outcomes.
type ValidateReferencesResponse struct {
	refcheck.Result
	Links []refcheck.Outcome `json:"links" validate:"required"`
}

// LectureListResponse wraps paginated lecture listings.
type LectureListResponse struct {
	Lectures []models.LectureSummary `json:"lectures" validate:"required"`
	Limit    int                     `json:"limit" example:"50"`
	Offset   int                     `json:"offset" example:"0"`
}
