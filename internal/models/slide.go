// Package models defines the domain types for Professor.
package models

import "time"

// Action names a control's effect when the client triggers it.
const (
	ActionAdvance        = "advance_main_thread"
	ActionPrevious       = "go_previous"
	ActionClarify        = "clarify_slide"
	ActionDeepDive       = "deep_dive"
	ActionReturnToMain   = "return_to_main"
	ActionShowExample    = "show_example"
	ActionQuizMe         = "quiz_me"
	ActionQuizAnswer     = "quiz_answer"
	ActionExtend         = "extend_lecture"
	ActionShowReferences = "show_references"
	ActionConceptMap     = "show_concept_map"
	ActionRegenerate     = "regenerate_slide"
)

// Layouts a SlidePayload can carry.
const (
	LayoutDefault    = "default"
	LayoutDeepDive   = "deep_dive"
	LayoutExample    = "example"
	LayoutQuiz       = "quiz"
	LayoutQuizResult = "quiz_result"
	LayoutReferences = "references"
	LayoutConceptMap = "concept_map"
)

// SlideContent is what a slide shows.
type SlideContent struct {
	Title       string `json:"title"`
	Text        string `json:"text"`
	DiagramCode string `json:"diagram_code,omitempty"`
}

// InteractiveControl is a button rendered on a slide.
type InteractiveControl struct {
	Label  string         `json:"label"`
	Action string         `json:"action"`
	Params map[string]any `json:"params,omitempty"`
}

// Slide is a generated slide with its contextual controls.
type Slide struct {
	Content  SlideContent         `json:"content"`
	Controls []InteractiveControl `json:"controls"`
}

// SlidePayload is the render message sent to clients.
type SlidePayload struct {
	Type                string               `json:"type"`
	SlideID             string               `json:"slide_id"`
	SessionID           string               `json:"session_id"`
	Layout              string               `json:"layout"`
	Content             SlideContent         `json:"content"`
	InteractiveControls []InteractiveControl `json:"interactive_controls"`
	SlideIndex          int                  `json:"slide_index"`
	TotalSlides         int                  `json:"total_slides"`
	AllowFreeformInput  bool                 `json:"allow_freeform_input"`
}

// LectureSummary is a lightweight representation returned by list operations.
type LectureSummary struct {
	ID           string    `json:"id"`
	Topic        string    `json:"topic"`
	CurrentIndex int       `json:"current_index"`
	TotalSlides  int       `json:"total_slides"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
