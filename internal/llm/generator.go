// Package llm produces lecture outlines and slides from a language model.
//
// Generator is the capability the lecture service depends on. Chat prompts a
// model through a small Client interface, with clients for Anthropic and
// Gemini; Mock returns deterministic slides for tests and keyless local runs.
package llm

import (
	"context"

	"github.com/starford/professor/internal/models"
)

// SlideContext describes where a slide sits in its lecture.
type SlideContext struct {
	Topic       string
	SlideTitle  string
	SlideIndex  int
	TotalSlides int
	Outline     []string
	IsFirst     bool
	IsLast      bool
}

// NextTitle returns the outline title after this slide, or "" on the last one.
func (c SlideContext) NextTitle() string {
	if c.SlideIndex+1 < len(c.Outline) {
		return c.Outline[c.SlideIndex+1]
	}
	return ""
}

// Generator creates lecture material. Every method returns an error rather
// than a partial slide when the model output cannot be used.
type Generator interface {
	GenerateOutline(ctx context.Context, topic string) ([]string, error)
	ExtendOutline(ctx context.Context, topic string, existing []string) ([]string, error)
	GenerateSlide(ctx context.Context, sc SlideContext) (models.Slide, error)
	ClarifySlide(ctx context.Context, content models.SlideContent, sc SlideContext) (models.Slide, error)
	DeepDive(ctx context.Context, topic, concept string, parent SlideContext) (models.Slide, error)
	GenerateExample(ctx context.Context, content models.SlideContent, sc SlideContext, exampleType string) (models.Slide, error)
	GenerateQuiz(ctx context.Context, content models.SlideContent, sc SlideContext) (models.Slide, error)
	GenerateReferences(ctx context.Context, topic string, outline []string, currentIndex int) (models.Slide, error)
	GenerateConceptMap(ctx context.Context, topic string, outline []string, currentIndex int) (models.Slide, error)
	RegenerateSlide(ctx context.Context, sc SlideContext, feedback string) (models.Slide, error)
}
