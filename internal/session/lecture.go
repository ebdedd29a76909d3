package session

import (
	"time"

	"github.com/starford/professor/internal/models"
)

// Slide keys for detour slides that live outside the main outline.
const (
	SlideDeepDive   = -1
	SlideExample    = -2
	SlideQuiz       = -3
	SlideReferences = -4
	SlideConceptMap = -5
)

// KnowledgeLevel tunes how content is pitched.
type KnowledgeLevel string

const (
	LevelBeginner     KnowledgeLevel = "beginner"
	LevelIntermediate KnowledgeLevel = "intermediate"
	LevelAdvanced     KnowledgeLevel = "advanced"
)

// Lecture is the persisted state of one lecture session.
type Lecture struct {
	ID             string
	Topic          string
	Outline        []string
	Slides         map[int]models.Slide
	CurrentIndex   int
	KnowledgeLevel KnowledgeLevel

	InDeepDive          bool
	DeepDiveParentIndex *int
	DeepDiveConcept     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalSlides is the length of the outline.
func (l *Lecture) TotalSlides() int { return len(l.Outline) }

func (l *Lecture) HasNext() bool     { return l.CurrentIndex < l.TotalSlides()-1 }
func (l *Lecture) HasPrevious() bool { return l.CurrentIndex > 0 }
func (l *Lecture) IsFirst() bool     { return l.CurrentIndex == 0 }
func (l *Lecture) IsLast() bool      { return l.CurrentIndex == l.TotalSlides()-1 }

// CurrentTitle is the outline title of the current slide, or the deep-dive
// title while a deep dive is active.
func (l *Lecture) CurrentTitle() string {
	if l.InDeepDive && l.DeepDiveConcept != "" {
		return "Deep Dive: " + l.DeepDiveConcept
	}
	if l.CurrentIndex < 0 || l.CurrentIndex >= len(l.Outline) {
		return ""
	}
	return l.Outline[l.CurrentIndex]
}

// EnterDeepDive marks a detour into concept from the current slide.
func (l *Lecture) EnterDeepDive(concept string) {
	parent := l.CurrentIndex
	l.InDeepDive = true
	l.DeepDiveParentIndex = &parent
	l.DeepDiveConcept = concept
}

// ExitDeepDive clears any deep-dive state.
func (l *Lecture) ExitDeepDive() {
	l.InDeepDive = false
	l.DeepDiveParentIndex = nil
	l.DeepDiveConcept = ""
}

// SetSlide stores s under key, allocating the map if needed.
func (l *Lecture) SetSlide(key int, s models.Slide) {
	if l.Slides == nil {
		l.Slides = make(map[int]models.Slide)
	}
	l.Slides[key] = s
}
