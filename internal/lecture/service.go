// Package lecture drives a lecture session: it turns client actions into
// generated slides, keeps the session state in the store, and runs reference
// slides through link validation before they are shown.
package lecture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/professor/internal/apperr"
	"github.com/starford/professor/internal/llm"
	"github.com/starford/professor/internal/metrics"
	"github.com/starford/professor/internal/models"
	"github.com/starford/professor/internal/refcheck"
	"github.com/starford/professor/internal/session"
	"github.com/starford/professor/internal/sse"
)

const maxErrorText = 200

// Publisher receives lecture change notifications. *sse.Broker satisfies it.
type Publisher interface {
	PublishLectureEvent(kind, sessionID string, data map[string]any)
}

// Service coordinates the session store, the generator and the reference
// refiner.
type Service struct {
	store   session.Store
	gen     llm.Generator
	refiner *refcheck.Refiner
	events  Publisher
	logger  *slog.Logger
	locks   keyedMutex
}

// NewService creates a lecture service. events may be nil.
func NewService(store session.Store, gen llm.Generator, refiner *refcheck.Refiner, events Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, gen: gen, refiner: refiner, events: events, logger: logger}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperr.ErrInvalidAction, fmt.Sprintf(format, args...))
}

func (s *Service) publish(kind, id string, data map[string]any) {
	if s.events != nil {
		s.events.PublishLectureEvent(kind, id, data)
	}
}

func (s *Service) generated(l *session.Lecture, p *models.SlidePayload) *models.SlidePayload {
	metrics.SlidesGenerated.WithLabelValues(p.Layout).Inc()
	s.publish(sse.KindSlide, l.ID, map[string]any{"slide_id": p.SlideID, "layout": p.Layout})
	return p
}

func slideContext(l *session.Lecture) llm.SlideContext {
	return llm.SlideContext{
		Topic:       l.Topic,
		SlideTitle:  l.Outline[l.CurrentIndex],
		SlideIndex:  l.CurrentIndex,
		TotalSlides: l.TotalSlides(),
		Outline:     l.Outline,
		IsFirst:     l.IsFirst(),
		IsLast:      l.IsLast(),
	}
}

func mainPayload(l *session.Lecture, slide models.Slide) *models.SlidePayload {
	return payload(l, fmt.Sprintf("slide_%02d", l.CurrentIndex+1), models.LayoutDefault, slide)
}

func payload(l *session.Lecture, slideID, layout string, slide models.Slide) *models.SlidePayload {
	controls := slide.Controls
	if controls == nil {
		controls = []models.InteractiveControl{}
	}
	return &models.SlidePayload{
		Type:                "render_slide",
		SlideID:             slideID,
		SessionID:           l.ID,
		Layout:              layout,
		Content:             slide.Content,
		InteractiveControls: controls,
		SlideIndex:          l.CurrentIndex,
		TotalSlides:         l.TotalSlides(),
		AllowFreeformInput:  true,
	}
}

// Start generates an outline for topic, opens a session and returns the
// first slide.
func (s *Service) Start(ctx context.Context, topic string) (*models.SlidePayload, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, invalid("topic is required")
	}

	outline, err := s.gen.GenerateOutline(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("lecture: generate outline: %w", err)
	}
	if len(outline) == 0 {
		return nil, errors.New("lecture: generator returned an empty outline")
	}

	l, err := s.store.Create(ctx, topic, outline)
	if err != nil {
		return nil, err
	}

	slide, err := s.gen.GenerateSlide(ctx, slideContext(l))
	if err != nil {
		return nil, fmt.Errorf("lecture: generate slide: %w", err)
	}
	l.SetSlide(0, slide)
	if err := s.store.Update(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("lecture started", slog.String("session_id", l.ID), slog.String("topic", topic),
		slog.Int("slides", len(outline)))
	s.publish(sse.KindStarted, l.ID, map[string]any{"topic": topic, "total_slides": len(outline)})
	return s.generated(l, mainPayload(l, slide)), nil
}

// Get returns the slide the session is currently showing.
func (s *Service) Get(ctx context.Context, id string) (*models.SlidePayload, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if dd, ok := l.Slides[session.SlideDeepDive]; ok && l.InDeepDive {
		return payload(l, deepDiveID(l.DeepDiveConcept), models.LayoutDeepDive, dd), nil
	}
	return s.showMain(ctx, l, false)
}

// List returns lecture summaries, most recently active first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.LectureSummary, error) {
	return s.store.List(ctx, limit, offset)
}

// Delete removes a session and its slides.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("lecture deleted", slog.String("session_id", id))
	s.publish(sse.KindDeleted, id, nil)
	return nil
}

// Act applies a control action to the session and returns the slide to show.
func (s *Service) Act(ctx context.Context, id, action string, params map[string]any) (*models.SlidePayload, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]any{}
	}

	s.logger.Debug("lecture action", slog.String("session_id", id), slog.String("action", action))

	switch action {
	case models.ActionAdvance:
		return s.advance(ctx, l)
	case models.ActionPrevious:
		return s.previous(ctx, l)
	case models.ActionClarify:
		return s.clarify(ctx, l)
	case models.ActionDeepDive:
		return s.deepDive(ctx, l, params)
	case models.ActionReturnToMain:
		return s.returnToMain(ctx, l, params)
	case models.ActionShowExample:
		return s.example(ctx, l, params)
	case models.ActionQuizMe:
		return s.quiz(ctx, l)
	case models.ActionQuizAnswer:
		return s.quizAnswer(l, params)
	case models.ActionExtend:
		return s.extend(ctx, l)
	case models.ActionShowReferences:
		return s.references(ctx, l)
	case models.ActionConceptMap:
		return s.conceptMap(ctx, l)
	case models.ActionRegenerate:
		return s.regenerate(ctx, l, params)
	default:
		return nil, invalid("unknown action: %s", action)
	}
}

// showMain persists l and returns its current main slide, generating it
// first when it is not cached.
func (s *Service) showMain(ctx context.Context, l *session.Lecture, persist bool) (*models.SlidePayload, error) {
	slide, ok := l.Slides[l.CurrentIndex]
	if ok {
		if persist {
			if err := s.store.Update(ctx, l); err != nil {
				return nil, err
			}
		}
		return mainPayload(l, slide), nil
	}

	slide, err := s.gen.GenerateSlide(ctx, slideContext(l))
	if err != nil {
		return nil, fmt.Errorf("lecture: generate slide: %w", err)
	}
	l.SetSlide(l.CurrentIndex, slide)
	if err := s.store.Update(ctx, l); err != nil {
		return nil, err
	}
	return s.generated(l, mainPayload(l, slide)), nil
}

func (s *Service) advance(ctx context.Context, l *session.Lecture) (*models.SlidePayload, error) {
	if !l.HasNext() {
		return nil, invalid("no more slides")
	}
	l.ExitDeepDive()
	l.CurrentIndex++
	return s.showMain(ctx, l, true)
}

func (s *Service) previous(ctx context.Context, l *session.Lecture) (*models.SlidePayload, error) {
	if !l.HasPrevious() {
		return nil, invalid("no previous slide")
	}
	l.ExitDeepDive()
	l.CurrentIndex--
	return s.showMain(ctx, l, true)
}

func (s *Service) clarify(ctx context.Context, l *session.Lecture) (*models.SlidePayload, error) {
	current, ok := l.Slides[l.CurrentIndex]
	if !ok {
		return nil, invalid("no current slide")
	}
	slide, err := s.gen.ClarifySlide(ctx, current.Content, slideContext(l))
	if err != nil {
		return nil, fmt.Errorf("lecture: clarify slide: %w", err)
	}
	l.SetSlide(l.CurrentIndex, slide)
	if err := s.store.Update(ctx, l); err != nil {
		return nil, err
	}
	return s.generated(l, mainPayload(l, slide)), nil
}

func deepDiveID(concept string) string {
	return "deep_dive_" + strings.ReplaceAll(concept, " ", "_")
}

func (s *Service) deepDive(ctx context.Context, l *session.Lecture, params map[string]any) (*models.SlidePayload, error) {
	concept, _ := paramString(params, "concept")
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return nil, invalid("deep_dive requires 'concept' parameter")
	}

	parent := slideContext(l)
	slide, err := s.gen.DeepDive(ctx, l.Topic, concept, parent)
	if err != nil {
		return nil, fmt.Errorf("lecture: deep dive: %w", err)
	}
	l.EnterDeepDive(concept)
	l.SetSlide(session.SlideDeepDive, slide)
	if err := s.store.Update(ctx, l); err != nil {
		return nil, err
	}
	return s.generated(l, payload(l, deepDiveID(concept), models.LayoutDeepDive, slide)), nil
}

func (s *Service) returnToMain(ctx context.Context, l *session.Lecture, params map[string]any) (*models.SlidePayload, error) {
	if _, present := params["slide_index"]; present {
		idx, ok := paramInt(params, "slide_index")
		if !ok || idx < 0 || idx >= l.TotalSlides() {
			return nil, invalid("slide_index out of range")
		}
		l.CurrentIndex = idx
	}
	l.ExitDeepDive()
	return s.showMain(ctx, l, true)
}

// detourSource is the slide an example or quiz is built from: the current
// main slide, or the deep-dive slide when no main slide is cached.
func detourSource(l *session.Lecture) (models.Slide, bool) {
	if s, ok := l.Slides[l.CurrentIndex]; ok {
		return s, true
	}
	s, ok := l.Slides[session.SlideDeepDive]
	return s, ok
}

func errorSlide(title, what string, retryAction string, index int, err error) models.Slide {
	msg := err.Error()
	if r := []rune(msg); len(r) > maxErrorText {
		msg = string(r[:maxErrorText])
	}
	return models.Slide{
		Content: models.SlideContent{
			Title: title,
			Text:  fmt.Sprintf("Sorry, I couldn't generate %s. Error: %s", what, msg),
		},
		Controls: []models.InteractiveControl{
			{Label: "Return to Slide", Action: models.ActionReturnToMain, Params: map[string]any{"slide_index": index}},
			{Label: "Try Again", Action: retryAction},
		},
	}
}

func (s *Service) example(ctx context.Context, l *session.Lecture, params map[string]any) (*models.SlidePayload, error) {
	source, ok := detourSource(l)
	if !ok {
		return nil, invalid("no current slide")
	}
	exampleType, _ := paramString(params, "type")
	if exampleType == "" {
		exampleType = "code"
	}

	slide, err := s.gen.GenerateExample(ctx, source.Content, slideContext(l), exampleType)
	if err != nil {
		s.logger.Warn("example generation failed", slog.String("session_id", l.ID), slog.String("error", err.Error()))
		es := errorSlide("Example Generation Failed", "an example", models.ActionShowExample, l.CurrentIndex, err)
		return payload(l, fmt.Sprintf("example_error_%d", l.CurrentIndex), models.LayoutExample, es), nil
	}

	l.SetSlide(session.SlideExample, slide)
	if err := s.store.Update(ctx, l); err != nil {
		return nil, err
	}
	return s.generated(l, payload(l, fmt.Sprintf("example_%d", l.CurrentIndex), models.LayoutExample, slide)), nil
}

func (s *Service) quiz(ctx context.Context, l *session.Lecture) (*models.SlidePayload, error) {
	source, ok := detourSource(l)
	if !ok {
		return nil, invalid("no current slide")
	}

	slide, err := s.gen.GenerateQuiz(ctx, source.Content, slideContext(l))
	if err != nil {
		s.logger.Warn("quiz generation failed", slog.String("session_id", l.ID), slog.String("error", err.Error()))
		es := errorSlide("Quiz Generation Failed", "a quiz", models.ActionQuizMe, l.CurrentIndex, err)
		return payload(l, fmt.Sprintf("quiz_error_%d", l.CurrentIndex), models.LayoutQuiz, es), nil
	}

	l.SetSlide(session.SlideQuiz, slide)
	if err := s.store.Update(ctx, l); err != nil {
		return nil, err
	}
	return s.generated(l, payload(l, fmt.Sprintf("quiz_%d", l.CurrentIndex), models.LayoutQuiz, slide)), nil
}

func (s *Service) quizAnswer(l *session.Lecture, params map[string]any) (*models.SlidePayload, error) {
	if len(params) == 0 {
		return nil, invalid("quiz_answer requires params")
	}
	answer, ok := paramString(params, "answer")
	if !ok || answer == "" {
		answer = "?"
	}
	explanation, _ := paramString(params, "explanation")

	content := models.SlideContent{
		Title: fmt.Sprintf("Incorrect (%s)", answer),
		Text:  "**Not quite.** " + explanation,
	}
	if paramBool(params, "correct") {
		content = models.SlideContent{
			Title: fmt.Sprintf("Correct! (%s)", answer),
			Text:  "**Well done!** " + explanation,
		}
	}

	slide := models.Slide{
		Content: content,
		Controls: []models.InteractiveControl{
			{Label: "Return to Slide", Action: models.ActionReturnToMain, Params: map[string]any{"slide_index": l.CurrentIndex}},
			{Label: "Try Another Question", Action: models.ActionQuizMe},
			{Label: "Continue Lecture", Action: models.ActionAdvance},
		},
	}
	return payload(l, fmt.Sprintf("quiz_result_%d", l.CurrentIndex), models.LayoutQuizResult, slide), nil
}

func (s *Service) extend(ctx context.Context, l *session.Lecture) (*models.SlidePayload, error) {
	titles, err := s.gen.ExtendOutline(ctx, l.Topic, l.Outline)
	if err != nil {
		return nil, fmt.Errorf("lecture: extend outline: %w", err)
	}
	if len(titles) == 0 {
		return nil, errors.New("lecture: generator returned no new titles")
	}
	l.Outline = append(l.Outline, titles...)
	l.ExitDeepDive()
	l.CurrentIndex++

	slide, err := s.gen.GenerateSlide(ctx, slideContext(l))
	if err != nil {
		return nil, fmt.Errorf("lecture: generate slide: %w", err)
	}
	l.SetSlide(l.CurrentIndex, slide)
	if err := s.store.Update(ctx, l); err != nil {
		return nil, err
	}
	return s.generated(l, mainPayload(l, slide)), nil
}

func (s *Service) references(ctx context.Context, l *session.Lecture) (*models.SlidePayload, error) {
	best, err := refcheck.BestOf(ctx, s.refiner,
		func(sl models.Slide) string { return sl.Content.Text },
		func(ctx context.Context, _ int) (models.Slide, error) {
			return s.gen.GenerateReferences(ctx, l.Topic, l.Outline, l.CurrentIndex)
		})
	if err != nil {
		return nil, fmt.Errorf("lecture: references: %w", err)
	}

	slide := models.Slide{
		Content: models.SlideContent{
			Title: best.Value.Content.Title,
			Text:  best.Result.FilteredText,
		},
		Controls: best.Value.Controls,
	}
	l.SetSlide(session.SlideReferences, slide)
	if err := s.store.Update(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("references validated",
		slog.String("session_id", l.ID),
		slog.Int("attempt", best.Number),
		slog.Int("total_links", best.Result.TotalLinks),
		slog.Int("valid_links", best.Result.ValidLinks),
		slog.Bool("needs_regeneration", best.Result.NeedsRegeneration))
	s.publish(sse.KindReferences, l.ID, map[string]any{
		"attempt":            best.Number,
		"total_links":        best.Result.TotalLinks,
		"valid_links":        best.Result.ValidLinks,
		"needs_regeneration": best.Result.NeedsRegeneration,
	})
	return s.generated(l, payload(l, fmt.Sprintf("references_%d", l.CurrentIndex), models.LayoutReferences, slide)), nil
}

func (s *Service) conceptMap(ctx context.Context, l *session.Lecture) (*models.SlidePayload, error) {
	slide, err := s.gen.GenerateConceptMap(ctx, l.Topic, l.Outline, l.CurrentIndex)
	if err != nil {
		return nil, fmt.Errorf("lecture: concept map: %w", err)
	}
	l.SetSlide(session.SlideConceptMap, slide)
	if err := s.store.Update(ctx, l); err != nil {
		return nil, err
	}
	return s.generated(l, payload(l, fmt.Sprintf("concept_map_%d", l.CurrentIndex), models.LayoutConceptMap, slide)), nil
}

func (s *Service) regenerate(ctx context.Context, l *session.Lecture, params map[string]any) (*models.SlidePayload, error) {
	feedback, _ := paramString(params, "feedback")
	slide, err := s.gen.RegenerateSlide(ctx, slideContext(l), strings.TrimSpace(feedback))
	if err != nil {
		return nil, fmt.Errorf("lecture: regenerate slide: %w", err)
	}
	l.ExitDeepDive()
	l.SetSlide(l.CurrentIndex, slide)
	if err := s.store.Update(ctx, l); err != nil {
		return nil, err
	}
	return s.generated(l, mainPayload(l, slide)), nil
}
