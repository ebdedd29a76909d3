package llm

import (
	"context"
	"log/slog"

	"github.com/starford/professor/internal/models"
)

const (
	DefaultMaxTokens = 2048

	outlineMaxTokens = 1024
)

// Client sends a single-turn prompt and returns the text reply.
type Client interface {
	Complete(ctx context.Context, prompt string, maxTokens int64) (string, error)
}

// Chat is a Generator that prompts a chat model for JSON and parses the
// reply. The model behind it is whatever Client it is given.
type Chat struct {
	client    Client
	maxTokens int64
	logger    *slog.Logger
}

var _ Generator = (*Chat)(nil)

// NewChat creates a Chat generator. maxTokens below 1 means DefaultMaxTokens.
func NewChat(client Client, maxTokens int64, logger *slog.Logger) *Chat {
	if maxTokens < 1 {
		maxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chat{client: client, maxTokens: maxTokens, logger: logger}
}

func (a *Chat) titles(ctx context.Context, prompt string) ([]string, error) {
	raw, err := a.client.Complete(ctx, prompt, outlineMaxTokens)
	if err != nil {
		return nil, err
	}
	return parseTitles(raw)
}

func (a *Chat) slide(ctx context.Context, prompt string) (models.Slide, error) {
	raw, err := a.client.Complete(ctx, prompt, a.maxTokens)
	if err != nil {
		return models.Slide{}, err
	}
	return parseSlide(raw)
}

// slideWithRetry asks once more, quoting the parse error, when the first
// reply is not usable JSON. Transport errors are not retried.
func (a *Chat) slideWithRetry(ctx context.Context, prompt string) (models.Slide, error) {
	raw, err := a.client.Complete(ctx, prompt, a.maxTokens)
	if err != nil {
		return models.Slide{}, err
	}
	s, parseErr := parseSlide(raw)
	if parseErr == nil {
		return s, nil
	}

	a.logger.Warn("llm: unparseable slide, retrying", slog.String("error", parseErr.Error()))
	raw, err = a.client.Complete(ctx, retryPrompt(prompt, parseErr, raw), a.maxTokens)
	if err != nil {
		return models.Slide{}, err
	}
	return parseSlide(raw)
}

func (a *Chat) GenerateOutline(ctx context.Context, topic string) ([]string, error) {
	return a.titles(ctx, outlinePrompt(topic))
}

func (a *Chat) ExtendOutline(ctx context.Context, topic string, existing []string) ([]string, error) {
	return a.titles(ctx, extendOutlinePrompt(topic, existing))
}

func (a *Chat) GenerateSlide(ctx context.Context, sc SlideContext) (models.Slide, error) {
	return a.slide(ctx, slidePrompt(sc))
}

func (a *Chat) ClarifySlide(ctx context.Context, content models.SlideContent, sc SlideContext) (models.Slide, error) {
	return a.slide(ctx, clarifyPrompt(content, sc.NextTitle()))
}

func (a *Chat) DeepDive(ctx context.Context, topic, concept string, parent SlideContext) (models.Slide, error) {
	return a.slide(ctx, deepDivePrompt(topic, concept, parent))
}

func (a *Chat) GenerateExample(ctx context.Context, content models.SlideContent, sc SlideContext, exampleType string) (models.Slide, error) {
	return a.slideWithRetry(ctx, examplePrompt(content, sc, exampleType))
}

func (a *Chat) GenerateQuiz(ctx context.Context, content models.SlideContent, sc SlideContext) (models.Slide, error) {
	return a.slideWithRetry(ctx, quizPrompt(content, sc))
}

func (a *Chat) GenerateReferences(ctx context.Context, topic string, outline []string, currentIndex int) (models.Slide, error) {
	return a.slide(ctx, referencesPrompt(topic, outline, currentIndex))
}

func (a *Chat) GenerateConceptMap(ctx context.Context, topic string, outline []string, currentIndex int) (models.Slide, error) {
	return a.slide(ctx, conceptMapPrompt(topic, outline, currentIndex))
}

func (a *Chat) RegenerateSlide(ctx context.Context, sc SlideContext, feedback string) (models.Slide, error) {
	return a.slide(ctx, regeneratePrompt(sc, feedback))
}
