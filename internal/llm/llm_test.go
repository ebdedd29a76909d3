package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/professor/internal/models"
)

// scriptedClient replies with canned responses in order and records prompts.
type scriptedClient struct {
	replies []string
	errs    []error
	prompts []string
}

func (c *scriptedClient) Complete(_ context.Context, prompt string, _ int64) (string, error) {
	i := len(c.prompts)
	c.prompts = append(c.prompts, prompt)
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i >= len(c.replies) {
		return "", errors.New("no scripted reply")
	}
	return c.replies[i], nil
}

const validSlide = `{"content": {"title": "Borrowing", "text": "References borrow."},
 "controls": [{"label": "Next: Lifetimes", "action": "advance_main_thread"},
              {"label": "Deep Dive: Aliasing", "action": "deep_dive", "params": {"concept": "aliasing"}}]}`

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[\"x\"]\n```  ", `["x"]`},
		{"surrounding space", "  \n{\"a\":1}\n ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.in))
		})
	}
}

func TestParseSlide(t *testing.T) {
	s, err := parseSlide("```json\n" + validSlide + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "Borrowing", s.Content.Title)
	require.Len(t, s.Controls, 2)
	assert.Equal(t, "aliasing", s.Controls[1].Params["concept"])
}

func TestParseSlide_Errors(t *testing.T) {
	for _, raw := range []string{
		`not json`,
		`{"controls": []}`,
		`{"content": {"title": "x", "text": "y"}}`,
	} {
		_, err := parseSlide(raw)
		assert.Error(t, err, raw)
	}
}

func TestParseTitles(t *testing.T) {
	titles, err := parseTitles("```json\n[\"A\", \"B\"]\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, titles)

	_, err = parseTitles(`[]`)
	assert.Error(t, err)
}

func TestChat_GenerateSlide(t *testing.T) {
	c := &scriptedClient{replies: []string{validSlide}}
	g := NewChat(c, 0, nil)

	sc := SlideContext{Topic: "Rust", SlideTitle: "Borrowing", SlideIndex: 1, TotalSlides: 3,
		Outline: []string{"Intro", "Borrowing", "Lifetimes"}}
	s, err := g.GenerateSlide(context.Background(), sc)

	require.NoError(t, err)
	assert.Equal(t, "Borrowing", s.Content.Title)
	require.Len(t, c.prompts, 1)
	assert.Contains(t, c.prompts[0], "slide 2 of 3")
	assert.Contains(t, c.prompts[0], "Next slide will be: Lifetimes")
}

func TestChat_ExampleRetriesOnceOnParseFailure(t *testing.T) {
	c := &scriptedClient{replies: []string{"{broken", validSlide}}
	g := NewChat(c, 0, nil)

	s, err := g.GenerateExample(context.Background(),
		models.SlideContent{Title: "Borrowing", Text: "t"}, SlideContext{Topic: "Rust"}, "code")

	require.NoError(t, err)
	assert.Equal(t, "Borrowing", s.Content.Title)
	require.Len(t, c.prompts, 2)
	assert.Contains(t, c.prompts[1], "failed to parse")
	assert.Contains(t, c.prompts[1], "{broken")
}

func TestChat_QuizRetryStillBroken(t *testing.T) {
	c := &scriptedClient{replies: []string{"nope", "still nope"}}
	g := NewChat(c, 0, nil)

	_, err := g.GenerateQuiz(context.Background(), models.SlideContent{Title: "X"}, SlideContext{})

	assert.Error(t, err)
	assert.Len(t, c.prompts, 2)
}

func TestChat_TransportErrorNotRetried(t *testing.T) {
	boom := errors.New("overloaded")
	c := &scriptedClient{errs: []error{boom}}
	g := NewChat(c, 0, nil)

	_, err := g.GenerateExample(context.Background(), models.SlideContent{}, SlideContext{}, "code")

	assert.ErrorIs(t, err, boom)
	assert.Len(t, c.prompts, 1)
}

func TestChat_SlideWithoutRetry(t *testing.T) {
	c := &scriptedClient{replies: []string{"garbage", validSlide}}
	g := NewChat(c, 0, nil)

	_, err := g.GenerateReferences(context.Background(), "Rust", []string{"Intro"}, 0)

	assert.Error(t, err)
	assert.Len(t, c.prompts, 1)
}

func TestChat_Outline(t *testing.T) {
	c := &scriptedClient{replies: []string{`["Intro", "Ownership"]`}}
	g := NewChat(c, 0, nil)

	titles, err := g.GenerateOutline(context.Background(), "Rust")
	require.NoError(t, err)
	assert.Equal(t, []string{"Intro", "Ownership"}, titles)
	assert.Contains(t, c.prompts[0], `"Rust"`)
}

func TestReferencesPrompt_Controls(t *testing.T) {
	outline := []string{"Intro", "Ownership"}

	p := referencesPrompt("Rust", outline, 0)
	assert.Contains(t, p, `"Next: Ownership"`)
	assert.Contains(t, p, `"slide_index": 0`)
	assert.NotContains(t, p, "Extend Lecture")

	p = referencesPrompt("Rust", outline, 1)
	assert.Contains(t, p, "Extend Lecture")
	assert.Contains(t, p, "- Ownership")
}

func TestRetryPrompt_TruncatesFailedResponse(t *testing.T) {
	p := retryPrompt("orig", errors.New("bad"), strings.Repeat("x", 800))
	assert.True(t, strings.HasPrefix(p, "orig"))
	assert.Equal(t, 500, strings.Count(p, "x"))
}

func TestMock_Outline(t *testing.T) {
	titles, err := Mock{}.GenerateOutline(context.Background(), "Rust")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Introduction to Rust", "Core Concepts of Rust", "Key Principles",
		"Practical Applications", "Common Challenges",
	}, titles)

	more, err := Mock{}.ExtendOutline(context.Background(), "Rust", titles)
	require.NoError(t, err)
	assert.Equal(t, "Advanced Topic 2.1", more[0])
	assert.Len(t, more, 4)
}

func TestMock_SlideControls(t *testing.T) {
	outline := []string{"Introduction to Rust", "Ownership", "Traits"}
	ctx := context.Background()

	first, err := Mock{}.GenerateSlide(ctx, SlideContext{Topic: "Rust", SlideTitle: outline[0],
		SlideIndex: 0, TotalSlides: 3, Outline: outline, IsFirst: true})
	require.NoError(t, err)
	assert.Equal(t, "Next: Ownership", first.Controls[0].Label)
	for _, c := range first.Controls {
		assert.NotEqual(t, models.ActionPrevious, c.Action)
		assert.NotEqual(t, models.ActionQuizMe, c.Action)
	}

	last, err := Mock{}.GenerateSlide(ctx, SlideContext{Topic: "Rust", SlideTitle: outline[2],
		SlideIndex: 2, TotalSlides: 3, Outline: outline, IsLast: true})
	require.NoError(t, err)
	assert.Equal(t, models.ActionExtend, last.Controls[0].Action)
	assert.Equal(t, models.ActionPrevious, last.Controls[1].Action)
}

func TestMock_ReferencesAreExtractable(t *testing.T) {
	s, err := Mock{}.GenerateReferences(context.Background(), "Machine Learning", []string{"A", "B"}, 0)
	require.NoError(t, err)
	assert.Contains(t, s.Content.Text, "https://en.wikipedia.org/wiki/Machine_Learning")
	assert.Equal(t, 4, strings.Count(s.Content.Text, "](https://"))
	assert.Equal(t, "Next: B", s.Controls[1].Label)
}
