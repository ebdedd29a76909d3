package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the Gemini model used when none is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// geminiClient implements Client using the Google Gen AI SDK.
type geminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Client backed by the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey, model string) (Client, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create gemini client: %w", err)
	}
	return &geminiClient{client: c, model: model}, nil
}

func (c *geminiClient) Complete(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("llm: generate content: %w", err)
	}
	return geminiText(resp)
}

// geminiText joins the text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("llm: response has no candidates")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("llm: response has no text content")
	}
	return b.String(), nil
}
