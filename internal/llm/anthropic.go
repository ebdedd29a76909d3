package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is the Claude model used when none is configured.
const DefaultModel = "claude-sonnet-4-20250514"

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client sdk.Client
	model  string
}

// NewAnthropicClient creates a Client backed by the Anthropic SDK.
func NewAnthropicClient(apiKey, model string) Client {
	if model == "" {
		model = DefaultModel
	}
	return &sdkClient{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *sdkClient) Complete(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: maxTokens,
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(prompt))},
	})
	if err != nil {
		return "", fmt.Errorf("llm: create message: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("llm: response has no text content")
	}
	return b.String(), nil
}
