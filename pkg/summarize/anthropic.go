package summarize

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tunglt-picon/mcpbus/pkg/memory"
)

// AnthropicOptions configures the Anthropic summarizer
type AnthropicOptions struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// AnthropicSummarizer generates summaries via the Messages API
type AnthropicSummarizer struct {
	client *anthropic.Client
	opts   AnthropicOptions
}

// NewAnthropicSummarizer creates a summarizer using the official client
func NewAnthropicSummarizer(optFns ...func(o *AnthropicOptions)) *AnthropicSummarizer {
	opts := AnthropicOptions{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.3,
		MaxTokens:   1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &AnthropicSummarizer{client: &client, opts: opts}
}

// Summarize condenses messages into a summary in the given language
func (s *AnthropicSummarizer) Summarize(ctx context.Context, messages []memory.Message, language string) (string, error) {
	if len(messages) == 0 {
		return "", nil
	}

	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       s.opts.Model,
		MaxTokens:   s.opts.MaxTokens,
		Temperature: anthropic.Float(s.opts.Temperature),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt(language)}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(transcript(messages))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var out string
	for _, block := range resp.Content {
		if block.Type == "text" {
			out += block.AsText().Text
		}
	}
	if out == "" {
		return "", fmt.Errorf("no text content returned")
	}
	return out, nil
}
