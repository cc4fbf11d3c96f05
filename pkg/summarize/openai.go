package summarize

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/tunglt-picon/mcpbus/pkg/memory"
)

// OpenAIOptions configures the OpenAI summarizer
type OpenAIOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// OpenAISummarizer generates summaries via the Chat Completions API
type OpenAISummarizer struct {
	client *openai.Client
	opts   OpenAIOptions
}

// NewOpenAISummarizer creates a summarizer using the official client
func NewOpenAISummarizer(optFns ...func(o *OpenAIOptions)) *OpenAISummarizer {
	opts := OpenAIOptions{
		Model:       openai.ChatModelGPT4oMini,
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
	client := openai.NewClient(clientOpts...)

	return &OpenAISummarizer{client: &client, opts: opts}
}

// Summarize condenses messages into a summary in the given language
func (s *OpenAISummarizer) Summarize(ctx context.Context, messages []memory.Message, language string) (string, error) {
	if len(messages) == 0 {
		return "", nil
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(language)),
			openai.UserMessage(transcript(messages)),
		},
		Temperature:         openai.Float(s.opts.Temperature),
		MaxCompletionTokens: openai.Int(s.opts.MaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
