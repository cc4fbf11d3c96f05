package summarize

import (
	"context"
	"fmt"

	"github.com/tunglt-picon/mcpbus/pkg/client"
	"github.com/tunglt-picon/mcpbus/pkg/logging"
	"github.com/tunglt-picon/mcpbus/pkg/memory"
	"github.com/tunglt-picon/mcpbus/pkg/protocol"
)

// Compactor drives conversation compression through the bus: it pulls the
// messages that left the recent window, summarizes them, folds the result
// into the accumulated summary and writes it back with compression enabled.
// It holds no direct reference to the store; everything flows through the
// memory server's method surface.
type Compactor struct {
	memory     *client.Client
	summarizer Summarizer
	language   string
	minOld     int
	logger     logging.Logger
}

// CompactorOption configures a Compactor
type CompactorOption func(*Compactor)

// WithLanguage sets the summary language (default English)
func WithLanguage(language string) CompactorOption {
	return func(c *Compactor) {
		c.language = language
	}
}

// WithMinOldMessages sets how many messages must have left the recent
// window before Compress does any work (default 1).
func WithMinOldMessages(n int) CompactorOption {
	return func(c *Compactor) {
		c.minOld = n
	}
}

// WithLogger sets the structured logger
func WithLogger(logger logging.Logger) CompactorOption {
	return func(c *Compactor) {
		c.logger = logger
	}
}

// NewCompactor creates a compactor bound to a memory server client
func NewCompactor(memoryClient *client.Client, summarizer Summarizer, options ...CompactorOption) *Compactor {
	c := &Compactor{
		memory:     memoryClient,
		summarizer: summarizer,
		minOld:     1,
		logger:     logging.NewNop(),
	}
	for _, option := range options {
		option(c)
	}
	c.logger = c.logger.WithFields(logging.String("component", "compactor"))
	return c
}

// Compress summarizes and discards the conversation's old messages.
// Returns true when compression ran, false when there was nothing to do.
func (c *Compactor) Compress(ctx context.Context, conversationID string) (bool, error) {
	var old protocol.OldMessagesResult
	if err := c.memory.CallMethod(ctx, protocol.MethodMemoryGetOldMessages,
		protocol.GetMessagesParams{ConversationID: conversationID}, &old); err != nil {
		return false, fmt.Errorf("fetching old messages: %w", err)
	}
	if len(old.Messages) < c.minOld {
		return false, nil
	}

	fragment, err := c.summarizer.Summarize(ctx, toStoreMessages(old.Messages), c.language)
	if err != nil {
		return false, fmt.Errorf("summarizing: %w", err)
	}

	var existing protocol.SummaryResult
	if err := c.memory.CallMethod(ctx, protocol.MethodMemoryGetSummary,
		protocol.SummaryParams{ConversationID: conversationID}, &existing); err != nil {
		return false, fmt.Errorf("fetching summary: %w", err)
	}

	if err := c.memory.CallMethod(ctx, protocol.MethodMemorySetSummary, protocol.SetSummaryParams{
		ConversationID: conversationID,
		Summary:        Accumulate(existing.Summary, fragment),
		Compress:       true,
	}, nil); err != nil {
		return false, fmt.Errorf("storing summary: %w", err)
	}

	c.logger.Info("compressed conversation",
		logging.String("conversation_id", conversationID),
		logging.Int("messages", len(old.Messages)),
	)
	return true, nil
}

func toStoreMessages(msgs []protocol.Message) []memory.Message {
	out := make([]memory.Message, len(msgs))
	for i, msg := range msgs {
		out[i] = memory.Message{Role: memory.Role(msg.Role), Content: msg.Content}
	}
	return out
}
