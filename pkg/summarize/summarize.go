// Package summarize generates and accumulates conversation summaries so
// the memory server can compress history that has left the recent window.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/tunglt-picon/mcpbus/pkg/memory"
)

// Summarizer condenses a batch of old messages into prose. Implementations
// wrap an LLM backend; tests use a fake.
type Summarizer interface {
	Summarize(ctx context.Context, messages []memory.Message, language string) (string, error)
}

// Accumulate folds a new summary fragment into the existing summary text.
// An empty side passes the other through unchanged.
func Accumulate(existing, fragment string) string {
	existing = strings.TrimSpace(existing)
	fragment = strings.TrimSpace(fragment)
	switch {
	case existing == "":
		return fragment
	case fragment == "":
		return existing
	default:
		return existing + "\n\n" + fragment
	}
}

// systemPrompt instructs the backend model. Language defaults to English.
func systemPrompt(language string) string {
	if language == "" {
		language = "English"
	}
	return fmt.Sprintf(
		"You summarize conversation history. Write a concise summary in %s "+
			"of the conversation below, preserving names, decisions and open "+
			"questions. Respond with the summary only.", language)
}

// transcript renders messages as a plain role-prefixed transcript
func transcript(messages []memory.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(string(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String()
}
