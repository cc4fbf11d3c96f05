package summarize

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunglt-picon/mcpbus/pkg/client"
	"github.com/tunglt-picon/mcpbus/pkg/memory"
	"github.com/tunglt-picon/mcpbus/pkg/protocol"
	"github.com/tunglt-picon/mcpbus/pkg/server"
)

type fakeSummarizer struct {
	calls    int
	lastLang string
	err      error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, messages []memory.Message, language string) (string, error) {
	f.calls++
	f.lastLang = language
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("summary of %d messages", len(messages)), nil
}

func newMemoryClient(t *testing.T) (*client.Client, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	m := server.NewMemoryServer(store, nil)
	return client.New(server.MemoryServerName, m.Server), store
}

func seedConversation(t *testing.T, c *client.Client, id string, n int) {
	t.Helper()
	require.NoError(t, c.CallMethod(context.Background(), protocol.MethodMemoryGetOrCreate,
		protocol.GetOrCreateParams{ConversationID: id}, nil))
	for i := 0; i < n; i++ {
		require.NoError(t, c.CallMethod(context.Background(), protocol.MethodMemoryAddMessage,
			protocol.AddMessageParams{ConversationID: id, Role: "user", Content: fmt.Sprintf("m%d", i+1)}, nil))
	}
}

func TestCompressSummarizesAndDiscards(t *testing.T) {
	c, store := newMemoryClient(t)
	seedConversation(t, c, "c1", 9)

	summarizer := &fakeSummarizer{}
	compactor := NewCompactor(c, summarizer)

	ran, err := compactor.Compress(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, summarizer.calls)

	assert.Equal(t, "summary of 3 messages", store.GetSummary("c1"))
	old, total := store.GetOldMessages("c1")
	assert.Empty(t, old)
	assert.Equal(t, 9, total)
	assert.Len(t, store.GetAllMessages("c1"), 6)
}

func TestCompressAccumulatesSummary(t *testing.T) {
	c, store := newMemoryClient(t)
	seedConversation(t, c, "c1", 8)

	compactor := NewCompactor(c, &fakeSummarizer{})

	ran, err := compactor.Compress(context.Background(), "c1")
	require.NoError(t, err)
	require.True(t, ran)

	// Regrow the old prefix, then compress again.
	for i := 0; i < 4; i++ {
		require.NoError(t, c.CallMethod(context.Background(), protocol.MethodMemoryAddMessage,
			protocol.AddMessageParams{ConversationID: "c1", Role: "assistant", Content: "later"}, nil))
	}
	ran, err = compactor.Compress(context.Background(), "c1")
	require.NoError(t, err)
	require.True(t, ran)

	assert.Equal(t, "summary of 2 messages\n\nsummary of 4 messages", store.GetSummary("c1"))
}

func TestCompressNothingToDo(t *testing.T) {
	c, _ := newMemoryClient(t)
	seedConversation(t, c, "c1", 4)

	summarizer := &fakeSummarizer{}
	compactor := NewCompactor(c, summarizer)

	ran, err := compactor.Compress(context.Background(), "c1")
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Zero(t, summarizer.calls)
}

func TestCompressHonorsThreshold(t *testing.T) {
	c, _ := newMemoryClient(t)
	seedConversation(t, c, "c1", 8)

	compactor := NewCompactor(c, &fakeSummarizer{}, WithMinOldMessages(3))

	ran, err := compactor.Compress(context.Background(), "c1")
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestCompressPassesLanguage(t *testing.T) {
	c, _ := newMemoryClient(t)
	seedConversation(t, c, "c1", 8)

	summarizer := &fakeSummarizer{}
	compactor := NewCompactor(c, summarizer, WithLanguage("Vietnamese"))

	_, err := compactor.Compress(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Vietnamese", summarizer.lastLang)
}

func TestCompressSummarizerFailureLeavesStoreIntact(t *testing.T) {
	c, store := newMemoryClient(t)
	seedConversation(t, c, "c1", 8)

	compactor := NewCompactor(c, &fakeSummarizer{err: errors.New("model overloaded")})

	_, err := compactor.Compress(context.Background(), "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")

	// Nothing was discarded.
	old, _ := store.GetOldMessages("c1")
	assert.Len(t, old, 2)
	assert.Equal(t, "", store.GetSummary("c1"))
}

func TestAccumulate(t *testing.T) {
	assert.Equal(t, "b", Accumulate("", "b"))
	assert.Equal(t, "a", Accumulate("a", ""))
	assert.Equal(t, "a\n\nb", Accumulate("a", "b"))
	assert.Equal(t, "", Accumulate("  ", ""))
}
