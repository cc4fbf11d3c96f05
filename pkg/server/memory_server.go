package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	buserrors "github.com/tunglt-picon/mcpbus/pkg/errors"
	"github.com/tunglt-picon/mcpbus/pkg/memory"
	"github.com/tunglt-picon/mcpbus/pkg/protocol"
)

// MemoryServerName is the registry key under which the memory server
// registers on a host.
const MemoryServerName = "memory"

// MemoryServer exposes a conversation store over the memory/* and
// resources/* method surface. It exclusively owns its store; the resources
// list of its capability descriptor is derived from live conversations.
type MemoryServer struct {
	*Server
	store *memory.Store

	// conversationCount, when set, is told the live conversation count
	// after every operation that can change it.
	conversationCount func(int)
}

// MemoryOption configures a MemoryServer
type MemoryOption func(*MemoryServer)

// WithConversationCount installs a callback observing the number of live
// conversations, typically a metrics gauge setter.
func WithConversationCount(fn func(int)) MemoryOption {
	return func(m *MemoryServer) {
		m.conversationCount = fn
	}
}

// NewMemoryServer creates a memory server around the given store
func NewMemoryServer(store *memory.Store, serverOptions []Option, options ...MemoryOption) *MemoryServer {
	m := &MemoryServer{
		Server: New(MemoryServerName, serverOptions...),
		store:  store,
	}
	for _, option := range options {
		option(m)
	}

	m.Register(protocol.MethodMemoryGetOrCreate, m.handleGetOrCreate)
	m.Register(protocol.MethodMemoryAddMessage, m.handleAddMessage)
	m.Register(protocol.MethodMemoryGetContext, m.handleGetContext)
	m.Register(protocol.MethodMemoryGetAllMessages, m.handleGetAllMessages)
	m.Register(protocol.MethodMemoryGetOldMessages, m.handleGetOldMessages)
	m.Register(protocol.MethodMemoryGetSummary, m.handleGetSummary)
	m.Register(protocol.MethodMemoryGetOrCreateSummary, m.handleGetOrCreateSummary)
	m.Register(protocol.MethodMemorySetSummary, m.handleSetSummary)
	m.Register(protocol.MethodMemoryClear, m.handleClear)
	m.Register(protocol.MethodMemoryDelete, m.handleDelete)
	m.Register(protocol.MethodListResources, m.handleListResources)
	m.Register(protocol.MethodReadResource, m.handleReadResource)

	m.SetCapabilities(func() *protocol.Capabilities {
		return &protocol.Capabilities{Resources: m.listResources()}
	})

	return m
}

// Store returns the backing conversation store
func (m *MemoryServer) Store() *memory.Store {
	return m.store
}

func (m *MemoryServer) observeCount() {
	if m.conversationCount != nil {
		m.conversationCount(m.store.Len())
	}
}

func (m *MemoryServer) handleGetOrCreate(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p protocol.GetOrCreateParams
	if err := decodeParams(protocol.MethodMemoryGetOrCreate, params, &p); err != nil {
		return nil, err
	}

	id := m.store.GetOrCreate(p.ConversationID)
	m.observeCount()
	return &protocol.GetOrCreateResult{ConversationID: id}, nil
}

func (m *MemoryServer) handleAddMessage(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p protocol.AddMessageParams
	if err := decodeParams(protocol.MethodMemoryAddMessage, params, &p); err != nil {
		return nil, err
	}
	if p.ConversationID == "" {
		return nil, buserrors.MissingParameter("conversationId")
	}
	role := memory.Role(p.Role)
	if !role.Valid() {
		return nil, buserrors.NewErrorf(buserrors.CodeInvalidParams,
			buserrors.CategoryValidation, buserrors.SeverityError,
			"role must be one of user, assistant, system; got '%s'", p.Role)
	}

	if err := m.store.AddMessage(p.ConversationID, role, p.Content); err != nil {
		return nil, m.storeError(p.ConversationID, err)
	}
	return &protocol.StatusResult{Status: "success", ConversationID: p.ConversationID}, nil
}

func (m *MemoryServer) handleGetContext(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p protocol.GetContextParams
	if err := decodeParams(protocol.MethodMemoryGetContext, params, &p); err != nil {
		return nil, err
	}

	msgs := m.store.GetContext(p.ConversationID, p.MaxMessages)
	return &protocol.MessagesResult{Messages: toWireMessages(msgs)}, nil
}

func (m *MemoryServer) handleGetAllMessages(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p protocol.GetMessagesParams
	if err := decodeParams(protocol.MethodMemoryGetAllMessages, params, &p); err != nil {
		return nil, err
	}

	msgs := m.store.GetAllMessages(p.ConversationID)
	return &protocol.MessagesResult{Messages: toWireMessages(msgs)}, nil
}

func (m *MemoryServer) handleGetOldMessages(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p protocol.GetMessagesParams
	if err := decodeParams(protocol.MethodMemoryGetOldMessages, params, &p); err != nil {
		return nil, err
	}

	msgs, total := m.store.GetOldMessages(p.ConversationID)
	return &protocol.OldMessagesResult{Messages: toWireMessages(msgs), TotalCount: total}, nil
}

func (m *MemoryServer) handleGetSummary(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p protocol.SummaryParams
	if err := decodeParams(protocol.MethodMemoryGetSummary, params, &p); err != nil {
		return nil, err
	}

	return &protocol.SummaryResult{Summary: m.store.GetSummary(p.ConversationID)}, nil
}

func (m *MemoryServer) handleGetOrCreateSummary(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p protocol.GetOrCreateSummaryParams
	if err := decodeParams(protocol.MethodMemoryGetOrCreateSummary, params, &p); err != nil {
		return nil, err
	}

	// An empty summary tells the orchestrator to generate one from the old
	// messages it passed along; the store never generates text.
	return &protocol.SummaryResult{Summary: m.store.GetOrCreateSummary(p.ConversationID)}, nil
}

func (m *MemoryServer) handleSetSummary(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p protocol.SetSummaryParams
	if err := decodeParams(protocol.MethodMemorySetSummary, params, &p); err != nil {
		return nil, err
	}
	if p.ConversationID == "" {
		return nil, buserrors.MissingParameter("conversationId")
	}

	if err := m.store.SetSummary(p.ConversationID, p.Summary); err != nil {
		return nil, m.storeError(p.ConversationID, err)
	}
	if p.Compress {
		if _, err := m.store.Compact(p.ConversationID); err != nil {
			return nil, m.storeError(p.ConversationID, err)
		}
	}
	return &protocol.StatusResult{Status: "success", ConversationID: p.ConversationID}, nil
}

func (m *MemoryServer) handleClear(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p protocol.GetMessagesParams
	if err := decodeParams(protocol.MethodMemoryClear, params, &p); err != nil {
		return nil, err
	}

	if err := m.store.Clear(p.ConversationID); err != nil {
		return nil, m.storeError(p.ConversationID, err)
	}
	return &protocol.StatusResult{Status: "cleared", ConversationID: p.ConversationID}, nil
}

func (m *MemoryServer) handleDelete(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p protocol.GetMessagesParams
	if err := decodeParams(protocol.MethodMemoryDelete, params, &p); err != nil {
		return nil, err
	}

	if err := m.store.Delete(p.ConversationID); err != nil {
		return nil, m.storeError(p.ConversationID, err)
	}
	m.observeCount()
	return &protocol.StatusResult{Status: "deleted", ConversationID: p.ConversationID}, nil
}

func (m *MemoryServer) handleListResources(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return &protocol.ListResourcesResult{Resources: m.listResources()}, nil
}

func (m *MemoryServer) handleReadResource(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p protocol.ReadResourceParams
	if err := decodeParams(protocol.MethodReadResource, params, &p); err != nil {
		return nil, err
	}

	if !strings.HasPrefix(p.URI, protocol.ConversationURIPrefix) {
		return nil, buserrors.ResourceNotFoundByURI(p.URI)
	}
	conversationID := strings.TrimPrefix(p.URI, protocol.ConversationURIPrefix)
	if _, err := m.store.Stats(conversationID); err != nil {
		return nil, buserrors.ResourceNotFoundByURI(p.URI)
	}

	payload, err := json.Marshal(struct {
		Messages []protocol.Message `json:"messages"`
		Summary  string             `json:"summary"`
	}{
		Messages: toWireMessages(m.store.GetAllMessages(conversationID)),
		Summary:  m.store.GetSummary(conversationID),
	})
	if err != nil {
		return nil, buserrors.Internal("encode resource contents", err)
	}

	return &protocol.ReadResourceResult{
		Contents: []protocol.ResourceContents{{
			URI:      p.URI,
			MimeType: "application/json",
			Text:     string(payload),
		}},
	}, nil
}

// listResources derives one resource per live conversation
func (m *MemoryServer) listResources() []protocol.Resource {
	stats := m.store.List()
	out := make([]protocol.Resource, 0, len(stats))
	for _, st := range stats {
		out = append(out, protocol.Resource{
			URI:         protocol.ConversationURIPrefix + st.ConversationID,
			Name:        fmt.Sprintf("Conversation %s", shortID(st.ConversationID)),
			Description: fmt.Sprintf("Conversation history for %s", st.ConversationID),
			MimeType:    "application/json",
		})
	}
	return out
}

func (m *MemoryServer) storeError(conversationID string, err error) error {
	if err == memory.ErrNotFound {
		return buserrors.ConversationNotFound(conversationID)
	}
	return buserrors.Internal("conversation store", err)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func toWireMessages(msgs []memory.Message) []protocol.Message {
	out := make([]protocol.Message, len(msgs))
	for i, msg := range msgs {
		out[i] = protocol.Message{
			Role:      string(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.Timestamp.Format(time.RFC3339Nano),
		}
	}
	return out
}
