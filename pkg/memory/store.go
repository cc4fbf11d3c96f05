// Package memory implements the conversation store behind the memory
// server: ordered per-conversation message history, a bounded recent window
// served as generation context, a single accumulating summary, and
// caller-triggered compaction of old message bodies.
package memory

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultRecentWindow is the number of trailing messages served as
// generation context when no smaller cap is requested.
const DefaultRecentWindow = 6

// ErrNotFound is returned by mutating operations on an unknown
// conversation id. Read operations report absence as an empty result
// instead.
var ErrNotFound = errors.New("conversation not found")

// Role identifies the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the three known roles
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is a single conversation turn. Messages are immutable once
// appended.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// Stats is a point-in-time metadata snapshot of one conversation.
// MessageCount covers the full logical history: live messages plus any
// whose bodies were discarded by Compact.
type Stats struct {
	ConversationID string
	MessageCount   int
	CompactedCount int
	HasSummary     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// conversation holds the state of one conversation. Each conversation has
// its own lock so writers on different ids never contend.
type conversation struct {
	mu        sync.RWMutex
	id        string
	messages  []Message
	summary   string
	compacted int
	createdAt time.Time
	updatedAt time.Time
}

// Store is an in-memory conversation store. The top-level map is guarded by
// its own RWMutex; per-conversation state is guarded by the conversation's
// lock. Lock order is always map before conversation.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*conversation

	window int
	now    func() time.Time
	newID  func() string
}

// Option configures a Store
type Option func(*Store)

// WithRecentWindow overrides the recent-window size K
func WithRecentWindow(k int) Option {
	return func(s *Store) {
		if k > 0 {
			s.window = k
		}
	}
}

// WithIDGenerator overrides fresh-id allocation, for deterministic tests
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithClock overrides the timestamp source, for deterministic tests
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		s.now = fn
	}
}

// NewStore creates an empty conversation store
func NewStore(options ...Option) *Store {
	s := &Store{
		conversations: make(map[string]*conversation),
		window:        DefaultRecentWindow,
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// RecentWindow returns the configured window size K
func (s *Store) RecentWindow() int {
	return s.window
}

// GetOrCreate returns the id of an existing conversation unchanged, adopts a
// supplied-but-absent id by creating a conversation under exactly that id,
// or allocates a fresh unique id when none is supplied. Idempotent.
func (s *Store) GetOrCreate(conversationID string) string {
	if conversationID == "" {
		conversationID = s.newID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[conversationID]; !ok {
		now := s.now()
		s.conversations[conversationID] = &conversation{
			id:        conversationID,
			createdAt: now,
			updatedAt: now,
		}
	}
	return conversationID
}

// AddMessage appends a message with the current timestamp. Returns
// ErrNotFound for an unknown id.
func (s *Store) AddMessage(conversationID string, role Role, content string) error {
	conv := s.lookup(conversationID)
	if conv == nil {
		return ErrNotFound
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	now := s.now()
	conv.messages = append(conv.messages, Message{Role: role, Content: content, Timestamp: now})
	conv.updatedAt = now
	return nil
}

// GetContext returns at most min(maxMessages, K) most-recent messages. The
// served window is hard-capped at K regardless of a larger requested
// maximum; maxMessages <= 0 means "up to K". Unknown ids yield an empty
// slice.
func (s *Store) GetContext(conversationID string, maxMessages int) []Message {
	conv := s.lookup(conversationID)
	if conv == nil {
		return []Message{}
	}

	served := s.window
	if maxMessages > 0 && maxMessages < served {
		served = maxMessages
	}

	conv.mu.RLock()
	defer conv.mu.RUnlock()
	start := len(conv.messages) - served
	if start < 0 {
		start = 0
	}
	return copyMessages(conv.messages[start:])
}

// GetAllMessages returns the full ordered history, unbounded. Intended for
// display, never as generation context. Unknown ids yield an empty slice.
func (s *Store) GetAllMessages(conversationID string) []Message {
	conv := s.lookup(conversationID)
	if conv == nil {
		return []Message{}
	}

	conv.mu.RLock()
	defer conv.mu.RUnlock()
	return copyMessages(conv.messages)
}

// GetOldMessages returns the live messages preceding the recent window,
// plus the total logical message count. Directly after Compact the old
// prefix is empty since discarded bodies are gone; it regrows as new
// messages push older ones out of the window.
func (s *Store) GetOldMessages(conversationID string) ([]Message, int) {
	conv := s.lookup(conversationID)
	if conv == nil {
		return []Message{}, 0
	}

	conv.mu.RLock()
	defer conv.mu.RUnlock()
	cut := len(conv.messages) - s.window
	if cut < 0 {
		cut = 0
	}
	return copyMessages(conv.messages[:cut]), len(conv.messages) + conv.compacted
}

// GetSummary returns the stored summary, or "" when the conversation is
// unknown or has no summary yet.
func (s *Store) GetSummary(conversationID string) string {
	conv := s.lookup(conversationID)
	if conv == nil {
		return ""
	}

	conv.mu.RLock()
	defer conv.mu.RUnlock()
	return conv.summary
}

// GetOrCreateSummary returns the existing summary if non-empty; an empty
// string signals that the caller is expected to generate one and persist it
// via SetSummary. The store never generates summary text itself.
func (s *Store) GetOrCreateSummary(conversationID string) string {
	return s.GetSummary(conversationID)
}

// SetSummary replaces the stored summary verbatim with text. Accumulating
// onto a previous summary is the caller's convention; the store performs a
// pure write. Returns ErrNotFound for an unknown id.
func (s *Store) SetSummary(conversationID, text string) error {
	conv := s.lookup(conversationID)
	if conv == nil {
		return ErrNotFound
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	conv.summary = text
	conv.updatedAt = s.now()
	return nil
}

// Compact discards the bodies of all messages preceding the recent window,
// remembering how many were dropped so totals stay meaningful. Callers fold
// those bodies into the summary before compacting. Returns the number of
// messages discarded.
func (s *Store) Compact(conversationID string) (int, error) {
	conv := s.lookup(conversationID)
	if conv == nil {
		return 0, ErrNotFound
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	cut := len(conv.messages) - s.window
	if cut <= 0 {
		return 0, nil
	}
	conv.messages = copyMessages(conv.messages[cut:])
	conv.compacted += cut
	conv.updatedAt = s.now()
	return cut, nil
}

// Clear empties messages and summary but keeps the id valid. Returns
// ErrNotFound for an unknown id.
func (s *Store) Clear(conversationID string) error {
	conv := s.lookup(conversationID)
	if conv == nil {
		return ErrNotFound
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	conv.messages = nil
	conv.summary = ""
	conv.compacted = 0
	conv.updatedAt = s.now()
	return nil
}

// Delete removes the conversation entirely. A later GetOrCreate with the
// same id starts a brand-new empty conversation. Returns ErrNotFound for an
// unknown id.
func (s *Store) Delete(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[conversationID]
	if !ok {
		return ErrNotFound
	}
	// Wait out any in-flight writer before the state becomes unreachable.
	conv.mu.Lock()
	delete(s.conversations, conversationID)
	conv.mu.Unlock()
	return nil
}

// Stats returns a metadata snapshot for one conversation
func (s *Store) Stats(conversationID string) (Stats, error) {
	conv := s.lookup(conversationID)
	if conv == nil {
		return Stats{}, ErrNotFound
	}

	conv.mu.RLock()
	defer conv.mu.RUnlock()
	return Stats{
		ConversationID: conv.id,
		MessageCount:   len(conv.messages) + conv.compacted,
		CompactedCount: conv.compacted,
		HasSummary:     conv.summary != "",
		CreatedAt:      conv.createdAt,
		UpdatedAt:      conv.updatedAt,
	}, nil
}

// List returns metadata snapshots for all live conversations, ordered by id
// so discovery listings are stable.
func (s *Store) List() []Stats {
	s.mu.RLock()
	ids := make([]string, 0, len(s.conversations))
	for id := range s.conversations {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)

	out := make([]Stats, 0, len(ids))
	for _, id := range ids {
		if stats, err := s.Stats(id); err == nil {
			out = append(out, stats)
		}
	}
	return out
}

// Len returns the number of live conversations
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// lookup fetches the conversation pointer under the map read lock
func (s *Store) lookup(conversationID string) *conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversations[conversationID]
}

func copyMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
