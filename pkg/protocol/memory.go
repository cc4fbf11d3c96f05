package protocol

// Method names served by the memory server.
const (
	MethodMemoryGetOrCreate        = "memory/get_or_create"
	MethodMemoryAddMessage         = "memory/add_message"
	MethodMemoryGetContext         = "memory/get_context"
	MethodMemoryGetAllMessages     = "memory/get_all_messages"
	MethodMemoryGetOldMessages     = "memory/get_old_messages"
	MethodMemoryGetSummary         = "memory/get_summary"
	MethodMemoryGetOrCreateSummary = "memory/get_or_create_summary"
	MethodMemorySetSummary         = "memory/set_summary"
	MethodMemoryClear              = "memory/clear"
	MethodMemoryDelete             = "memory/delete"
)

// Message is the wire representation of a single conversation turn.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// GetOrCreateParams defines parameters for memory/get_or_create. An empty
// ConversationID asks the server to allocate a fresh id.
type GetOrCreateParams struct {
	ConversationID string `json:"conversationId,omitempty"`
}

// GetOrCreateResult defines the response for memory/get_or_create
type GetOrCreateResult struct {
	ConversationID string `json:"conversationId"`
}

// AddMessageParams defines parameters for memory/add_message
type AddMessageParams struct {
	ConversationID string `json:"conversationId"`
	Role           string `json:"role"`
	Content        string `json:"content"`
}

// StatusResult is the shared response shape for mutating memory methods
type StatusResult struct {
	Status         string `json:"status"`
	ConversationID string `json:"conversationId"`
}

// GetContextParams defines parameters for memory/get_context. MaxMessages is
// a caller-side cap; the served window never exceeds the server's recent
// window regardless of this value.
type GetContextParams struct {
	ConversationID string `json:"conversationId"`
	MaxMessages    int    `json:"maxMessages,omitempty"`
}

// GetMessagesParams defines parameters for memory/get_all_messages and
// memory/get_old_messages
type GetMessagesParams struct {
	ConversationID string `json:"conversationId"`
}

// MessagesResult defines the response for memory/get_context and
// memory/get_all_messages
type MessagesResult struct {
	Messages []Message `json:"messages"`
}

// OldMessagesResult defines the response for memory/get_old_messages.
// TotalCount covers the full logical history, including messages whose
// bodies have already been compacted away.
type OldMessagesResult struct {
	Messages   []Message `json:"messages"`
	TotalCount int       `json:"totalCount"`
}

// SummaryParams defines parameters for memory/get_summary
type SummaryParams struct {
	ConversationID string `json:"conversationId"`
}

// GetOrCreateSummaryParams defines parameters for
// memory/get_or_create_summary. OldMessages and Language are carried for the
// orchestrator that generates the summary text; the server itself only
// checks whether a summary already exists.
type GetOrCreateSummaryParams struct {
	ConversationID string    `json:"conversationId"`
	OldMessages    []Message `json:"oldMessages,omitempty"`
	Language       string    `json:"language,omitempty"`
}

// SummaryResult defines the response for memory/get_summary and
// memory/get_or_create_summary. An empty Summary from the latter signals
// that the caller is expected to create one.
type SummaryResult struct {
	Summary string `json:"summary"`
}

// SetSummaryParams defines parameters for memory/set_summary. The stored
// summary is replaced verbatim with Summary; accumulation is the caller's
// concern. Compress additionally discards the bodies of messages outside
// the recent window once the summary is written.
type SetSummaryParams struct {
	ConversationID string `json:"conversationId"`
	Summary        string `json:"summary"`
	Compress       bool   `json:"compress,omitempty"`
}
