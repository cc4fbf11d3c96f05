package protocol

import (
	"encoding/json"
)

// Method names served by the tool server.
const (
	MethodListTools = "tools/list"
	MethodCallTool  = "tools/call"
)

// Tool describes a callable tool advertised by a server
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// ListToolsResult defines the response for tools/list
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// CallToolParams defines parameters for tools/call
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ContentItem is one entry of a tool call result. Type is currently always
// "text".
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallToolResult defines the response for tools/call
type CallToolResult struct {
	Content []ContentItem `json:"content"`
}

// NewTextResult wraps plain text into the standard tool result shape
func NewTextResult(text string) *CallToolResult {
	return &CallToolResult{Content: []ContentItem{{Type: "text", Text: text}}}
}
