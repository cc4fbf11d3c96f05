package server

import (
	"context"
	"encoding/json"
	"time"

	buserrors "github.com/tunglt-picon/mcpbus/pkg/errors"
	"github.com/tunglt-picon/mcpbus/pkg/protocol"
	"github.com/tunglt-picon/mcpbus/pkg/tools"
)

// ToolServerName is the registry key under which the tool server registers
// on a host.
const ToolServerName = "tools"

// ToolMetricsRecorder receives one observation per executed tool call.
// Satisfied by observability.Metrics; nil disables recording.
type ToolMetricsRecorder interface {
	RecordToolCall(tool, status string, duration time.Duration)
}

// ToolServer exposes a tool registry over tools/list and tools/call. Tool
// backends are opaque beyond their declared input schema; a backend failure
// surfaces as a ToolExecutionError, never a crash.
type ToolServer struct {
	*Server
	registry    *tools.Registry
	toolMetrics ToolMetricsRecorder
}

// ToolOption configures a ToolServer
type ToolOption func(*ToolServer)

// WithToolMetrics sets the per-tool-call metrics recorder
func WithToolMetrics(metrics ToolMetricsRecorder) ToolOption {
	return func(t *ToolServer) {
		t.toolMetrics = metrics
	}
}

// NewToolServer creates a tool server around the given registry
func NewToolServer(registry *tools.Registry, serverOptions []Option, options ...ToolOption) *ToolServer {
	t := &ToolServer{
		Server:   New(ToolServerName, serverOptions...),
		registry: registry,
	}
	for _, option := range options {
		option(t)
	}

	t.Register(protocol.MethodListTools, t.handleListTools)
	t.Register(protocol.MethodCallTool, t.handleCallTool)

	t.SetCapabilities(func() *protocol.Capabilities {
		return &protocol.Capabilities{Tools: t.listTools()}
	})

	return t
}

func (t *ToolServer) handleListTools(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return &protocol.ListToolsResult{Tools: t.listTools()}, nil
}

func (t *ToolServer) handleCallTool(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p protocol.CallToolParams
	if err := decodeParams(protocol.MethodCallTool, params, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, buserrors.MissingParameter("name")
	}

	def, ok := t.registry.Get(p.Name)
	if !ok {
		return nil, buserrors.UnknownTool(p.Name)
	}

	start := time.Now()
	text, err := def.Handler(ctx, p.Arguments)
	if t.toolMetrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		t.toolMetrics.RecordToolCall(p.Name, status, time.Since(start))
	}
	if err != nil {
		return nil, buserrors.ToolExecutionFailed(p.Name, err)
	}

	return protocol.NewTextResult(text), nil
}

func (t *ToolServer) listTools() []protocol.Tool {
	defs := t.registry.List()
	out := make([]protocol.Tool, 0, len(defs))
	for _, def := range defs {
		out = append(out, protocol.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		})
	}
	return out
}
