package host

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunglt-picon/mcpbus/pkg/memory"
	"github.com/tunglt-picon/mcpbus/pkg/protocol"
	"github.com/tunglt-picon/mcpbus/pkg/server"
	"github.com/tunglt-picon/mcpbus/pkg/tools"
)

func newBus(t *testing.T) *Host {
	t.Helper()
	h := New()

	_, err := h.RegisterServer(server.NewMemoryServer(memory.NewStore(), nil).Server)
	require.NoError(t, err)

	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(tools.Definition{
		Name:        "echo",
		Description: "Echoes its input back",
		Handler: func(ctx context.Context, arguments json.RawMessage) (string, error) {
			var args struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal(arguments, &args); err != nil {
				return "", err
			}
			return args.Text, nil
		},
	}))
	_, err = h.RegisterServer(server.NewToolServer(registry, nil).Server)
	require.NoError(t, err)

	return h
}

func TestRegisterAndLookup(t *testing.T) {
	h := newBus(t)

	assert.Equal(t, []string{"memory", "tools"}, h.ServerNames())

	c, err := h.Client("memory")
	require.NoError(t, err)
	assert.Equal(t, "memory", c.ServerName())

	_, err = h.Client("search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search")
}

func TestRegisterDuplicateName(t *testing.T) {
	h := newBus(t)

	_, err := h.RegisterServer(server.New("memory"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegisterMethodConflict(t *testing.T) {
	h := newBus(t)

	rogue := server.New("rogue")
	rogue.Register(protocol.MethodMemoryGetOrCreate, func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return nil, nil
	})

	_, err := h.RegisterServer(rogue)
	require.Error(t, err)
	assert.Contains(t, err.Error(), protocol.MethodMemoryGetOrCreate)
	assert.Contains(t, err.Error(), "'memory'")
}

func TestClientsAreIndependent(t *testing.T) {
	h := newBus(t)

	mem, err := h.Client("memory")
	require.NoError(t, err)
	tls, err := h.Client("tools")
	require.NoError(t, err)

	var created protocol.GetOrCreateResult
	require.NoError(t, mem.CallMethod(context.Background(), protocol.MethodMemoryGetOrCreate, nil, &created))
	require.NotEmpty(t, created.ConversationID)

	var result protocol.CallToolResult
	require.NoError(t, tls.CallMethod(context.Background(), protocol.MethodCallTool, protocol.CallToolParams{
		Name:      "echo",
		Arguments: json.RawMessage(`{"text":"ping"}`),
	}, &result))
	require.Len(t, result.Content, 1)
	assert.Equal(t, "ping", result.Content[0].Text)
}

func TestHostDispatchRoutesByMethod(t *testing.T) {
	h := newBus(t)

	req, err := protocol.NewRequest(1, protocol.MethodMemoryGetOrCreate,
		protocol.GetOrCreateParams{ConversationID: "via-host"})
	require.NoError(t, err)
	resp := h.Dispatch(context.Background(), req)
	require.Nil(t, resp.Error)

	var created protocol.GetOrCreateResult
	require.NoError(t, json.Unmarshal(resp.Result, &created))
	assert.Equal(t, "via-host", created.ConversationID)

	req, err = protocol.NewRequest(2, protocol.MethodListTools, nil)
	require.NoError(t, err)
	resp = h.Dispatch(context.Background(), req)
	require.Nil(t, resp.Error)
}

func TestHostDispatchUnknownMethod(t *testing.T) {
	h := newBus(t)

	req, err := protocol.NewRequest(3, "search/query", nil)
	require.NoError(t, err)
	resp := h.Dispatch(context.Background(), req)

	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.MethodNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "search/query")
}

func TestHostCapabilities(t *testing.T) {
	h := newBus(t)

	caps := h.Capabilities()
	require.Len(t, caps, 2)
	require.Len(t, caps["tools"].Tools, 1)
	assert.Equal(t, "echo", caps["tools"].Tools[0].Name)
	assert.Empty(t, caps["memory"].Tools)
	assert.NotNil(t, caps["memory"].Resources)
}
