package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchInput struct {
	Query string `json:"query" jsonschema_description:"Search query, specific and descriptive."`
	Limit int    `json:"limit,omitempty" jsonschema_description:"Maximum results to return."`
}

func TestGenerateSchema(t *testing.T) {
	raw := GenerateSchema[searchInput]()

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &schema))
	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, props, "query")
	assert.Contains(t, props, "limit")

	query := props["query"].(map[string]interface{})
	assert.Equal(t, "Search query, specific and descriptive.", query["description"])
}

func TestRegistryRegisterAndList(t *testing.T) {
	r := NewRegistry()

	echo := Definition{
		Name:        "echo",
		Description: "Echo arguments back",
		InputSchema: GenerateSchema[searchInput](),
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			return string(args), nil
		},
	}
	require.NoError(t, r.Register(echo))
	require.NoError(t, r.Register(Definition{
		Name:    "second",
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) { return "", nil },
	}))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "echo", list[0].Name, "listing preserves registration order")
	assert.Equal(t, "second", list[1].Name)

	def, ok := r.Get("echo")
	require.True(t, ok)
	out, err := def.Handler(context.Background(), json.RawMessage(`{"query":"q"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"q"}`, out)
}

func TestRegistryRejectsBadDefinitions(t *testing.T) {
	r := NewRegistry()
	handler := func(ctx context.Context, args json.RawMessage) (string, error) { return "", nil }

	assert.Error(t, r.Register(Definition{Handler: handler}), "name required")
	assert.Error(t, r.Register(Definition{Name: "x"}), "handler required")

	require.NoError(t, r.Register(Definition{Name: "x", Handler: handler}))
	assert.Error(t, r.Register(Definition{Name: "x", Handler: handler}), "duplicate name")
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get("missing")
	assert.False(t, ok)
}
