package server

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	buserrors "github.com/tunglt-picon/mcpbus/pkg/errors"
	"github.com/tunglt-picon/mcpbus/pkg/protocol"
)

func newRequest(t *testing.T, id interface{}, method string, params interface{}) *protocol.Request {
	t.Helper()
	req, err := protocol.NewRequest(id, method, params)
	require.NoError(t, err)
	return req
}

func TestDispatchSuccess(t *testing.T) {
	s := New("echo")
	s.Register("echo/say", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var p struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.Unmarshal(params, &p))
		return map[string]string{"text": p.Text}, nil
	})

	resp := s.Dispatch(context.Background(), newRequest(t, 1, "echo/say", map[string]string{"text": "hi"}))

	require.Nil(t, resp.Error)
	assert.Equal(t, protocol.JSONRPCVersion, resp.JSONRPC)
	assert.Equal(t, 1, resp.ID)

	var result struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, "hi", result.Text)
}

func TestDispatchUnknownMethod(t *testing.T) {
	s := New("memory")

	resp := s.Dispatch(context.Background(), newRequest(t, "req-1", "memory/nope", nil))

	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.MethodNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "memory/nope")
	assert.Contains(t, resp.Error.Message, "'memory'")
	assert.Equal(t, "req-1", resp.ID)
}

func TestDispatchEmptyMethod(t *testing.T) {
	s := New("echo")

	resp := s.Dispatch(context.Background(), &protocol.Request{
		JSONRPCMessage: protocol.JSONRPCMessage{JSONRPC: protocol.JSONRPCVersion},
		ID:             7,
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.InvalidRequest, resp.Error.Code)
}

func TestDispatchEchoesNullID(t *testing.T) {
	s := New("echo")
	s.Register("echo/ping", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return map[string]string{"status": "ok"}, nil
	})

	resp := s.Dispatch(context.Background(), newRequest(t, nil, "echo/ping", nil))

	require.Nil(t, resp.Error)
	assert.Nil(t, resp.ID)

	encoded, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"id":null`)
}

func TestDispatchBusErrorPassesCodeAndData(t *testing.T) {
	s := New("memory")
	s.Register("memory/get", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return nil, buserrors.ConversationNotFound("abc")
	})

	resp := s.Dispatch(context.Background(), newRequest(t, 2, "memory/get", nil))

	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ResourceNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "abc")
	assert.NotNil(t, resp.Error.Data)
}

func TestDispatchPlainErrorBecomesInternal(t *testing.T) {
	s := New("echo")
	s.Register("echo/fail", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return nil, errors.New("disk on fire")
	})

	resp := s.Dispatch(context.Background(), newRequest(t, 3, "echo/fail", nil))

	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.InternalError, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "disk on fire")
}

func TestDispatchRecoversPanic(t *testing.T) {
	s := New("echo")
	s.Register("echo/panic", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		panic("boom")
	})

	resp := s.Dispatch(context.Background(), newRequest(t, 4, "echo/panic", nil))

	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.InternalError, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "boom")
}

func TestDispatchRecordsMetrics(t *testing.T) {
	rec := &fakeMetrics{}
	s := New("echo", WithMetrics(rec))
	s.Register("echo/ok", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return map[string]string{}, nil
	})

	s.Dispatch(context.Background(), newRequest(t, 1, "echo/ok", nil))
	s.Dispatch(context.Background(), newRequest(t, 2, "echo/missing", nil))

	require.Len(t, rec.requests, 2)
	assert.Equal(t, [3]string{"echo", "echo/ok", "ok"}, rec.requests[0])
	assert.Equal(t, [3]string{"echo", "echo/missing", "error"}, rec.requests[1])
}

func TestMethodsSorted(t *testing.T) {
	s := New("echo")
	noop := func(ctx context.Context, params json.RawMessage) (interface{}, error) { return nil, nil }
	s.Register("z/last", noop)
	s.Register("a/first", noop)
	s.Register("m/middle", noop)

	assert.Equal(t, []string{"a/first", "m/middle", "z/last"}, s.Methods())
	assert.True(t, s.HasMethod("a/first"))
	assert.False(t, s.HasMethod("a/absent"))
}

func TestGetCapabilitiesNormalizesNilLists(t *testing.T) {
	s := New("bare")

	caps := s.GetCapabilities()

	require.NotNil(t, caps)
	assert.NotNil(t, caps.Tools)
	assert.NotNil(t, caps.Resources)
	assert.NotNil(t, caps.Prompts)
	assert.Empty(t, caps.Tools)

	encoded, err := json.Marshal(caps)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tools":[],"resources":[],"prompts":[]}`, string(encoded))
}

type fakeMetrics struct {
	requests [][3]string
}

func (f *fakeMetrics) RecordRequest(server, method, status string, _ time.Duration) {
	f.requests = append(f.requests, [3]string{server, method, status})
}
