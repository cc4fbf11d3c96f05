package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunglt-picon/mcpbus/pkg/protocol"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	s := New("echo")
	s.Register("echo/say", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var p struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return map[string]string{"text": p.Text}, nil
	})
	return NewHTTPHandler(s, nil)
}

func postJSON(t *testing.T, handler http.Handler, body string) *protocol.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/jsonrpc", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp protocol.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return &resp
}

func TestHTTPHandlerSuccess(t *testing.T) {
	resp := postJSON(t, newTestHandler(t),
		`{"jsonrpc":"2.0","id":1,"method":"echo/say","params":{"text":"hi"}}`)

	require.Nil(t, resp.Error)
	assert.Equal(t, float64(1), resp.ID)

	var result struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, "hi", result.Text)
}

func TestHTTPHandlerMalformedBody(t *testing.T) {
	resp := postJSON(t, newTestHandler(t), `{"jsonrpc": "2.0", "id": 1,`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ParseError, resp.Error.Code)
	assert.Nil(t, resp.ID)
}

func TestHTTPHandlerInvalidRequestKeepsID(t *testing.T) {
	resp := postJSON(t, newTestHandler(t), `{"jsonrpc":"1.0","id":"req-9","method":"echo/say"}`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.InvalidRequest, resp.Error.Code)
	assert.Equal(t, "req-9", resp.ID)
}

func TestHTTPHandlerMissingMethod(t *testing.T) {
	resp := postJSON(t, newTestHandler(t), `{"jsonrpc":"2.0","id":3}`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.InvalidRequest, resp.Error.Code)
	assert.Equal(t, float64(3), resp.ID)
}

func TestHTTPHandlerUnknownMethod(t *testing.T) {
	resp := postJSON(t, newTestHandler(t), `{"jsonrpc":"2.0","id":4,"method":"echo/nope"}`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.MethodNotFound, resp.Error.Code)
}

func TestHTTPHandlerRejectsGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/jsonrpc", nil)
	rec := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestHTTPHandlerNullID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/jsonrpc",
		strings.NewReader(`{"jsonrpc":"2.0","id":null,"method":"echo/say","params":{"text":"x"}}`))
	rec := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":null`)
}
