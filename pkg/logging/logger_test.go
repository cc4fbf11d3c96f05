package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	buserrors "github.com/tunglt-picon/mcpbus/pkg/errors"
)

func newTestLogger() (Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	f := NewTextFormatter()
	f.DisableColors = true
	f.DisableTimestamp = true
	return New(buf, f), buf
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newTestLogger()

	logger.Debug("hidden")
	logger.Info("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")

	logger.SetLevel(DebugLevel)
	logger.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestWithFieldsSortedOutput(t *testing.T) {
	logger, buf := newTestLogger()

	logger.WithFields(String("server", "memory"), Int("count", 3)).Info("dispatched")

	line := buf.String()
	assert.Contains(t, line, "dispatched")
	// Fields render sorted by key.
	assert.Less(t, strings.Index(line, "count=3"), strings.Index(line, "server=memory"))
}

func TestComponentOperationPrefix(t *testing.T) {
	logger, buf := newTestLogger()

	logger.WithFields(String("component", "server"), String("operation", "dispatch")).Info("ok")

	assert.Contains(t, buf.String(), "server/dispatch: ok")
}

func TestWithContextRequestID(t *testing.T) {
	logger, buf := newTestLogger()

	ctx := ContextWithRequestID(context.Background(), "req-42")
	logger.WithContext(ctx).Info("handled")

	assert.Contains(t, buf.String(), "[req-42]")
}

func TestWithErrorStructuredFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, NewJSONFormatter())

	logger.WithError(buserrors.ConversationNotFound("c9")).Error("lookup failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "lookup failed", entry["msg"])
	assert.Equal(t, float64(-32001), entry["error_code"])
	assert.Equal(t, "not_found", entry["error_category"])
}

func TestJSONFormatterRendersErrors(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, NewJSONFormatter())

	logger.WithError(fmt.Errorf("plain failure")).Error("boom")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "plain failure", entry["error"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel("warn"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
	assert.Equal(t, InfoLevel, ParseLevel("bogus"))
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	// Must not panic and must not emit.
	logger.Error("dropped")
}
