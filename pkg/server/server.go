package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	buserrors "github.com/tunglt-picon/mcpbus/pkg/errors"
	"github.com/tunglt-picon/mcpbus/pkg/logging"
	"github.com/tunglt-picon/mcpbus/pkg/protocol"
)

// Handler processes one method invocation. Params arrive as raw JSON;
// the returned value is marshaled into the response result.
type Handler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// MetricsRecorder receives one observation per dispatched request.
// Satisfied by observability.Metrics; nil disables recording.
type MetricsRecorder interface {
	RecordRequest(server, method, status string, duration time.Duration)
}

// Server is a named capability provider owning a fixed handler table.
// Handlers are registered at construction time; dispatch never lets a
// fault escape as anything but an error response.
type Server struct {
	name string

	mu       sync.RWMutex
	handlers map[string]Handler

	capabilities func() *protocol.Capabilities

	logger  logging.Logger
	metrics MetricsRecorder
	tracer  trace.Tracer
}

// Option defines options for creating a server
type Option func(*Server)

// WithLogger sets the structured logger
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics sets the per-request metrics recorder
func WithMetrics(metrics MetricsRecorder) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// New creates a server with the given name and an empty handler table
func New(name string, options ...Option) *Server {
	s := &Server{
		name:     name,
		handlers: make(map[string]Handler),
		logger:   logging.NewNop(),
		tracer:   otel.Tracer("github.com/tunglt-picon/mcpbus/pkg/server"),
	}
	for _, option := range options {
		option(s)
	}
	s.logger = s.logger.WithFields(logging.String("component", "server"), logging.String("server", name))
	return s
}

// Name returns the server's declared name, used as its host registry key
func (s *Server) Name() string {
	return s.name
}

// Register adds a method handler. Intended to be called during
// construction, before the server is reachable.
func (s *Server) Register(method string, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = handler
	s.logger.Debug("registered method", logging.String("method", method))
}

// HasMethod reports whether the server registers the given method
func (s *Server) HasMethod(method string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.handlers[method]
	return ok
}

// Methods returns the sorted method names this server registers
func (s *Server) Methods() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.handlers))
	for method := range s.handlers {
		out = append(out, method)
	}
	sort.Strings(out)
	return out
}

// SetCapabilities installs the descriptor source. A function rather than a
// value so servers can derive descriptors from live state.
func (s *Server) SetCapabilities(fn func() *protocol.Capabilities) {
	s.capabilities = fn
}

// GetCapabilities returns the server's capability descriptor with empty
// lists where a kind is inapplicable.
func (s *Server) GetCapabilities() *protocol.Capabilities {
	if s.capabilities != nil {
		if caps := s.capabilities(); caps != nil {
			normalizeCapabilities(caps)
			return caps
		}
	}
	caps := &protocol.Capabilities{}
	normalizeCapabilities(caps)
	return caps
}

func normalizeCapabilities(caps *protocol.Capabilities) {
	if caps.Tools == nil {
		caps.Tools = []protocol.Tool{}
	}
	if caps.Resources == nil {
		caps.Resources = []protocol.Resource{}
	}
	if caps.Prompts == nil {
		caps.Prompts = []protocol.Prompt{}
	}
}

// Dispatch resolves the request's handler, invokes it, and wraps the
// outcome or fault into a response echoing the request id (including a
// null id). Unknown methods yield MethodNotFound naming both server and
// method; anything a handler throws is converted to the nearest taxonomy
// code, defaulting to InternalError with the diagnostic preserved.
func (s *Server) Dispatch(ctx context.Context, req *protocol.Request) *protocol.Response {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "server.dispatch",
		trace.WithAttributes(
			attribute.String("rpc.server", s.name),
			attribute.String("rpc.method", req.Method),
		))
	defer span.End()

	resp := s.dispatch(ctx, req)

	status := "ok"
	if resp.Error != nil {
		status = "error"
		span.SetStatus(codes.Error, resp.Error.Message)
		span.SetAttributes(attribute.Int("rpc.error_code", int(resp.Error.Code)))
		s.logger.WithContext(ctx).Warn("request failed",
			logging.String("method", req.Method),
			logging.Int("code", int(resp.Error.Code)),
			logging.String("message", resp.Error.Message),
		)
	}
	if s.metrics != nil {
		s.metrics.RecordRequest(s.name, req.Method, status, time.Since(start))
	}
	return resp
}

func (s *Server) dispatch(ctx context.Context, req *protocol.Request) (resp *protocol.Response) {
	if req.Method == "" {
		return protocol.NewErrorResponse(req.ID, protocol.InvalidRequest, "method is required", nil)
	}

	s.mu.RLock()
	handler, ok := s.handlers[req.Method]
	s.mu.RUnlock()
	if !ok {
		return protocol.NewErrorResponse(req.ID, protocol.MethodNotFound,
			fmt.Sprintf("method '%s' not found on server '%s'", req.Method, s.name), nil)
	}

	// A panicking handler must still produce a well-formed error response.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panic",
				logging.String("method", req.Method),
				logging.Any("panic", r),
			)
			resp = protocol.NewErrorResponse(req.ID, protocol.InternalError,
				fmt.Sprintf("internal error: %v", r), nil)
		}
	}()

	result, err := handler(ctx, req.Params)
	if err != nil {
		return errorResponse(req.ID, err)
	}

	out, err := protocol.NewResponse(req.ID, result)
	if err != nil {
		return protocol.NewErrorResponse(req.ID, protocol.InternalError,
			fmt.Sprintf("failed to encode result: %v", err), nil)
	}
	return out
}

// errorResponse converts a handler error into a wire error response
func errorResponse(id interface{}, err error) *protocol.Response {
	if busErr, ok := buserrors.AsBusError(err); ok {
		return protocol.NewErrorResponse(id, protocol.ErrorCode(busErr.Code()), busErr.Error(), busErr.Data())
	}
	return protocol.NewErrorResponse(id, protocol.InternalError, err.Error(), nil)
}

// decodeParams unmarshals raw params into target, treating an absent params
// member as an empty object so methods with all-optional parameters work
// without one.
func decodeParams(method string, params json.RawMessage, target interface{}) error {
	if len(params) == 0 {
		params = []byte("{}")
	}
	if err := json.Unmarshal(params, target); err != nil {
		return buserrors.InvalidParams(method, err)
	}
	return nil
}
