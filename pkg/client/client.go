package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	buserrors "github.com/tunglt-picon/mcpbus/pkg/errors"
	"github.com/tunglt-picon/mcpbus/pkg/logging"
	"github.com/tunglt-picon/mcpbus/pkg/protocol"
)

// Invoker is the server-side surface a client binds to: anything that can
// turn a request into a response. *server.Server satisfies it directly; the
// HTTP transport satisfies it over the wire.
type Invoker interface {
	Dispatch(ctx context.Context, req *protocol.Request) *protocol.Response
}

// Client is a host-side handle on one named server. All calls flow through
// CallMethod, which assigns request ids and converts wire errors back into
// typed errors.
type Client struct {
	serverName string
	invoker    Invoker
	logger     logging.Logger
	tracer     trace.Tracer
	nextID     atomic.Int64
}

// Option defines options for creating a client
type Option func(*Client)

// WithLogger sets the structured logger
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client bound to an in-process server surface
func New(serverName string, invoker Invoker, options ...Option) *Client {
	c := &Client{
		serverName: serverName,
		invoker:    invoker,
		logger:     logging.NewNop(),
		tracer:     otel.Tracer("github.com/tunglt-picon/mcpbus/pkg/client"),
	}
	for _, option := range options {
		option(c)
	}
	c.logger = c.logger.WithFields(logging.String("component", "client"), logging.String("server", serverName))
	return c
}

// NewHTTP creates a client that reaches a remote bus over its JSON-RPC
// endpoint. The serverName is advisory; routing happens remotely by method.
func NewHTTP(serverName, endpoint string, httpClient *http.Client, options ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return New(serverName, &httpInvoker{endpoint: endpoint, client: httpClient}, options...)
}

// ServerName returns the name of the server this client is bound to
func (c *Client) ServerName() string {
	return c.serverName
}

// CallMethod invokes a method and decodes the result into result, which may
// be nil when the caller only cares about success. A wire error comes back
// as a BusError carrying the original code.
func (c *Client) CallMethod(ctx context.Context, method string, params interface{}, result interface{}) error {
	ctx, span := c.tracer.Start(ctx, "client.call",
		trace.WithAttributes(
			attribute.String("rpc.server", c.serverName),
			attribute.String("rpc.method", method),
		))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return err
	}

	req, err := protocol.NewRequest(c.nextID.Add(1), method, params)
	if err != nil {
		return buserrors.Internal("encode request", err)
	}

	resp := c.invoker.Dispatch(ctx, req)
	if resp == nil {
		err := fmt.Errorf("no response from server '%s'", c.serverName)
		span.SetStatus(codes.Error, err.Error())
		return buserrors.Internal("dispatch", err)
	}
	if resp.Error != nil {
		span.SetStatus(codes.Error, resp.Error.Message)
		span.SetAttributes(attribute.Int("rpc.error_code", int(resp.Error.Code)))
		c.logger.WithContext(ctx).Debug("call failed",
			logging.String("method", method),
			logging.Int("code", int(resp.Error.Code)),
		)
		return wireError(resp.Error)
	}

	if result == nil {
		return nil
	}
	if len(resp.Result) == 0 {
		return buserrors.Internal("decode result", fmt.Errorf("empty result for method '%s'", method))
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return buserrors.Internal("decode result", err)
	}
	return nil
}

// wireError reconstructs a typed error from a wire error object so callers
// can switch on code and category without string matching.
func wireError(werr *protocol.Error) error {
	category := buserrors.CategoryInternal
	switch int(werr.Code) {
	case buserrors.CodeParseError, buserrors.CodeInvalidRequest, buserrors.CodeInvalidParams:
		category = buserrors.CategoryValidation
	case buserrors.CodeMethodNotFound:
		category = buserrors.CategoryProtocol
	case buserrors.CodeResourceNotFound:
		category = buserrors.CategoryNotFound
	case buserrors.CodeToolExecution:
		category = buserrors.CategoryTool
	}
	busErr := buserrors.NewError(int(werr.Code), werr.Message, category, buserrors.SeverityError)
	if werr.Data != nil {
		busErr = busErr.WithData(werr.Data)
	}
	return busErr
}

// httpInvoker carries requests over a JSON-RPC POST endpoint
type httpInvoker struct {
	endpoint string
	client   *http.Client
}

func (h *httpInvoker) Dispatch(ctx context.Context, req *protocol.Request) *protocol.Response {
	body, err := json.Marshal(req)
	if err != nil {
		return protocol.NewErrorResponse(req.ID, protocol.InternalError,
			fmt.Sprintf("failed to encode request: %v", err), nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return protocol.NewErrorResponse(req.ID, protocol.InternalError,
			fmt.Sprintf("failed to build request: %v", err), nil)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := h.client.Do(httpReq)
	if err != nil {
		return protocol.NewErrorResponse(req.ID, protocol.InternalError,
			fmt.Sprintf("transport failure: %v", err), nil)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return protocol.NewErrorResponse(req.ID, protocol.InternalError,
			fmt.Sprintf("failed to read response: %v", err), nil)
	}

	var resp protocol.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return protocol.NewErrorResponse(req.ID, protocol.ParseError,
			fmt.Sprintf("malformed response: %v", err), nil)
	}
	return &resp
}
