package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/tunglt-picon/mcpbus/pkg/logging"
	"github.com/tunglt-picon/mcpbus/pkg/protocol"

	"github.com/google/uuid"
)

// Dispatcher routes a parsed request to whichever server owns its method.
// Implemented by *Server for a single server and by host.Host for a bus.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *protocol.Request) *protocol.Response
}

// maxRequestBody caps a single JSON-RPC request body at 4 MiB.
const maxRequestBody = 4 << 20

// NewHTTPHandler serves JSON-RPC 2.0 over a single POST endpoint. Every
// request, valid or not, receives a well-formed Response; only a non-POST
// method produces a bare HTTP error.
func NewHTTPHandler(dispatcher Dispatcher, logger logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx := logging.ContextWithRequestID(r.Context(), uuid.NewString())
		log := logger.WithContext(ctx)

		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
		if err != nil {
			log.Warn("failed to read request body", logging.ErrorField(err))
			writeResponse(w, log, protocol.NewErrorResponse(nil, protocol.InternalError, "failed to read request body", nil))
			return
		}

		req, parseErr := protocol.ParseRequest(body)
		if parseErr != nil {
			var id interface{}
			if req != nil {
				id = req.ID
			}
			log.Warn("rejected request", logging.Int("code", int(parseErr.Code)), logging.String("reason", parseErr.Message))
			writeResponse(w, log, protocol.NewErrorResponse(id, parseErr.Code, parseErr.Message, nil))
			return
		}

		writeResponse(w, log, dispatcher.Dispatch(ctx, req))
	})
}

func writeResponse(w http.ResponseWriter, logger logging.Logger, resp *protocol.Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("failed to write response", logging.ErrorField(err))
	}
}
