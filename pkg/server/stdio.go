package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tunglt-picon/mcpbus/pkg/logging"
	"github.com/tunglt-picon/mcpbus/pkg/protocol"
)

// maxStdioLine caps a single newline-delimited request at 4 MiB.
const maxStdioLine = 4 << 20

// ServeStdio carries JSON-RPC 2.0 over newline-delimited JSON on a byte
// stream, the conventional binding for command-line embedding where the
// bus sits behind a pipe. One request per line in, one response per line
// out, in order. Returns when the reader is exhausted, the context is
// cancelled, or a write fails.
func ServeStdio(ctx context.Context, dispatcher Dispatcher, r io.Reader, w io.Writer, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	out := bufio.NewWriter(w)
	encoder := json.NewEncoder(out)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxStdioLine)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp *protocol.Response
		req, parseErr := protocol.ParseRequest(line)
		if parseErr != nil {
			var id interface{}
			if req != nil {
				id = req.ID
			}
			logger.Warn("rejected request", logging.Int("code", int(parseErr.Code)), logging.String("reason", parseErr.Message))
			resp = protocol.NewErrorResponse(id, parseErr.Code, parseErr.Message, nil)
		} else {
			resp = dispatcher.Dispatch(ctx, req)
		}

		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
		if err := out.Flush(); err != nil {
			return fmt.Errorf("flushing response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading requests: %w", err)
	}
	return nil
}
