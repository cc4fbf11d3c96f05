package host

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tunglt-picon/mcpbus/pkg/client"
	buserrors "github.com/tunglt-picon/mcpbus/pkg/errors"
	"github.com/tunglt-picon/mcpbus/pkg/logging"
	"github.com/tunglt-picon/mcpbus/pkg/protocol"
	"github.com/tunglt-picon/mcpbus/pkg/server"
)

// Host is the single orchestrator of a bus. It owns the registry of named
// servers, hands out per-server clients, and routes raw requests to the
// server that registers each method. All application traffic flows through
// it; servers never talk to each other directly.
type Host struct {
	mu      sync.RWMutex
	servers map[string]*server.Server
	clients map[string]*client.Client
	methods map[string]string // method name -> owning server name

	logger logging.Logger
}

// Option defines options for creating a host
type Option func(*Host)

// WithLogger sets the structured logger
func WithLogger(logger logging.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// New creates an empty host
func New(options ...Option) *Host {
	h := &Host{
		servers: make(map[string]*server.Server),
		clients: make(map[string]*client.Client),
		methods: make(map[string]string),
		logger:  logging.NewNop(),
	}
	for _, option := range options {
		option(h)
	}
	h.logger = h.logger.WithFields(logging.String("component", "host"))
	return h
}

// RegisterServer adds a server under its declared name and binds a client
// to it. Registration fails on a duplicate name or when a method the server
// registers is already owned by another server; the method namespace is
// bus-wide.
func (h *Host) RegisterServer(s *server.Server) (*client.Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := s.Name()
	if name == "" {
		return nil, fmt.Errorf("server name must not be empty")
	}
	if _, exists := h.servers[name]; exists {
		return nil, fmt.Errorf("server '%s' is already registered", name)
	}
	for _, method := range s.Methods() {
		if owner, taken := h.methods[method]; taken {
			return nil, fmt.Errorf("method '%s' is already registered by server '%s'", method, owner)
		}
	}

	c := client.New(name, s, client.WithLogger(h.logger))
	h.servers[name] = s
	h.clients[name] = c
	for _, method := range s.Methods() {
		h.methods[method] = name
	}

	h.logger.Info("registered server",
		logging.String("server", name),
		logging.Int("methods", len(s.Methods())),
	)
	return c, nil
}

// Client returns the client bound to the named server. An unknown name is a
// wiring bug on the caller's side, reported as a plain error.
func (h *Host) Client(name string) (*client.Client, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[name]
	if !ok {
		return nil, buserrors.ServerNotRegistered(name)
	}
	return c, nil
}

// ServerNames returns the sorted names of all registered servers
func (h *Host) ServerNames() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.servers))
	for name := range h.servers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Capabilities returns the capability descriptor of every registered
// server, keyed by server name.
func (h *Host) Capabilities() map[string]*protocol.Capabilities {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]*protocol.Capabilities, len(h.servers))
	for name, s := range h.servers {
		out[name] = s.GetCapabilities()
	}
	return out
}

// Dispatch routes a request to the server owning its method. A method no
// server registers yields MethodNotFound. Implements server.Dispatcher so a
// whole bus can sit behind one HTTP endpoint.
func (h *Host) Dispatch(ctx context.Context, req *protocol.Request) *protocol.Response {
	if req.Method == "" {
		return protocol.NewErrorResponse(req.ID, protocol.InvalidRequest, "method is required", nil)
	}

	h.mu.RLock()
	owner, ok := h.methods[req.Method]
	var s *server.Server
	if ok {
		s = h.servers[owner]
	}
	h.mu.RUnlock()

	if !ok {
		return protocol.NewErrorResponse(req.ID, protocol.MethodNotFound,
			fmt.Sprintf("method '%s' not found on any registered server", req.Method), nil)
	}
	return s.Dispatch(ctx, req)
}
