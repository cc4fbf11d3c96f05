package mcpbus

import (
	"github.com/tunglt-picon/mcpbus/pkg/client"
	"github.com/tunglt-picon/mcpbus/pkg/host"
	"github.com/tunglt-picon/mcpbus/pkg/memory"
	"github.com/tunglt-picon/mcpbus/pkg/server"
	"github.com/tunglt-picon/mcpbus/pkg/tools"
)

// Version represents the current version of the bus
const Version = "1.0.0"

// These exports provide direct access to the core bus components
var (
	// NewHost creates a new bus host
	NewHost = host.New

	// NewClient creates a client bound to a server surface
	NewClient = client.New

	// NewHTTPClient creates a client reaching a remote bus endpoint
	NewHTTPClient = client.NewHTTP

	// NewServer creates a bare named server
	NewServer = server.New

	// NewMemoryServer creates the conversation memory server
	NewMemoryServer = server.NewMemoryServer

	// NewToolServer creates the tool server
	NewToolServer = server.NewToolServer

	// NewHTTPHandler serves a bus over a single JSON-RPC endpoint
	NewHTTPHandler = server.NewHTTPHandler

	// NewStore creates an in-memory conversation store
	NewStore = memory.NewStore

	// NewToolRegistry creates an empty tool registry
	NewToolRegistry = tools.NewRegistry
)

// Well-known server names
const (
	MemoryServerName = server.MemoryServerName
	ToolServerName   = server.ToolServerName
)
