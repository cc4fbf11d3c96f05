// Package mcpbus is the root of the message bus module, providing
// convenient exports of the core components from the sub-packages.
//
// # Overview
//
// The bus consists of several sub-packages:
//
//   - pkg/host: The orchestrator owning the server registry and routing
//   - pkg/server: Named capability servers (memory, tools) and the HTTP binding
//   - pkg/client: Host-side handles for calling servers
//   - pkg/memory: The in-memory conversation store with its recent window
//   - pkg/protocol: The JSON-RPC 2.0 envelope and method parameter types
//   - pkg/tools: Tool definitions, schema generation and the registry
//   - pkg/summarize: Summary generation and conversation compression
//   - pkg/errors: The structured error taxonomy shared across the bus
//   - pkg/logging: Structured logging with text and JSON formatters
//   - pkg/observability: Prometheus metrics and OpenTelemetry tracing
//   - pkg/config: TOML daemon configuration
//
// # Building a bus
//
// A minimal in-process bus with both built-in servers:
//
//	store := mcpbus.NewStore()
//	bus := mcpbus.NewHost()
//
//	memSrv := mcpbus.NewMemoryServer(store, nil)
//	memClient, err := bus.RegisterServer(memSrv.Server)
//	if err != nil {
//	    // handle error
//	}
//
//	var created protocol.GetOrCreateResult
//	err = memClient.CallMethod(ctx, protocol.MethodMemoryGetOrCreate, nil, &created)
//
// The same bus answers over HTTP by mounting it on a mux:
//
//	http.Handle("/jsonrpc", mcpbus.NewHTTPHandler(bus, logger))
//
// The cmd/mcpbusd daemon wires all of this together from a TOML config.
package mcpbus
