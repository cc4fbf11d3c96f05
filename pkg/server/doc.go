// Package server implements named capability providers for the bus: the
// generic dispatch core, the memory server owning a conversation store, the
// tool server fronting a tool registry, and an HTTP binding that carries
// JSON-RPC 2.0 over a single POST endpoint.
//
// A Server holds a fixed table of method handlers and a capability
// descriptor. Dispatch is total: every request, however malformed its
// params or however badly its handler misbehaves, produces exactly one
// response echoing the request id.
package server
