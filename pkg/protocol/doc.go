// Package protocol defines the JSON-RPC 2.0 envelope and the typed method
// payloads spoken between the bus host, its clients, and the memory and tool
// servers. It contains wire shapes only; no behavior beyond encoding,
// decoding and request validation lives here.
package protocol
