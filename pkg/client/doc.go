// Package client provides the host-side handle on a named server. A Client
// wraps an Invoker, either an in-process server or an HTTP JSON-RPC
// endpoint, and exposes typed method calls with request id management and
// wire error reconstruction.
package client
