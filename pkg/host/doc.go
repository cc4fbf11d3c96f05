// Package host implements the bus orchestrator: a registry of named
// servers, per-server clients, and method-based routing so a whole bus can
// answer on a single endpoint.
package host
