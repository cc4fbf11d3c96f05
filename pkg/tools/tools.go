// Package tools defines the contract between the tool server and its tool
// backends: a declarative Definition (name, description, JSON input schema,
// handler) plus a registry the server lists and calls through. Concrete
// backends stay outside this module and are injected at wiring time.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
)

// HandlerFunc executes a tool call. Arguments arrive as raw JSON matching
// the tool's input schema; the returned text becomes the tool result body.
type HandlerFunc func(ctx context.Context, arguments json.RawMessage) (string, error)

// Definition declaratively exposes one callable tool
type Definition struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     HandlerFunc
}

// GenerateSchema derives a JSON Schema for a tool's argument struct.
// Descriptions come from `jsonschema_description` struct tags.
func GenerateSchema[T any]() json.RawMessage {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	data, err := json.Marshal(schema)
	if err != nil {
		// Reflect output is always marshalable; a failure here is a
		// programming error in the argument struct.
		panic(fmt.Sprintf("tools: failed to marshal schema: %v", err))
	}
	return data
}

// Registry holds tool definitions in registration order. Safe for
// concurrent use; registration normally happens once at wiring time.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]Definition
	order []string
}

// NewRegistry creates an empty tool registry
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a tool definition. Duplicate names and nil handlers are
// wiring bugs and rejected.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if def.Handler == nil {
		return fmt.Errorf("tool '%s' has no handler", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("tool '%s' is already registered", def.Name)
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// Get returns the definition for a tool name
func (r *Registry) Get(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// List returns all definitions in registration order
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}
