package verify

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Factory constructs a tool-specific comparator. A factory that returns an
// error is treated by the resolver as a failed load and triggers fallback to
// the next comparator tier.
type Factory func(logger zerolog.Logger) (Comparator, error)

// Registry holds tool-specific comparator factories keyed by lowercase tool
// name. Tool packages register themselves at init time, mirroring the
// database/sql driver pattern; after startup the registry is read-only.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under the lowercase tool name. Registering the
// same name twice replaces the earlier factory; last registration wins.
func (r *Registry) Register(tool string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(tool)] = f
}

// Lookup returns the factory registered for tool, if any.
func (r *Registry) Lookup(tool string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[strings.ToLower(tool)]
	return f, ok
}

// Tools returns the lowercase names of all registered tools.
func (r *Registry) Tools() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tools := make([]string, 0, len(r.factories))
	for name := range r.factories {
		tools = append(tools, name)
	}
	return tools
}

// defaultRegistry receives init-time registrations from tool comparator
// packages.
var defaultRegistry = NewRegistry() //nolint:gochecknoglobals // init-time driver-style registry

// Register adds a factory to the default registry.
func Register(tool string, f Factory) {
	defaultRegistry.Register(tool, f)
}

// DefaultRegistry returns the registry populated by init-time registrations.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
