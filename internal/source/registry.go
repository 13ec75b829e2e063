package source

import (
	"fmt"
	"strings"

	"github.com/rusq/legalspend/internal/network"
)

// Options carries the shared dependencies handed to adapter factories.
type Options struct {
	// Limiter is the shared request limiter for remote API sources.  API
	// adapters key it by credential, so distinct API keys do not share a
	// budget.
	Limiter *network.KeyedLimiter
}

// Factory constructs an adapter from its configuration.  Construction
// validates the configuration (unknown database drivers, missing parameters)
// but performs no I/O; reachability is probed separately via TestConnection.
type Factory func(cfg Config, opts Options) (Sourcer, error)

// Registry maps a registration key to an adapter factory.  For the "api"
// source type, the key is the specific source name (each remote API is a
// distinct integration); for "database" and "file", the key is the generic
// type, parameterised by the connection settings.
//
// Registration happens explicitly at application initialisation (see
// NewRegistry), not via import side effects, so the set of available
// adapters is visible in one place.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry pre-populated with every supported adapter.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.MustRegister(string(TypeDatabase), NewDatabase)
	r.MustRegister(string(TypeFile), NewFile)
	r.MustRegister("legaltracker", NewLegalTracker)
	// Known integrations that are not implemented yet.  They satisfy the
	// full contract but report as disconnected, so the manager treats them
	// uniformly as "configured but inactive".
	for _, name := range PlaceholderNames {
		r.MustRegister(name, NewPlaceholder)
	}
	return r
}

// Register adds a factory under key.  Duplicate registration is a programmer
// error and is reported, not silently overwritten.
func (r *Registry) Register(key string, f Factory) error {
	key = strings.ToLower(key)
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("source: key %q is already registered", key)
	}
	r.factories[key] = f
	return nil
}

// MustRegister is like Register but panics on duplicate registration.  It is
// meant to be called from the composition root at startup.
func (r *Registry) MustRegister(key string, f Factory) {
	if err := r.Register(key, f); err != nil {
		panic(err)
	}
}

// keyFor resolves the registration key for cfg.
func keyFor(cfg Config) string {
	if cfg.Type == TypeAPI {
		return strings.ToLower(cfg.Name)
	}
	return strings.ToLower(string(cfg.Type))
}

// New resolves the adapter factory for cfg and constructs the adapter.
func (r *Registry) New(cfg Config, opts Options) (Sourcer, error) {
	key := keyFor(cfg)
	f, ok := r.factories[key]
	if !ok {
		return nil, fmt.Errorf("source: no adapter registered for key %q (source %q, type %q)", key, cfg.Name, cfg.Type)
	}
	return f(cfg, opts)
}
