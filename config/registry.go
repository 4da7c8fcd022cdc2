package config

import (
	"errors"
	"fmt"

	"github.com/cwbudde/apoengine/graph"
)

// Factory parses one directive's value text (the config.Compiler has
// already split "Key: value" and trimmed both sides) into zero or more
// filter build requests. Returning zero requests with a nil error is
// valid — a Filter: or IIR: line marked OFF compiles to no filter at all.
type Factory func(ctx *Context, value string) ([]graph.FilterRequest, error)

var errDuplicateDirective = errors.New("config: directive already registered")

// Registry maps directive keys ("Filter", "Preamp", "Device", ...) to the
// Factory that compiles them, the same shape as a plugin lookup table but
// sized for a fixed, known set of directive keywords rather than runtime
// plugin discovery.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under key. It is an error to register an empty
// key, a nil factory, or a key that's already registered.
func (r *Registry) Register(key string, f Factory) error {
	if key == "" {
		return errors.New("config: directive key must not be empty")
	}

	if f == nil {
		return errors.New("config: factory must not be nil")
	}

	if _, ok := r.factories[key]; ok {
		return fmt.Errorf("%w: %q", errDuplicateDirective, key)
	}

	r.factories[key] = f

	return nil
}

// MustRegister panics if Register fails; for registering the built-in
// directive set at startup, where a failure is a programming error.
func (r *Registry) MustRegister(key string, f Factory) {
	if err := r.Register(key, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered for key, or nil if none is.
func (r *Registry) Lookup(key string) Factory {
	return r.factories[key]
}
