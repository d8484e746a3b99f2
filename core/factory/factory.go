package factory

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// ErrUnknownType is returned by Create when no factory is registered for the
// requested type tag.
var ErrUnknownType = errors.New("unknown module type")

// ModuleConfig contains the instance name, type tag and raw configuration for
// a module.
type ModuleConfig struct {
	Name string         `json:"name"`
	Type string         `json:"type"`
	Conf map[string]any `json:"conf"`
}

// Factory constructs an implementation of T named name from the raw config.
type Factory[T any] func(name string, conf map[string]any) (T, error)

// Registry stores factories keyed by type tag.
type Registry[T any] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// NewRegistry returns an empty factory registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{factories: make(map[string]Factory[T])}
}

// Register adds a factory for the given type tag.
func (r *Registry[T]) Register(typeTag string, f Factory[T]) error {
	if f == nil {
		return fmt.Errorf("factory nil for %s", typeTag)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[typeTag]; ok {
		return fmt.Errorf("factory already registered for %s", typeTag)
	}
	r.factories[typeTag] = f
	return nil
}

// Create instantiates a module based on its configuration. An empty name
// defaults to the type tag.
func (r *Registry[T]) Create(cfg ModuleConfig) (T, error) {
	r.mu.RLock()
	f, ok := r.factories[cfg.Type]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w %q", ErrUnknownType, cfg.Type)
	}
	name := cfg.Name
	if name == "" {
		name = cfg.Type
	}
	return f(name, cfg.Conf)
}

// Types lists the registered type tags in lexical order.
func (r *Registry[T]) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Decode fills out the provided struct using json tags. Duration fields
// accept strings such as "15m".
func Decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     out,
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}
