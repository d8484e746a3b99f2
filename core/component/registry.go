package component

import "github.com/kilianp07/econdispatch/core/factory"

var registry = factory.NewRegistry[Component]()

// Register adds a component factory for the given type tag. Variants call it
// from their init functions.
func Register(typeTag string, f factory.Factory[Component]) error {
	return registry.Register(typeTag, f)
}

// New builds a component of the given type tag.
func New(typeTag, name string, conf map[string]any) (Component, error) {
	return registry.Create(factory.ModuleConfig{Name: name, Type: typeTag, Conf: conf})
}

// Types lists the registered component type tags.
func Types() []string { return registry.Types() }
