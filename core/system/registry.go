package system

import "github.com/kilianp07/econdispatch/core/component"

type entry struct {
	name    string
	typeTag string
	comp    component.Component
}

// Registry holds component instances in registration order.
type Registry struct {
	entries []entry
	index   map[string]int
}

func newRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// add stores c. A name already present keeps its slot and the previous type
// tag is returned with replaced set.
func (r *Registry) add(c component.Component, typeTag string) (oldType string, replaced bool) {
	name := c.Name()
	if i, ok := r.index[name]; ok {
		oldType = r.entries[i].typeTag
		r.entries[i] = entry{name: name, typeTag: typeTag, comp: c}
		return oldType, true
	}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, entry{name: name, typeTag: typeTag, comp: c})
	return "", false
}

// Get returns the component registered under name.
func (r *Registry) Get(name string) (component.Component, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.entries[i].comp, true
}

// Names lists the registered names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.name
	}
	return out
}
