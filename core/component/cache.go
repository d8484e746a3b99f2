package component

import "github.com/kilianp07/econdispatch/core/model"

// ParamCache memoizes a component's optimization parameters. It has two
// states, dirty and cached; the zero value is dirty. Only the owning
// component marks it dirty.
type ParamCache struct {
	cached bool
	params model.Parameters
}

// MarkDirty forces the next Get to recompute.
func (c *ParamCache) MarkDirty() {
	c.cached = false
	c.params = nil
}

// Dirty reports whether the next Get will recompute.
func (c *ParamCache) Dirty() bool { return !c.cached }

// Get returns a copy of the cached parameters, calling compute first when
// the cache is dirty. A failed compute leaves the cache dirty.
func (c *ParamCache) Get(compute func() (model.Parameters, error)) (model.Parameters, error) {
	if !c.cached {
		p, err := compute()
		if err != nil {
			return nil, err
		}
		c.params = p
		c.cached = true
	}
	return c.params.Clone(), nil
}
