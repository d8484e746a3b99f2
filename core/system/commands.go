package system

import (
	"fmt"

	"github.com/kilianp07/econdispatch/core/model"
)

// Commands asks every component to translate the allocation and merges the
// results device by device. The result is never nil.
func (s *System) Commands(alloc model.Allocation) model.Commands {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmds, _ := s.commands(alloc)
	return cmds
}

func (s *System) commands(alloc model.Allocation) (model.Commands, []ProviderError) {
	out := model.Commands{}
	owners := map[string]string{}
	var fails []ProviderError
	for _, e := range s.registry.entries {
		c := e.comp.Commands(alloc)
		for dev := range c {
			if prev, ok := owners[dev]; ok && prev != e.name {
				s.log.Warnw("device command collision", map[string]any{
					"device": dev, "previous": prev, "winner": e.name,
				})
				if s.cfg.StrictKeys {
					fails = append(fails, ProviderError{
						Provider: e.name,
						Kind:     KindCommands,
						Err:      fmt.Errorf("%w: device %q also commanded by %s", ErrKeyCollision, dev, prev),
					})
				}
			}
			owners[dev] = e.name
		}
		out.Merge(c)
	}
	return out, fails
}
