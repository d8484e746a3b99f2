package system

import (
	"fmt"

	"github.com/kilianp07/econdispatch/core/model"
)

// Parameters merges the optimization parameters of every component in
// registration order. On a key collision the later component wins, unless
// strict keys are enabled in which case ErrKeyCollision is returned.
func (s *System) Parameters() (model.Parameters, []ProviderError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parameters()
}

func (s *System) parameters() (model.Parameters, []ProviderError, error) {
	out := model.Parameters{}
	owners := map[string]string{}
	var fails []ProviderError
	for _, e := range s.registry.entries {
		p, err := e.comp.OptimizationParameters()
		if err != nil {
			fails = append(fails, ProviderError{Provider: e.name, Kind: KindParameters, Err: err})
			s.log.Errorf("parameters of %s: %v", e.name, err)
			continue
		}
		for k, v := range p {
			if prev, ok := owners[k]; ok && prev != e.name {
				if s.cfg.StrictKeys {
					return nil, fails, fmt.Errorf("%w: parameter %q from %s and %s", ErrKeyCollision, k, prev, e.name)
				}
				s.log.Warnw("parameter key collision", map[string]any{
					"key": k, "previous": prev, "winner": e.name,
				})
			}
			owners[k] = e.name
			out[k] = v
		}
	}
	return out, fails, nil
}
