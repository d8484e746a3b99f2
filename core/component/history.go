package component

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// History holds named series of historical measurements.
type History map[string][]float64

// LoadHistory reads a history file. JSON and YAML documents are accepted;
// each top-level key maps to a list of numbers.
func LoadHistory(path string) (History, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var h History
	if err := yaml.Unmarshal(b, &h); err != nil {
		return nil, fmt.Errorf("decode history %s: %w", path, err)
	}
	return h, nil
}

// Series returns the series stored under key.
func (h History) Series(key string) ([]float64, error) {
	s, ok := h[key]
	if !ok {
		return nil, fmt.Errorf("history: missing series %q", key)
	}
	return append([]float64(nil), s...), nil
}
