package system

import (
	"errors"
	"fmt"
)

var (
	// ErrComponentNotFound is returned when a connection names an
	// unregistered component.
	ErrComponentNotFound = errors.New("component not found")
	// ErrKeyCollision reports two components contributing the same
	// parameter key or device when strict keys are enabled.
	ErrKeyCollision = errors.New("key collision")
)

// Provider kinds used in ProviderError.
const (
	KindDeriver    = "deriver"
	KindParameters = "parameters"
	KindCommands   = "commands"
)

// ProviderError is an isolated failure of one deriver or component. The
// remaining providers' results are still used.
type ProviderError struct {
	Provider string
	Kind     string
	Err      error
}

func (e ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Provider, e.Err)
}

func (e ProviderError) Unwrap() error { return e.Err }
