package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	coremqtt "github.com/kilianp07/econdispatch/core/mqtt"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Messages   map[string]map[string]any
	FailIDs    map[string]bool
	AckResults map[string]bool
	mu         sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Messages:   make(map[string]map[string]any),
		FailIDs:    make(map[string]bool),
		AckResults: make(map[string]bool),
	}
}

// Publish records the commands or returns an error if configured to fail.
func (m *MockPublisher) Publish(_ context.Context, device string, cmds map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[device] {
		return "", fmt.Errorf("publish failed")
	}
	m.Messages[device] = cmds
	commandID := fmt.Sprintf("cmd-%s", device)
	m.AckResults[commandID] = true
	return commandID, nil
}

// WaitForAck simulates an immediate acknowledgment based on the stored result.
func (m *MockPublisher) WaitForAck(commandID string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	ok, exists := m.AckResults[commandID]
	m.mu.Unlock()
	if !exists {
		return false, coremqtt.ErrUnknownCommand
	}
	return ok, nil
}

// Sent returns the commands recorded for device.
func (m *MockPublisher) Sent(device string) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Messages[device]
	return c, ok
}
