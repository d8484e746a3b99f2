package mqtt

import (
	"context"
	"time"

	"github.com/kilianp07/econdispatch/core/model"
)

// Publisher delivers the commands of one device to the field and tracks the
// device acknowledgment.
type Publisher interface {
	// Publish sends the command values of a device and returns the command
	// identifier used to track the acknowledgment.
	Publish(ctx context.Context, device string, cmds map[string]any) (commandID string, err error)

	// WaitForAck waits for an acknowledgment for the provided command
	// identifier or until the timeout expires.
	WaitForAck(commandID string, timeout time.Duration) (bool, error)
}

// InputSource exposes the latest live measurements received from the site.
type InputSource interface {
	Snapshot() model.Inputs
}
