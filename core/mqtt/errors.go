package mqtt

import "errors"

var (
	// ErrAckTimeout is returned when no acknowledgment is received before the timeout.
	ErrAckTimeout = errors.New("timeout waiting for ack")
	// ErrUnknownCommand is returned when waiting on a command id that was never published.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrAckDisabled is returned by WaitForAck when the client does not track acknowledgments.
	ErrAckDisabled = errors.New("ack tracking disabled")
)
