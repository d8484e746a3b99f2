package monitoring

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/econdispatch/config"
	coremon "github.com/kilianp07/econdispatch/core/monitoring"
)

func TestEmptyDSNReturnsNop(t *testing.T) {
	mon, err := NewSentryMonitor(config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, mon)
}

func TestSentryMonitorTagsEvents(t *testing.T) {
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)
	beforeSend = func(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
		return nil
	}
	defer func() { beforeSend = nil }()

	mon, err := NewSentryMonitor(config.SentryConfig{DSN: "https://public@example.invalid/1", Site: "campus"})
	require.NoError(t, err)

	mon.CaptureException(errors.New("publish failed"), map[string]string{"module": "mqtt", "device": "boiler1"})
	mon.CaptureException(nil, nil)
	mon.Flush(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, "mqtt", events[0].Tags["module"])
	assert.Equal(t, "boiler1", events[0].Tags["device"])
	assert.Equal(t, "campus", events[0].Tags["site"])
}
