package mqtt

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/econdispatch/core/model"
	"github.com/kilianp07/econdispatch/infra/logger"
)

// InputCollector keeps the latest value of every live input received over
// MQTT. A payload is either a flat JSON object of numbers, merged key by key,
// or a bare number stored under the last topic segment.
type InputCollector struct {
	mu      sync.RWMutex
	values  model.Inputs
	updated time.Time
	log     logger.Logger
}

// NewInputCollector returns an empty collector.
func NewInputCollector(log logger.Logger) *InputCollector {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &InputCollector{values: model.Inputs{}, log: log}
}

// Handle is the paho message handler feeding the collector.
func (c *InputCollector) Handle(_ paho.Client, msg paho.Message) {
	c.Apply(msg.Topic(), msg.Payload())
}

// Apply merges one payload received on topic.
func (c *InputCollector) Apply(topic string, payload []byte) {
	var values map[string]float64
	if err := json.Unmarshal(payload, &values); err != nil {
		v, perr := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
		key := topic[strings.LastIndex(topic, "/")+1:]
		if perr != nil || key == "" {
			c.log.Warnw("ignoring input payload", map[string]any{"topic": topic, "error": err.Error()})
			return
		}
		values = map[string]float64{key: v}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range values {
		c.values[k] = v
	}
	c.updated = time.Now()
}

// Snapshot returns a copy of the latest inputs.
func (c *InputCollector) Snapshot() model.Inputs {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(model.Inputs, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Updated returns the time of the last accepted payload.
func (c *InputCollector) Updated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updated
}
