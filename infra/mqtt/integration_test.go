//go:build integration

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startMosquitto(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:2.0",
			ExposedPorts: []string{"1883/tcp"},
			Cmd:          []string{"mosquitto", "-c", "/mosquitto-no-auth.conf"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("terminate container: %v", err)
		}
	})
	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "1883")
	require.NoError(t, err)
	return fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

// TestBrokerRoundTrip publishes a command to a fake device that acks it and
// feeds live inputs back through the broker.
func TestBrokerRoundTrip(t *testing.T) {
	broker := startMosquitto(t)

	device := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("device"))
	tok := device.Connect()
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	defer device.Disconnect(100)

	received := make(chan commandMessage, 1)
	tok = device.Subscribe("site/boiler1/cmd", 1, func(c paho.Client, m paho.Message) {
		var msg commandMessage
		if err := json.Unmarshal(m.Payload(), &msg); err != nil {
			return
		}
		received <- msg
		ack, _ := json.Marshal(map[string]string{"command_id": msg.CommandID})
		c.Publish("site/ack", 1, false, ack)
	})
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())

	cli, err := NewPahoClient(Config{
		Broker:       broker,
		ClientID:     "econdispatch",
		CommandTopic: "site/%s/cmd",
		AckTopic:     "site/ack",
		AckTimeoutMS: 5000,
		InputTopic:   "site/inputs/#",
		QoS:          map[string]byte{"command": 1, "ack": 1, "input": 1},
	})
	require.NoError(t, err)
	defer cli.Disconnect()
	// the subscriptions are issued from the connect callback
	time.Sleep(200 * time.Millisecond)

	cmdID, err := cli.Publish(context.Background(), "boiler1", map[string]any{"boiler_on": true})
	require.NoError(t, err)
	ok, err := cli.WaitForAck(cmdID, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	msg := <-received
	assert.Equal(t, true, msg.Commands["boiler_on"])

	tok = device.Publish("site/inputs/Qbp", 1, false, "42.5")
	require.True(t, tok.WaitTimeout(5*time.Second))
	assert.Eventually(t, func() bool {
		return cli.Snapshot()["Qbp"] == 42.5
	}, 5*time.Second, 50*time.Millisecond)
}
