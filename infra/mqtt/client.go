package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/econdispatch/core/model"
	coremon "github.com/kilianp07/econdispatch/core/monitoring"
	coremqtt "github.com/kilianp07/econdispatch/core/mqtt"
	"github.com/kilianp07/econdispatch/infra/logger"
)

// DefaultCommandTopic is the topic pattern used when Config.CommandTopic is
// empty. The single %s verb is replaced by the device identifier.
const DefaultCommandTopic = "econdispatch/%s/command"

// DefaultMaxRetries applies when Config.MaxRetries is unset.
const DefaultMaxRetries = 3

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	// CommandTopic is a fmt pattern receiving the device identifier.
	CommandTopic string `json:"command_topic"`
	AckTopic     string `json:"ack_topic"`
	// InputTopic carries live measurements as flat JSON objects. Wildcards
	// are allowed.
	InputTopic string          `json:"input_topic"`
	UseTLS     bool            `json:"use_tls"`
	ClientCert string          `json:"client_cert"`
	ClientKey  string          `json:"client_key"`
	CABundle   string          `json:"ca_bundle"`
	AuthMethod string          `json:"auth_method"`
	QoS        map[string]byte `json:"qos"`
	LWTTopic   string          `json:"lwt_topic"`
	LWTPayload string          `json:"lwt_payload"`
	LWTQoS     byte            `json:"lwt_qos"`
	LWTRetain  bool            `json:"lwt_retain"`
	// MaxRetries is the number of retries after a failed publish. Unset
	// means DefaultMaxRetries; zero disables retries.
	MaxRetries *int `json:"max_retries"`
	BackoffMS  int  `json:"backoff_ms"`
	// AckTimeoutMS bounds the wait for a device acknowledgment and requires
	// AckTopic; zero disables acknowledgment tracking.
	AckTimeoutMS int         `json:"ack_timeout_ms"`
	TLSConfig    *tls.Config `json:"-"`
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool { return c.Broker != "" }

// Validate checks the topic pattern and retry settings.
func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.CommandTopic != "" && strings.Count(c.CommandTopic, "%s") != 1 {
		return fmt.Errorf("command_topic must contain exactly one %%s verb: %q", c.CommandTopic)
	}
	if (c.MaxRetries != nil && *c.MaxRetries < 0) || c.BackoffMS < 0 || c.AckTimeoutMS < 0 {
		return fmt.Errorf("max_retries, backoff_ms and ack_timeout_ms must not be negative")
	}
	if c.AckTimeoutMS > 0 && c.AckTopic == "" {
		return fmt.Errorf("ack_timeout_ms requires ack_topic")
	}
	return nil
}

// AckTimeout returns the configured acknowledgment timeout.
func (c Config) AckTimeout() time.Duration {
	return time.Duration(c.AckTimeoutMS) * time.Millisecond
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient implements the command Publisher and the live InputSource using
// Eclipse Paho.
type PahoClient struct {
	cli          pahoClient
	commandTopic string
	ackTopic     string
	inputTopic   string
	qos          map[string]byte

	mu sync.Mutex
	// ackChans is only populated when trackAcks is set.
	ackChans   map[string]chan struct{}
	trackAcks  bool
	inputs     *InputCollector
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

var (
	_ coremqtt.Publisher   = (*PahoClient)(nil)
	_ coremqtt.InputSource = (*PahoClient)(nil)
)

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker and subscribes to the ack and
// input topics.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{
		commandTopic: cfg.CommandTopic,
		ackTopic:     cfg.AckTopic,
		inputTopic:   cfg.InputTopic,
		ackChans:     make(map[string]chan struct{}),
		trackAcks:    cfg.AckTimeoutMS > 0,
		inputs:       NewInputCollector(log),
		logger:       log,
		qos:          cfg.QoS,
		maxRetries:   DefaultMaxRetries,
		backoff:      time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	if pc.commandTopic == "" {
		pc.commandTopic = DefaultCommandTopic
	}
	if cfg.MaxRetries != nil {
		pc.maxRetries = *cfg.MaxRetries
	}
	if pc.backoff <= 0 {
		pc.backoff = 100 * time.Millisecond
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		pc.subscribe(c, pc.ackTopic, "ack", pc.onAck)
		pc.subscribe(c, pc.inputTopic, "input", pc.inputs.Handle)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

func (p *PahoClient) subscribe(c paho.Client, topic, kind string, h paho.MessageHandler) {
	if topic == "" {
		return
	}
	if token := c.Subscribe(topic, p.qos[kind], h); token.Wait() && token.Error() != nil {
		p.logger.Errorf("subscribe %s error: %v", topic, token.Error())
	}
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("ca bundle %s holds no certificate", c.CABundle)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func (p *PahoClient) onAck(_ paho.Client, msg paho.Message) {
	var m struct {
		CommandID string `json:"command_id"`
	}
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		p.logger.Errorf("failed to decode ack: %v", err)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if ch, ok := p.ackChans[m.CommandID]; ok {
		select {
		case ch <- struct{}{}:
		default:
		}
		p.logger.Debugf("received ack %s", m.CommandID)
	}
}

type commandMessage struct {
	CommandID string         `json:"command_id"`
	Device    string         `json:"device"`
	Commands  map[string]any `json:"commands"`
	Timestamp int64          `json:"timestamp"`
}

// Publish sends the commands of device to its command topic and returns the
// command identifier, which WaitForAck accepts when acknowledgment tracking
// is enabled. Failed publishes are
// retried with exponential backoff until ctx is done.
func (p *PahoClient) Publish(ctx context.Context, device string, cmds map[string]any) (string, error) {
	cmdID := uuid.NewString()
	payload, err := json.Marshal(commandMessage{
		CommandID: cmdID,
		Device:    device,
		Commands:  cmds,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return "", fmt.Errorf("encode commands for %s: %w", device, err)
	}

	// Register before publishing so that a fast ack is not lost.
	if p.trackAcks {
		p.mu.Lock()
		p.ackChans[cmdID] = make(chan struct{}, 1)
		p.mu.Unlock()
	}

	topic := fmt.Sprintf(p.commandTopic, device)
	qos := p.qos["command"]
	var publishErr error
retry:
	for attempt := 0; ; attempt++ {
		token := p.cli.Publish(topic, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Infof("sent command %s to %s", cmdID, topic)
			return cmdID, nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt >= p.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			publishErr = ctx.Err()
			break retry
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	p.forget(cmdID)
	coremon.Capture("mqtt", publishErr, "device", device)
	return "", fmt.Errorf("publish %s: %w", topic, publishErr)
}

func (p *PahoClient) forget(commandID string) {
	p.mu.Lock()
	delete(p.ackChans, commandID)
	p.mu.Unlock()
}

// WaitForAck blocks until an ACK for the given command ID is received or timeout.
func (p *PahoClient) WaitForAck(commandID string, timeout time.Duration) (bool, error) {
	if !p.trackAcks {
		return false, coremqtt.ErrAckDisabled
	}
	p.mu.Lock()
	ch := p.ackChans[commandID]
	p.mu.Unlock()
	if ch == nil {
		return false, fmt.Errorf("%w: %s", coremqtt.ErrUnknownCommand, commandID)
	}
	defer p.forget(commandID)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return true, nil
	case <-timer.C:
		return false, fmt.Errorf("%s: %w", commandID, coremqtt.ErrAckTimeout)
	}
}

// Snapshot returns the latest live inputs received on the input topic.
func (p *PahoClient) Snapshot() model.Inputs {
	return p.inputs.Snapshot()
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
