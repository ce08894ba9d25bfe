package mqttstate

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/llehouerou/mediastore/internal/config"
)

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 1000 // milliseconds
	keepAlive         = 60 * time.Second
	maxQoS            = 2
)

var (
	ErrNotConnected     = errors.New("mqtt: client not connected")
	ErrConnectionFailed = errors.New("mqtt: connection failed")
	ErrPublishFailed    = errors.New("mqtt: publish failed")
	ErrInvalidTopic     = errors.New("mqtt: topic cannot be empty")
	ErrInvalidQoS       = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")
)

// Client is the subset of a broker connection the publisher needs.
type Client interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Close() error
}

// PahoClient is a Client backed by paho.mqtt.golang.
type PahoClient struct {
	client    pahomqtt.Client
	cfg       config.MQTTConfig
	connected atomic.Bool
	logger    zerolog.Logger
}

// Connect dials the broker described by cfg. cfg should already have its
// defaults applied (config.GetMQTTConfig).
func Connect(cfg config.MQTTConfig, logger zerolog.Logger) (*PahoClient, error) {
	c := &PahoClient{cfg: cfg, logger: logger}

	opts := buildClientOptions(cfg)
	opts.SetWill(statusTopic(cfg.TopicPrefix), statusOffline, 1, true)
	opts.SetOnConnectHandler(func(pc pahomqtt.Client) {
		c.connected.Store(true)
		c.logger.Info().Str("broker", cfg.Broker).Msg("mqtt connected")
		pc.Publish(statusTopic(cfg.TopicPrefix), 1, true, statusOnline)
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.connected.Store(false)
		c.logger.Warn().Err(err).Str("broker", cfg.Broker).Msg("mqtt connection lost, reconnecting")
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	// The connect handler runs asynchronously.
	c.connected.Store(true)
	return c, nil
}

func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetKeepAlive(keepAlive)
	return opts
}

// IsConnected returns the last known connection state.
func (c *PahoClient) IsConnected() bool {
	return c.connected.Load() && c.client.IsConnected()
}

// Publish sends payload to topic and waits for the broker to acknowledge
// it according to qos.
func (c *PahoClient) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Close publishes a graceful offline status and disconnects.
func (c *PahoClient) Close() error {
	if c.client == nil {
		return nil
	}
	if c.IsConnected() {
		token := c.client.Publish(statusTopic(c.cfg.TopicPrefix), 1, true, statusOffline)
		token.WaitTimeout(publishTimeout)
	}
	c.client.Disconnect(disconnectQuiesce)
	c.connected.Store(false)
	return nil
}
