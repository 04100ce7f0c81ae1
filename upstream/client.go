// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"sync/atomic"
	"time"

	"emperror.dev/errors"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultBroker           = "tcp://mqtt.pskreporter.info:1883"
	DefaultKeepAlive        = 30 * time.Second
	DefaultConnectTimeout   = 10 * time.Second
	DefaultOperationTimeout = 5 * time.Second
	DefaultMaxReconnect     = 2 * time.Minute
)

// Config is the `upstream` configuration section.
type Config struct {
	// Broker is the MQTT broker URL.
	Broker string

	// ClientID defaults to a random pskr-bridge-<uuid>.
	ClientID string

	Username string
	Password string

	// QoS used for every subscription. PSKReporter publishes at 0.
	QoS byte

	KeepAlive            time.Duration
	ConnectTimeout       time.Duration
	OperationTimeout     time.Duration
	MaxReconnectInterval time.Duration

	// Mode is either "per-session" (the default) or "shared".
	Mode string

	// SharedPattern is the topic held in shared mode.
	SharedPattern string
}

func (c *Config) setDefaults() {
	if c.Broker == "" {
		c.Broker = DefaultBroker
	}
	if c.ClientID == "" {
		c.ClientID = "pskr-bridge-" + uuid.NewString()
	}
	if c.KeepAlive <= 0 {
		c.KeepAlive = DefaultKeepAlive
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = DefaultOperationTimeout
	}
	if c.MaxReconnectInterval <= 0 {
		c.MaxReconnectInterval = DefaultMaxReconnect
	}
	if c.Mode == "" {
		c.Mode = PerSessionMode
	}
	if c.SharedPattern == "" {
		c.SharedPattern = DefaultSharedPattern
	}
}

// Client is the single broker connection shared by every session.
type Client struct {
	config   Config
	client   mqtt.Client
	tracker  *Tracker
	handler  atomic.Value
	measures Measures
	logger   *zap.Logger
}

// NewClient builds a Client. Nothing is dialed until Connect.
func NewClient(config Config, measures Measures, logger *zap.Logger) *Client {
	config.setDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		config:   config,
		measures: measures,
		logger:   logger,
	}
	c.tracker = NewTracker(c, logger)
	c.tracker.onChange = func(n int) {
		if c.measures.Subscriptions != nil {
			c.measures.Subscriptions.Set(float64(n))
		}
	}

	c.client = mqtt.NewClient(c.clientOptions())
	return c
}

// clientOptions configures paho. Every inbound publish goes to the default
// handler, so it is dispatched once however many subscribed topics match it.
func (c *Client) clientOptions() *mqtt.ClientOptions {
	return mqtt.NewClientOptions().
		AddBroker(c.config.Broker).
		SetClientID(c.config.ClientID).
		SetUsername(c.config.Username).
		SetPassword(c.config.Password).
		SetKeepAlive(c.config.KeepAlive).
		SetConnectTimeout(c.config.ConnectTimeout).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetMaxReconnectInterval(c.config.MaxReconnectInterval).
		SetOrderMatters(true).
		SetDefaultPublishHandler(c.onMessage).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost)
}

// SetHandler installs the function that receives every message. Messages
// arriving before a handler is installed are dropped.
func (c *Client) SetHandler(h Handler) {
	c.handler.Store(h)
}

// Tracker returns the reference counter over this connection.
func (c *Client) Tracker() *Tracker {
	return c.tracker
}

// Acquire takes a reference on topic.
func (c *Client) Acquire(topic string) (Lease, error) {
	return c.tracker.Acquire(topic)
}

// Connect dials the broker. If the broker does not answer within the connect
// timeout, paho keeps retrying in the background and Connect returns
// ErrUpstreamUnavailable.
func (c *Client) Connect() error {
	token := c.client.Connect()
	if !token.WaitTimeout(c.config.ConnectTimeout) {
		return ErrUpstreamUnavailable
	}
	if err := token.Error(); err != nil {
		return errors.Wrap(ErrUpstreamUnavailable, err.Error())
	}
	return nil
}

// Disconnect closes the broker connection.
func (c *Client) Disconnect() {
	c.client.Disconnect(uint(c.config.OperationTimeout / time.Millisecond))
	c.setConnected(false)
}

// Subscribe subscribes topic on the broker.
func (c *Client) Subscribe(topic string) error {
	if !c.client.IsConnectionOpen() {
		return ErrUpstreamUnavailable
	}
	// no per-topic route, see clientOptions
	token := c.client.Subscribe(topic, c.config.QoS, nil)
	if !token.WaitTimeout(c.config.OperationTimeout) {
		return errors.WithDetails(ErrOperationTimeout, "topic", topic)
	}
	return token.Error()
}

// Unsubscribe removes topic from the broker.
func (c *Client) Unsubscribe(topic string) error {
	if !c.client.IsConnectionOpen() {
		return ErrUpstreamUnavailable
	}
	token := c.client.Unsubscribe(topic)
	if !token.WaitTimeout(c.config.OperationTimeout) {
		return errors.WithDetails(ErrOperationTimeout, "topic", topic)
	}
	return token.Error()
}

func (c *Client) onMessage(_ mqtt.Client, m mqtt.Message) {
	if c.measures.Messages != nil {
		c.measures.Messages.Inc()
	}
	h, _ := c.handler.Load().(Handler)
	if h == nil {
		return
	}
	h(Message{Topic: m.Topic(), Payload: m.Payload()})
}

func (c *Client) onConnect(mqtt.Client) {
	c.logger.Info("connected to broker", zap.String("broker", c.config.Broker))
	c.setConnected(true)
	c.tracker.Resubscribe()
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	c.logger.Warn("lost broker connection", zap.String("broker", c.config.Broker), zap.Error(err))
	c.setConnected(false)
}

func (c *Client) setConnected(up bool) {
	if c.measures.Connected == nil {
		return
	}
	if up {
		c.measures.Connected.Set(1)
	} else {
		c.measures.Connected.Set(0)
	}
}
