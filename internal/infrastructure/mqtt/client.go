package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/smartcity-core/internal/infrastructure/config"
)

// Client is the control center's connection to the alert bus. It keeps a
// retained online/offline marker on the status topic and replays
// subscriptions after paho reconnects.
//
// All methods are safe for concurrent use.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
	topics Topics

	subscriptions map[string]subscription
	subMu         sync.RWMutex

	// mu guards the remaining fields.
	mu     sync.RWMutex
	online bool
	hooks  connHooks
	logger Logger
}

// connHooks are the caller's reactions to link changes.
type connHooks struct {
	up   func()
	down func(err error)
}

// Logger is satisfied by logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

type subscription struct {
	topic   string
	qos     byte
	handler MessageHandler
}

// MessageHandler receives one bus message. It runs on a paho goroutine and
// must return quickly; a non-nil error is logged, never retried.
type MessageHandler func(topic string, payload []byte) error

// Connect dials the broker named in cfg with an offline will registered
// and blocks until the session is up or defaultConnectTimeout passes.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{
		cfg:           cfg,
		topics:        NewTopics(cfg.TopicPrefix),
		subscriptions: make(map[string]subscription),
	}

	opts := buildClientOptions(cfg)
	configureLWT(opts, c.topics, cfg.Broker.ClientID)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.linkUp() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.linkDown(err) })

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		c.client.Disconnect(0)
		return nil, fmt.Errorf("%w: no answer from %s:%d within %v", ErrConnectionFailed, cfg.Broker.Host, cfg.Broker.Port, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// linkUp may still be queued on a paho goroutine.
	c.setOnline(true)
	return c, nil
}

// Topics returns the topic builders for the configured prefix.
func (c *Client) Topics() Topics { return c.topics }

func (c *Client) setOnline(v bool) {
	c.mu.Lock()
	c.online = v
	c.mu.Unlock()
}

func (c *Client) currentHooks() connHooks {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hooks
}

// announce publishes the retained status marker.
func (c *Client) announce(status, reason string) pahomqtt.Token {
	return c.client.Publish(c.topics.SystemStatus(), byte(c.cfg.QoS), true,
		buildStatusPayload(c.cfg.Broker.ClientID, status, reason))
}

func (c *Client) linkUp() {
	c.setOnline(true)

	c.subMu.RLock()
	for _, sub := range c.subscriptions {
		c.client.Subscribe(sub.topic, sub.qos, c.deliver(sub.handler))
	}
	c.subMu.RUnlock()

	c.announce("online", "")

	if up := c.currentHooks().up; up != nil {
		up()
	}
}

func (c *Client) linkDown(err error) {
	c.setOnline(false)
	if down := c.currentHooks().down; down != nil {
		down(err)
	}
}

// Close marks the control center offline on the status topic, then leaves
// the bus. Calling it again is harmless.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	if c.IsConnected() {
		c.announce("offline", "graceful_shutdown").WaitTimeout(defaultPublishTimeout)
	}
	c.client.Disconnect(defaultDisconnectQuiesce)
	c.setOnline(false)
	return nil
}

// HealthCheck returns ErrNotConnected while the bus link is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("alert bus health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports whether both the tracked state and paho agree the
// link is up.
func (c *Client) IsConnected() bool {
	if c.client == nil {
		return false
	}
	c.mu.RLock()
	online := c.online
	c.mu.RUnlock()
	return online && c.client.IsConnected()
}

// SetOnConnect registers fn to run after every successful (re)connect.
func (c *Client) SetOnConnect(fn func()) {
	c.mu.Lock()
	c.hooks.up = fn
	c.mu.Unlock()
}

// SetOnDisconnect registers fn to run when the link drops.
func (c *Client) SetOnDisconnect(fn func(err error)) {
	c.mu.Lock()
	c.hooks.down = fn
	c.mu.Unlock()
}

// SetLogger sets where handler failures are reported.
func (c *Client) SetLogger(logger Logger) {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}

func (c *Client) report(fn func(Logger)) {
	c.mu.RLock()
	logger := c.logger
	c.mu.RUnlock()
	if logger != nil {
		fn(logger)
	}
}

// deliver adapts handler to paho and contains its failures.
func (c *Client) deliver(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		topic := msg.Topic()
		defer func() {
			if r := recover(); r != nil {
				c.report(func(l Logger) {
					l.Error("alert bus handler panicked", "component", "mqtt", "topic", topic, "panic", r)
				})
			}
		}()

		if err := handler(topic, msg.Payload()); err != nil {
			c.report(func(l Logger) {
				l.Warn("alert bus message rejected", "component", "mqtt", "topic", topic, "bytes", len(msg.Payload()), "error", err)
			})
		}
	}
}
