package mqtt

import (
	"fmt"
	"log/slog"

	mqttbroker "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"

	"github.com/nerrad567/smartcity-core/internal/infrastructure/config"
)

// Broker is an in-process MQTT broker for single-host deployments.
type Broker struct {
	server *mqttbroker.Server
	addr   string
}

// StartBroker binds a TCP listener on cfg.Address and starts serving.
// The broker accepts every client; bind it to loopback.
func StartBroker(cfg config.EmbeddedBrokerConfig, logger *slog.Logger) (*Broker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	server := mqttbroker.New(&mqttbroker.Options{
		Logger: logger.With(slog.String("component", "mqtt-broker")),
	})

	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		return nil, fmt.Errorf("%w: adding auth hook: %w", ErrBrokerFailed, err)
	}
	tcp := listeners.NewTCP(listeners.Config{ID: "tcp", Address: cfg.Address})
	if err := server.AddListener(tcp); err != nil {
		return nil, fmt.Errorf("%w: listening on %s: %w", ErrBrokerFailed, cfg.Address, err)
	}
	if err := server.Serve(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBrokerFailed, err)
	}

	return &Broker{server: server, addr: cfg.Address}, nil
}

// Addr returns the configured listen address.
func (b *Broker) Addr() string { return b.addr }

// Close stops the listener and disconnects every client.
func (b *Broker) Close() error {
	return b.server.Close()
}
