package external

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/smartcity-core/internal/device"
)

// Service is the lifecycle shared by all adapters.
type Service interface {
	// Connect reports whether the vendor accepted the connection. A
	// cancelled context never connects.
	Connect(ctx context.Context) bool
	Disconnect(ctx context.Context)
	IsConnected() bool
}

// Logger defines the logging interface used by adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Option configures an adapter.
type Option func(*options)

type options struct {
	logger Logger
	source device.ValueSource
	now    func() time.Time
}

// WithLogger sets the adapter logger.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSource sets the random source behind simulated vendor data.
func WithSource(src device.ValueSource) Option {
	return func(o *options) {
		if src != nil {
			o.source = src
		}
	}
}

// WithClock overrides time.Now for forecast dates and tickets.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: noopLogger{}, source: device.DefaultSource(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// link tracks the adapter-side connected flag.
type link struct {
	mu        sync.RWMutex
	connected bool
}

func (l *link) set(v bool) {
	l.mu.Lock()
	l.connected = v
	l.mu.Unlock()
}

func (l *link) IsConnected() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.connected
}

// ready returns ErrServiceUnavailable unless connected and ctx is live.
func (l *link) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !l.IsConnected() {
		return ErrServiceUnavailable
	}
	return nil
}
