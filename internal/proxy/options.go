package proxy

import "time"

// Default cache lifetimes.
const (
	DefaultTTL        = 60 * time.Second
	DefaultStatusTTL  = 5 * time.Second
	DefaultDevicesTTL = 30 * time.Second
)

// Logger defines the logging interface used by the proxies.
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

// TTLs configures cache lifetimes. Zero fields take the defaults.
type TTLs struct {
	Default time.Duration
	Status  time.Duration
	Devices time.Duration
}

func (t TTLs) withDefaults() TTLs {
	if t.Default <= 0 {
		t.Default = DefaultTTL
	}
	if t.Status <= 0 {
		t.Status = DefaultStatusTTL
	}
	if t.Devices <= 0 {
		t.Devices = DefaultDevicesTTL
	}
	return t
}

// options is shared by every proxy constructor; each reads what it needs.
type options struct {
	logger   Logger
	now      func() time.Time
	ttls     TTLs
	recorder AccessRecorder
}

// Option configures a proxy.
type Option func(*options)

// WithLogger sets the structured logger.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces time.Now for timestamps and TTL checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithTTLs sets cache lifetimes for the caching proxy.
func WithTTLs(t TTLs) Option {
	return func(o *options) { o.ttls = t }
}

// WithAccessRecorder mirrors every access decision of the protection proxy.
func WithAccessRecorder(r AccessRecorder) Option {
	return func(o *options) { o.recorder = r }
}

func buildOptions(opts []Option) options {
	o := options{logger: noopLogger{}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	o.ttls = o.ttls.withDefaults()
	return o
}
