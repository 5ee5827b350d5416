package modules

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nerrad567/smartcity-core/internal/controller"
	"github.com/nerrad567/smartcity-core/internal/device"
	"github.com/nerrad567/smartcity-core/internal/subsystem"
	"github.com/nerrad567/smartcity-core/internal/sysconfig"
)

// AlertRaiser accepts alerts; *controller.Controller implements it.
type AlertRaiser interface {
	CreateAlert(source, message string, severity controller.Severity) controller.Alert
}

// Recorder stores sensor telemetry; *influxdb.Client implements it.
type Recorder interface {
	WriteSensorReading(subsystem, deviceID, measurement string, value float64)
}

// Logger defines the logging interface used by modules.
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

type nopAlerts struct{}

func (nopAlerts) CreateAlert(source, message string, severity controller.Severity) controller.Alert {
	return controller.Alert{Source: source, Message: message, Severity: severity}
}

type nopRecorder struct{}

func (nopRecorder) WriteSensorReading(string, string, string, float64) {}

// Option configures a module.
type Option func(*options)

type options struct {
	alerts     AlertRaiser
	recorder   Recorder
	thresholds sysconfig.Thresholds
	logger     Logger
	source     device.ValueSource
	now        func() time.Time
}

// WithAlerts sets where monitoring alerts go.
func WithAlerts(a AlertRaiser) Option {
	return func(o *options) {
		if a != nil {
			o.alerts = a
		}
	}
}

// WithRecorder sets the telemetry recorder.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithThresholds sets the limits monitoring compares against.
func WithThresholds(t sysconfig.Thresholds) Option {
	return func(o *options) { o.thresholds = t }
}

// WithLogger sets the module logger. It is passed on to the subsystem.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSource sets the value source for the module's devices.
func WithSource(src device.ValueSource) Option {
	return func(o *options) {
		if src != nil {
			o.source = src
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		alerts:     nopAlerts{},
		recorder:   nopRecorder{},
		thresholds: sysconfig.DefaultThresholds(),
		logger:     noopLogger{},
		source:     device.DefaultSource(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) subsystemOptions() []subsystem.Option {
	return []subsystem.Option{subsystem.WithLogger(o.logger), subsystem.WithSource(o.source)}
}

func (o options) deviceOptions() []device.Option {
	return []device.Option{device.WithSource(o.source)}
}

var (
	reportBox   = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(0, 1)
	reportTitle = lipgloss.NewStyle().Bold(true)
)

// row is one "Label: value" line of a module report.
type row struct {
	label string
	value any
}

func renderReport(title string, rows []row) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, reportTitle.Render(title))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s: %v", r.label, r.value))
	}
	return reportBox.Render(strings.Join(lines, "\n"))
}

func activeLabel(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}
