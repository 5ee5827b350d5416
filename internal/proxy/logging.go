package proxy

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/smartcity-core/internal/device"
	"github.com/nerrad567/smartcity-core/internal/subsystem"
)

// LogEntry records one call through the logging proxy.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Method    string    `json:"method"`
	// Args is the JSON encoding of the call arguments, or "" when there are none.
	Args string `json:"args,omitempty"`
}

// Logging records every call before forwarding it unchanged.
//
// All public methods are thread-safe.
type Logging struct {
	inner  subsystem.Subsystem
	logger Logger
	now    func() time.Time

	mu   sync.Mutex
	logs []LogEntry
}

var _ subsystem.Subsystem = (*Logging)(nil)

// NewLogging wraps inner with call logging.
func NewLogging(inner subsystem.Subsystem, opts ...Option) *Logging {
	o := buildOptions(opts)
	return &Logging{inner: inner, logger: o.logger, now: o.now}
}

// LoggingStage returns a Stage that wraps with NewLogging.
func LoggingStage(opts ...Option) Stage {
	return func(s subsystem.Subsystem) subsystem.Subsystem {
		return NewLogging(s, opts...)
	}
}

func (l *Logging) record(method string, args map[string]string) {
	entry := LogEntry{Timestamp: l.now(), Method: method}
	if len(args) > 0 {
		// map[string]string always marshals.
		b, _ := json.Marshal(args)
		entry.Args = string(b)
	}

	l.mu.Lock()
	l.logs = append(l.logs, entry)
	l.mu.Unlock()

	l.logger.Debug("subsystem call", "subsystem", l.inner.Name(), "method", method, "args", entry.Args)
}

// Logs returns a snapshot of the recorded calls.
func (l *Logging) Logs() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.logs)
}

// ClearLogs discards every recorded call.
func (l *Logging) ClearLogs() {
	l.mu.Lock()
	l.logs = nil
	l.mu.Unlock()
}

// Dump renders the log as numbered lines.
func (l *Logging) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subsystem log: %s\n", l.inner.Name())
	for i, e := range l.Logs() {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, e.Timestamp.Format(time.RFC3339), e.Method)
		if e.Args != "" {
			fmt.Fprintf(&b, "   Args: %s\n", e.Args)
		}
	}
	return b.String()
}

// Name returns "Logged[<inner name>]".
func (l *Logging) Name() string                 { return "Logged[" + l.inner.Name() + "]" }
func (l *Logging) Category() subsystem.Category { return l.inner.Category() }
func (l *Logging) IsActive() bool               { return l.inner.IsActive() }

func (l *Logging) Start() error {
	l.record("start", nil)
	return l.inner.Start()
}

func (l *Logging) Stop() error {
	l.record("stop", nil)
	return l.inner.Stop()
}

func (l *Logging) Status() string {
	l.record("getStatus", nil)
	return l.inner.Status()
}

func (l *Logging) Devices() []device.Device {
	l.record("getDevices", nil)
	return l.inner.Devices()
}

func (l *Logging) AddDevice(d device.Device) error {
	args := map[string]string{}
	if d != nil {
		args["deviceId"] = d.ID()
		args["deviceName"] = d.Name()
	}
	l.record("addDevice", args)
	return l.inner.AddDevice(d)
}

func (l *Logging) RemoveDevice(id string) (bool, error) {
	l.record("removeDevice", map[string]string{"deviceId": id})
	return l.inner.RemoveDevice(id)
}
