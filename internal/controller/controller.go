package controller

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/smartcity-core/internal/subsystem"
	"github.com/nerrad567/smartcity-core/internal/sysconfig"
)

// Source names used on controller-originated events.
const sourceController = "controller"

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSink sets where alerts and events are pushed.
func WithSink(s Sink) Option {
	return func(c *Controller) {
		if s != nil {
			c.sink = s
		}
	}
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// Controller owns subsystem lifecycle, alerts and the event trail.
//
// All public methods are thread-safe. Subsystem calls and sink
// notifications are made without holding the state lock.
type Controller struct {
	logger Logger
	sink   Sink
	now    func() time.Time

	// lifecycleMu serialises StartSystem and StopSystem.
	lifecycleMu sync.Mutex

	mu         sync.RWMutex
	order      []subsystem.Category
	subsystems map[subsystem.Category]subsystem.Subsystem
	config     *sysconfig.SystemConfig
	alerts     []Alert
	events     []Event
	running    bool
}

// New creates an independent controller.
func New(opts ...Option) *Controller {
	c := &Controller{
		logger:     noopLogger{},
		sink:       nopSink{},
		now:        time.Now,
		subsystems: make(map[subsystem.Category]subsystem.Subsystem),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	instanceMu sync.Mutex
	instance   *Controller
)

// Instance returns the process-wide controller, creating it on first use.
// opts apply only to the call that creates it.
func Instance(opts ...Option) *Controller {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance == nil {
		instance = New(opts...)
	}
	return instance
}

// ResetInstance discards the process-wide controller so the next Instance
// call creates a fresh one.
func ResetInstance() {
	instanceMu.Lock()
	instance = nil
	instanceMu.Unlock()
}

// RegisterSubsystem sets the subsystem for its category. A replaced
// subsystem keeps its position in start order.
func (c *Controller) RegisterSubsystem(s subsystem.Subsystem) {
	cat := s.Category()

	c.mu.Lock()
	if _, ok := c.subsystems[cat]; !ok {
		c.order = append(c.order, cat)
	}
	c.subsystems[cat] = s
	c.mu.Unlock()

	c.logger.Info("subsystem registered", "category", cat, "name", s.Name())
	c.LogEvent(sourceController, EventSubsystemRegistered, map[string]any{
		"subsystemType": string(cat),
		"name":          s.Name(),
	})
}

// Subsystem returns the registered subsystem for a category.
func (c *Controller) Subsystem(cat subsystem.Category) (subsystem.Subsystem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.subsystems[cat]
	return s, ok
}

// Subsystems returns the registered subsystems in registration order.
func (c *Controller) Subsystems() []subsystem.Subsystem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]subsystem.Subsystem, 0, len(c.order))
	for _, cat := range c.order {
		out = append(out, c.subsystems[cat])
	}
	return out
}

// IsRunning reports whether StartSystem has completed without a later stop.
func (c *Controller) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// StartSystem starts every registered subsystem in registration order.
// A failing subsystem raises a high severity alert and the loop carries
// on. Calling it while running only logs a warning.
func (c *Controller) StartSystem() {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.IsRunning() {
		c.logger.Warn("system already running")
		return
	}

	c.logger.Info("starting city system")
	failed := 0
	for _, s := range c.Subsystems() {
		if err := s.Start(); err != nil {
			failed++
			c.logger.Error("subsystem failed to start", "category", s.Category(), "error", err)
			c.CreateAlert(string(s.Category()), "Failed to start "+string(s.Category())+" subsystem", SeverityHigh)
		}
	}

	c.mu.Lock()
	c.running = true
	c.mu.Unlock()

	c.logger.Info("city system started", "failed", failed)
	c.LogEvent(sourceController, EventSystemStarted, map[string]any{"failed": failed})
}

// StopSystem stops every registered subsystem. Failures are logged only.
// Calling it while stopped only logs a warning.
func (c *Controller) StopSystem() {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if !c.IsRunning() {
		c.logger.Warn("system not running")
		return
	}

	c.logger.Info("stopping city system")
	for _, s := range c.Subsystems() {
		if err := s.Stop(); err != nil {
			c.logger.Error("subsystem failed to stop", "category", s.Category(), "error", err)
		}
	}

	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	c.logger.Info("city system stopped")
	c.LogEvent(sourceController, EventSystemStopped, nil)
}

// SetConfig stores an independent copy of cfg.
func (c *Controller) SetConfig(cfg sysconfig.SystemConfig) {
	cpy := cfg.Clone()

	c.mu.Lock()
	c.config = &cpy
	c.mu.Unlock()

	c.logger.Info("configuration set", "city", cfg.CityName)
	c.LogEvent(sourceController, EventConfigSet, map[string]any{"cityName": cfg.CityName})
}

// Config returns a copy of the current configuration.
func (c *Controller) Config() (sysconfig.SystemConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.config == nil {
		return sysconfig.SystemConfig{}, false
	}
	return c.config.Clone(), true
}

// CreateAlert appends an unacknowledged alert and pushes it to the sink.
func (c *Controller) CreateAlert(source, message string, severity Severity) Alert {
	a := Alert{
		ID:        "alert-" + uuid.NewString()[:8],
		Timestamp: c.now(),
		Source:    source,
		Message:   message,
		Severity:  severity,
	}

	c.mu.Lock()
	c.alerts = append(c.alerts, a)
	c.mu.Unlock()

	c.logger.Warn("alert raised", "id", a.ID, "source", source, "severity", severity, "message", message)
	c.sink.Alert(a)
	return a
}

// AcknowledgeAlert marks an alert acknowledged. Returns false if the id is
// unknown. Acknowledging twice succeeds but records a single event.
func (c *Controller) AcknowledgeAlert(id string) bool {
	c.mu.Lock()
	i := slices.IndexFunc(c.alerts, func(a Alert) bool { return a.ID == id })
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	already := c.alerts[i].Acknowledged
	c.alerts[i].Acknowledged = true
	c.mu.Unlock()

	if !already {
		c.logger.Info("alert acknowledged", "id", id)
		c.LogEvent(sourceController, EventAlertAcknowledged, map[string]any{"alertId": id})
	}
	return true
}

// Alert returns the alert with the given id.
func (c *Controller) Alert(id string) (Alert, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := slices.IndexFunc(c.alerts, func(a Alert) bool { return a.ID == id })
	if i < 0 {
		return Alert{}, false
	}
	return c.alerts[i], true
}

// Alerts returns every alert in creation order.
func (c *Controller) Alerts() []Alert {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.alerts)
}

// ActiveAlerts returns the unacknowledged alerts in creation order.
func (c *Controller) ActiveAlerts() []Alert {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Alert
	for _, a := range c.alerts {
		if !a.Acknowledged {
			out = append(out, a)
		}
	}
	return out
}

// LogEvent appends an event and pushes it to the sink.
func (c *Controller) LogEvent(source, eventType string, data map[string]any) Event {
	e := Event{
		ID:        "evt-" + uuid.NewString()[:8],
		Timestamp: c.now(),
		Source:    source,
		Type:      eventType,
		Data:      maps.Clone(data),
	}

	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()

	c.logger.Debug("event logged", "type", eventType, "source", source)
	c.sink.Event(e)
	return e
}

// Events returns the event trail in creation order.
func (c *Controller) Events() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Event, len(c.events))
	for i, e := range c.events {
		e.Data = maps.Clone(e.Data)
		out[i] = e
	}
	return out
}
