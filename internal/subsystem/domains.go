package subsystem

import (
	"fmt"
	"time"

	"github.com/nerrad567/smartcity-core/internal/device"
)

// Operator is implemented by subsystems that perform a periodic main
// function when the city is monitored.
type Operator interface {
	Operate()
}

// Transport manages city traffic.
type Transport struct {
	*Base
	trafficLevel int
}

// NewTransport creates the "Transport Management" subsystem.
func NewTransport(opts ...Option) *Transport {
	return &Transport{Base: NewBase(CategoryTransport.DisplayName(), CategoryTransport, opts...)}
}

// Operate samples the city-wide traffic level.
func (t *Transport) Operate() {
	t.UpdateTrafficLevel()
}

// UpdateTrafficLevel samples a new traffic level (0–99 %).
func (t *Transport) UpdateTrafficLevel() int {
	t.mu.Lock()
	t.trafficLevel = t.source.IntN(100)
	level := t.trafficLevel
	t.mu.Unlock()
	t.logger.Debug("traffic level updated", "level", level)
	return level
}

// TrafficLevel returns the last sampled traffic level.
func (t *Transport) TrafficLevel() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.trafficLevel
}

// OptimizeTrafficLights switches every active traffic light to green when
// traffic is heavy and to red otherwise. Returns the number of lights changed.
func (t *Transport) OptimizeTrafficLights(heavy bool) int {
	phase := device.PhaseRed
	if heavy {
		phase = device.PhaseGreen
	}
	changed := 0
	for _, d := range t.Devices() {
		light, ok := d.(*device.TrafficLight)
		if !ok || d.Status() != device.StatusActive {
			continue
		}
		if err := light.Execute(phase); err == nil {
			changed++
		}
	}
	t.logger.Info("traffic lights optimised", "phase", phase, "changed", changed)
	return changed
}

// Lighting manages street lighting brightness.
type Lighting struct {
	*Base
	brightness float64
	autoMode   bool
	now        func() time.Time
}

// NewLighting creates the "Street Lighting" subsystem at full brightness in auto mode.
func NewLighting(opts ...Option) *Lighting {
	return &Lighting{
		Base:       NewBase(CategoryLighting.DisplayName(), CategoryLighting, opts...),
		brightness: 100,
		autoMode:   true,
		now:        time.Now,
	}
}

// SetClock replaces the wall clock used by auto mode.
func (l *Lighting) SetClock(now func() time.Time) {
	l.mu.Lock()
	l.now = now
	l.mu.Unlock()
}

// Operate adjusts brightness for the time of day when auto mode is on.
func (l *Lighting) Operate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.autoMode {
		return
	}
	l.brightness = AutoBrightness(l.now().Hour())
	l.logger.Debug("brightness auto-adjusted", "brightness", l.brightness)
}

// AutoBrightness returns the scheduled brightness for an hour of the day:
// 30 % in daylight (06–18), 100 % in the evening (18–22), 50 % overnight.
func AutoBrightness(hour int) float64 {
	switch {
	case hour >= 6 && hour < 18:
		return 30
	case hour >= 18 && hour < 22:
		return 100
	default:
		return 50
	}
}

// SetBrightness sets brightness clamped to 0–100 and applies it to every dimmer.
func (l *Lighting) SetBrightness(level float64) {
	level = max(0, min(100, level))
	l.mu.Lock()
	l.brightness = level
	l.mu.Unlock()

	for _, d := range l.Devices() {
		if dimmer, ok := d.(device.Actuator); ok {
			dimmer.SetValue(level)
		}
	}
	l.logger.Info("brightness set", "brightness", level)
}

// Brightness returns the current brightness.
func (l *Lighting) Brightness() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.brightness
}

// SetAutoMode enables or disables time-of-day brightness.
func (l *Lighting) SetAutoMode(enabled bool) {
	l.mu.Lock()
	l.autoMode = enabled
	l.mu.Unlock()
}

// AutoMode reports whether auto mode is on.
func (l *Lighting) AutoMode() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.autoMode
}

// Security monitors cameras and the city alert mode.
type Security struct {
	*Base
	alertMode     bool
	activeCameras int
}

// NewSecurity creates the "City Security" subsystem.
func NewSecurity(opts ...Option) *Security {
	return &Security{Base: NewBase(CategorySecurity.DisplayName(), CategorySecurity, opts...)}
}

// Operate counts the active cameras.
func (s *Security) Operate() {
	s.ScanForThreats()
}

// ScanForThreats recounts active sensor devices and returns the count.
func (s *Security) ScanForThreats() int {
	count := 0
	for _, d := range s.Devices() {
		if d.Kind() == device.KindSensor && d.Status() == device.StatusActive {
			count++
		}
	}
	s.mu.Lock()
	s.activeCameras = count
	s.mu.Unlock()
	s.logger.Debug("security scan", "active_cameras", count)
	return count
}

// ActiveCameras returns the count from the last scan.
func (s *Security) ActiveCameras() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeCameras
}

// SetAlertMode switches city-wide alert mode on or off.
func (s *Security) SetAlertMode(on bool) {
	s.mu.Lock()
	s.alertMode = on
	s.mu.Unlock()
	if on {
		s.logger.Warn("security alert mode activated")
	} else {
		s.logger.Info("security alert mode deactivated")
	}
}

// AlertMode reports whether alert mode is on.
func (s *Security) AlertMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alertMode
}

// Energy tracks city-wide consumption.
type Energy struct {
	*Base
	consumption float64
	savingMode  bool
}

// NewEnergy creates the "Energy Management" subsystem.
func NewEnergy(opts ...Option) *Energy {
	return &Energy{Base: NewBase(CategoryEnergy.DisplayName(), CategoryEnergy, opts...)}
}

// Operate samples consumption.
func (e *Energy) Operate() {
	e.MonitorConsumption()
}

// MonitorConsumption samples a new consumption figure (500–1499 kWh).
func (e *Energy) MonitorConsumption() float64 {
	e.mu.Lock()
	e.consumption = float64(e.source.IntN(1000) + 500)
	c := e.consumption
	e.mu.Unlock()
	e.logger.Debug("consumption sampled", "kwh", c)
	return c
}

// Consumption returns the last sampled consumption.
func (e *Energy) Consumption() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.consumption
}

// SetSavingMode switches energy saving on or off.
func (e *Energy) SetSavingMode(on bool) {
	e.mu.Lock()
	e.savingMode = on
	e.mu.Unlock()
	e.logger.Info("energy saving mode", "enabled", on)
}

// SavingMode reports whether energy saving is on.
func (e *Energy) SavingMode() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.savingMode
}

// Report renders a short consumption summary.
func (e *Energy) Report() string {
	saving := "OFF"
	if e.SavingMode() {
		saving = "ON"
	}
	return fmt.Sprintf("Energy Report\nCurrent: %.0f kWh\nSaving Mode: %s\nDevices: %d",
		e.Consumption(), saving, e.DeviceCount())
}

// New creates the subsystem for a category.
// Returns ErrUnknownCategory for anything else.
func New(category Category, opts ...Option) (Subsystem, error) {
	switch category {
	case CategoryTransport:
		return NewTransport(opts...), nil
	case CategoryLighting:
		return NewLighting(opts...), nil
	case CategorySecurity:
		return NewSecurity(opts...), nil
	case CategoryEnergy:
		return NewEnergy(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
}

// NewAll creates one subsystem per category in canonical order.
func NewAll(opts ...Option) []Subsystem {
	all := make([]Subsystem, 0, len(Categories()))
	for _, c := range Categories() {
		s, _ := New(c, opts...)
		all = append(all, s)
	}
	return all
}
