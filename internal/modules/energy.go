package modules

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nerrad567/smartcity-core/internal/controller"
	"github.com/nerrad567/smartcity-core/internal/device"
	"github.com/nerrad567/smartcity-core/internal/subsystem"
)

const energySource = "Energy Module"

// historyLimit caps the usage history.
const historyLimit = 100

// Zone priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// PowerZone groups meters and regulators of one district.
type PowerZone struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Meters      []string `json:"meters"`
	Regulators  []string `json:"regulators"`
	MaxCapacity float64  `json:"max_capacity"`
	Priority    string   `json:"priority"`
}

// UsageRecord is one MonitorConsumption total.
type UsageRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	Total      float64   `json:"total"`
	SavingMode bool      `json:"saving_mode"`
}

// UsageStats summarises the usage history.
type UsageStats struct {
	Average float64 `json:"average"`
	Peak    float64 `json:"peak"`
	Lowest  float64 `json:"lowest"`
	Trend   string  `json:"trend"`
}

// Usage trends.
const (
	TrendStable     = "stable"
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
)

// Energy manages power meters, controllers, regulators and zones.
type Energy struct {
	*subsystem.Energy

	opts        options
	factory     *device.Factory[*device.PowerMeter, *device.PowerController, *device.PowerRegulator]
	meters      handles[*device.PowerMeter]
	controllers handles[*device.PowerController]
	regulators  handles[*device.PowerRegulator]

	mu          sync.Mutex
	zones       []PowerZone
	history     []UsageRecord
	solar       bool
	solarOutput float64
}

// NewEnergy creates an empty energy module.
func NewEnergy(opts ...Option) *Energy {
	o := buildOptions(opts)
	return &Energy{
		Energy:  subsystem.NewEnergy(o.subsystemOptions()...),
		opts:    o,
		factory: device.EnergyFactory(o.deviceOptions()...),
	}
}

// Initialize creates the default grid devices and zones.
func (e *Energy) Initialize() error {
	for _, d := range [][3]string{
		{"meter-main", "Main Grid Meter", "Power Station"},
		{"meter-residential", "Residential Meter", "Residential District"},
		{"meter-commercial", "Commercial Meter", "Business District"},
		{"meter-industrial", "Industrial Meter", "Industrial Zone"},
		{"meter-public", "Public Services Meter", "City Services"},
	} {
		if _, err := e.AddMeter(d[0], d[1], d[2]); err != nil {
			return err
		}
	}
	for _, d := range [][3]string{
		{"ctrl-main", "Main Power Controller", "Power Station"},
		{"ctrl-backup", "Backup Controller", "Backup Station"},
	} {
		if _, err := e.AddController(d[0], d[1], d[2]); err != nil {
			return err
		}
	}
	for _, d := range [][3]string{
		{"reg-residential", "Residential Regulator", "Residential District"},
		{"reg-commercial", "Commercial Regulator", "Business District"},
		{"reg-industrial", "Industrial Regulator", "Industrial Zone"},
	} {
		if _, err := e.AddRegulator(d[0], d[1], d[2]); err != nil {
			return err
		}
	}
	e.CreateZone(PowerZone{ID: "zone-residential", Name: "Residential",
		Meters: []string{"meter-residential"}, Regulators: []string{"reg-residential"}, MaxCapacity: 15000, Priority: PriorityHigh})
	e.CreateZone(PowerZone{ID: "zone-commercial", Name: "Commercial",
		Meters: []string{"meter-commercial"}, Regulators: []string{"reg-commercial"}, MaxCapacity: 20000, Priority: PriorityMedium})
	e.CreateZone(PowerZone{ID: "zone-industrial", Name: "Industrial",
		Meters: []string{"meter-industrial"}, Regulators: []string{"reg-industrial"}, MaxCapacity: 10000, Priority: PriorityLow})

	e.opts.logger.Info("energy module initialised", "devices", e.DeviceCount())
	return nil
}

func (e *Energy) AddMeter(id, name, location string) (*device.PowerMeter, error) {
	d := e.factory.NewSensor(id, name, location)
	if err := e.AddDevice(d); err != nil {
		return nil, err
	}
	e.meters.add(d)
	return d, nil
}

func (e *Energy) AddController(id, name, location string) (*device.PowerController, error) {
	d := e.factory.NewController(id, name, location)
	if err := e.AddDevice(d); err != nil {
		return nil, err
	}
	e.controllers.add(d)
	return d, nil
}

func (e *Energy) AddRegulator(id, name, location string) (*device.PowerRegulator, error) {
	d := e.factory.NewActuator(id, name, location)
	if err := e.AddDevice(d); err != nil {
		return nil, err
	}
	e.regulators.add(d)
	return d, nil
}

// RemoveDevice removes the device from the subsystem and the typed handles.
func (e *Energy) RemoveDevice(id string) (bool, error) {
	ok, err := e.Energy.RemoveDevice(id)
	if ok {
		e.meters.remove(id)
		e.controllers.remove(id)
		e.regulators.remove(id)
	}
	return ok, err
}

func (e *Energy) Meters() []*device.PowerMeter         { return e.meters.all() }
func (e *Energy) Regulators() []*device.PowerRegulator { return e.regulators.all() }

// CreateZone adds or replaces a power zone.
func (e *Energy) CreateZone(z PowerZone) {
	z.Meters = slices.Clone(z.Meters)
	z.Regulators = slices.Clone(z.Regulators)
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := slices.IndexFunc(e.zones, func(p PowerZone) bool { return p.ID == z.ID }); i >= 0 {
		e.zones[i] = z
		return
	}
	e.zones = append(e.zones, z)
}

func (e *Energy) Zones() []PowerZone {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]PowerZone, len(e.zones))
	for i, z := range e.zones {
		z.Meters = slices.Clone(z.Meters)
		z.Regulators = slices.Clone(z.Regulators)
		out[i] = z
	}
	return out
}

// MonitorConsumption samples every meter, appends the total to the usage
// history and raises a high alert when it exceeds the max energy threshold.
func (e *Energy) MonitorConsumption() (readings []Reading, total float64) {
	for _, m := range e.meters.all() {
		r := sample(m)
		readings = append(readings, r)
		total += r.Value
		e.opts.recorder.WriteSensorReading(string(subsystem.CategoryEnergy), r.DeviceID, "consumption_kwh", r.Value)
	}

	e.mu.Lock()
	e.history = append(e.history, UsageRecord{Timestamp: e.opts.now(), Total: total, SavingMode: e.SavingMode()})
	if len(e.history) > historyLimit {
		e.history = slices.Delete(e.history, 0, len(e.history)-historyLimit)
	}
	e.mu.Unlock()

	if limit := e.opts.thresholds.MaxEnergy; total > limit {
		e.opts.alerts.CreateAlert(energySource,
			fmt.Sprintf("Power consumption %.0f kWh exceeds limit %.0f kWh (%.1f%%)", total, limit, total/limit*100),
			controller.SeverityHigh)
	}
	return readings, total
}

// History returns the usage history, oldest first.
func (e *Energy) History() []UsageRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.history)
}

// EnableSolar switches the solar panels on and returns their output.
func (e *Energy) EnableSolar() float64 {
	out := float64(e.opts.source.IntN(5000) + 2000)
	e.mu.Lock()
	e.solar, e.solarOutput = true, out
	e.mu.Unlock()
	e.opts.logger.Info("solar panels enabled", "output_kwh", out)
	return out
}

func (e *Energy) DisableSolar() {
	e.mu.Lock()
	e.solar, e.solarOutput = false, 0
	e.mu.Unlock()
}

// Solar reports the current solar output, zero when disabled.
func (e *Energy) Solar() (enabled bool, output float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.solar, e.solarOutput
}

// BalanceLoad compares a fresh consumption sample with max energy plus
// solar output. On overload low priority zones are throttled to 50% and
// true is returned; otherwise every regulator is restored to 100%.
func (e *Energy) BalanceLoad() bool {
	var total float64
	for _, m := range e.meters.all() {
		total += m.ReadValue()
	}
	_, solar := e.Solar()

	if total <= e.opts.thresholds.MaxEnergy+solar {
		for _, r := range e.regulators.all() {
			r.SetValue(100)
		}
		return false
	}

	e.opts.logger.Warn("power overload, throttling low priority zones", "total_kwh", total)
	e.setZoneRegulators(func(z PowerZone) bool { return z.Priority == PriorityLow }, 50)
	return true
}

// SetEmergencyMode switches controllers to emergency and throttles all but
// high priority zones to 30%, or restores normal operation.
func (e *Energy) SetEmergencyMode(on bool) {
	mode := device.PowerNormal
	if on {
		mode = device.PowerEmergency
	}
	for _, c := range e.controllers.all() {
		c.Activate()
		_ = c.Execute(mode)
	}
	if on {
		e.setZoneRegulators(func(z PowerZone) bool { return z.Priority != PriorityHigh }, 30)
	} else {
		for _, r := range e.regulators.all() {
			r.SetValue(100)
		}
	}
	e.opts.logger.Warn("energy emergency mode", "enabled", on)
}

func (e *Energy) setZoneRegulators(match func(PowerZone) bool, level float64) {
	for _, z := range e.Zones() {
		if !match(z) {
			continue
		}
		for _, id := range z.Regulators {
			if r, ok := e.regulators.get(id); ok {
				r.SetValue(level)
			}
		}
	}
}

// UsageStats computes statistics over the history. The trend compares the
// last five totals with the five before them and needs ten records.
func (e *Energy) UsageStats() UsageStats {
	h := e.History()
	if len(h) == 0 {
		return UsageStats{Trend: TrendStable}
	}
	st := UsageStats{Peak: h[0].Total, Lowest: h[0].Total, Trend: TrendStable}
	var sum float64
	for _, r := range h {
		sum += r.Total
		st.Peak = max(st.Peak, r.Total)
		st.Lowest = min(st.Lowest, r.Total)
	}
	st.Average = sum / float64(len(h))

	if len(h) >= 10 {
		recent := meanTotal(h[len(h)-5:])
		older := meanTotal(h[len(h)-10 : len(h)-5])
		switch {
		case recent > older*1.1:
			st.Trend = TrendIncreasing
		case recent < older*0.9:
			st.Trend = TrendDecreasing
		}
	}
	return st
}

func meanTotal(rs []UsageRecord) float64 {
	var sum float64
	for _, r := range rs {
		sum += r.Total
	}
	return sum / float64(len(rs))
}

func (e *Energy) Report() string {
	var current float64
	for _, m := range e.meters.all() {
		if m.Status() == device.StatusActive {
			current += m.LastValue()
		}
	}
	solarOn, solarOut := e.Solar()
	solar := "OFF"
	if solarOn {
		solar = fmt.Sprintf("%.0f kWh", solarOut)
	}

	return renderReport("ENERGY MODULE REPORT", []row{
		{"Power Meters", e.meters.len()},
		{"Controllers", e.controllers.len()},
		{"Regulators", e.regulators.len()},
		{"Zones", len(e.Zones())},
		{"Current Usage", fmt.Sprintf("%.0f kWh", current)},
		{"Max Energy", fmt.Sprintf("%.0f kWh", e.opts.thresholds.MaxEnergy)},
		{"Solar", solar},
		{"Saving Mode", onOff(e.SavingMode())},
		{"Trend", e.UsageStats().Trend},
		{"Status", activeLabel(e.IsActive())},
	})
}
