package modules

import (
	"fmt"

	"github.com/nerrad567/smartcity-core/internal/controller"
	"github.com/nerrad567/smartcity-core/internal/device"
	"github.com/nerrad567/smartcity-core/internal/subsystem"
)

const transportSource = "Transport Module"

// Transport manages traffic lights, traffic sensors and barriers.
type Transport struct {
	*subsystem.Transport

	opts     options
	factory  *device.Factory[*device.TrafficSensor, *device.TrafficLight, *device.TrafficBarrier]
	lights   handles[*device.TrafficLight]
	sensors  handles[*device.TrafficSensor]
	barriers handles[*device.TrafficBarrier]
}

// NewTransport creates an empty transport module.
func NewTransport(opts ...Option) *Transport {
	o := buildOptions(opts)
	return &Transport{
		Transport: subsystem.NewTransport(o.subsystemOptions()...),
		opts:      o,
		factory:   device.TransportFactory(o.deviceOptions()...),
	}
}

// Initialize creates the default street furniture.
func (t *Transport) Initialize() error {
	for _, l := range [][3]string{
		{"main-intersection", "Main Street Traffic Light", "Main St & 1st Ave"},
		{"north-entry", "North Entry Light", "North Gate"},
		{"south-entry", "South Entry Light", "South Gate"},
	} {
		if _, err := t.AddTrafficLight(l[0], l[1], l[2]); err != nil {
			return err
		}
	}
	for _, s := range [][3]string{
		{"sensor-highway", "Highway Sensor", "Highway Entry"},
		{"sensor-downtown", "Downtown Sensor", "City Center"},
	} {
		if _, err := t.AddTrafficSensor(s[0], s[1], s[2]); err != nil {
			return err
		}
	}
	for _, b := range [][3]string{
		{"barrier-parking", "Parking Barrier", "Central Parking"},
		{"barrier-restricted", "Restricted Zone Barrier", "Government Area"},
	} {
		if _, err := t.AddBarrier(b[0], b[1], b[2]); err != nil {
			return err
		}
	}
	t.opts.logger.Info("transport module initialised", "devices", t.DeviceCount())
	return nil
}

func (t *Transport) AddTrafficLight(id, name, location string) (*device.TrafficLight, error) {
	l := t.factory.NewController(id, name, location)
	if err := t.AddDevice(l); err != nil {
		return nil, err
	}
	t.lights.add(l)
	return l, nil
}

func (t *Transport) AddTrafficSensor(id, name, location string) (*device.TrafficSensor, error) {
	s := t.factory.NewSensor(id, name, location)
	if err := t.AddDevice(s); err != nil {
		return nil, err
	}
	t.sensors.add(s)
	return s, nil
}

func (t *Transport) AddBarrier(id, name, location string) (*device.TrafficBarrier, error) {
	b := t.factory.NewActuator(id, name, location)
	if err := t.AddDevice(b); err != nil {
		return nil, err
	}
	t.barriers.add(b)
	return b, nil
}

// RemoveDevice removes the device from the subsystem and the typed handles.
func (t *Transport) RemoveDevice(id string) (bool, error) {
	ok, err := t.Transport.RemoveDevice(id)
	if ok {
		t.lights.remove(id)
		t.sensors.remove(id)
		t.barriers.remove(id)
	}
	return ok, err
}

func (t *Transport) TrafficLights() []*device.TrafficLight   { return t.lights.all() }
func (t *Transport) TrafficSensors() []*device.TrafficSensor { return t.sensors.all() }
func (t *Transport) Barriers() []*device.TrafficBarrier      { return t.barriers.all() }

// SetEmergencyMode turns every light green for emergency vehicles, or back
// to red when disabled.
func (t *Transport) SetEmergencyMode(on bool) {
	phase := device.PhaseRed
	if on {
		phase = device.PhaseGreen
	}
	for _, l := range t.lights.all() {
		l.Activate()
		_ = l.Execute(phase) // phase is always in the vocabulary
	}
	t.opts.logger.Warn("transport emergency mode", "enabled", on)
}

// TrafficSnapshot is the result of MonitorTraffic.
type TrafficSnapshot struct {
	Readings []Reading `json:"readings"`
	// Congestion is the mean sensor load in percent.
	Congestion float64 `json:"congestion"`
}

// MonitorTraffic samples every sensor and raises a medium alert when mean
// congestion exceeds the max traffic threshold.
func (t *Transport) MonitorTraffic() TrafficSnapshot {
	var snap TrafficSnapshot
	var total float64
	for _, s := range t.sensors.all() {
		r := sample(s)
		snap.Readings = append(snap.Readings, r)
		total += r.Value
		t.opts.recorder.WriteSensorReading(string(subsystem.CategoryTransport), r.DeviceID, "vehicles_per_min", r.Value)
	}
	if len(snap.Readings) == 0 {
		return snap
	}
	snap.Congestion = total / float64(len(snap.Readings))

	if limit := t.opts.thresholds.MaxTraffic; snap.Congestion > limit {
		t.opts.alerts.CreateAlert(transportSource,
			fmt.Sprintf("Traffic congestion at %.0f%% exceeds %.0f%%", snap.Congestion, limit),
			controller.SeverityMedium)
	}
	return snap
}

// ControlTrafficLight sets a light's phase. Reports false if no such light.
func (t *Transport) ControlTrafficLight(id, phase string) (bool, error) {
	l, ok := t.lights.get(id)
	if !ok {
		return false, nil
	}
	l.Activate()
	return true, l.Execute(phase)
}

// ControlBarrier opens a barrier to pct percent. Reports false if no such
// barrier.
func (t *Transport) ControlBarrier(id string, pct float64) bool {
	b, ok := t.barriers.get(id)
	if !ok {
		return false
	}
	b.Activate()
	b.SetValue(pct)
	return true
}

func (t *Transport) Report() string {
	var vehicles float64
	for _, s := range t.sensors.all() {
		if s.Status() == device.StatusActive {
			vehicles += s.LastValue()
		}
	}
	return renderReport("TRANSPORT MODULE REPORT", []row{
		{"Traffic Lights", t.lights.len()},
		{"Sensors", t.sensors.len()},
		{"Barriers", t.barriers.len()},
		{"Total Vehicles Detected", vehicles},
		{"Status", activeLabel(t.IsActive())},
	})
}
