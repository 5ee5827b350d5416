package modules

import (
	"slices"
	"sync"

	"github.com/nerrad567/smartcity-core/internal/device"
	"github.com/nerrad567/smartcity-core/internal/subsystem"
)

// Zone groups street lights under one schedule.
type Zone struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Lights     []string `json:"lights"`
	OnTime     string   `json:"on_time"`
	OffTime    string   `json:"off_time"`
	Brightness float64  `json:"brightness"`
}

// Lighting manages street lights, ambient light sensors, dimmers and zones.
type Lighting struct {
	*subsystem.Lighting

	opts    options
	factory *device.Factory[*device.LightSensor, *device.LightSwitch, *device.Dimmer]
	lights  handles[*device.LightSwitch]
	sensors handles[*device.LightSensor]
	dimmers handles[*device.Dimmer]

	zoneMu sync.RWMutex
	zones  []Zone
}

// NewLighting creates an empty lighting module.
func NewLighting(opts ...Option) *Lighting {
	o := buildOptions(opts)
	l := subsystem.NewLighting(o.subsystemOptions()...)
	l.SetClock(o.now)
	return &Lighting{
		Lighting: l,
		opts:     o,
		factory:  device.LightingFactory(o.deviceOptions()...),
	}
}

// Initialize creates the default lights and zones.
func (l *Lighting) Initialize() error {
	for _, d := range [][3]string{
		{"light-main-1", "Main Street Light 1", "Main St Block 1"},
		{"light-main-2", "Main Street Light 2", "Main St Block 2"},
		{"light-main-3", "Main Street Light 3", "Main St Block 3"},
		{"light-park-1", "Central Park Light 1", "Central Park North"},
		{"light-park-2", "Central Park Light 2", "Central Park South"},
	} {
		if _, err := l.AddLight(d[0], d[1], d[2]); err != nil {
			return err
		}
	}
	for _, d := range [][3]string{
		{"sensor-main", "Main Street Sensor", "Main St Center"},
		{"sensor-park", "Park Sensor", "Central Park"},
	} {
		if _, err := l.AddLightSensor(d[0], d[1], d[2]); err != nil {
			return err
		}
	}
	for _, d := range [][3]string{
		{"dimmer-main", "Main Street Dimmer", "Main St Control Box"},
		{"dimmer-park", "Park Dimmer", "Park Control Box"},
	} {
		if _, err := l.AddDimmer(d[0], d[1], d[2]); err != nil {
			return err
		}
	}
	l.CreateZone(Zone{ID: "zone-main", Name: "Main Street Zone",
		Lights: []string{"light-main-1", "light-main-2", "light-main-3"}, OnTime: "18:00", OffTime: "06:00", Brightness: 100})
	l.CreateZone(Zone{ID: "zone-park", Name: "Park Zone",
		Lights: []string{"light-park-1", "light-park-2"}, OnTime: "19:00", OffTime: "23:00", Brightness: 70})

	l.opts.logger.Info("lighting module initialised", "devices", l.DeviceCount(), "zones", len(l.Zones()))
	return nil
}

func (l *Lighting) AddLight(id, name, location string) (*device.LightSwitch, error) {
	d := l.factory.NewController(id, name, location)
	if err := l.AddDevice(d); err != nil {
		return nil, err
	}
	l.lights.add(d)
	return d, nil
}

func (l *Lighting) AddLightSensor(id, name, location string) (*device.LightSensor, error) {
	d := l.factory.NewSensor(id, name, location)
	if err := l.AddDevice(d); err != nil {
		return nil, err
	}
	l.sensors.add(d)
	return d, nil
}

func (l *Lighting) AddDimmer(id, name, location string) (*device.Dimmer, error) {
	d := l.factory.NewActuator(id, name, location)
	if err := l.AddDevice(d); err != nil {
		return nil, err
	}
	l.dimmers.add(d)
	return d, nil
}

// RemoveDevice removes the device from the subsystem and the typed handles.
func (l *Lighting) RemoveDevice(id string) (bool, error) {
	ok, err := l.Lighting.RemoveDevice(id)
	if ok {
		l.lights.remove(id)
		l.sensors.remove(id)
		l.dimmers.remove(id)
	}
	return ok, err
}

func (l *Lighting) Lights() []*device.LightSwitch { return l.lights.all() }
func (l *Lighting) Dimmers() []*device.Dimmer     { return l.dimmers.all() }

// CreateZone adds or replaces a zone.
func (l *Lighting) CreateZone(z Zone) {
	z.Lights = slices.Clone(z.Lights)
	l.zoneMu.Lock()
	defer l.zoneMu.Unlock()
	if i := l.zoneIndex(z.ID); i >= 0 {
		l.zones[i] = z
		return
	}
	l.zones = append(l.zones, z)
}

func (l *Lighting) Zones() []Zone {
	l.zoneMu.RLock()
	defer l.zoneMu.RUnlock()
	out := make([]Zone, len(l.zones))
	for i, z := range l.zones {
		z.Lights = slices.Clone(z.Lights)
		out[i] = z
	}
	return out
}

func (l *Lighting) zone(id string) (Zone, bool) {
	l.zoneMu.RLock()
	defer l.zoneMu.RUnlock()
	if i := l.zoneIndex(id); i >= 0 {
		return l.zones[i], true
	}
	return Zone{}, false
}

// zoneIndex must be called with zoneMu held.
func (l *Lighting) zoneIndex(id string) int {
	return slices.IndexFunc(l.zones, func(z Zone) bool { return z.ID == id })
}

func switchOn(s *device.LightSwitch) {
	s.Activate()
	_ = s.Execute("on")
}

func switchOff(s *device.LightSwitch) {
	_ = s.Execute("off")
	s.Deactivate()
}

func (l *Lighting) TurnOnAll() {
	for _, s := range l.lights.all() {
		switchOn(s)
	}
}

func (l *Lighting) TurnOffAll() {
	for _, s := range l.lights.all() {
		switchOff(s)
	}
}

// ActivateZone switches on the zone's lights. Reports false for an
// unknown zone.
func (l *Lighting) ActivateZone(id string) bool {
	return l.eachZoneLight(id, switchOn)
}

// DeactivateZone switches off the zone's lights.
func (l *Lighting) DeactivateZone(id string) bool {
	return l.eachZoneLight(id, switchOff)
}

func (l *Lighting) eachZoneLight(id string, fn func(*device.LightSwitch)) bool {
	z, ok := l.zone(id)
	if !ok {
		return false
	}
	for _, lightID := range z.Lights {
		if s, ok := l.lights.get(lightID); ok {
			fn(s)
		}
	}
	return true
}

// SetZoneBrightness stores the zone level and drives the dimmers to it.
func (l *Lighting) SetZoneBrightness(id string, level float64) bool {
	l.zoneMu.Lock()
	i := l.zoneIndex(id)
	if i >= 0 {
		l.zones[i].Brightness = max(0, min(100, level))
	}
	l.zoneMu.Unlock()
	if i < 0 {
		return false
	}
	for _, d := range l.dimmers.all() {
		d.Activate()
		d.SetValue(level)
	}
	return true
}

// TargetBrightness maps ambient light to a dimmer level.
func TargetBrightness(lux float64) float64 {
	switch {
	case lux < 100:
		return 100
	case lux < 500:
		return 70
	case lux < 1000:
		return 40
	default:
		return 0
	}
}

// AutoAdjust samples the ambient sensors and sets every dimmer from the
// mean level, switching lights on or off to match. Reports false when no
// sensors are installed.
func (l *Lighting) AutoAdjust() (avgLux, target float64, ok bool) {
	sensors := l.sensors.all()
	if len(sensors) == 0 {
		return 0, 0, false
	}
	var total float64
	for _, s := range sensors {
		r := sample(s)
		total += r.Value
		l.opts.recorder.WriteSensorReading(string(subsystem.CategoryLighting), r.DeviceID, "ambient_lux", r.Value)
	}
	avgLux = total / float64(len(sensors))
	target = TargetBrightness(avgLux)

	for _, d := range l.dimmers.all() {
		d.SetValue(target)
	}
	if target > 0 {
		l.TurnOnAll()
	} else {
		l.TurnOffAll()
	}
	l.opts.logger.Debug("lighting auto adjust", "avg_lux", avgLux, "target", target)
	return avgLux, target, true
}

func (l *Lighting) Report() string {
	dimmers := l.dimmers.all()
	var sum float64
	for _, d := range dimmers {
		sum += d.Value()
	}
	avg := sum / float64(max(1, len(dimmers)))

	return renderReport("LIGHTING MODULE REPORT", []row{
		{"Total Lights", l.lights.len()},
		{"Active Lights", countActive(l.lights.all())},
		{"Light Sensors", l.sensors.len()},
		{"Dimmers", len(dimmers)},
		{"Zones", len(l.Zones())},
		{"Avg Brightness", formatPercent(avg)},
		{"Status", activeLabel(l.IsActive())},
	})
}
