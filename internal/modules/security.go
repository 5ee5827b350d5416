package modules

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/smartcity-core/internal/controller"
	"github.com/nerrad567/smartcity-core/internal/device"
	"github.com/nerrad567/smartcity-core/internal/subsystem"
)

const securitySource = "Security Module"

// Incident types.
const (
	IncidentMotion = "motion"
	IncidentAlarm  = "alarm"
)

// Incident is a security event found by a scan.
type Incident struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Type        string    `json:"type"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Resolved    bool      `json:"resolved"`
}

// Security manages cameras, alarms, gates and the incident list.
type Security struct {
	*subsystem.Security

	opts    options
	factory *device.Factory[*device.Camera, *device.Alarm, *device.Gate]
	cameras handles[*device.Camera]
	alarms  handles[*device.Alarm]
	gates   handles[*device.Gate]

	mu        sync.Mutex
	incidents []Incident
	lockdown  bool
	// alerted holds alarms already escalated; cleared once they reset.
	alerted map[string]bool
}

// NewSecurity creates an empty security module.
func NewSecurity(opts ...Option) *Security {
	o := buildOptions(opts)
	return &Security{
		Security: subsystem.NewSecurity(o.subsystemOptions()...),
		opts:     o,
		factory:  device.SecurityFactory(o.deviceOptions()...),
		alerted:  make(map[string]bool),
	}
}

// Initialize creates the default cameras, alarms and gates.
func (s *Security) Initialize() error {
	for _, d := range [][3]string{
		{"cam-main-1", "Main Entrance Camera", "City Hall Entrance"},
		{"cam-main-2", "Lobby Camera", "City Hall Lobby"},
		{"cam-park-1", "Park Camera North", "Central Park North"},
		{"cam-park-2", "Park Camera South", "Central Park South"},
		{"cam-parking", "Parking Lot Camera", "Underground Parking"},
	} {
		if _, err := s.AddCamera(d[0], d[1], d[2]); err != nil {
			return err
		}
	}
	for _, d := range [][3]string{
		{"alarm-main", "Main Building Alarm", "City Hall"},
		{"alarm-park", "Park Alarm", "Central Park"},
		{"alarm-parking", "Parking Alarm", "Underground Parking"},
	} {
		if _, err := s.AddAlarm(d[0], d[1], d[2]); err != nil {
			return err
		}
	}
	for _, d := range [][3]string{
		{"gate-main", "Main Gate", "City Hall Main Entrance"},
		{"gate-parking", "Parking Gate", "Underground Parking Entry"},
		{"gate-service", "Service Gate", "Service Area"},
	} {
		if _, err := s.AddGate(d[0], d[1], d[2]); err != nil {
			return err
		}
	}
	s.opts.logger.Info("security module initialised", "devices", s.DeviceCount())
	return nil
}

func (s *Security) AddCamera(id, name, location string) (*device.Camera, error) {
	d := s.factory.NewSensor(id, name, location)
	if err := s.AddDevice(d); err != nil {
		return nil, err
	}
	s.cameras.add(d)
	return d, nil
}

func (s *Security) AddAlarm(id, name, location string) (*device.Alarm, error) {
	d := s.factory.NewController(id, name, location)
	if err := s.AddDevice(d); err != nil {
		return nil, err
	}
	s.alarms.add(d)
	return d, nil
}

func (s *Security) AddGate(id, name, location string) (*device.Gate, error) {
	d := s.factory.NewActuator(id, name, location)
	if err := s.AddDevice(d); err != nil {
		return nil, err
	}
	s.gates.add(d)
	return d, nil
}

// RemoveDevice removes the device from the subsystem and the typed handles.
func (s *Security) RemoveDevice(id string) (bool, error) {
	ok, err := s.Security.RemoveDevice(id)
	if ok {
		s.cameras.remove(id)
		s.alarms.remove(id)
		s.gates.remove(id)
	}
	return ok, err
}

func (s *Security) Cameras() []*device.Camera { return s.cameras.all() }
func (s *Security) Alarms() []*device.Alarm   { return s.alarms.all() }
func (s *Security) Gates() []*device.Gate     { return s.gates.all() }

func (s *Security) ActivateAllCameras() {
	for _, c := range s.cameras.all() {
		c.Activate()
	}
}

func (s *Security) ArmAll() {
	for _, a := range s.alarms.all() {
		a.Activate()
		_ = a.Execute("arm")
	}
}

func (s *Security) DisarmAll() {
	for _, a := range s.alarms.all() {
		_ = a.Execute("disarm")
	}
}

// IsLockdown reports whether a lockdown is in force.
func (s *Security) IsLockdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lockdown
}

// ActivateLockdown closes every gate, arms every alarm, activates every
// camera and raises a critical alert.
func (s *Security) ActivateLockdown() {
	s.mu.Lock()
	s.lockdown = true
	s.mu.Unlock()

	for _, g := range s.gates.all() {
		g.Activate()
		g.SetValue(0)
	}
	s.ArmAll()
	s.ActivateAllCameras()
	s.SetAlertMode(true)

	s.opts.logger.Warn("security lockdown activated")
	s.opts.alerts.CreateAlert(securitySource, "LOCKDOWN MODE ACTIVATED", controller.SeverityCritical)
}

// DeactivateLockdown opens every gate and disarms the alarms.
func (s *Security) DeactivateLockdown() {
	s.mu.Lock()
	s.lockdown = false
	s.mu.Unlock()

	for _, g := range s.gates.all() {
		g.SetValue(100)
	}
	s.DisarmAll()
	s.SetAlertMode(false)
	s.opts.logger.Info("security lockdown lifted")
}

// ScanForMotion samples every camera and records an incident for each
// one that detects motion. Returns the new incidents.
func (s *Security) ScanForMotion() []Incident {
	var found []Incident
	for _, c := range s.cameras.all() {
		r := sample(c)
		s.opts.recorder.WriteSensorReading(string(subsystem.CategorySecurity), r.DeviceID, "motion", r.Value)
		if r.Value != 1 {
			continue
		}
		found = append(found, s.addIncident(IncidentMotion, c.Location(), "Motion detected by "+c.Name()))
	}
	return found
}

func (s *Security) addIncident(kind, location, description string) Incident {
	inc := Incident{
		ID:          "INC-" + uuid.NewString()[:8],
		Timestamp:   s.opts.now(),
		Type:        kind,
		Location:    location,
		Description: description,
	}
	s.mu.Lock()
	s.incidents = append(s.incidents, inc)
	s.mu.Unlock()
	return inc
}

// CheckAlarms raises one critical alert and incident per newly triggered
// alarm. Returns how many were raised.
func (s *Security) CheckAlarms() int {
	raised := 0
	for _, a := range s.alarms.all() {
		s.mu.Lock()
		seen := s.alerted[a.ID()]
		if !a.Triggered() {
			delete(s.alerted, a.ID())
			s.mu.Unlock()
			continue
		}
		s.alerted[a.ID()] = true
		s.mu.Unlock()
		if seen {
			continue
		}

		raised++
		msg := fmt.Sprintf("Alarm triggered: %s at %s", a.Name(), a.Location())
		s.addIncident(IncidentAlarm, a.Location(), msg)
		s.opts.alerts.CreateAlert(securitySource, msg, controller.SeverityCritical)
	}
	return raised
}

// ControlAlarm sends a command to an alarm. Reports false if no such alarm.
func (s *Security) ControlAlarm(id, command string) (bool, error) {
	a, ok := s.alarms.get(id)
	if !ok {
		return false, nil
	}
	a.Activate()
	return true, a.Execute(command)
}

// ControlGate opens a gate to pct percent. Opening is refused with
// ErrLockdown during a lockdown; closing is always allowed.
func (s *Security) ControlGate(id string, pct float64) (bool, error) {
	g, ok := s.gates.get(id)
	if !ok {
		return false, nil
	}
	if pct > 0 && s.IsLockdown() {
		return true, fmt.Errorf("%w: cannot open %s", ErrLockdown, id)
	}
	g.Activate()
	g.SetValue(pct)
	return true, nil
}

// Incidents returns every incident in discovery order.
func (s *Security) Incidents() []Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.incidents)
}

// OpenIncidents returns the unresolved incidents.
func (s *Security) OpenIncidents() []Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Incident
	for _, inc := range s.incidents {
		if !inc.Resolved {
			out = append(out, inc)
		}
	}
	return out
}

// ResolveIncident marks an incident resolved. Reports false for an
// unknown id.
func (s *Security) ResolveIncident(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.incidents, func(inc Incident) bool { return inc.ID == id })
	if i < 0 {
		return false
	}
	s.incidents[i].Resolved = true
	return true
}

func (s *Security) Report() string {
	return renderReport("SECURITY MODULE REPORT", []row{
		{"Cameras", s.cameras.len()},
		{"Active Cameras", countActive(s.cameras.all())},
		{"Alarms", s.alarms.len()},
		{"Gates", s.gates.len()},
		{"Unresolved Incidents", len(s.OpenIncidents())},
		{"Lockdown", onOff(s.IsLockdown())},
		{"Status", activeLabel(s.IsActive())},
	})
}
