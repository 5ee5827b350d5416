package device

import (
	"fmt"
	"math"
)

// Kind is the capability set a device implements.
type Kind string

// Kind constants.
const (
	KindSensor     Kind = "sensor"
	KindController Kind = "controller"
	KindActuator   Kind = "actuator"
)

// Status is the operational state of a device.
type Status string

// Status constants.
const (
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusMaintenance Status = "maintenance"
	StatusError       Status = "error"
)

// AllStatuses returns every valid status.
func AllStatuses() []Status {
	return []Status{StatusActive, StatusInactive, StatusMaintenance, StatusError}
}

// ParseStatus converts a string to a Status.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("device: invalid status %q", s)
}

// Device is the identity and lifecycle contract shared by every device.
type Device interface {
	ID() string
	Name() string
	Location() string
	Kind() Kind
	Status() Status
	SetStatus(Status)
	Activate()
	Deactivate()
	// Owner returns the name of the subsystem holding the device, or "".
	Owner() string
	Info() string
}

// Sensor exposes a readable numeric value.
type Sensor interface {
	Device
	ReadValue() float64
	Unit() string
	Calibrate()
}

// Controller executes commands from a fixed vocabulary.
type Controller interface {
	Device
	Execute(command string) error
	Commands() []string
}

// Actuator exposes a settable value clamped to Range.
type Actuator interface {
	Device
	SetValue(v float64)
	Value() float64
	Range() Range
}

// Range is the inclusive bounds of an actuator value.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp limits v to the range. NaN has no position in the range and
// clamps to Min.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Min
	}
	return max(r.Min, min(r.Max, v))
}

// percentRange is the range every simulated actuator declares.
var percentRange = Range{Min: 0, Max: 100}
