package device

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// sensor implements Sensor over a sampling function.
type sensor struct {
	base
	unit   string
	last   float64
	sample func(ValueSource) float64
}

func (s *sensor) init(id, name, location, unit string, sample func(ValueSource) float64, opts []Option) {
	s.base.init(id, name, location, KindSensor, opts)
	s.unit = unit
	s.sample = sample
}

// ReadValue takes a new reading.
func (s *sensor) ReadValue() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = s.sample(s.source)
	return s.last
}

// LastValue returns the most recent reading without sampling.
func (s *sensor) LastValue() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *sensor) Unit() string { return s.unit }

// Calibrate resets the stored reading.
func (s *sensor) Calibrate() {
	s.mu.Lock()
	s.last = 0
	s.mu.Unlock()
}

// actuator implements Actuator with a clamped value.
type actuator struct {
	base
	value float64
	rng   Range
}

func (a *actuator) init(id, name, location string, initial float64, opts []Option) {
	a.base.init(id, name, location, KindActuator, opts)
	a.rng = percentRange
	a.value = a.rng.Clamp(initial)
}

// SetValue stores v clamped to Range. NaN is ignored and the previous
// value kept.
func (a *actuator) SetValue(v float64) {
	if math.IsNaN(v) {
		return
	}
	a.mu.Lock()
	a.value = a.rng.Clamp(v)
	a.mu.Unlock()
}

func (a *actuator) Value() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.value
}

func (a *actuator) Range() Range { return a.rng }

// controller holds the shared vocabulary handling of Controller devices.
type controller struct {
	base
	commands []string
}

func (c *controller) init(id, name, location string, commands []string, opts []Option) {
	c.base.init(id, name, location, KindController, opts)
	c.commands = commands
}

// Commands returns a copy of the vocabulary.
func (c *controller) Commands() []string {
	return slices.Clone(c.commands)
}

// normalize lower-cases cmd and checks it against the vocabulary.
func (c *controller) normalize(cmd string) (string, error) {
	cmd = strings.ToLower(strings.TrimSpace(cmd))
	if !slices.Contains(c.commands, cmd) {
		return "", fmt.Errorf("%w: %q for %s", ErrUnknownCommand, cmd, c.id)
	}
	return cmd, nil
}
