package modules

import (
	"sync"

	"github.com/nerrad567/smartcity-core/internal/controller"
)

// varSource returns n from IntN (clamped to the bound) and f from Float64.
// Tests change the fields between calls.
type varSource struct {
	n int
	f float64
}

func (s *varSource) IntN(bound int) int {
	if s.n >= bound {
		return bound - 1
	}
	return s.n
}

func (s *varSource) Float64() float64 { return s.f }

type alertLog struct {
	mu     sync.Mutex
	alerts []controller.Alert
}

func (a *alertLog) CreateAlert(source, message string, severity controller.Severity) controller.Alert {
	a.mu.Lock()
	defer a.mu.Unlock()
	al := controller.Alert{Source: source, Message: message, Severity: severity}
	a.alerts = append(a.alerts, al)
	return al
}

type point struct {
	subsystem, deviceID, measurement string
	value                            float64
}

type pointLog struct {
	points []point
}

func (p *pointLog) WriteSensorReading(subsystem, deviceID, measurement string, value float64) {
	p.points = append(p.points, point{subsystem, deviceID, measurement, value})
}
