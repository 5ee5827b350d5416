package device

// TrafficSensor counts vehicles passing per minute.
type TrafficSensor struct{ sensor }

// NewTrafficSensor creates an inactive traffic counter reading 0–99 vehicles/min.
func NewTrafficSensor(id, name, location string, opts ...Option) *TrafficSensor {
	s := &TrafficSensor{}
	s.init(id, name, location, "vehicles/min", func(src ValueSource) float64 {
		return float64(src.IntN(100))
	}, opts)
	return s
}

// Traffic light phases.
const (
	PhaseGreen  = "green"
	PhaseYellow = "yellow"
	PhaseRed    = "red"
)

// TrafficLight cycles between green, yellow and red. It starts red.
type TrafficLight struct {
	controller
	phase string
}

// NewTrafficLight creates an inactive traffic light showing red.
func NewTrafficLight(id, name, location string, opts ...Option) *TrafficLight {
	l := &TrafficLight{phase: PhaseRed}
	l.init(id, name, location, []string{PhaseGreen, PhaseYellow, PhaseRed}, opts)
	return l
}

// Execute switches the light to the named phase.
func (l *TrafficLight) Execute(command string) error {
	phase, err := l.normalize(command)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.phase = phase
	l.mu.Unlock()
	return nil
}

// Phase returns the current phase.
func (l *TrafficLight) Phase() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.phase
}

// TrafficBarrier is a road barrier whose value is the percentage open.
type TrafficBarrier struct{ actuator }

// NewTrafficBarrier creates a closed barrier.
func NewTrafficBarrier(id, name, location string, opts ...Option) *TrafficBarrier {
	b := &TrafficBarrier{}
	b.init(id, name, location, 0, opts)
	return b
}
