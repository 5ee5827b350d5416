package device

// Camera reports motion as 1 (detected) or 0.
type Camera struct{ sensor }

// motionProbability is the chance a simulated camera sees motion on a read.
const motionProbability = 0.3

// NewCamera creates an inactive security camera.
func NewCamera(id, name, location string, opts ...Option) *Camera {
	c := &Camera{}
	c.init(id, name, location, "motion (0/1)", func(src ValueSource) float64 {
		if src.Float64() > 1-motionProbability {
			return 1
		}
		return 0
	}, opts)
	return c
}

// Alarm is an armable intrusion alarm. Trigger only fires while armed.
type Alarm struct {
	controller
	armed     bool
	triggered bool
}

// NewAlarm creates a disarmed alarm.
func NewAlarm(id, name, location string, opts ...Option) *Alarm {
	a := &Alarm{}
	a.init(id, name, location, []string{"arm", "disarm", "trigger", "reset"}, opts)
	return a
}

// Execute handles arm, disarm, trigger and reset.
func (a *Alarm) Execute(command string) error {
	cmd, err := a.normalize(command)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	switch cmd {
	case "arm":
		a.armed = true
	case "disarm":
		a.armed = false
		a.triggered = false
	case "trigger":
		if a.armed {
			a.triggered = true
		}
	case "reset":
		a.triggered = false
	}
	return nil
}

// Armed reports whether the alarm is armed.
func (a *Alarm) Armed() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.armed
}

// Triggered reports whether the alarm has fired and not been reset.
func (a *Alarm) Triggered() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.triggered
}

// Gate is an access gate whose value is the percentage open.
type Gate struct{ actuator }

// NewGate creates a closed gate.
func NewGate(id, name, location string, opts ...Option) *Gate {
	g := &Gate{}
	g.init(id, name, location, 0, opts)
	return g
}
