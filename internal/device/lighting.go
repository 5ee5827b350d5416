package device

// LightSensor measures ambient light.
type LightSensor struct{ sensor }

// NewLightSensor creates an inactive sensor reading 0–9999 lux.
func NewLightSensor(id, name, location string, opts ...Option) *LightSensor {
	s := &LightSensor{}
	s.init(id, name, location, "lux", func(src ValueSource) float64 {
		return float64(src.IntN(10000))
	}, opts)
	return s
}

// LightSwitch turns a group of street lights on and off.
type LightSwitch struct {
	controller
	on bool
}

// NewLightSwitch creates a switch in the off position.
func NewLightSwitch(id, name, location string, opts ...Option) *LightSwitch {
	l := &LightSwitch{}
	l.init(id, name, location, []string{"on", "off", "toggle"}, opts)
	return l
}

// Execute handles on, off and toggle.
func (l *LightSwitch) Execute(command string) error {
	cmd, err := l.normalize(command)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	switch cmd {
	case "on":
		l.on = true
	case "off":
		l.on = false
	case "toggle":
		l.on = !l.on
	}
	return nil
}

// IsOn reports whether the lights are on.
func (l *LightSwitch) IsOn() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.on
}

// Dimmer sets brightness as a percentage.
type Dimmer struct{ actuator }

// NewDimmer creates a dimmer at 0%.
func NewDimmer(id, name, location string, opts ...Option) *Dimmer {
	d := &Dimmer{}
	d.init(id, name, location, 0, opts)
	return d
}
