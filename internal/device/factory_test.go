package device

import (
	"errors"
	"testing"
)

func TestTypedFactories(t *testing.T) {
	// The typed factories return concrete types; these calls would not
	// compile if they returned interfaces.
	light := TransportFactory().NewController("TL-1", "light", "x")
	_ = light.Phase()

	sw := LightingFactory().NewController("LC-1", "switch", "x")
	_ = sw.IsOn()

	alarm := SecurityFactory().NewController("AL-1", "alarm", "x")
	_ = alarm.Armed()

	pc := EnergyFactory().NewController("PC-1", "pc", "x")
	_ = pc.Mode()
}

func TestFactoryFor(t *testing.T) {
	tests := []struct {
		category       string
		sensorUnit     string
		controllerCmds int
	}{
		{CategoryTransport, "vehicles/min", 3},
		{CategoryLighting, "lux", 3},
		{CategorySecurity, "motion (0/1)", 4},
		{CategoryEnergy, "kWh", 3},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			f, err := FactoryFor(tt.category)
			if err != nil {
				t.Fatalf("FactoryFor() error = %v", err)
			}
			if f.Category() != tt.category {
				t.Errorf("Category() = %q", f.Category())
			}

			s := f.Sensor("S", "sensor", "loc")
			if s.Kind() != KindSensor || s.Unit() != tt.sensorUnit {
				t.Errorf("Sensor() kind=%q unit=%q", s.Kind(), s.Unit())
			}

			c := f.Controller("C", "controller", "loc")
			if c.Kind() != KindController || len(c.Commands()) != tt.controllerCmds {
				t.Errorf("Controller() kind=%q commands=%v", c.Kind(), c.Commands())
			}

			a := f.Actuator("A", "actuator", "loc")
			if a.Kind() != KindActuator {
				t.Errorf("Actuator() kind=%q", a.Kind())
			}
		})
	}
}

func TestFactoryFor_Unknown(t *testing.T) {
	_, err := FactoryFor("water")
	if !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("FactoryFor(water) error = %v, want ErrUnknownCategory", err)
	}
}

func TestFactoryOptionsApplied(t *testing.T) {
	f := EnergyFactory(WithSource(fixedSource{n: 0}))
	if got := f.NewSensor("PM", "meter", "x").ReadValue(); got != 100 {
		t.Errorf("ReadValue() with fixed source = %v, want 100", got)
	}
}
