package device

import (
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
)

// fixedSource returns the same values on every draw.
type fixedSource struct {
	n int
	f float64
}

func (s fixedSource) IntN(n int) int {
	if s.n >= n {
		return n - 1
	}
	return s.n
}
func (s fixedSource) Float64() float64 { return s.f }

func TestNewDevicesStartInactive(t *testing.T) {
	devices := []Device{
		NewTrafficSensor("TS-1", "counter", "Main St"),
		NewTrafficLight("TL-1", "light", "Main St"),
		NewTrafficBarrier("TB-1", "barrier", "Main St"),
		NewLightSensor("LS-1", "lux", "Park"),
		NewLightSwitch("LC-1", "switch", "Park"),
		NewDimmer("DM-1", "dimmer", "Park"),
		NewCamera("CAM-1", "camera", "Plaza"),
		NewAlarm("AL-1", "alarm", "Plaza"),
		NewGate("GT-1", "gate", "Plaza"),
		NewPowerMeter("PM-1", "meter", "Grid"),
		NewPowerController("PC-1", "controller", "Grid"),
		NewPowerRegulator("PR-1", "regulator", "Grid"),
	}

	for _, d := range devices {
		t.Run(d.ID(), func(t *testing.T) {
			if d.Status() != StatusInactive {
				t.Errorf("Status() = %q, want %q", d.Status(), StatusInactive)
			}
			if d.Owner() != "" {
				t.Errorf("Owner() = %q, want empty", d.Owner())
			}
		})
	}
}

func TestActivateDeactivate(t *testing.T) {
	d := NewGate("GT-1", "North gate", "North")

	d.Activate()
	if d.Status() != StatusActive {
		t.Errorf("after Activate() Status() = %q", d.Status())
	}
	d.Deactivate()
	if d.Status() != StatusInactive {
		t.Errorf("after Deactivate() Status() = %q", d.Status())
	}
	d.SetStatus(StatusMaintenance)
	if d.Status() != StatusMaintenance {
		t.Errorf("after SetStatus() Status() = %q", d.Status())
	}
}

func TestInfo(t *testing.T) {
	d := NewTrafficSensor("TS-001", "Main St counter", "Main St")
	d.Activate()

	want := "[sensor] Main St counter (TS-001) - active @ Main St"
	if got := d.Info(); got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus("maintenance"); err != nil || s != StatusMaintenance {
		t.Errorf("ParseStatus(maintenance) = %q, %v", s, err)
	}
	if _, err := ParseStatus("exploded"); err == nil {
		t.Error("ParseStatus(exploded) expected error")
	}
}

func TestSensorRanges(t *testing.T) {
	src := rand.New(rand.NewPCG(1, 2))

	tests := []struct {
		name     string
		sensor   Sensor
		unit     string
		min, max float64
	}{
		{"traffic", NewTrafficSensor("TS", "t", "x", WithSource(src)), "vehicles/min", 0, 99},
		{"light", NewLightSensor("LS", "l", "x", WithSource(src)), "lux", 0, 9999},
		{"camera", NewCamera("CAM", "c", "x", WithSource(src)), "motion (0/1)", 0, 1},
		{"meter", NewPowerMeter("PM", "m", "x", WithSource(src)), "kWh", 100, 599},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.sensor.Unit() != tt.unit {
				t.Errorf("Unit() = %q, want %q", tt.sensor.Unit(), tt.unit)
			}
			for range 200 {
				v := tt.sensor.ReadValue()
				if v < tt.min || v > tt.max {
					t.Fatalf("ReadValue() = %v, outside [%v, %v]", v, tt.min, tt.max)
				}
			}
		})
	}
}

func TestSensorCalibrate(t *testing.T) {
	s := NewPowerMeter("PM-1", "meter", "Grid", WithSource(fixedSource{n: 250}))

	if got := s.ReadValue(); got != 350 {
		t.Fatalf("ReadValue() = %v, want 350", got)
	}
	if got := s.LastValue(); got != 350 {
		t.Errorf("LastValue() = %v, want 350", got)
	}
	s.Calibrate()
	if got := s.LastValue(); got != 0 {
		t.Errorf("LastValue() after Calibrate() = %v, want 0", got)
	}
}

func TestCameraMotion(t *testing.T) {
	if got := NewCamera("C", "c", "x", WithSource(fixedSource{f: 0.9})).ReadValue(); got != 1 {
		t.Errorf("ReadValue() with draw 0.9 = %v, want 1", got)
	}
	if got := NewCamera("C", "c", "x", WithSource(fixedSource{f: 0.5})).ReadValue(); got != 0 {
		t.Errorf("ReadValue() with draw 0.5 = %v, want 0", got)
	}
}

func TestActuatorClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-10, 0},
		{0, 0},
		{42.5, 42.5},
		{100, 100},
		{250, 100},
		{math.Inf(1), 100},
		{math.Inf(-1), 0},
	}

	actuators := []Actuator{
		NewTrafficBarrier("TB", "b", "x"),
		NewDimmer("DM", "d", "x"),
		NewGate("GT", "g", "x"),
		NewPowerRegulator("PR", "r", "x"),
	}

	for _, a := range actuators {
		if r := a.Range(); r.Min != 0 || r.Max != 100 {
			t.Errorf("%s Range() = %+v, want 0..100", a.ID(), r)
		}
		for _, tt := range tests {
			a.SetValue(tt.in)
			if got := a.Value(); got != tt.want {
				t.Errorf("%s SetValue(%v) -> Value() = %v, want %v", a.ID(), tt.in, got, tt.want)
			}
		}
	}
}

func TestRangeClamp(t *testing.T) {
	r := Range{Min: 0, Max: 100}
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"inside", 55, 55},
		{"below", -1, 0},
		{"above", 101, 100},
		{"positive infinity", math.Inf(1), 100},
		{"negative infinity", math.Inf(-1), 0},
		{"NaN", math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Clamp(tt.in); got != tt.want {
				t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestActuatorSetValueIgnoresNaN(t *testing.T) {
	g := NewGate("GT", "g", "x")
	g.SetValue(40)
	g.SetValue(math.NaN())
	if got := g.Value(); got != 40 {
		t.Errorf("Value() after SetValue(NaN) = %v, want 40", got)
	}
	if r := g.Range(); g.Value() < r.Min || g.Value() > r.Max {
		t.Errorf("Value() %v outside %+v", g.Value(), r)
	}
}

func TestActuatorInitialValues(t *testing.T) {
	if got := NewPowerRegulator("PR", "r", "x").Value(); got != 100 {
		t.Errorf("PowerRegulator initial Value() = %v, want 100", got)
	}
	if got := NewDimmer("DM", "d", "x").Value(); got != 0 {
		t.Errorf("Dimmer initial Value() = %v, want 0", got)
	}
}

func TestTrafficLight(t *testing.T) {
	l := NewTrafficLight("TL-1", "light", "x")
	if l.Phase() != PhaseRed {
		t.Fatalf("initial Phase() = %q, want red", l.Phase())
	}

	if err := l.Execute("GREEN"); err != nil {
		t.Fatalf("Execute(GREEN) error = %v", err)
	}
	if l.Phase() != PhaseGreen {
		t.Errorf("Phase() = %q, want green", l.Phase())
	}

	err := l.Execute("blue")
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Execute(blue) error = %v, want ErrUnknownCommand", err)
	}
	if l.Phase() != PhaseGreen {
		t.Errorf("unknown command changed phase to %q", l.Phase())
	}
}

func TestLightSwitch(t *testing.T) {
	l := NewLightSwitch("LC-1", "switch", "x")

	steps := []struct {
		cmd  string
		want bool
	}{
		{"on", true},
		{"toggle", false},
		{"toggle", true},
		{"off", false},
	}
	for _, s := range steps {
		if err := l.Execute(s.cmd); err != nil {
			t.Fatalf("Execute(%q) error = %v", s.cmd, err)
		}
		if l.IsOn() != s.want {
			t.Errorf("after %q IsOn() = %v, want %v", s.cmd, l.IsOn(), s.want)
		}
	}
}

func TestAlarm(t *testing.T) {
	a := NewAlarm("AL-1", "alarm", "x")

	_ = a.Execute("trigger")
	if a.Triggered() {
		t.Error("disarmed alarm should not trigger")
	}

	_ = a.Execute("arm")
	_ = a.Execute("trigger")
	if !a.Armed() || !a.Triggered() {
		t.Errorf("armed=%v triggered=%v, want both true", a.Armed(), a.Triggered())
	}

	_ = a.Execute("reset")
	if a.Triggered() || !a.Armed() {
		t.Errorf("after reset armed=%v triggered=%v", a.Armed(), a.Triggered())
	}

	_ = a.Execute("trigger")
	_ = a.Execute("disarm")
	if a.Triggered() || a.Armed() {
		t.Errorf("after disarm armed=%v triggered=%v", a.Armed(), a.Triggered())
	}
}

func TestPowerController(t *testing.T) {
	p := NewPowerController("PC-1", "pc", "x")
	if p.Mode() != PowerNormal {
		t.Fatalf("initial Mode() = %q", p.Mode())
	}
	if err := p.Execute(" Saving "); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if p.Mode() != PowerSaving {
		t.Errorf("Mode() = %q, want saving", p.Mode())
	}
}

func TestCommandsIsACopy(t *testing.T) {
	p := NewPowerController("PC-1", "pc", "x")
	cmds := p.Commands()
	cmds[0] = "overload"

	if err := p.Execute("normal"); err != nil {
		t.Errorf("vocabulary mutated through Commands(): %v", err)
	}
}

// holder is a named owner compared by pointer.
type holder struct{ name string }

func (h *holder) Name() string { return h.name }

func TestAttachDetach(t *testing.T) {
	d := NewDimmer("DM-1", "dimmer", "x")
	lighting := &holder{"Street Lighting"}
	energy := &holder{"Energy Management"}

	if err := Attach(d, lighting); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if d.Owner() != "Street Lighting" {
		t.Errorf("Owner() = %q", d.Owner())
	}
	if err := Attach(d, lighting); err != nil {
		t.Errorf("re-attaching to the same owner error = %v", err)
	}

	err := Attach(d, energy)
	if !errors.Is(err, ErrAlreadyAttached) {
		t.Errorf("Attach() to second owner error = %v, want ErrAlreadyAttached", err)
	}
	if !strings.Contains(err.Error(), "Street Lighting") {
		t.Errorf("error %q should name the current owner", err)
	}

	Detach(d)
	if d.Owner() != "" {
		t.Errorf("Owner() after Detach() = %q, want empty", d.Owner())
	}
	if err := Attach(d, energy); err != nil {
		t.Errorf("Attach() after Detach() error = %v", err)
	}
}

func TestAttach_SameNameDifferentHolders(t *testing.T) {
	d := NewCamera("CAM-1", "camera", "x")
	first, second := &holder{"Same"}, &holder{"Same"}

	if err := Attach(d, first); err != nil {
		t.Fatalf("Attach(first) error = %v", err)
	}
	if err := Attach(d, second); !errors.Is(err, ErrAlreadyAttached) {
		t.Errorf("Attach(second) error = %v, want ErrAlreadyAttached", err)
	}
}

func TestAttach_NilHolder(t *testing.T) {
	if err := Attach(NewGate("GT", "g", "x"), nil); !errors.Is(err, ErrNoHolder) {
		t.Errorf("Attach(nil) error = %v, want ErrNoHolder", err)
	}
}

// foreignDevice implements Device without embedding base.
type foreignDevice struct{ Device }

func TestAttachForeignDevice(t *testing.T) {
	err := Attach(foreignDevice{}, &holder{"x"})
	if !errors.Is(err, ErrNotAttachable) {
		t.Errorf("Attach(foreign) error = %v, want ErrNotAttachable", err)
	}
}
