package modules

import (
	"strings"
	"testing"

	"github.com/nerrad567/smartcity-core/internal/device"
)

func newTestLighting(t *testing.T, src *varSource) (*Lighting, *pointLog) {
	t.Helper()
	points := &pointLog{}
	m := NewLighting(WithSource(src), WithRecorder(points))
	if err := m.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return m, points
}

func TestLighting_Initialize(t *testing.T) {
	m, _ := newTestLighting(t, &varSource{})

	if m.DeviceCount() != 9 {
		t.Errorf("DeviceCount() = %d, want 9", m.DeviceCount())
	}
	zones := m.Zones()
	if len(zones) != 2 || zones[0].ID != "zone-main" || len(zones[0].Lights) != 3 {
		t.Errorf("Zones() = %+v", zones)
	}
}

func TestTargetBrightness(t *testing.T) {
	tests := map[float64]float64{0: 100, 99: 100, 100: 70, 499: 70, 500: 40, 999: 40, 1000: 0, 9999: 0}
	for lux, want := range tests {
		if got := TargetBrightness(lux); got != want {
			t.Errorf("TargetBrightness(%v) = %v, want %v", lux, got, want)
		}
	}
}

func TestLighting_AutoAdjust(t *testing.T) {
	src := &varSource{n: 50}
	m, points := newTestLighting(t, src)

	lux, target, ok := m.AutoAdjust()
	if !ok || lux != 50 || target != 100 {
		t.Fatalf("AutoAdjust() = %v, %v, %v", lux, target, ok)
	}
	for _, l := range m.Lights() {
		if !l.IsOn() || l.Status() != device.StatusActive {
			t.Errorf("%s not switched on", l.ID())
		}
	}
	for _, d := range m.Dimmers() {
		if d.Value() != 100 {
			t.Errorf("%s = %v, want 100", d.ID(), d.Value())
		}
	}
	if len(points.points) != 2 {
		t.Errorf("recorded %d points, want 2", len(points.points))
	}

	src.n = 5000
	if _, target, _ := m.AutoAdjust(); target != 0 {
		t.Fatalf("bright day target = %v, want 0", target)
	}
	for _, l := range m.Lights() {
		if l.IsOn() || l.Status() != device.StatusInactive {
			t.Errorf("%s still on in daylight", l.ID())
		}
	}
}

func TestLighting_AutoAdjustNoSensors(t *testing.T) {
	m := NewLighting()
	if _, _, ok := m.AutoAdjust(); ok {
		t.Error("AutoAdjust() without sensors reported ok")
	}
}

func TestLighting_Zones(t *testing.T) {
	m, _ := newTestLighting(t, &varSource{})

	if m.ActivateZone("zone-none") {
		t.Error("ActivateZone(unknown) = true")
	}
	if !m.ActivateZone("zone-park") {
		t.Fatal("ActivateZone(zone-park) = false")
	}
	on := 0
	for _, l := range m.Lights() {
		if l.IsOn() {
			on++
		}
	}
	if on != 2 {
		t.Errorf("lights on = %d, want 2", on)
	}

	if !m.DeactivateZone("zone-park") {
		t.Fatal("DeactivateZone() = false")
	}
	for _, l := range m.Lights() {
		if l.IsOn() {
			t.Errorf("%s still on", l.ID())
		}
	}

	if m.SetZoneBrightness("zone-none", 10) {
		t.Error("SetZoneBrightness(unknown) = true")
	}
	if !m.SetZoneBrightness("zone-main", 140) {
		t.Fatal("SetZoneBrightness() = false")
	}
	if z := m.Zones()[0]; z.Brightness != 100 {
		t.Errorf("zone brightness = %v, want 100", z.Brightness)
	}

	m.CreateZone(Zone{ID: "zone-main", Name: "Main Replaced"})
	if zs := m.Zones(); len(zs) != 2 || zs[0].Name != "Main Replaced" {
		t.Errorf("CreateZone() replace = %+v", zs)
	}
}

func TestLighting_Report(t *testing.T) {
	m, _ := newTestLighting(t, &varSource{})
	m.SetZoneBrightness("zone-main", 60)
	m.TurnOnAll()

	r := m.Report()
	for _, want := range []string{"Total Lights: 5", "Active Lights: 5", "Zones: 2", "Avg Brightness: 60%"} {
		if !strings.Contains(r, want) {
			t.Errorf("Report() missing %q:\n%s", want, r)
		}
	}
}
