package sysconfig

import (
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/smartcity-core/internal/subsystem"
)

func TestBuilder_Defaults(t *testing.T) {
	cfg, err := NewBuilder().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if cfg.CityName != "SmartCity" || cfg.Timezone != "UTC" || cfg.EnergySaving {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Thresholds != DefaultThresholds() {
		t.Errorf("Thresholds = %+v, want %+v", cfg.Thresholds, DefaultThresholds())
	}
	if len(cfg.Subsystems) != 4 {
		t.Fatalf("Subsystems len = %d, want 4", len(cfg.Subsystems))
	}
	if got := cfg.EnabledSubsystems(); len(got) != 0 {
		t.Errorf("EnabledSubsystems() = %v, want none", got)
	}
}

func TestBuilder_RoundTrip(t *testing.T) {
	cfg, err := NewBuilder().
		CityName("Samarkand").
		Timezone("Asia/Samarkand").
		EnableSubsystem(subsystem.CategoryEnergy, map[string]any{"grid": "north"}).
		EnableSubsystem(subsystem.CategoryTransport, nil).
		EnergySaving(true).
		TemperatureRange(-5, 38).
		MaxEnergy(12000).
		MaxTraffic(70).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if cfg.CityName != "Samarkand" || cfg.Timezone != "Asia/Samarkand" || !cfg.EnergySaving {
		t.Errorf("cfg = %+v", cfg)
	}
	want := Thresholds{Temperature: TemperatureRange{Min: -5, Max: 38}, MaxEnergy: 12000, MaxTraffic: 70}
	if cfg.Thresholds != want {
		t.Errorf("Thresholds = %+v, want %+v", cfg.Thresholds, want)
	}

	enabled := cfg.EnabledSubsystems()
	if len(enabled) != 2 || enabled[0] != subsystem.CategoryTransport || enabled[1] != subsystem.CategoryEnergy {
		t.Errorf("EnabledSubsystems() = %v, want canonical [transport energy]", enabled)
	}
	energy, _ := cfg.Subsystem(subsystem.CategoryEnergy)
	if energy.Settings["grid"] != "north" {
		t.Errorf("energy settings = %v", energy.Settings)
	}
}

func TestBuilder_DisableAndSettings(t *testing.T) {
	cfg, err := NewBuilder().
		EnableAll().
		DisableSubsystem(subsystem.CategorySecurity).
		SubsystemSettings(subsystem.CategoryLighting, map[string]any{"a": 1}).
		SubsystemSettings(subsystem.CategoryLighting, map[string]any{"b": 2}).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if cfg.IsEnabled(subsystem.CategorySecurity) {
		t.Error("security should be disabled")
	}
	lighting, _ := cfg.Subsystem(subsystem.CategoryLighting)
	if !lighting.Enabled || lighting.Settings["a"] != 1 || lighting.Settings["b"] != 2 {
		t.Errorf("lighting = %+v, want enabled with merged settings", lighting)
	}
}

func TestBuilder_Validation(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder) *Builder
		want  string
	}{
		{"empty city", func(b *Builder) *Builder { return b.CityName("  ") }, "city name"},
		{"bad timezone", func(b *Builder) *Builder { return b.Timezone("Mars/Olympus") }, "timezone"},
		{"empty timezone", func(b *Builder) *Builder { return b.Timezone("") }, "timezone"},
		{"inverted range", func(b *Builder) *Builder { return b.TemperatureRange(40, -10) }, "temperature"},
		{"zero energy", func(b *Builder) *Builder { return b.MaxEnergy(0) }, "max energy"},
		{"traffic over 100", func(b *Builder) *Builder { return b.MaxTraffic(150) }, "max traffic"},
		{"unknown subsystem", func(b *Builder) *Builder { return b.EnableSubsystem("water", nil) }, "water"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build(NewBuilder()).Build()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Build() error = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Build() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestBuilder_BuildIsIndependent(t *testing.T) {
	settings := map[string]any{"maxBrightness": 70}
	b := NewBuilder().EnableSubsystem(subsystem.CategoryLighting, settings)
	cfg, _ := b.Build()

	settings["maxBrightness"] = 10
	b.SubsystemSettings(subsystem.CategoryLighting, map[string]any{"maxBrightness": 20})

	lighting, _ := cfg.Subsystem(subsystem.CategoryLighting)
	if lighting.Settings["maxBrightness"] != 70 {
		t.Errorf("built config changed to %v after builder mutation", lighting.Settings["maxBrightness"])
	}
}

func TestSystemConfig_Clone(t *testing.T) {
	cfg, _ := NewBuilder().EnableSubsystem(subsystem.CategoryEnergy, map[string]any{
		"nested": map[string]any{"k": "v"},
		"list":   []any{"a"},
	}).Build()

	cpy := cfg.Clone()
	cpy.Subsystems[3].Settings["nested"].(map[string]any)["k"] = "changed"
	cpy.Subsystems[3].Settings["list"].([]any)[0] = "changed"
	cpy.Subsystems[0].Enabled = true

	energy, _ := cfg.Subsystem(subsystem.CategoryEnergy)
	if energy.Settings["nested"].(map[string]any)["k"] != "v" || energy.Settings["list"].([]any)[0] != "a" {
		t.Error("Clone() shared nested settings")
	}
	if cfg.Subsystems[0].Enabled {
		t.Error("Clone() shared the subsystems slice")
	}
}

func TestBuilder_Preview(t *testing.T) {
	p := NewBuilder().CityName("Bukhara").EnableSubsystem(subsystem.CategorySecurity, nil).Preview()
	for _, want := range []string{"City: Bukhara", "security: enabled", "energy: disabled"} {
		if !strings.Contains(p, want) {
			t.Errorf("Preview() missing %q:\n%s", want, p)
		}
	}
}

func TestTemperatureRange_Contains(t *testing.T) {
	r := TemperatureRange{Min: -10, Max: 40}
	for v, want := range map[float64]bool{-11: false, -10: true, 20: true, 40: true, 41: false} {
		if r.Contains(v) != want {
			t.Errorf("Contains(%v) = %v, want %v", v, !want, want)
		}
	}
}
