package sysconfig

import (
	"fmt"

	"github.com/nerrad567/smartcity-core/internal/infrastructure/config"
	"github.com/nerrad567/smartcity-core/internal/subsystem"
)

// Preset names accepted by Director.Preset.
const (
	PresetMinimal  = "minimal"
	PresetFull     = "full"
	PresetEco      = "eco"
	PresetSecurity = "security"
	PresetCustom   = "custom"
)

// Director builds the standard configurations.
type Director struct {
	b *Builder
}

// NewDirector returns a director driving its own builder.
func NewDirector() *Director {
	return &Director{b: NewBuilder()}
}

// Minimal enables transport and lighting with energy saving on.
func (d *Director) Minimal(city string) (SystemConfig, error) {
	return d.b.Reset().
		CityName(city).
		EnableSubsystem(subsystem.CategoryTransport, nil).
		EnableSubsystem(subsystem.CategoryLighting, nil).
		EnergySaving(true).
		Build()
}

// Full enables everything with tightened thresholds.
func (d *Director) Full(city string) (SystemConfig, error) {
	return d.b.Reset().
		CityName(city).
		Timezone("Asia/Tashkent").
		EnableAll().
		EnergySaving(false).
		TemperatureRange(-10, 40).
		MaxEnergy(15000).
		MaxTraffic(85).
		Build()
}

// Eco enables everything with a low energy ceiling and dimmed lighting.
func (d *Director) Eco(city string) (SystemConfig, error) {
	return d.b.Reset().
		CityName(city).
		EnableAll().
		EnergySaving(true).
		MaxEnergy(5000).
		SubsystemSettings(subsystem.CategoryLighting, map[string]any{"autoDimming": true, "maxBrightness": 70}).
		SubsystemSettings(subsystem.CategoryEnergy, map[string]any{"solarPanelsEnabled": true}).
		Build()
}

// Security enables security, lighting and energy with surveillance settings.
func (d *Director) Security(city string) (SystemConfig, error) {
	return d.b.Reset().
		CityName(city).
		EnableSubsystem(subsystem.CategorySecurity, map[string]any{
			"alertLevel": "high", "autoLock": true, "recordingEnabled": true,
		}).
		EnableSubsystem(subsystem.CategoryLighting, map[string]any{"alwaysOn": true}).
		EnableSubsystem(subsystem.CategoryEnergy, nil).
		SubsystemSettings(subsystem.CategorySecurity, map[string]any{
			"motionDetection": true, "facialRecognition": true,
		}).
		Build()
}

// FromConfig builds the configuration described by the YAML city section.
// Named presets are applied first; timezone, energy saving and non-zero
// thresholds from cfg are then layered on top. The custom preset starts
// from builder defaults and enables exactly the listed subsystems.
func (d *Director) FromConfig(cfg config.CityConfig) (SystemConfig, error) {
	var (
		base SystemConfig
		err  error
	)
	switch cfg.Preset {
	case PresetMinimal, "":
		base, err = d.Minimal(cfg.Name)
	case PresetFull:
		base, err = d.Full(cfg.Name)
	case PresetEco:
		base, err = d.Eco(cfg.Name)
	case PresetSecurity:
		base, err = d.Security(cfg.Name)
	case PresetCustom:
		d.b.Reset().CityName(cfg.Name)
		for name, settings := range cfg.Subsystems {
			d.b.EnableSubsystem(subsystem.Category(name), settings)
		}
		base, err = d.b.Build()
	default:
		return SystemConfig{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, cfg.Preset)
	}
	if err != nil {
		return SystemConfig{}, err
	}

	b := d.fromSystemConfig(base)
	if cfg.Timezone != "" {
		b.Timezone(cfg.Timezone)
	}
	if cfg.EnergySaving {
		b.EnergySaving(true)
	}
	t := cfg.Thresholds
	lo, hi := base.Thresholds.Temperature.Min, base.Thresholds.Temperature.Max
	if t.TemperatureMin != nil {
		lo = *t.TemperatureMin
	}
	if t.TemperatureMax != nil {
		hi = *t.TemperatureMax
	}
	b.TemperatureRange(lo, hi)
	if t.MaxEnergy > 0 {
		b.MaxEnergy(t.MaxEnergy)
	}
	if t.MaxTraffic > 0 {
		b.MaxTraffic(t.MaxTraffic)
	}
	return b.Build()
}

// fromSystemConfig loads cfg back into the director's builder.
func (d *Director) fromSystemConfig(cfg SystemConfig) *Builder {
	b := d.b.Reset().
		CityName(cfg.CityName).
		Timezone(cfg.Timezone).
		EnergySaving(cfg.EnergySaving).
		Thresholds(cfg.Thresholds)
	for _, s := range cfg.Subsystems {
		if s.Enabled {
			b.EnableSubsystem(s.Category, s.Settings)
		} else {
			b.SubsystemSettings(s.Category, s.Settings)
		}
	}
	return b
}
