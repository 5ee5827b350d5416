package sysconfig

import (
	"fmt"
	"maps"
	"strings"
	"time"
	_ "time/tzdata" // zone names must resolve on hosts without zoneinfo

	"github.com/nerrad567/smartcity-core/internal/subsystem"
)

// Builder defaults.
const (
	DefaultCityName = "SmartCity"
	DefaultTimezone = "UTC"
)

// DefaultThresholds returns the thresholds a fresh Builder starts with.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Temperature: TemperatureRange{Min: -20, Max: 45},
		MaxEnergy:   10000,
		MaxTraffic:  90,
	}
}

// Builder assembles a SystemConfig. Setters never fail; Build validates.
// A Builder is not safe for concurrent use.
type Builder struct {
	cityName     string
	timezone     string
	subsystems   map[subsystem.Category]SubsystemConfig
	energySaving bool
	thresholds   Thresholds
}

// NewBuilder returns a builder with every subsystem disabled.
func NewBuilder() *Builder {
	b := &Builder{}
	return b.Reset()
}

// Reset restores all defaults.
func (b *Builder) Reset() *Builder {
	b.cityName = DefaultCityName
	b.timezone = DefaultTimezone
	b.energySaving = false
	b.thresholds = DefaultThresholds()
	b.subsystems = make(map[subsystem.Category]SubsystemConfig, len(subsystem.Categories()))
	for _, c := range subsystem.Categories() {
		b.subsystems[c] = SubsystemConfig{Category: c, Settings: map[string]any{}}
	}
	return b
}

func (b *Builder) CityName(name string) *Builder {
	b.cityName = name
	return b
}

// Timezone sets an IANA zone name such as "Asia/Tashkent".
func (b *Builder) Timezone(tz string) *Builder {
	b.timezone = tz
	return b
}

// EnableSubsystem enables cat, replacing its settings with settings.
func (b *Builder) EnableSubsystem(cat subsystem.Category, settings map[string]any) *Builder {
	s := make(map[string]any, len(settings))
	maps.Copy(s, settings)
	b.subsystems[cat] = SubsystemConfig{Category: cat, Enabled: true, Settings: s}
	return b
}

// DisableSubsystem disables cat and keeps its settings.
func (b *Builder) DisableSubsystem(cat subsystem.Category) *Builder {
	if s, ok := b.subsystems[cat]; ok {
		s.Enabled = false
		b.subsystems[cat] = s
	}
	return b
}

// EnableAll enables every category with empty settings.
func (b *Builder) EnableAll() *Builder {
	for _, c := range subsystem.Categories() {
		b.EnableSubsystem(c, nil)
	}
	return b
}

func (b *Builder) EnergySaving(on bool) *Builder {
	b.energySaving = on
	return b
}

// Thresholds replaces every threshold at once.
func (b *Builder) Thresholds(t Thresholds) *Builder {
	b.thresholds = t
	return b
}

func (b *Builder) TemperatureRange(lo, hi float64) *Builder {
	b.thresholds.Temperature = TemperatureRange{Min: lo, Max: hi}
	return b
}

// MaxEnergy sets the consumption limit in kWh.
func (b *Builder) MaxEnergy(kwh float64) *Builder {
	b.thresholds.MaxEnergy = kwh
	return b
}

// MaxTraffic sets the congestion limit in percent.
func (b *Builder) MaxTraffic(pct float64) *Builder {
	b.thresholds.MaxTraffic = pct
	return b
}

// SubsystemSettings merges settings into the existing settings of cat
// without changing its enabled flag. Unknown categories are recorded and
// rejected by Build.
func (b *Builder) SubsystemSettings(cat subsystem.Category, settings map[string]any) *Builder {
	s, ok := b.subsystems[cat]
	if !ok {
		s = SubsystemConfig{Category: cat, Settings: map[string]any{}}
	}
	if s.Settings == nil {
		s.Settings = map[string]any{}
	}
	maps.Copy(s.Settings, settings)
	b.subsystems[cat] = s
	return b
}

// Build validates the settings and returns an independent SystemConfig.
// Subsystems are listed in canonical category order.
func (b *Builder) Build() (SystemConfig, error) {
	var errs []string

	if strings.TrimSpace(b.cityName) == "" {
		errs = append(errs, "city name is required")
	}
	if _, err := time.LoadLocation(b.timezone); err != nil || b.timezone == "" {
		errs = append(errs, fmt.Sprintf("unknown timezone %q", b.timezone))
	}
	if b.thresholds.Temperature.Min > b.thresholds.Temperature.Max {
		errs = append(errs, fmt.Sprintf("temperature min %.1f exceeds max %.1f",
			b.thresholds.Temperature.Min, b.thresholds.Temperature.Max))
	}
	if b.thresholds.MaxEnergy <= 0 {
		errs = append(errs, "max energy must be positive")
	}
	if b.thresholds.MaxTraffic <= 0 || b.thresholds.MaxTraffic > 100 {
		errs = append(errs, "max traffic must be within (0, 100]")
	}
	for cat := range b.subsystems {
		if _, err := subsystem.ParseCategory(string(cat)); err != nil {
			errs = append(errs, fmt.Sprintf("unknown subsystem %q", cat))
		}
	}

	if len(errs) > 0 {
		return SystemConfig{}, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}

	cfg := SystemConfig{
		CityName:     b.cityName,
		Timezone:     b.timezone,
		EnergySaving: b.energySaving,
		Thresholds:   b.thresholds,
	}
	for _, c := range subsystem.Categories() {
		cfg.Subsystems = append(cfg.Subsystems, b.subsystems[c].clone())
	}
	return cfg, nil
}

// Preview renders the pending settings without validating them.
func (b *Builder) Preview() string {
	var sb strings.Builder
	onOff := map[bool]string{true: "ON", false: "OFF"}
	fmt.Fprintf(&sb, "City: %s\nTimezone: %s\nEnergy Saving: %s\nSubsystems:\n",
		b.cityName, b.timezone, onOff[b.energySaving])
	for _, c := range subsystem.Categories() {
		state := "disabled"
		if b.subsystems[c].Enabled {
			state = "enabled"
		}
		fmt.Fprintf(&sb, "  %s: %s\n", c, state)
	}
	return sb.String()
}
