package sysconfig

import (
	"errors"
	"slices"

	"github.com/nerrad567/smartcity-core/internal/subsystem"
)

// ErrInvalidConfig is returned by Build when settings fail validation.
var ErrInvalidConfig = errors.New("sysconfig: invalid configuration")

// TemperatureRange is the acceptable ambient temperature in °C.
type TemperatureRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the range.
func (r TemperatureRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Thresholds are the limits that raise alerts.
type Thresholds struct {
	Temperature TemperatureRange `json:"temperature"`
	// MaxEnergy is in kWh.
	MaxEnergy float64 `json:"max_energy"`
	// MaxTraffic is a congestion percentage.
	MaxTraffic float64 `json:"max_traffic"`
}

// SubsystemConfig is the enabled flag and free-form settings of one subsystem.
type SubsystemConfig struct {
	Category subsystem.Category `json:"category"`
	Enabled  bool               `json:"enabled"`
	Settings map[string]any     `json:"settings"`
}

// SystemConfig is the city-wide configuration.
type SystemConfig struct {
	CityName     string            `json:"city_name"`
	Timezone     string            `json:"timezone"`
	Subsystems   []SubsystemConfig `json:"subsystems"`
	EnergySaving bool              `json:"energy_saving"`
	Thresholds   Thresholds        `json:"thresholds"`
}

// EnabledSubsystems returns the enabled categories in canonical order.
func (c SystemConfig) EnabledSubsystems() []subsystem.Category {
	var out []subsystem.Category
	for _, s := range c.Subsystems {
		if s.Enabled {
			out = append(out, s.Category)
		}
	}
	return out
}

// IsEnabled reports whether a category is enabled.
func (c SystemConfig) IsEnabled(cat subsystem.Category) bool {
	s, ok := c.Subsystem(cat)
	return ok && s.Enabled
}

// Subsystem returns the settings for a category.
func (c SystemConfig) Subsystem(cat subsystem.Category) (SubsystemConfig, bool) {
	i := slices.IndexFunc(c.Subsystems, func(s SubsystemConfig) bool { return s.Category == cat })
	if i < 0 {
		return SubsystemConfig{}, false
	}
	return c.Subsystems[i].clone(), true
}

// Clone returns a deep copy.
func (c SystemConfig) Clone() SystemConfig {
	cpy := c
	if c.Subsystems != nil {
		cpy.Subsystems = make([]SubsystemConfig, len(c.Subsystems))
		for i, s := range c.Subsystems {
			cpy.Subsystems[i] = s.clone()
		}
	}
	return cpy
}

func (s SubsystemConfig) clone() SubsystemConfig {
	s.Settings = deepCopyMap(s.Settings)
	return s
}

// deepCopyMap creates a deep copy of a map[string]any.
// Nested maps and slices are recursively copied.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		return v
	}
}
