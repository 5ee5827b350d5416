package subsystem

import (
	"fmt"

	"github.com/nerrad567/smartcity-core/internal/device"
)

// Category identifies one of the municipal domains.
type Category string

// Category constants.
const (
	CategoryTransport Category = device.CategoryTransport
	CategoryLighting  Category = device.CategoryLighting
	CategorySecurity  Category = device.CategorySecurity
	CategoryEnergy    Category = device.CategoryEnergy
)

// Categories returns every category in canonical order.
func Categories() []Category {
	return []Category{CategoryTransport, CategoryLighting, CategorySecurity, CategoryEnergy}
}

// ParseCategory converts a string to a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// DisplayName returns the operator-facing name of the category's subsystem.
func (c Category) DisplayName() string {
	switch c {
	case CategoryTransport:
		return "Transport Management"
	case CategoryLighting:
		return "Street Lighting"
	case CategorySecurity:
		return "City Security"
	case CategoryEnergy:
		return "Energy Management"
	default:
		return string(c)
	}
}

// Status strings returned by Base.Status.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Subsystem is the contract shared by real subsystems and the proxies that
// wrap them.
type Subsystem interface {
	Name() string
	Category() Category
	IsActive() bool
	Start() error
	Stop() error
	Status() string
	// Devices returns a snapshot in registration order.
	Devices() []device.Device
	AddDevice(d device.Device) error
	// RemoveDevice reports whether a device with the id was found.
	RemoveDevice(id string) (bool, error)
}

// Logger defines the logging interface used by subsystems.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
