package subsystem

import (
	"fmt"
	"slices"
	"sync"

	"github.com/nerrad567/smartcity-core/internal/device"
)

// Option configures a subsystem.
type Option func(*Base)

// WithLogger sets the subsystem logger.
func WithLogger(l Logger) Option {
	return func(b *Base) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithSource sets the value source for simulated measurements.
func WithSource(src device.ValueSource) Option {
	return func(b *Base) {
		if src != nil {
			b.source = src
		}
	}
}

// Base implements Subsystem with an ordered device list.
//
// All public methods are thread-safe.
type Base struct {
	name     string
	category Category
	logger   Logger
	source   device.ValueSource

	mu      sync.RWMutex
	active  bool
	devices []device.Device
}

// NewBase creates an inactive subsystem with no devices.
func NewBase(name string, category Category, opts ...Option) *Base {
	b := &Base{
		name:     name,
		category: category,
		logger:   noopLogger{},
		source:   device.DefaultSource(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Base) Name() string       { return b.name }
func (b *Base) Category() Category { return b.category }

func (b *Base) IsActive() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.active
}

// Start marks the subsystem active.
func (b *Base) Start() error {
	b.mu.Lock()
	b.active = true
	b.mu.Unlock()
	b.logger.Info("subsystem started", "subsystem", b.name)
	return nil
}

// Stop marks the subsystem inactive.
func (b *Base) Stop() error {
	b.mu.Lock()
	b.active = false
	b.mu.Unlock()
	b.logger.Info("subsystem stopped", "subsystem", b.name)
	return nil
}

// Status returns "Active" or "Inactive".
func (b *Base) Status() string {
	if b.IsActive() {
		return StatusActive
	}
	return StatusInactive
}

func (b *Base) Devices() []device.Device {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.devices)
}

// AddDevice appends d and marks it as owned by this subsystem.
// Returns ErrDeviceExists if the ID is taken, or device.ErrAlreadyAttached
// if another subsystem owns d.
func (b *Base) AddDevice(d device.Device) error {
	if d == nil {
		return ErrNilDevice
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.indexOf(d.ID()) >= 0 {
		return fmt.Errorf("%w: %s in %s", ErrDeviceExists, d.ID(), b.name)
	}
	if err := device.Attach(d, b); err != nil {
		return fmt.Errorf("adding %s to %s: %w", d.ID(), b.name, err)
	}
	b.devices = append(b.devices, d)

	b.logger.Info("device added", "subsystem", b.name, "device_id", d.ID(), "device", d.Name())
	return nil
}

// RemoveDevice removes the device with the given ID and releases its ownership.
func (b *Base) RemoveDevice(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return false, nil
	}
	d := b.devices[i]
	b.devices = slices.Delete(b.devices, i, i+1)
	device.Detach(d)

	b.logger.Info("device removed", "subsystem", b.name, "device_id", id, "device", d.Name())
	return true, nil
}

// Device returns the device with the given ID.
func (b *Base) Device(id string) (device.Device, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i := b.indexOf(id); i >= 0 {
		return b.devices[i], true
	}
	return nil, false
}

// DeviceCount returns the number of registered devices.
func (b *Base) DeviceCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.devices)
}

// indexOf must be called with mu held.
func (b *Base) indexOf(id string) int {
	return slices.IndexFunc(b.devices, func(d device.Device) bool { return d.ID() == id })
}
