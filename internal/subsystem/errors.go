package subsystem

import "errors"

var (
	// ErrUnknownCategory is returned when a subsystem category is not recognised.
	ErrUnknownCategory = errors.New("subsystem: unknown category")

	// ErrDeviceExists is returned when adding a device whose ID is already registered.
	ErrDeviceExists = errors.New("subsystem: device already exists")

	// ErrNilDevice is returned when AddDevice receives a nil device.
	ErrNilDevice = errors.New("subsystem: nil device")
)
