package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, device.ErrUnknownCommand) {
//	    // command outside the controller vocabulary
//	}
var (
	// ErrUnknownCategory is returned when no factory exists for a category.
	ErrUnknownCategory = errors.New("device: unknown category")

	// ErrUnknownCommand is returned when a controller receives a command
	// outside its vocabulary.
	ErrUnknownCommand = errors.New("device: unknown command")

	// ErrAlreadyAttached is returned when a device owned by one subsystem
	// is attached to another.
	ErrAlreadyAttached = errors.New("device: already attached to a subsystem")

	// ErrNoHolder is returned when Attach is called without an owner.
	ErrNoHolder = errors.New("device: nil holder")

	// ErrNotAttachable is returned for Device implementations that do not
	// embed the package's ownership tracking.
	ErrNotAttachable = errors.New("device: does not support ownership tracking")
)
