package modules

import "errors"

var (
	// ErrLockdown is returned when opening a gate during a lockdown.
	ErrLockdown = errors.New("modules: security lockdown active")
)
