package proxy

import "errors"

var (
	// ErrAccessDenied is returned by the protection proxy when a mutating
	// call is not authorised.
	ErrAccessDenied = errors.New("proxy: access denied")

	// ErrNoAccessControl is returned by Compose when protection is
	// requested without an AccessControl.
	ErrNoAccessControl = errors.New("proxy: protection requires an access control")
)
