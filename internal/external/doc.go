// Package external adapts simulated third-party city services (weather,
// traffic feeds, emergency dispatch) to a common connect/operate/disconnect
// contract.
//
// Each adapter wraps a vendor API with its own method names and data
// shapes and translates it into the package's types. Calls made while an
// adapter is disconnected fail with ErrServiceUnavailable; callers surface
// that to the operator and never raise controller alerts for it.
package external
