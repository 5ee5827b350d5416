// Package modules provides the city's operational modules. Each module
// embeds one specialised subsystem, creates its devices through the typed
// device factories and keeps typed handles to them, so callers never need
// to downcast a generic device.
//
// Monitoring operations compare readings against the configured
// thresholds and raise controller alerts:
//
//	traffic above max traffic      medium
//	consumption above max energy   high
//	temperature outside range      medium
//	triggered alarm, lockdown      critical
//
// Readings are forwarded to an optional Recorder (InfluxDB telemetry).
//
// A module is a subsystem.Subsystem, so it can be registered with the
// controller directly or wrapped by the proxy chain first.
package modules
