// Package device provides the simulated field devices supervised by the
// Smart City control center.
//
// A device is polymorphic over three capability sets rather than a class
// hierarchy:
//
//   - Sensor: a readable numeric value with a unit (traffic counts, lux, kWh)
//   - Controller: a command vocabulary that mutates internal state
//   - Actuator: a settable value clamped to a declared range
//
// Every concrete device also satisfies Device, the identity and lifecycle
// contract subsystems work against.
//
// # Factories
//
// Each municipal domain has a typed factory, so callers get the precise
// device type back without assertions:
//
//	light := device.LightingFactory().NewController("LC-001", "Main St lights", "Main St")
//	_ = light.Execute("on")
//	fmt.Println(light.IsOn())
//
// FactoryFor resolves a factory from a category name when the type is only
// known at runtime. An unknown category is a programming error and is
// reported as ErrUnknownCategory.
//
// # Ownership
//
// A device belongs to at most one subsystem. Subsystems call Attach when a
// device is added and Detach when it is removed; Attach refuses a device
// that is already owned elsewhere.
//
// # Thread Safety
//
// Device state is guarded by a per-device mutex. Callers may read from the
// HTTP API while the console mutates devices.
package device
