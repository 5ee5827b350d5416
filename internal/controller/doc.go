// Package controller implements the city control center: a process-wide
// registry of subsystems with system-wide start/stop, an append-only alert
// list and an append-only event trail.
//
// Alerts and events are never pruned for the lifetime of a Controller.
// They are pushed to a Sink as they are created so peripheral adapters
// (console, MQTT, SQLite audit) can observe them without polling.
//
// Only subsystem start failures are raised as alerts. Stop failures are
// logged at error level and otherwise ignored.
//
// Instance returns the lazily created process-wide controller; tests use
// New for an isolated controller or ResetInstance between cases.
package controller
