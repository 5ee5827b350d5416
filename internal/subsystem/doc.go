// Package subsystem defines the contract every municipal subsystem
// implements and the four concrete subsystems of the control center.
//
// A subsystem owns an ordered collection of devices (registration order)
// and has a start/stop lifecycle. Repeated Start or Stop calls are not
// guarded here: the flag is simply set again and the transition logged.
// Redundant transitions are the controller's concern.
//
// Devices returns a snapshot slice; adding to or removing from it has no
// effect on the subsystem.
package subsystem
