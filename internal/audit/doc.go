// Package audit exports controller events, alerts and protection proxy
// access decisions to the audit_logs table.
//
// The export is append-only and write-behind: Sink and AccessRecorder
// implement the hook interfaces of the controller and proxy packages, so a
// failing database never fails a control operation. Write errors are
// logged.
package audit
