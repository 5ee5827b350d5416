package external

import (
	"context"
	"fmt"
	"strings"
)

// Emergency is a connected dispatch system.
type Emergency interface {
	Service
	// SendAlert forwards an alert at a severity level (low, medium, high,
	// critical). Reports whether the dispatch system accepted it.
	SendAlert(ctx context.Context, level, message string) (bool, error)
	// RequestAssistance dispatches a unit and returns its ticket.
	RequestAssistance(ctx context.Context, kind, location string) (string, error)
}

// Dispatch units understood by the legacy system.
const (
	UnitPolice  = "police"
	UnitFire    = "fire"
	UnitMedical = "medical"
)

var alertCodes = map[string]int{
	"low":      100,
	"medium":   200,
	"high":     300,
	"critical": 999,
}

// AlertCode maps a severity level to the dispatch code. Unknown levels
// map to 100.
func AlertCode(level string) int {
	if c, ok := alertCodes[strings.ToLower(level)]; ok {
		return c
	}
	return alertCodes["low"]
}

var assistanceUnits = map[string]string{
	"security":  UnitPolice,
	"accident":  UnitPolice,
	"fire":      UnitFire,
	"medical":   UnitMedical,
	"emergency": UnitMedical,
}

// UnitFor maps an incident kind to a dispatch unit. Unknown kinds go to
// the police.
func UnitFor(kind string) string {
	if u, ok := assistanceUnits[strings.ToLower(kind)]; ok {
		return u
	}
	return UnitPolice
}

// dispatchSystem is the legacy emergency vendor.
type dispatchSystem struct {
	systemID string
	online   bool
	opts     options
}

func (s *dispatchSystem) powerOn() bool {
	s.opts.logger.Info("emergency system powering on", "system_id", s.systemID)
	s.online = true
	return true
}

func (s *dispatchSystem) powerOff() { s.online = false }

func (s *dispatchSystem) sendAlertCode(code int, message string) bool {
	if !s.online {
		return false
	}
	s.opts.logger.Warn("emergency alert dispatched", "system_id", s.systemID, "code", code, "message", message)
	return true
}

func (s *dispatchSystem) requestBackup(unit, location string) string {
	ticket := fmt.Sprintf("EM-%d", s.opts.now().UnixMilli())
	s.opts.logger.Warn("backup requested", "unit", unit, "location", location, "ticket", ticket)
	return ticket
}

// EmergencyDispatch adapts the legacy dispatch system.
type EmergencyDispatch struct {
	link
	sys *dispatchSystem
}

// NewEmergencyDispatch returns a disconnected adapter for systemID.
func NewEmergencyDispatch(systemID string, opts ...Option) *EmergencyDispatch {
	return &EmergencyDispatch{sys: &dispatchSystem{systemID: systemID, opts: buildOptions(opts)}}
}

func (e *EmergencyDispatch) Connect(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	ok := e.sys.powerOn()
	e.set(ok)
	return ok
}

func (e *EmergencyDispatch) Disconnect(context.Context) {
	e.sys.powerOff()
	e.set(false)
}

func (e *EmergencyDispatch) SendAlert(ctx context.Context, level, message string) (bool, error) {
	if err := e.ready(ctx); err != nil {
		return false, err
	}
	return e.sys.sendAlertCode(AlertCode(level), message), nil
}

func (e *EmergencyDispatch) RequestAssistance(ctx context.Context, kind, location string) (string, error) {
	if err := e.ready(ctx); err != nil {
		return "", err
	}
	return e.sys.requestBackup(UnitFor(kind), location), nil
}
