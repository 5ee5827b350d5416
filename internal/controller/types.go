package controller

import (
	"fmt"
	"strings"
	"time"
)

// Severity ranks how urgently an alert needs attention.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities returns all severities from least to most urgent.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// ParseSeverity converts a case-insensitive string to a Severity.
func ParseSeverity(s string) (Severity, error) {
	for _, sev := range Severities() {
		if strings.EqualFold(string(sev), s) {
			return sev, nil
		}
	}
	return "", fmt.Errorf("controller: unknown severity %q", s)
}

// Event types emitted by the controller.
const (
	EventSubsystemRegistered = "SUBSYSTEM_REGISTERED"
	EventSystemStarted       = "SYSTEM_STARTED"
	EventSystemStopped       = "SYSTEM_STOPPED"
	EventConfigSet           = "CONFIG_SET"
	EventAlertAcknowledged   = "ALERT_ACKNOWLEDGED"
)

// Alert is an operator-visible notification. Only Acknowledged ever changes.
type Alert struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Source       string    `json:"source"`
	Message      string    `json:"message"`
	Severity     Severity  `json:"severity"`
	Acknowledged bool      `json:"acknowledged"`
}

// Event is an entry in the audit trail.
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
}

// Logger defines the logging interface used by the Controller.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
