package audit

import (
	"context"
	"time"

	"github.com/nerrad567/smartcity-core/internal/controller"
	"github.com/nerrad567/smartcity-core/internal/proxy"
)

// writeTimeout bounds one export insert.
const writeTimeout = 2 * time.Second

// Logger is the logging surface used for failed writes.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

type writer struct {
	repo   Repository
	logger Logger
}

func newWriter(repo Repository, logger Logger) writer {
	if logger == nil {
		logger = noopLogger{}
	}
	return writer{repo: repo, logger: logger}
}

func (w writer) write(log *AuditLog) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := w.repo.Create(ctx, log); err != nil {
		w.logger.Warn("audit export failed", "kind", log.Kind, "action", log.Action, "error", err)
	}
}

// Sink exports controller alerts and events. It implements controller.Sink.
type Sink struct {
	w writer
}

func NewSink(repo Repository, logger Logger) *Sink {
	return &Sink{w: newWriter(repo, logger)}
}

func (s *Sink) Alert(a controller.Alert) {
	s.w.write(&AuditLog{
		Kind:   KindAlert,
		Action: string(a.Severity),
		Source: a.Source,
		Details: map[string]any{
			"alertId": a.ID,
			"message": a.Message,
		},
		CreatedAt: a.Timestamp,
	})
}

func (s *Sink) Event(e controller.Event) {
	details := map[string]any{"eventId": e.ID}
	for k, v := range e.Data {
		details[k] = v
	}
	s.w.write(&AuditLog{
		Kind:      KindEvent,
		Action:    e.Type,
		Source:    e.Source,
		Details:   details,
		CreatedAt: e.Timestamp,
	})
}

// AccessRecorder exports protection proxy decisions. It implements
// proxy.AccessRecorder.
type AccessRecorder struct {
	w writer
}

func NewAccessRecorder(repo Repository, logger Logger) *AccessRecorder {
	return &AccessRecorder{w: newWriter(repo, logger)}
}

func (r *AccessRecorder) RecordAccess(subsystemName string, entry proxy.AccessLogEntry) {
	outcome := OutcomeDenied
	if entry.Allowed {
		outcome = OutcomeAllowed
	}
	r.w.write(&AuditLog{
		Kind:      KindAccess,
		Action:    string(entry.Action),
		Source:    subsystemName,
		Username:  entry.Username,
		Outcome:   outcome,
		CreatedAt: entry.Timestamp,
	})
}

var (
	_ controller.Sink      = (*Sink)(nil)
	_ proxy.AccessRecorder = (*AccessRecorder)(nil)
)
