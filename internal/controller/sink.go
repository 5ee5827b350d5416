package controller

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Sink observes alerts and events as the controller creates them.
// Implementations must not call back into the Controller.
type Sink interface {
	Alert(a Alert)
	Event(e Event)
}

type nopSink struct{}

func (nopSink) Alert(Alert) {}
func (nopSink) Event(Event) {}

// MultiSink fans out to every non-nil sink in order.
type MultiSink []Sink

func (m MultiSink) Alert(a Alert) {
	for _, s := range m {
		if s != nil {
			s.Alert(a)
		}
	}
}

func (m MultiSink) Event(e Event) {
	for _, s := range m {
		if s != nil {
			s.Event(e)
		}
	}
}

// WriterSink renders alerts as text. Events are written only when
// ShowEvents is set.
type WriterSink struct {
	mu         sync.Mutex
	w          io.Writer
	ShowEvents bool
}

// NewWriterSink returns a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Marker returns the console prefix for a severity.
func Marker(s Severity) string {
	switch s {
	case SeverityLow:
		return "🔵"
	case SeverityMedium:
		return "🟡"
	case SeverityHigh:
		return "🟠"
	case SeverityCritical:
		return "🔴"
	default:
		return "⚪"
	}
}

func (s *WriterSink) Alert(a Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s [%s] %s\n   Source: %s | Time: %s\n",
		Marker(a.Severity), strings.ToUpper(string(a.Severity)), a.Message,
		a.Source, a.Timestamp.Format(time.RFC3339))
}

func (s *WriterSink) Event(e Event) {
	if !s.ShowEvents {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "[%s] %s from %s\n", e.Timestamp.Format(time.RFC3339), e.Type, e.Source)
}
