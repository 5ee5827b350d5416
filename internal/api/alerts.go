package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nerrad567/smartcity-core/internal/auth"
	"github.com/nerrad567/smartcity-core/internal/controller"
)

// handleListAlerts returns alerts in creation order.
//
// Query parameters:
//   - active: "true" returns only unacknowledged alerts
//   - severity: filter by severity (low, medium, high, critical)
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	alerts := s.ctrl.Alerts()
	if q.Get("active") == "true" {
		alerts = s.ctrl.ActiveAlerts()
	}

	if v := q.Get("severity"); v != "" {
		sev, err := controller.ParseSeverity(v)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		filtered := alerts[:0:0]
		for _, a := range alerts {
			if a.Severity == sev {
				filtered = append(filtered, a)
			}
		}
		alerts = filtered
	}

	if alerts == nil {
		alerts = []controller.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

func (s *Server) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	a, ok := s.ctrl.Alert(chi.URLParam(r, "id"))
	if !ok {
		writeNotFound(w, "alert not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleAckAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, _ := userFromContext(r.Context())
	if !s.access.Authorize(user, auth.ActionWrite) {
		writeForbidden(w, "role "+string(user.Role)+" may not acknowledge alerts")
		return
	}
	if !s.ctrl.AcknowledgeAlert(id) {
		writeNotFound(w, "alert not found")
		return
	}
	a, _ := s.ctrl.Alert(id)
	writeJSON(w, http.StatusOK, a)
}

// handleListEvents returns the most recent events, oldest first.
//
// Query parameters:
//   - limit: keep only the last N events
//   - type: filter by event type
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events := s.ctrl.Events()

	if t := q.Get("type"); t != "" {
		filtered := events[:0:0]
		for _, e := range events {
			if e.Type == t {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		if n < len(events) {
			events = events[len(events)-n:]
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}
