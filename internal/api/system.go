package api

import (
	"net/http"

	"github.com/nerrad567/smartcity-core/internal/subsystem"
)

// SubsystemSummary is the list view of a registered subsystem. It only
// touches methods the proxies pass through unchecked.
type SubsystemSummary struct {
	Name     string             `json:"name"`
	Category subsystem.Category `json:"category"`
	Active   bool               `json:"active"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Running      bool               `json:"running"`
	City         string             `json:"city,omitempty"`
	Subsystems   []SubsystemSummary `json:"subsystems"`
	AlertsTotal  int                `json:"alerts_total"`
	AlertsActive int                `json:"alerts_active"`
	Events       int                `json:"events"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{
		Running:      s.ctrl.IsRunning(),
		Subsystems:   s.summaries(),
		AlertsTotal:  len(s.ctrl.Alerts()),
		AlertsActive: len(s.ctrl.ActiveAlerts()),
		Events:       len(s.ctrl.Events()),
	}
	if cfg, ok := s.ctrl.Config(); ok {
		resp.City = cfg.CityName
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	cfg, ok := s.ctrl.Config()
	if !ok {
		writeNotFound(w, "system not configured")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) summaries() []SubsystemSummary {
	subs := s.ctrl.Subsystems()
	out := make([]SubsystemSummary, 0, len(subs))
	for _, sub := range subs {
		out = append(out, SubsystemSummary{
			Name:     sub.Name(),
			Category: sub.Category(),
			Active:   sub.IsActive(),
		})
	}
	return out
}
