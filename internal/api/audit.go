package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/smartcity-core/internal/audit"
)

// handleListAudit returns persisted audit rows, newest first.
//
// Query parameters:
//   - kind: event, alert or access
//   - action, source, outcome: exact-match filters
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeUnavailable(w, "audit logging not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Kind:    q.Get("kind"),
		Action:  q.Get("action"),
		Source:  q.Get("source"),
		Outcome: q.Get("outcome"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list audit logs", "error", err)
		writeInternalError(w, "failed to list audit logs")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
