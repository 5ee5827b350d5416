package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nerrad567/smartcity-core/internal/auth"
	"github.com/nerrad567/smartcity-core/internal/device"
	"github.com/nerrad567/smartcity-core/internal/proxy"
	"github.com/nerrad567/smartcity-core/internal/subsystem"
)

// DeviceView is the JSON form of a device.
type DeviceView struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Location string        `json:"location"`
	Kind     device.Kind   `json:"kind"`
	Status   device.Status `json:"status"`
	Info     string        `json:"info"`
}

// SubsystemDetail is the body of GET /subsystems/{category}. Status and
// Devices go through the subsystem's proxy chain.
type SubsystemDetail struct {
	SubsystemSummary
	Status  string       `json:"status"`
	Devices []DeviceView `json:"devices"`
}

func (s *Server) handleListSubsystems(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"subsystems": s.summaries(),
	})
}

func (s *Server) handleGetSubsystem(w http.ResponseWriter, r *http.Request) {
	registered, ok := s.lookupSubsystem(w, r)
	if !ok {
		return
	}
	user, _ := userFromContext(r.Context())
	sub, _ := actingAs(registered, user)

	devices := sub.Devices()
	views := make([]DeviceView, 0, len(devices))
	for _, d := range devices {
		views = append(views, DeviceView{
			ID:       d.ID(),
			Name:     d.Name(),
			Location: d.Location(),
			Kind:     d.Kind(),
			Status:   d.Status(),
			Info:     d.Info(),
		})
	}

	writeJSON(w, http.StatusOK, SubsystemDetail{
		SubsystemSummary: SubsystemSummary{
			Name:     sub.Name(),
			Category: sub.Category(),
			Active:   sub.IsActive(),
		},
		Status:  sub.Status(),
		Devices: views,
	})
}

func (s *Server) handleStartSubsystem(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, auth.ActionStart, subsystem.Subsystem.Start)
}

func (s *Server) handleStopSubsystem(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, auth.ActionStop, subsystem.Subsystem.Stop)
}

// lifecycle runs op as the token's user. Protected subsystems decide through
// a per-request session; the rest are gated on the role here.
func (s *Server) lifecycle(w http.ResponseWriter, r *http.Request, action auth.Action, op func(subsystem.Subsystem) error) {
	registered, ok := s.lookupSubsystem(w, r)
	if !ok {
		return
	}
	user, _ := userFromContext(r.Context())

	sub, protected := actingAs(registered, user)
	if !protected && !s.access.Authorize(user, action) {
		s.logger.Warn("api action denied", "category", registered.Category(), "action", action, "username", user.Username, "role", user.Role)
		writeForbidden(w, "role "+string(user.Role)+" may not "+string(action))
		return
	}

	if err := op(sub); err != nil {
		if errors.Is(err, proxy.ErrAccessDenied) {
			writeForbidden(w, err.Error())
			return
		}
		s.logger.Error("subsystem lifecycle failed", "category", sub.Category(), "error", err)
		writeInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"category": sub.Category(),
		"active":   sub.IsActive(),
	})
}

// actingAs returns the view of sub that acts for u. For a chain with a
// protection layer that is a session fixed to u, so the console's login
// never leaks into HTTP requests.
func actingAs(sub subsystem.Subsystem, u auth.User) (subsystem.Subsystem, bool) {
	if sec, ok := sub.(*proxy.Secured); ok && sec.Protection != nil {
		return sec.Protection.Session(u), true
	}
	return sub, false
}

func (s *Server) lookupSubsystem(w http.ResponseWriter, r *http.Request) (subsystem.Subsystem, bool) {
	cat, err := subsystem.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return nil, false
	}
	sub, ok := s.ctrl.Subsystem(cat)
	if !ok {
		writeNotFound(w, "subsystem not registered: "+string(cat))
		return nil, false
	}
	return sub, true
}
