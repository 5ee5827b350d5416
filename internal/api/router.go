package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.withRequestID)
	r.Use(s.accessLog)
	r.Use(s.recoverPanics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/health", s.handleHealth)
			r.Get("/status", s.handleStatus)
			r.Get("/config", s.handleConfig)

			r.Route("/subsystems", func(r chi.Router) {
				r.Get("/", s.handleListSubsystems)
				r.Route("/{category}", func(r chi.Router) {
					r.Get("/", s.handleGetSubsystem)
					r.With(s.requireUser).Post("/start", s.handleStartSubsystem)
					r.With(s.requireUser).Post("/stop", s.handleStopSubsystem)
				})
			})

			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", s.handleListAlerts)
				r.Get("/{id}", s.handleGetAlert)
				r.With(s.requireUser).Post("/{id}/ack", s.handleAckAlert)
			})

			r.Get("/events", s.handleListEvents)
			r.Get("/audit", s.handleListAudit)
		})
	})

	return r
}
