// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/litterpick/litterpick/internal/auth"
	"github.com/litterpick/litterpick/internal/observability"
)

// RouterDeps collects what NewRouter needs.
type RouterDeps struct {
	AuthService AuthService
	Volunteers  auth.VolunteerRepository
	Sessions    auth.SessionRepository

	// LoginLimiter throttles POST /auth/login. Nil disables limiting.
	LoginLimiter *RateLimiter

	// Metrics may be nil.
	Metrics       *observability.Metrics
	Logger        *slog.Logger
	SecureCookies bool
}

// NewRouter builds the API router.
//
// Middleware order: RequestID → Logging → Metrics → Recovery.
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(logger))
	r.Use(Metrics(deps.Metrics))
	r.Use(Recovery(logger))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Code: CodeNotFound, Message: messageByCode[CodeNotFound]})
	})

	authHandler := NewAuthHandler(deps.AuthService, deps.Metrics, logger, deps.SecureCookies)
	adminHandler := NewAdminHandler(deps.Volunteers, deps.Sessions, logger)
	requireAuth := RequireAuth(deps.AuthService, logger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		if deps.LoginLimiter != nil {
			r.With(deps.LoginLimiter.Middleware).Post("/login", authHandler.Login)
		} else {
			r.Post("/login", authHandler.Login)
		}
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)
		r.With(requireAuth).Get("/me", authHandler.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(RequireRole(auth.RoleAdmin, logger))

		r.Route("/volunteers", func(r chi.Router) {
			r.Get("/", adminHandler.ListVolunteers)
			r.Get("/{volunteerID}", adminHandler.GetVolunteer)
			r.Delete("/{volunteerID}", adminHandler.DeleteVolunteer)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", adminHandler.ListSessions)
			r.Get("/{tokenID}", adminHandler.GetSession)
			r.Delete("/{tokenID}", adminHandler.DeleteSession)
		})
	})

	return r
}
