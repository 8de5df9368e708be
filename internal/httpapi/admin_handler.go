// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/oops"

	"github.com/litterpick/litterpick/internal/auth"
)

// AdminHandler serves the admin-only volunteer and session routes.
type AdminHandler struct {
	volunteers auth.VolunteerRepository
	sessions   auth.SessionRepository
	logger     *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(volunteers auth.VolunteerRepository, sessions auth.SessionRepository, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{volunteers: volunteers, sessions: sessions, logger: logger}
}

// SessionResponse is the admin view of a session.
type SessionResponse struct {
	TokenID     string    `json:"token_id"`
	VolunteerID int64     `json:"volunteer_id"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func toSessionResponse(s *auth.Session) SessionResponse {
	return SessionResponse{
		TokenID:     s.TokenID,
		VolunteerID: s.VolunteerID,
		IssuedAt:    s.IssuedAt,
		ExpiresAt:   s.ExpiresAt,
	}
}

// ListVolunteers handles GET /volunteers.
func (h *AdminHandler) ListVolunteers(w http.ResponseWriter, r *http.Request) {
	volunteers, err := h.volunteers.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	users := make([]*auth.AuthUser, 0, len(volunteers))
	for _, v := range volunteers {
		users = append(users, v.AuthUser())
	}
	writeJSON(w, http.StatusOK, users)
}

// GetVolunteer handles GET /volunteers/{volunteerID}.
func (h *AdminHandler) GetVolunteer(w http.ResponseWriter, r *http.Request) {
	id, err := volunteerIDParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	volunteer, err := h.volunteers.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, volunteer.AuthUser())
}

// DeleteVolunteer handles DELETE /volunteers/{volunteerID}.
func (h *AdminHandler) DeleteVolunteer(w http.ResponseWriter, r *http.Request) {
	id, err := volunteerIDParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	deleted, err := h.volunteers.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !deleted {
		writeError(w, r, h.logger, oops.Code(auth.CodeVolunteerNotFound).With("volunteer_id", id).Wrap(auth.ErrNotFound))
		return
	}

	h.logger.InfoContext(r.Context(), "volunteer deleted", "volunteer_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ListSessions handles GET /sessions.
func (h *AdminHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	out := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetSession handles GET /sessions/{tokenID}.
func (h *AdminHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.FindByTokenID(r.Context(), chi.URLParam(r, "tokenID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// DeleteSession handles DELETE /sessions/{tokenID}.
func (h *AdminHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.sessions.DeleteByTokenID(r.Context(), chi.URLParam(r, "tokenID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !deleted {
		writeError(w, r, h.logger, oops.Code(auth.CodeSessionNotFound).Wrap(auth.ErrNotFound))
		return
	}

	h.logger.InfoContext(r.Context(), "session revoked")
	w.WriteHeader(http.StatusNoContent)
}

func volunteerIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "volunteerID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, oops.Code(CodeBadRequest).With("volunteer_id", raw).Errorf("volunteer id must be a positive integer")
	}
	return id, nil
}
