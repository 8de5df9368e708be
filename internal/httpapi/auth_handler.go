// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/litterpick/litterpick/internal/auth"
	"github.com/litterpick/litterpick/internal/observability"
)

// RefreshCookieName is the cookie carrying the refresh token.
const RefreshCookieName = "refresh_token"

// AuthService is the subset of auth.Service used by the handlers.
type AuthService interface {
	TokenVerifier
	Register(ctx context.Context, in auth.RegisterInput) (*auth.AuthUser, error)
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.RefreshResult, error)
	Logout(ctx context.Context, refreshToken string) error
}

// AuthHandler serves the /auth routes.
type AuthHandler struct {
	service       AuthService
	metrics       *observability.Metrics
	logger        *slog.Logger
	secureCookies bool
}

// NewAuthHandler creates an AuthHandler. metrics may be nil.
func NewAuthHandler(service AuthService, metrics *observability.Metrics, logger *slog.Logger, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		service:       service,
		metrics:       metrics,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

type registerRequest struct {
	Name     string `json:"volunteer_name"`
	Email    string `json:"volunteer_email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"volunteer_email"`
	Password string `json:"password"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken string         `json:"accessToken"`
	User        *auth.AuthUser `json:"user"`
}

// MeResponse echoes the caller's access token claims.
type MeResponse struct {
	VolunteerID int64     `json:"volunteer_id"`
	Role        auth.Role `json:"role"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, "register", err)
		return
	}

	user, err := h.service.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.fail(w, r, "register", err)
		return
	}

	h.metrics.RecordAuthEvent("register", observability.OutcomeSuccess)
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /auth/login. The refresh token is set as a cookie and
// never appears in the body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, "login", err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken, result.RefreshExpiresAt)
	h.metrics.RecordAuthEvent("login", observability.OutcomeSuccess)
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: result.AccessToken, User: result.User})
}

// Refresh handles POST /auth/refresh using the refresh_token cookie.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Refresh(r.Context(), refreshTokenFrom(r))
	if err != nil {
		h.fail(w, r, "refresh", err)
		return
	}

	h.metrics.RecordAuthEvent("refresh", observability.OutcomeSuccess)
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: result.AccessToken, User: result.User})
}

// Logout handles POST /auth/logout. The cookie is cleared even when the
// session could not be deleted.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.service.Logout(r.Context(), refreshTokenFrom(r))
	h.clearRefreshCookie(w)
	if err != nil {
		h.fail(w, r, "logout", err)
		return
	}

	h.metrics.RecordAuthEvent("logout", observability.OutcomeSuccess)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Code:    CodeUnauthorized,
			Message: messageByCode[CodeUnauthorized],
		})
		return
	}
	writeJSON(w, http.StatusOK, MeResponse{VolunteerID: claims.VolunteerID, Role: claims.Role})
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, operation string, err error) {
	outcome := observability.OutcomeError
	if status, _ := classify(err); status < http.StatusInternalServerError {
		outcome = observability.OutcomeClientError
	}
	h.metrics.RecordAuthEvent(operation, outcome)
	writeError(w, r, h.logger, err)
}

func refreshTokenFrom(r *http.Request) string {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
