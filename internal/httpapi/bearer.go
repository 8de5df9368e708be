// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/samber/oops"

	"github.com/litterpick/litterpick/internal/auth"
)

type claimsContextKey struct{}

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.AccessClaims, error)
}

// ContextWithClaims stores verified access token claims in ctx.
func ContextWithClaims(ctx context.Context, claims *auth.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext returns the claims set by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*auth.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*auth.AccessClaims)
	return claims, ok && claims != nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is case-insensitive.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth rejects requests without a valid Bearer access token with 401.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, r, logger, oops.Code(auth.CodeMissingToken).Errorf("bearer token required"))
				return
			}

			claims, err := verifier.VerifyAccessToken(token)
			if err != nil {
				writeError(w, r, logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole rejects authenticated requests whose role is not role with
// 403. It must run after RequireAuth.
func RequireRole(role auth.Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, r, logger, oops.Code(CodeUnauthorized).Errorf("no authenticated volunteer"))
				return
			}
			if claims.Role != role {
				writeError(w, r, logger, oops.Code(CodeForbidden).
					With("required_role", role.String()).
					Errorf("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
