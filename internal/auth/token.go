// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

// DefaultAccessTokenTTL is used when no access token TTL is configured.
const DefaultAccessTokenTTL = time.Hour

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	VolunteerID int64 `json:"volunteer_id"`
	Role        Role  `json:"role"`
	jwt.RegisteredClaims
}

// TokenSigner issues and verifies HS256 access tokens with a single
// process-wide secret.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// SignerOption configures a TokenSigner.
type SignerOption func(*TokenSigner)

// WithSignerClock overrides the clock used for issuing and verifying tokens.
func WithSignerClock(now func() time.Time) SignerOption {
	return func(s *TokenSigner) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTokenSigner creates a TokenSigner. An empty secret is a configuration
// error. A non-positive ttl falls back to DefaultAccessTokenTTL.
func NewTokenSigner(secret []byte, ttl time.Duration, opts ...SignerOption) (*TokenSigner, error) {
	if len(secret) == 0 {
		return nil, oops.Code(CodeSigningSecret).Errorf("jwt signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}

	s := &TokenSigner{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the default access token lifetime.
func (s *TokenSigner) TTL() time.Duration {
	return s.ttl
}

// Sign issues an access token for claims. A non-positive ttl uses the
// signer default.
func (s *TokenSigner) Sign(claims AccessClaims, ttl time.Duration) (string, error) {
	if claims.VolunteerID <= 0 {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").Errorf("volunteer id must be positive")
	}
	if !claims.Role.Valid() {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").With("role", string(claims.Role)).Errorf("invalid role")
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	now := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify parses tokenString and returns its claims if the signature is
// valid and the token has not expired.
func (s *TokenSigner) Verify(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, oops.Code(CodeTokenMalformed).Wrap(err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, oops.Code(CodeTokenExpired).Wrap(err)
	default:
		return nil, oops.Code(CodeTokenInvalid).Wrap(err)
	}

	if claims.VolunteerID <= 0 || !claims.Role.Valid() {
		return nil, oops.Code(CodeTokenInvalid).
			With("role", string(claims.Role)).
			Errorf("token claims missing volunteer id or role")
	}
	return claims, nil
}
