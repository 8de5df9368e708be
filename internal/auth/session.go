// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Session is the server-side record of one outstanding refresh token.
// Sessions are never updated in place.
type Session struct {
	TokenID     string
	VolunteerID int64
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// NewSession creates a validated Session.
func NewSession(tokenID string, volunteerID int64, issuedAt, expiresAt time.Time) (*Session, error) {
	if tokenID == "" {
		return nil, oops.Code("SESSION_INVALID_TOKEN").Errorf("token id cannot be empty")
	}
	if volunteerID <= 0 {
		return nil, oops.Code("SESSION_INVALID_VOLUNTEER").
			With("volunteer_id", volunteerID).
			Errorf("volunteer id must be positive")
	}
	if !expiresAt.After(issuedAt) {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").
			With("issued_at", issuedAt).
			With("expires_at", expiresAt).
			Errorf("expiry must be after issue time")
	}

	return &Session{
		TokenID:     tokenID,
		VolunteerID: volunteerID,
		IssuedAt:    issuedAt,
		ExpiresAt:   expiresAt,
	}, nil
}

// IsExpiredAt returns true if the session is expired at t.
// A session expiring exactly at t is expired.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !s.ExpiresAt.After(t)
}

// GenerateRefreshToken returns a new opaque refresh token (random v4 UUID).
func GenerateRefreshToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "uuid.NewRandom").
			Wrap(err)
	}
	return id.String(), nil
}

// SessionRepository manages refresh-token session persistence.
type SessionRepository interface {
	// Create stores a new session.
	// Returns an error wrapping ErrDuplicateToken if the token id exists.
	Create(ctx context.Context, session *Session) error

	// FindByTokenID retrieves a session by token id, expired or not.
	FindByTokenID(ctx context.Context, tokenID string) (*Session, error)

	// FindUserByTokenID returns the owner of a live session. Returns an error
	// wrapping ErrNotFound if the session is absent, its volunteer no longer
	// exists, or it has expired.
	FindUserByTokenID(ctx context.Context, tokenID string) (*AuthUser, error)

	// DeleteByTokenID removes a session and reports whether a row existed.
	DeleteByTokenID(ctx context.Context, tokenID string) (bool, error)

	// List returns every stored session, newest first.
	List(ctx context.Context) ([]*Session, error)

	// DeleteExpired removes sessions expiring at or before the given time
	// and returns the count of deleted records.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
