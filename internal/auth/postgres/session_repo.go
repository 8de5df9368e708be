// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/litterpick/litterpick/internal/auth"
)

const sessionColumns = `token_id, volunteer_id, issued_at, expires_at`

// SessionRepository implements auth.SessionRepository.
type SessionRepository struct {
	db   querier
	opts options
}

// NewSessionRepository creates a SessionRepository on db.
func NewSessionRepository(db querier, opts ...Option) *SessionRepository {
	return &SessionRepository{db: db, opts: newOptions(opts)}
}

// Create inserts a session. A repeated token id fails with
// auth.ErrDuplicateToken.
func (r *SessionRepository) Create(ctx context.Context, s *auth.Session) error {
	err := r.opts.withInsertRetry(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, `
			INSERT INTO session (token_id, volunteer_id, issued_at, expires_at)
			VALUES ($1, $2, $3, $4)
		`, s.TokenID, s.VolunteerID, s.IssuedAt, s.ExpiresAt)
		return err
	})
	if isUniqueViolation(err) {
		return oops.Code(auth.CodeDuplicateToken).Wrap(auth.ErrDuplicateToken)
	}
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			With("volunteer_id", s.VolunteerID).
			Wrap(err)
	}
	return nil
}

// FindByTokenID retrieves a session regardless of expiry.
func (r *SessionRepository) FindByTokenID(ctx context.Context, tokenID string) (*auth.Session, error) {
	var session *auth.Session
	err := r.opts.withRetry(ctx, func(ctx context.Context) error {
		var scanErr error
		session, scanErr = scanSession(r.db.QueryRow(ctx,
			`SELECT `+sessionColumns+` FROM session WHERE token_id = $1`, tokenID))
		return scanErr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(auth.CodeSessionNotFound).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "get session by token").
			Wrap(err)
	}
	return session, nil
}

// FindUserByTokenID returns the owner of a live session. Absent sessions,
// sessions whose volunteer is gone and sessions with expires_at at or
// before now all wrap auth.ErrNotFound.
func (r *SessionRepository) FindUserByTokenID(ctx context.Context, tokenID string) (*auth.AuthUser, error) {
	var user auth.AuthUser
	err := r.opts.withRetry(ctx, func(ctx context.Context) error {
		var role string
		err := r.db.QueryRow(ctx, `
			SELECT v.volunteer_id, v.volunteer_name, v.volunteer_email, v.role::text
			FROM session s
			JOIN volunteer v ON v.volunteer_id = s.volunteer_id
			WHERE s.token_id = $1 AND s.expires_at > $2
		`, tokenID, r.opts.now()).Scan(&user.ID, &user.Name, &user.Email, &role)
		user.Role = auth.Role(role)
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(auth.CodeSessionNotFound).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "find user by token").
			Wrap(err)
	}
	return &user, nil
}

// DeleteByTokenID removes a session and reports whether it existed.
func (r *SessionRepository) DeleteByTokenID(ctx context.Context, tokenID string) (bool, error) {
	var affected int64
	err := r.opts.withRetry(ctx, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, `DELETE FROM session WHERE token_id = $1`, tokenID)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return false, oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	return affected > 0, nil
}

// List returns every stored session, newest first.
func (r *SessionRepository) List(ctx context.Context) ([]*auth.Session, error) {
	var sessions []*auth.Session
	err := r.opts.withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, `SELECT `+sessionColumns+` FROM session ORDER BY issued_at DESC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		sessions = sessions[:0]
		for rows.Next() {
			s, err := scanSession(rows)
			if err != nil {
				return err
			}
			sessions = append(sessions, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, oops.Code("SESSION_LIST_FAILED").
			With("operation", "list sessions").
			Wrap(err)
	}
	return sessions, nil
}

// DeleteExpired removes sessions with expires_at at or before before and
// returns how many were removed.
func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var affected int64
	err := r.opts.withRetry(ctx, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, `DELETE FROM session WHERE expires_at <= $1`, before)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return 0, oops.Code("SESSION_PURGE_FAILED").
			With("operation", "delete expired sessions").
			With("before", before).
			Wrap(err)
	}
	return affected, nil
}

func scanSession(row pgx.Row) (*auth.Session, error) {
	var s auth.Session
	if err := row.Scan(&s.TokenID, &s.VolunteerID, &s.IssuedAt, &s.ExpiresAt); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	return &s, nil
}

var _ auth.SessionRepository = (*SessionRepository)(nil)
