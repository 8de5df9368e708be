// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/litterpick/litterpick/internal/auth"
)

const volunteerColumns = `volunteer_id, volunteer_name, volunteer_email, password, role::text, created_at, updated_at`

// VolunteerRepository implements auth.VolunteerRepository.
type VolunteerRepository struct {
	db   querier
	opts options
}

// NewVolunteerRepository creates a VolunteerRepository on db.
func NewVolunteerRepository(db querier, opts ...Option) *VolunteerRepository {
	return &VolunteerRepository{db: db, opts: newOptions(opts)}
}

// Create inserts v and fills in its ID and timestamps.
func (r *VolunteerRepository) Create(ctx context.Context, v *auth.Volunteer) error {
	err := r.opts.withInsertRetry(ctx, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, `
			INSERT INTO volunteer (volunteer_name, volunteer_email, password, role)
			VALUES ($1, $2, $3, $4::text::volunteer_role)
			RETURNING volunteer_id, created_at, updated_at
		`, v.Name, v.Email, v.PasswordHash, string(v.Role)).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	})
	if isUniqueViolation(err) {
		return oops.Code(auth.CodeDuplicateEmail).Wrap(auth.ErrDuplicateEmail)
	}
	if err != nil {
		return oops.Code("VOLUNTEER_CREATE_FAILED").
			With("operation", "insert volunteer").
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a volunteer by ID.
func (r *VolunteerRepository) GetByID(ctx context.Context, id int64) (*auth.Volunteer, error) {
	v, err := r.getOne(ctx, `SELECT `+volunteerColumns+` FROM volunteer WHERE volunteer_id = $1`, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(auth.CodeVolunteerNotFound).With("volunteer_id", id).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("VOLUNTEER_GET_FAILED").
			With("operation", "get volunteer by id").
			With("volunteer_id", id).
			Wrap(err)
	}
	return v, nil
}

// GetByEmail retrieves a volunteer by exact email.
func (r *VolunteerRepository) GetByEmail(ctx context.Context, email string) (*auth.Volunteer, error) {
	v, err := r.getOne(ctx, `SELECT `+volunteerColumns+` FROM volunteer WHERE volunteer_email = $1`, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(auth.CodeVolunteerNotFound).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("VOLUNTEER_GET_FAILED").
			With("operation", "get volunteer by email").
			Wrap(err)
	}
	return v, nil
}

func (r *VolunteerRepository) getOne(ctx context.Context, sql string, arg any) (*auth.Volunteer, error) {
	var v *auth.Volunteer
	err := r.opts.withRetry(ctx, func(ctx context.Context) error {
		var scanErr error
		v, scanErr = scanVolunteer(r.db.QueryRow(ctx, sql, arg))
		return scanErr
	})
	return v, err
}

// List returns all volunteers ordered by ID.
func (r *VolunteerRepository) List(ctx context.Context) ([]*auth.Volunteer, error) {
	var volunteers []*auth.Volunteer
	err := r.opts.withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, `SELECT `+volunteerColumns+` FROM volunteer ORDER BY volunteer_id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		volunteers = volunteers[:0]
		for rows.Next() {
			v, err := scanVolunteer(rows)
			if err != nil {
				return err
			}
			volunteers = append(volunteers, v)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, oops.Code("VOLUNTEER_LIST_FAILED").
			With("operation", "list volunteers").
			Wrap(err)
	}
	return volunteers, nil
}

// UpdatePassword replaces the stored password hash.
func (r *VolunteerRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	var affected int64
	err := r.opts.withRetry(ctx, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, `
			UPDATE volunteer SET password = $2, updated_at = now()
			WHERE volunteer_id = $1
		`, id, passwordHash)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return oops.Code("VOLUNTEER_UPDATE_FAILED").
			With("operation", "update password").
			With("volunteer_id", id).
			Wrap(err)
	}
	if affected == 0 {
		return oops.Code(auth.CodeVolunteerNotFound).With("volunteer_id", id).Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes a volunteer and, by cascade, its sessions. It reports
// whether a row was removed.
func (r *VolunteerRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var affected int64
	err := r.opts.withRetry(ctx, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, `DELETE FROM volunteer WHERE volunteer_id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return false, oops.Code("VOLUNTEER_DELETE_FAILED").
			With("operation", "delete volunteer").
			With("volunteer_id", id).
			Wrap(err)
	}
	return affected > 0, nil
}

func scanVolunteer(row pgx.Row) (*auth.Volunteer, error) {
	var v auth.Volunteer
	var role string
	if err := row.Scan(&v.ID, &v.Name, &v.Email, &v.PasswordHash, &role, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	v.Role = auth.Role(role)
	return &v, nil
}

var _ auth.VolunteerRepository = (*VolunteerRepository)(nil)
