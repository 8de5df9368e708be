// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Role is the closed set of volunteer roles.
type Role string

// Volunteer roles.
const (
	RoleAdmin    Role = "admin"
	RoleAttendee Role = "attendee"
)

// ParseRole converts s into a Role. Unknown values are rejected.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleAttendee:
		return RoleAttendee, nil
	default:
		return "", oops.Code(CodeValidation).
			With("role", s).
			Errorf("role must be %q or %q", RoleAdmin, RoleAttendee)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleAttendee
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// Volunteer is a registered identity.
type Volunteer struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewVolunteer creates a validated Volunteer ready to be persisted.
// The ID is assigned by the repository on Create.
func NewVolunteer(name, email, passwordHash string, role Role) (*Volunteer, error) {
	var missing []string
	if strings.TrimSpace(name) == "" {
		missing = append(missing, "volunteer_name")
	}
	if strings.TrimSpace(email) == "" {
		missing = append(missing, "volunteer_email")
	}
	if passwordHash == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, oops.Code(CodeValidation).
			With("missing", missing).
			Errorf("missing fields: %s", strings.Join(missing, ", "))
	}
	if !role.Valid() {
		return nil, oops.Code(CodeValidation).With("role", string(role)).Errorf("invalid role")
	}

	now := time.Now()
	return &Volunteer{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// AuthUser returns the password-free projection of v.
func (v *Volunteer) AuthUser() *AuthUser {
	return &AuthUser{
		ID:    v.ID,
		Name:  v.Name,
		Email: v.Email,
		Role:  v.Role,
	}
}

// AuthUser is the read-only projection of a Volunteer returned by
// authentication operations. It never carries the password hash.
type AuthUser struct {
	ID    int64  `json:"volunteer_id"`
	Name  string `json:"volunteer_name"`
	Email string `json:"volunteer_email"`
	Role  Role   `json:"role"`
}

// VolunteerRepository manages volunteer persistence.
type VolunteerRepository interface {
	// Create stores a new volunteer and assigns its ID.
	// Returns an error wrapping ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, volunteer *Volunteer) error

	// GetByID retrieves a volunteer by ID.
	GetByID(ctx context.Context, id int64) (*Volunteer, error)

	// GetByEmail retrieves a volunteer by exact email.
	GetByEmail(ctx context.Context, email string) (*Volunteer, error)

	// List returns all volunteers ordered by ID.
	List(ctx context.Context) ([]*Volunteer, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// Delete removes a volunteer. Returns false if no row existed.
	Delete(ctx context.Context, id int64) (bool, error)
}
