// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

// Package authtest provides in-memory implementations of the auth
// repositories for tests.
package authtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/litterpick/litterpick/internal/auth"
)

// VolunteerStore is an in-memory auth.VolunteerRepository.
type VolunteerStore struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]auth.Volunteer
	byEmail map[string]int64
}

// NewVolunteerStore creates an empty VolunteerStore.
func NewVolunteerStore() *VolunteerStore {
	return &VolunteerStore{
		byID:    make(map[int64]auth.Volunteer),
		byEmail: make(map[string]int64),
	}
}

// Create stores a new volunteer and assigns its ID.
func (s *VolunteerStore) Create(_ context.Context, v *auth.Volunteer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[v.Email]; taken {
		return oops.Code(auth.CodeDuplicateEmail).Wrap(auth.ErrDuplicateEmail)
	}

	s.nextID++
	v.ID = s.nextID
	s.byID[v.ID] = *v
	s.byEmail[v.Email] = v.ID
	return nil
}

// GetByID retrieves a volunteer by ID.
func (s *VolunteerStore) GetByID(_ context.Context, id int64) (*auth.Volunteer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.byID[id]
	if !ok {
		return nil, oops.Code(auth.CodeVolunteerNotFound).With("volunteer_id", id).Wrap(auth.ErrNotFound)
	}
	return &v, nil
}

// GetByEmail retrieves a volunteer by exact email.
func (s *VolunteerStore) GetByEmail(_ context.Context, email string) (*auth.Volunteer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, oops.Code(auth.CodeVolunteerNotFound).Wrap(auth.ErrNotFound)
	}
	v := s.byID[id]
	return &v, nil
}

// List returns all volunteers ordered by ID.
func (s *VolunteerStore) List(_ context.Context) ([]*auth.Volunteer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*auth.Volunteer, 0, len(s.byID))
	for _, v := range s.byID {
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdatePassword replaces the stored password hash.
func (s *VolunteerStore) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.byID[id]
	if !ok {
		return oops.Code(auth.CodeVolunteerNotFound).With("volunteer_id", id).Wrap(auth.ErrNotFound)
	}
	v.PasswordHash = passwordHash
	v.UpdatedAt = time.Now()
	s.byID[id] = v
	return nil
}

// Delete removes a volunteer. Sessions are left in place so callers can
// exercise the orphaned-session path.
func (s *VolunteerStore) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	delete(s.byID, id)
	delete(s.byEmail, v.Email)
	return true, nil
}

func (s *VolunteerStore) lookup(id int64) (auth.Volunteer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byID[id]
	return v, ok
}

// SessionStore is an in-memory auth.SessionRepository. Expiry is checked
// at read time against its clock.
type SessionStore struct {
	mu         sync.Mutex
	sessions   map[string]auth.Session
	volunteers *VolunteerStore
	now        func() time.Time
}

// NewSessionStore creates an empty SessionStore that resolves owners
// through volunteers. A nil clock uses time.Now.
func NewSessionStore(volunteers *VolunteerStore, now func() time.Time) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		sessions:   make(map[string]auth.Session),
		volunteers: volunteers,
		now:        now,
	}
}

// Create stores a new session.
func (s *SessionStore) Create(_ context.Context, session *auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.TokenID]; exists {
		return oops.Code(auth.CodeDuplicateToken).Wrap(auth.ErrDuplicateToken)
	}
	s.sessions[session.TokenID] = *session
	return nil
}

// FindByTokenID retrieves a session by token id.
func (s *SessionStore) FindByTokenID(_ context.Context, tokenID string) (*auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[tokenID]
	if !ok {
		return nil, oops.Code(auth.CodeSessionNotFound).Wrap(auth.ErrNotFound)
	}
	return &session, nil
}

// FindUserByTokenID returns the owner of a live session.
func (s *SessionStore) FindUserByTokenID(_ context.Context, tokenID string) (*auth.AuthUser, error) {
	s.mu.Lock()
	session, ok := s.sessions[tokenID]
	s.mu.Unlock()

	if !ok || session.IsExpiredAt(s.now()) {
		return nil, oops.Code(auth.CodeSessionNotFound).Wrap(auth.ErrNotFound)
	}

	volunteer, ok := s.volunteers.lookup(session.VolunteerID)
	if !ok {
		return nil, oops.Code(auth.CodeSessionNotFound).Wrap(auth.ErrNotFound)
	}
	return volunteer.AuthUser(), nil
}

// DeleteByTokenID removes a session and reports whether it existed.
func (s *SessionStore) DeleteByTokenID(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[tokenID]; !ok {
		return false, nil
	}
	delete(s.sessions, tokenID)
	return true, nil
}

// List returns every stored session, newest first.
func (s *SessionStore) List(_ context.Context) ([]*auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*auth.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, &session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	return out, nil
}

// DeleteExpired removes sessions expiring at or before the given time.
func (s *SessionStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, session := range s.sessions {
		if session.IsExpiredAt(before) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// Put stores a session without validation. Useful for seeding expired rows.
func (s *SessionStore) Put(session auth.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.TokenID] = session
}

// Len returns the number of stored sessions, expired or not.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

var (
	_ auth.VolunteerRepository = (*VolunteerStore)(nil)
	_ auth.SessionRepository   = (*SessionStore)(nil)
)
