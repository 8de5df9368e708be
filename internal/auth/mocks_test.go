// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package auth_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/litterpick/litterpick/internal/auth"
)

type mockVolunteerRepository struct {
	mock.Mock
}

func newMockVolunteerRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *mockVolunteerRepository {
	m := &mockVolunteerRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockVolunteerRepository) Create(ctx context.Context, v *auth.Volunteer) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *mockVolunteerRepository) GetByID(ctx context.Context, id int64) (*auth.Volunteer, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*auth.Volunteer)
	return v, args.Error(1)
}

func (m *mockVolunteerRepository) GetByEmail(ctx context.Context, email string) (*auth.Volunteer, error) {
	args := m.Called(ctx, email)
	v, _ := args.Get(0).(*auth.Volunteer)
	return v, args.Error(1)
}

func (m *mockVolunteerRepository) List(ctx context.Context) ([]*auth.Volunteer, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]*auth.Volunteer)
	return v, args.Error(1)
}

func (m *mockVolunteerRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *mockVolunteerRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockSessionRepository struct {
	mock.Mock
}

func newMockSessionRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *mockSessionRepository {
	m := &mockSessionRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockSessionRepository) Create(ctx context.Context, s *auth.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSessionRepository) FindByTokenID(ctx context.Context, tokenID string) (*auth.Session, error) {
	args := m.Called(ctx, tokenID)
	s, _ := args.Get(0).(*auth.Session)
	return s, args.Error(1)
}

func (m *mockSessionRepository) FindUserByTokenID(ctx context.Context, tokenID string) (*auth.AuthUser, error) {
	args := m.Called(ctx, tokenID)
	u, _ := args.Get(0).(*auth.AuthUser)
	return u, args.Error(1)
}

func (m *mockSessionRepository) DeleteByTokenID(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessionRepository) List(ctx context.Context) ([]*auth.Session, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]*auth.Session)
	return s, args.Error(1)
}

func (m *mockSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type mockPasswordHasher struct {
	mock.Mock
}

func newMockPasswordHasher(t interface {
	mock.TestingT
	Cleanup(func())
}) *mockPasswordHasher {
	m := &mockPasswordHasher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

func (m *mockPasswordHasher) NeedsUpgrade(hash string) bool {
	args := m.Called(hash)
	return args.Bool(0)
}
