// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/litterpick/litterpick/pkg/errutil"
)

// maxSessionAttempts bounds refresh token regeneration on id collisions.
const maxSessionAttempts = 3

// AccessTokenSigner issues and verifies access tokens.
type AccessTokenSigner interface {
	Sign(claims AccessClaims, ttl time.Duration) (string, error)
	Verify(token string) (*AccessClaims, error)
}

// RegisterInput holds the fields accepted by Register.
// An empty Role defaults to RoleAttendee.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             *AuthUser
}

// RefreshResult is returned by a successful Refresh.
type RefreshResult struct {
	AccessToken string
	User        *AuthUser
}

// Service provides authentication operations.
type Service struct {
	volunteers VolunteerRepository
	sessions   SessionRepository
	hasher     PasswordHasher
	signer     AccessTokenSigner
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithRefreshTTL sets the refresh token lifetime. Non-positive values keep
// DefaultRefreshTokenTTL.
func WithRefreshTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
	}
}

// WithAccessTTL sets the access token lifetime passed to the signer.
// Zero uses the signer's own default.
func WithAccessTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.accessTTL = ttl
	}
}

// WithClock overrides the service clock.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewAuthService creates a new Service. All repository, hasher and signer
// dependencies are required.
func NewAuthService(
	volunteers VolunteerRepository,
	sessions SessionRepository,
	hasher PasswordHasher,
	signer AccessTokenSigner,
	opts ...ServiceOption,
) (*Service, error) {
	if volunteers == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("volunteers repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("sessions repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("password hasher is required")
	}
	if signer == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("token signer is required")
	}

	s := &Service{
		volunteers: volunteers,
		sessions:   sessions,
		hasher:     hasher,
		signer:     signer,
		refreshTTL: DefaultRefreshTokenTTL,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("logger cannot be nil")
	}
	if s.now == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("clock cannot be nil")
	}
	return s, nil
}

// RefreshTTL returns the configured refresh token lifetime.
func (s *Service) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// dummyPasswordHash is verified when the email is unknown so that the
// response time matches the wrong-password path.
//
//nolint:gosec // G101: intentionally fake hash, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Register creates a new volunteer. No session is created.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthUser, error) {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "volunteer_name")
	}
	if strings.TrimSpace(in.Email) == "" {
		missing = append(missing, "volunteer_email")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, oops.Code(CodeValidation).
			With("missing", missing).
			Errorf("missing fields: %s", strings.Join(missing, ", "))
	}

	role := RoleAttendee
	if in.Role != "" {
		parsed, err := ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, oops.With("operation", "hash password").Wrap(err)
	}

	volunteer, err := NewVolunteer(in.Name, in.Email, hash, role)
	if err != nil {
		return nil, err
	}

	if err := s.volunteers.Create(ctx, volunteer); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, oops.Code(CodeDuplicateEmail).Wrap(ErrDuplicateEmail)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create volunteer").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "volunteer registered",
		"volunteer_id", volunteer.ID,
		"role", volunteer.Role.String())

	return volunteer.AuthUser(), nil
}

// Login authenticates a volunteer by email and password and persists a new
// refresh-token session before returning. Unknown emails and wrong
// passwords produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, oops.Code(CodeValidation).Errorf("email and password are required")
	}

	volunteer, lookupErr := s.volunteers.GetByEmail(ctx, email)

	var targetHash string
	var exists bool
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get volunteer by email").
				Wrap(lookupErr)
		}
		targetHash = dummyPasswordHash
	} else {
		targetHash = volunteer.PasswordHash
		exists = true
	}

	// Always verify, so unknown emails cost the same as wrong passwords.
	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if exists {
			errutil.LogError(s.logger, "stored credential is corrupt",
				oops.With("volunteer_id", volunteer.ID).Wrap(verifyErr))
		}
		return nil, errInvalidCredentials()
	}
	if !exists || !valid {
		return nil, errInvalidCredentials()
	}

	s.upgradeHash(ctx, volunteer, password)

	user := volunteer.AuthUser()
	accessToken, err := s.signer.Sign(AccessClaims{VolunteerID: user.ID, Role: user.Role}, s.accessTTL)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "sign access token").
			Wrap(err)
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "volunteer logged in", "volunteer_id", user.ID)

	return &LoginResult{
		AccessToken:      accessToken,
		RefreshToken:     session.TokenID,
		RefreshExpiresAt: session.ExpiresAt,
		User:             user,
	}, nil
}

// Refresh issues a new access token for a live refresh token. The session
// itself is left untouched.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, oops.Code(CodeMissingToken).Errorf("refresh token is required")
	}

	user, err := s.sessions.FindUserByTokenID(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeInvalidRefreshToken).Errorf("invalid refresh token")
		}
		return nil, oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "find user by token").
			Wrap(err)
	}

	accessToken, err := s.signer.Sign(AccessClaims{VolunteerID: user.ID, Role: user.Role}, s.accessTTL)
	if err != nil {
		return nil, oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "sign access token").
			Wrap(err)
	}

	return &RefreshResult{AccessToken: accessToken, User: user}, nil
}

// Logout deletes the session for refreshToken. An empty or unknown token
// is not an error.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	deleted, err := s.sessions.DeleteByTokenID(ctx, refreshToken)
	if err != nil {
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}

	s.logger.DebugContext(ctx, "logout", "session_found", deleted)
	return nil
}

// VerifyAccessToken validates an access token and returns its claims.
func (s *Service) VerifyAccessToken(token string) (*AccessClaims, error) {
	return s.signer.Verify(token) //nolint:wrapcheck // signer errors already carry codes
}

// createSession persists a new refresh-token session, regenerating the
// token on the unlikely event of an id collision.
func (s *Service) createSession(ctx context.Context, volunteerID int64) (*Session, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.refreshTTL)

	var lastErr error
	for attempt := 1; attempt <= maxSessionAttempts; attempt++ {
		token, err := GenerateRefreshToken()
		if err != nil {
			return nil, oops.Code("AUTH_LOGIN_FAILED").Wrap(err)
		}

		session, err := NewSession(token, volunteerID, issuedAt, expiresAt)
		if err != nil {
			return nil, oops.Code("AUTH_LOGIN_FAILED").Wrap(err)
		}

		err = s.sessions.Create(ctx, session)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, ErrDuplicateToken) {
			return nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
				With("operation", "persist session").
				Wrap(err)
		}

		lastErr = err
		s.logger.WarnContext(ctx, "refresh token collision, regenerating", "attempt", attempt)
	}

	return nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
		With("attempts", maxSessionAttempts).
		Wrap(lastErr)
}

// upgradeHash re-hashes the password when the stored hash uses outdated
// parameters. Failures are logged; login succeeds regardless.
func (s *Service) upgradeHash(ctx context.Context, volunteer *Volunteer, password string) {
	if !s.hasher.NeedsUpgrade(volunteer.PasswordHash) {
		return
	}

	newHash, err := s.hasher.Hash(password)
	if err != nil {
		errutil.LogError(s.logger, "password rehash failed", err)
		return
	}
	if err := s.volunteers.UpdatePassword(ctx, volunteer.ID, newHash); err != nil {
		errutil.LogError(s.logger, "password hash upgrade failed", err)
		return
	}
	volunteer.PasswordHash = newHash
}

func errInvalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Errorf("invalid email or password")
}
