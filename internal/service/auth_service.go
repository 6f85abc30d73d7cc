package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace/internal/auth"
	"github.com/spec-kit/marketplace/internal/config"
	"github.com/spec-kit/marketplace/internal/domain"
	"github.com/spec-kit/marketplace/internal/repository"
	apperrors "github.com/spec-kit/marketplace/pkg/util"
)

// timingPlaceholder is hashed once at startup and compared against when the
// email is unknown, so both login failures cost one bcrypt comparison.
const timingPlaceholder = "placeholder-password-for-unknown-accounts"

// ThrottleRecorder is notified when a login is rejected by the throttle.
type ThrottleRecorder interface {
	RecordThrottled()
}

// AuthService coordinates registration, login and profile flows.
type AuthService struct {
	users       repository.UserRepository
	attempts    repository.LoginAttemptRepository
	verifier    auth.CredentialVerifier
	codec       *auth.Codec
	maxAttempts int
	window      time.Duration
	dummyHash   string
	logger      *zap.Logger
	throttled   ThrottleRecorder
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Users    repository.UserRepository
	Attempts repository.LoginAttemptRepository
	Verifier auth.CredentialVerifier
	Codec    *auth.Codec
	Logger   *zap.Logger
	Throttle ThrottleRecorder
}

// NewAuthService builds the service. A nil Attempts repository disables
// login throttling.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) (*AuthService, error) {
	if deps.Users == nil || deps.Verifier == nil || deps.Codec == nil {
		return nil, errors.New("auth service: users, verifier and codec are required")
	}
	dummy, err := deps.Verifier.Hash(timingPlaceholder)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:       deps.Users,
		attempts:    deps.Attempts,
		verifier:    deps.Verifier,
		codec:       deps.Codec,
		maxAttempts: cfg.LoginMaxAttempts,
		window:      cfg.LoginWindow(),
		dummyHash:   dummy,
		logger:      logger,
		throttled:   deps.Throttle,
	}, nil
}

// Register creates a BUYER account. Elevated roles are granted by an admin.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("user already exists", nil)
	} else if !apperrors.IsNoRows(err) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := s.verifier.Hash(password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleBuyer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("user already exists", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("account registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and issues a session token for the stored role.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = domain.NormalizeEmail(email)
	if err := s.checkThrottle(ctx, email); err != nil {
		return nil, "", err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !apperrors.IsNoRows(err) {
			return nil, "", apperrors.NewInternalError(err)
		}
		s.verifier.Verify(password, s.dummyHash)
		s.recordFailure(ctx, email)
		return nil, "", apperrors.NewUnauthorized("invalid credentials")
	}

	if !s.verifier.Verify(password, user.PasswordHash) {
		s.recordFailure(ctx, email)
		return nil, "", apperrors.NewUnauthorized("invalid credentials")
	}

	token, _, err := s.codec.Issue(auth.Claims{SubjectID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}
	s.resetFailures(ctx, email)
	return user, token, nil
}

// Profile returns the caller's own account.
func (s *AuthService) Profile(ctx context.Context, subjectID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, subjectID)
	if err != nil {
		if apperrors.IsNoRows(err) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// UpdateProfile changes the caller's display name.
func (s *AuthService) UpdateProfile(ctx context.Context, subjectID, name string) (*domain.User, error) {
	user, err := s.Profile(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	user.Name = strings.TrimSpace(name)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

func (s *AuthService) checkThrottle(ctx context.Context, email string) error {
	if s.attempts == nil || s.maxAttempts <= 0 {
		return nil
	}
	failures, err := s.attempts.Failures(ctx, email)
	if err != nil {
		s.logger.Warn("login throttle unavailable", zap.Error(err))
		return nil
	}
	if failures >= int64(s.maxAttempts) {
		if s.throttled != nil {
			s.throttled.RecordThrottled()
		}
		return apperrors.NewTooManyRequests("too many failed login attempts")
	}
	return nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.attempts == nil || s.maxAttempts <= 0 {
		return
	}
	if _, err := s.attempts.RecordFailure(ctx, email, s.window); err != nil {
		s.logger.Warn("record login failure", zap.Error(err))
	}
}

func (s *AuthService) resetFailures(ctx context.Context, email string) {
	if s.attempts == nil || s.maxAttempts <= 0 {
		return
	}
	if err := s.attempts.Reset(ctx, email); err != nil {
		s.logger.Warn("reset login failures", zap.Error(err))
	}
}
