package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
	"github.com/salesintel/sales-intelligence-api/internal/core/ports"
)

const (
	msgRegistrationFailed = "Registration failed"
	msgLoginFailed        = "Login failed"

	minPasswordLength = 6
	maxPasswordBytes  = 72

	timingPassword = "timing-equalisation-placeholder"
	// fallbackTimingHash is timingPassword at bcrypt cost 10, used when the
	// hasher cannot produce one at the configured cost.
	fallbackTimingHash = "$2a$10$4sbAONq9rtShB.0x4wiUVOjJss8/bsiKjVsjcpuo4EHaiU74eEZiC"
)

// AuthService implements registration and login.
type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	logger zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	role := input.Role
	if role == "" {
		role = domain.DefaultRole
	}
	if err := validateRegistration(input, role); err != nil {
		return nil, err
	}

	_, err := s.users.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return nil, domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		s.logger.Error().Err(err).Msg("register: lookup failed")
		return nil, domain.Unexpected(msgRegistrationFailed, err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("register: hash failed")
		return nil, domain.Unexpected(msgRegistrationFailed, err)
	}

	created, err := s.users.Create(ctx, &domain.User{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("register: insert failed")
		return nil, domain.Unexpected(msgRegistrationFailed, err)
	}

	token, err := s.tokens.Issue(created.Identity())
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", created.ID).Msg("register: token issue failed")
		return nil, domain.Unexpected(msgRegistrationFailed, err)
	}

	s.logger.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("user registered")
	return &ports.AuthResult{Token: token, User: created}, nil
}

// Login answers ErrInvalidCredentials for both an unknown email and a wrong
// password. A bcrypt comparison runs on both paths.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.NewValidationError("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(password, s.timingHash())
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Msg("login: lookup failed")
		return nil, domain.Unexpected(msgLoginFailed, err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("login: token issue failed")
		return nil, domain.Unexpected(msgLoginFailed, err)
	}

	return &ports.AuthResult{Token: token, User: user}, nil
}

// timingHash is a digest of a throwaway password at the configured cost. It
// is never empty, so the unknown-email path always pays for a comparison.
func (s *AuthService) timingHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(timingPassword)
		if err != nil || hash == "" {
			s.logger.Warn().Err(err).Msg("could not prepare timing hash, using fallback digest")
			hash = fallbackTimingHash
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func validateRegistration(input ports.RegisterInput, role string) error {
	switch {
	case strings.TrimSpace(input.Email) == "" || input.Password == "" || strings.TrimSpace(input.Name) == "":
		return domain.NewValidationError("Email, password and name are required")
	case !strings.Contains(input.Email, "@"):
		return domain.NewValidationError("Invalid email address")
	case len(input.Password) < minPasswordLength:
		return domain.NewValidationError("Password must be at least %d characters", minPasswordLength)
	case len(input.Password) > maxPasswordBytes:
		return domain.NewValidationError("Password must be at most %d bytes", maxPasswordBytes)
	case !domain.ValidRole(role):
		return domain.NewValidationError("Invalid role %q", role)
	}
	return nil
}
