// Package auth implements the credential primitives of the service: bcrypt
// password digests and HS256-signed identity tokens.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
)

// TokenTTL is the fixed lifetime of every issued token.
const TokenTTL = 24 * time.Hour

var errEmptySecret = errors.New("auth: signing secret must not be empty")

// Claims is the signed token payload.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies stateless identity tokens. It holds no
// mutable state; the secret and clock are fixed at construction.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret []byte, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errEmptySecret
	}
	s := &TokenService{
		secret: append([]byte(nil), secret...),
		ttl:    TokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for identity, valid for TokenTTL from now.
func (s *TokenService) Issue(identity domain.Identity) (string, error) {
	now := s.now()
	claims := Claims{
		ID:    identity.ID,
		Email: identity.Email,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify checks signature, algorithm and expiry and returns the identity the
// token asserts. Every failure is a *domain.AuthError.
func (s *TokenService) Verify(token string) (domain.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, domain.NewAuthError(domain.AuthTokenExpired, err)
		}
		return domain.Identity{}, domain.NewAuthError(domain.AuthInvalidToken, err)
	}

	if claims.ID == "" || claims.Role == "" {
		return domain.Identity{}, domain.NewAuthError(domain.AuthInvalidToken, errors.New("token missing identity claims"))
	}

	return domain.Identity{ID: claims.ID, Email: claims.Email, Role: claims.Role}, nil
}
