package ports

import (
	"context"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
)

// PasswordHasher produces and checks one-way salted password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(identity domain.Identity) (string, error)
}

// TokenVerifier checks identity tokens. Failures are *domain.AuthError.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// RegisterInput carries the registration payload. An empty Role means the
// default role.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}
