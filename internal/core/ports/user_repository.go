package ports

import (
	"context"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
)

// UserRepository is the credential store. Lookups are exact, case-sensitive
// matches on email.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no user has that email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create persists user and returns it with ID and CreatedAt populated.
	// A uniqueness violation on email is reported as domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
