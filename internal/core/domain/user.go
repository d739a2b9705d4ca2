package domain

import "time"

const (
	RoleAdmin    = "admin"
	RoleSalesman = "salesman"
	RoleManager  = "manager"
)

// DefaultRole is assigned when registration omits a role.
const DefaultRole = RoleSalesman

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSalesman, RoleManager:
		return true
	}
	return false
}

// User models a registered account in the credential store.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity returns the token-bearing subset of the user.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}
