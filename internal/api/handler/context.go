package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
)

// ctxIdentity returns the caller attached by the Auth middleware. Routes that
// reach a handler without one were mounted outside the auth group, which is
// reported as a missing token rather than a server error.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	identity, ok := domain.IdentityFromContext(c.Request().Context())
	if !ok || identity.ID == "" {
		return domain.Identity{}, domain.NewAuthError(domain.AuthMissingToken, nil)
	}
	return identity, nil
}
