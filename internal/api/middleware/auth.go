package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
	"github.com/salesintel/sales-intelligence-api/internal/core/ports"
	"github.com/salesintel/sales-intelligence-api/internal/metrics"
)

const bearerPrefix = "Bearer "

// IdentityKey is the echo context key holding the verified domain.Identity.
const IdentityKey = "identity"

// Auth verifies the bearer token and attaches the caller's identity to both
// the echo context and the request context. It never consults the store.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return reject(domain.NewAuthError(domain.AuthMissingToken, nil))
			}

			token, ok := strings.CutPrefix(header, bearerPrefix)
			if !ok {
				return reject(domain.NewAuthError(domain.AuthMalformedHeader, nil))
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				var authErr *domain.AuthError
				if !errors.As(err, &authErr) {
					authErr = domain.NewAuthError(domain.AuthInvalidToken, err)
				}
				return reject(authErr)
			}

			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
			SetIdentity(c, identity)
			return next(c)
		}
	}
}

// SetIdentity stores identity on c and on a copy of its request context.
func SetIdentity(c echo.Context, identity domain.Identity) {
	c.Set(IdentityKey, identity)
	req := c.Request()
	c.SetRequest(req.WithContext(domain.ContextWithIdentity(req.Context(), identity)))
}

// IdentityFrom returns the identity set by Auth.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	identity, ok := c.Get(IdentityKey).(domain.Identity)
	return identity, ok
}

func reject(err *domain.AuthError) error {
	metrics.TokenVerificationsTotal.WithLabelValues(err.Kind.String()).Inc()
	return err
}
