package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
)

// Client-facing messages. Auth failures are deliberately uninformative.
const (
	msgNoToken            = "No token provided"
	msgInvalidToken       = "Invalid token"
	msgInvalidCredentials = "Invalid credentials"
	msgUserExists         = "User already exists"
	msgForbidden          = "Access forbidden"
	msgSalesNotFound      = "Sales record not found"
	msgUserNotFound       = "User not found"
	msgInternal           = "Internal server error"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if err == nil || c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (router 404/405, rate limiter denials).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			logUnexpected(log, c, he.Internal, he.Code)
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		if authErr.Kind == domain.AuthMissingToken || authErr.Kind == domain.AuthMalformedHeader {
			return http.StatusUnauthorized, msgNoToken
		}
		return http.StatusUnauthorized, msgInvalidToken
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Message
	}

	switch {
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusBadRequest, msgUserExists
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, msgForbidden
	case errors.Is(err, domain.ErrSalesRecordNotFound):
		return http.StatusNotFound, msgSalesNotFound
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, msgUserNotFound
	}

	// Unexpected errors: log the real cause, return only the generic message.
	logUnexpected(log, c, err, http.StatusInternalServerError)

	var ue *domain.UnexpectedError
	if errors.As(err, &ue) && ue.Message != "" {
		return http.StatusInternalServerError, ue.Message
	}
	return http.StatusInternalServerError, msgInternal
}

func logUnexpected(log zerolog.Logger, c echo.Context, err error, status int) {
	log.Error().
		Err(err).
		Int("status", status).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
