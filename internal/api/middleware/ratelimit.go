package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/salesintel/sales-intelligence-api/internal/metrics"
)

// TooManyRequestsMessage is returned with every 429.
const TooManyRequestsMessage = "Too many requests, please try again later"

// NewMemoryStore returns an in-process limiter allowing about limit requests
// per window for each client, with bursts of up to limit.
func NewMemoryStore(limit int, window time.Duration) echomiddleware.RateLimiterStore {
	return echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(limit) / window.Seconds()),
		Burst:     limit,
		ExpiresIn: window,
	})
}

// RateLimit rejects clients, keyed by real IP, once store denies them. A
// store error also denies the request and is logged.
func RateLimit(route string, store echomiddleware.RateLimiterStore, log zerolog.Logger) echo.MiddlewareFunc {
	tooMany := func() error {
		metrics.RateLimitedTotal.WithLabelValues(route).Inc()
		return echo.NewHTTPError(http.StatusTooManyRequests, TooManyRequestsMessage)
	}

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			log.Error().Err(err).Str("route", route).Msg("rate limiter: identifier extraction failed")
			return tooMany()
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			if err != nil {
				log.Error().Err(err).Str("route", route).Str("client", identifier).Msg("rate limiter: store error")
			}
			return tooMany()
		},
	})
}
