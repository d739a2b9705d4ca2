// Package app wires configuration, stores and the HTTP router into a
// runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/salesintel/sales-intelligence-api/internal/api"
	"github.com/salesintel/sales-intelligence-api/internal/api/handler"
	"github.com/salesintel/sales-intelligence-api/internal/api/middleware"
	"github.com/salesintel/sales-intelligence-api/internal/core/auth"
	"github.com/salesintel/sales-intelligence-api/internal/core/service"
	"github.com/salesintel/sales-intelligence-api/internal/infrastructure/config"
	redisdb "github.com/salesintel/sales-intelligence-api/internal/infrastructure/db/redis"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// App is a fully wired server. Close releases the store and limiter
// connections opened by New.
type App struct {
	cfg    *config.Config
	log    zerolog.Logger
	echo   *echo.Echo
	closer []func(context.Context) error
}

// New connects the configured store (running migrations or index creation),
// connects Redis when it backs the rate limiter, and builds the router.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	secret, err := cfg.SigningSecret(log)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenService(secret)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log}

	st, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.closer = append(a.closer, st.Close)

	checks := map[string]handler.CheckFunc{cfg.StoreDriver: st.Ping}

	authStore, apiStore, err := a.limiterStores(ctx, checks)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	a.echo = api.NewRouter(api.Deps{
		Log:             log,
		Tokens:          tokens,
		AuthService:     service.NewAuthService(st.Users, auth.NewBcryptHasher(cfg.BcryptCost), tokens, log),
		SalesService:    service.NewSalesService(st.Sales, log),
		InsightService:  service.NewInsightService(st.Insights, st.Sales, log),
		AuthLimiter:     authStore,
		APILimiter:      apiStore,
		ReadinessChecks: checks,
		CORSOrigins:     cfg.CORSOrigins,
	})
	return a, nil
}

// limiterStores returns the auth and api limiter stores for the configured
// backend, registering a readiness check when Redis is used.
func (a *App) limiterStores(ctx context.Context, checks map[string]handler.CheckFunc) (authStore, apiStore echomiddleware.RateLimiterStore, err error) {
	rl := a.cfg.RateLimit
	if rl.Backend != config.RateLimitRedis {
		return middleware.NewMemoryStore(rl.AuthLimit, rl.AuthWindow),
			middleware.NewMemoryStore(rl.APILimit, rl.APIWindow),
			nil
	}

	client, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	a.closer = append(a.closer, func(context.Context) error { return client.Close() })
	checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }

	a.log.Info().Str("addr", a.cfg.Redis.Addr).Msg("rate limiter backed by redis")
	return redisdb.NewRateLimitStore(client, "auth", rl.AuthLimit, rl.AuthWindow),
		redisdb.NewRateLimitStore(client, "api", rl.APILimit, rl.APIWindow),
		nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	return serve(ctx, newServer(":"+a.cfg.Port, a.echo), a.log)
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closer) - 1; i >= 0; i-- {
		if err := a.closer[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closer = nil
	return errors.Join(errs...)
}

func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

func serve(ctx context.Context, srv *http.Server, log zerolog.Logger) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
