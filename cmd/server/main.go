// @title                       Sales Intelligence API
// @version                     1.0
// @description                 Sales pipeline records, insights and dashboard aggregates behind JWT auth.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/salesintel/sales-intelligence-api/internal/app"
	"github.com/salesintel/sales-intelligence-api/internal/infrastructure/config"
	"github.com/salesintel/sales-intelligence-api/pkg/logger"
)

const serviceName = "salesintel-api"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Service: serviceName})
		bootLog.Error().Err(err).Msg("failed to load configuration")
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
	})

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to start")
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := application.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("failed to release resources")
		}
	}()

	log.Info().
		Str("env", cfg.Env).
		Str("store", cfg.StoreDriver).
		Str("rate_limit_backend", cfg.RateLimit.Backend).
		Msg("sales intelligence api starting")

	if err := application.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
