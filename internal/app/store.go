package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/salesintel/sales-intelligence-api/internal/core/ports"
	"github.com/salesintel/sales-intelligence-api/internal/infrastructure/config"
	mongodb "github.com/salesintel/sales-intelligence-api/internal/infrastructure/db/mongo"
	"github.com/salesintel/sales-intelligence-api/internal/infrastructure/db/postgres"
)

// Store bundles the repositories of one backend with its lifecycle hooks.
type Store struct {
	Users    ports.UserRepository
	Sales    ports.SalesRepository
	Insights ports.InsightRepository

	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}

// OpenStore connects the backend named by cfg.StoreDriver and brings its
// schema up to date: goose migrations for Postgres, indexes for MongoDB.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		return openPostgres(ctx, cfg, log)
	case config.StoreMongo:
		return openMongo(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("app: unknown store driver %q", cfg.StoreDriver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:          cfg.Postgres.URL,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
		Timeout:      cfg.Postgres.ConnTimeout,
	})
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info().Msg("connected to postgres, migrations applied")

	return &Store{
		Users:    postgres.NewUserRepository(db),
		Sales:    postgres.NewSalesRepository(db),
		Insights: postgres.NewInsightRepository(db),
		Ping:     db.PingContext,
		Close:    func(context.Context) error { return db.Close() },
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, err
	}

	users := mongodb.NewUserRepository(db)
	sales := mongodb.NewSalesRepository(db)
	insights := mongodb.NewInsightRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, sales, insights); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb, indexes ensured")

	return &Store{
		Users:    users,
		Sales:    sales,
		Insights: insights,
		Ping:     func(ctx context.Context) error { return client.Ping(ctx, nil) },
		Close:    client.Disconnect,
	}, nil
}
