// Command salesintel-admin seeds users and manages the database schema
// without going through the HTTP surface.
//
//	salesintel-admin create-user -email admin@example.com -name Admin -role admin
//	salesintel-admin migrate [up|status]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/salesintel/sales-intelligence-api/internal/app"
	"github.com/salesintel/sales-intelligence-api/internal/core/auth"
	"github.com/salesintel/sales-intelligence-api/internal/core/service"
	"github.com/salesintel/sales-intelligence-api/internal/infrastructure/config"
	"github.com/salesintel/sales-intelligence-api/internal/infrastructure/db/postgres"
	"github.com/salesintel/sales-intelligence-api/pkg/logger"
)

const usage = `usage: salesintel-admin <command> [flags]

commands:
  create-user  -email <email> -name <name> [-role admin|manager|salesman]
  migrate      [up|status]
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "salesintel-admin"})

	switch args[0] {
	case "create-user":
		return createUserCmd(ctx, cfg, log, args[1:], stdin, stdout)
	case "migrate":
		return migrateCmd(ctx, cfg, log, args[1:])
	default:
		return errUsage
	}
}

func createUserCmd(ctx context.Context, cfg *config.Config, log zerolog.Logger, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "user email")
	name := fs.String("name", "", "display name")
	role := fs.String("role", "admin", "admin, manager or salesman")
	if err := fs.Parse(args); err != nil || *email == "" || *name == "" {
		return errUsage
	}

	password, err := promptPassword(stdin, stdout)
	if err != nil {
		return err
	}

	secret, err := cfg.SigningSecret(log)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenService(secret)
	if err != nil {
		return err
	}

	st, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close(context.WithoutCancel(ctx))

	svc := service.NewAuthService(st.Users, auth.NewBcryptHasher(cfg.BcryptCost), tokens, log)
	return createUser(ctx, svc, *email, *name, *role, password, stdout)
}

func migrateCmd(ctx context.Context, cfg *config.Config, log zerolog.Logger, args []string) error {
	action := "up"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "up":
		st, err := app.OpenStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		log.Info().Str("store", cfg.StoreDriver).Msg("schema is up to date")
		return st.Close(ctx)
	case "status":
		if cfg.StoreDriver != config.StorePostgres {
			return fmt.Errorf("migrate status is only available for the %s store", config.StorePostgres)
		}
		db, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL, Timeout: cfg.Postgres.ConnTimeout})
		if err != nil {
			return err
		}
		defer db.Close()
		return postgres.MigrationStatus(ctx, db)
	default:
		return errUsage
	}
}
