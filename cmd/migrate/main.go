package main

import (
	"context"
	"fmt"
	"os"

	"quiz-ai-cache/internal/config"
	"quiz-ai-cache/internal/database"
	"quiz-ai-cache/internal/logger"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	flags := pflag.NewFlagSet("migrate", pflag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: migrate [up|down] [flags]")
		flags.PrintDefaults()
	}
	flags.String("config", "", "path to config.yaml")
	flags.String("store", "", "store backend: postgres or oracle")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	_ = flags.Parse(os.Args[1:])

	direction := "up"
	if flags.NArg() > 0 {
		direction = flags.Arg(0)
	}

	cfg, err := config.LoadConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateStore(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	l := logger.Get()

	if err := migrate(context.Background(), cfg, direction, l); err != nil {
		l.Error("Migration failed", zap.String("backend", cfg.Store.Backend), zap.String("direction", direction), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func migrate(ctx context.Context, cfg *config.Config, direction string, l *zap.Logger) error {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		switch direction {
		case "up":
			return database.RunMigrations(cfg.Store.DSN, l)
		case "down":
			return database.RollbackMigrations(cfg.Store.DSN, l)
		}
		return fmt.Errorf("unknown direction %q", direction)

	case config.StoreOracle:
		if direction != "up" {
			return fmt.Errorf("oracle schema supports only up")
		}
		db, err := database.NewSQLXDB(ctx, database.DriverOracle, cfg.Store.DSN, l)
		if err != nil {
			return err
		}
		defer db.Close()
		return database.ApplyOracleSchema(ctx, db.DB, l)
	}
	return fmt.Errorf("backend %q has no managed schema; apply migrations on the hosted database", cfg.Store.Backend)
}
