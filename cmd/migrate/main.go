package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ranjit-agency/site/internal/app"
	"github.com/ranjit-agency/site/internal/config"
	"github.com/ranjit-agency/site/internal/pkg/distlock"
	"github.com/ranjit-agency/site/internal/pkg/logger"
	"github.com/ranjit-agency/site/internal/repository/postgres"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	listOnly := flag.Bool("list", false, "list embedded migrations and exit")
	timeout := flag.Duration("timeout", 2*time.Minute, "how long to wait for the migration lock")
	flag.Parse()

	if *listOnly {
		files, err := postgres.Migrations()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, f := range files {
			fmt.Println(" ", f)
		}
		fmt.Printf("Total: %d migrations\n", len(files))
		return
	}

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err := run(cfg, log, *timeout); err != nil {
		log.Error("migrate failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, timeout time.Duration) error {
	if cfg.Storage.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := app.OpenDB(ctx, cfg.Storage.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("connected to database")

	var rc *redis.Client
	if cfg.Storage.RedisURL != "" {
		if rc, err = app.OpenRedis(ctx, cfg.Storage.RedisURL); err != nil {
			log.Warn("redis unavailable, using advisory lock", "err", err)
		} else {
			defer rc.Close()
		}
	}

	lock := distlock.New(rc, db, postgres.MigrationLockKey, timeout)
	if err := postgres.Migrate(ctx, db, lock, log); err != nil {
		return err
	}
	log.Info("migrations complete")
	return nil
}
