// Package app wires configuration into running components. It is shared by
// the server, migrate and admin commands.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ranjit-agency/site/internal/catalog"
	"github.com/ranjit-agency/site/internal/config"
	"github.com/ranjit-agency/site/internal/pkg/distlock"
	"github.com/ranjit-agency/site/internal/repository/postgres"
	"github.com/ranjit-agency/site/internal/repository/redisstore"
	"github.com/ranjit-agency/site/internal/storage"
)

// Deps holds the opened backends. Close releases them.
type Deps struct {
	DB      *sql.DB
	Redis   *redis.Client
	Records storage.RecordStore
	Store   *storage.Store
}

// Close releases database and Redis connections.
func (d *Deps) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
	if d.Redis != nil {
		d.Redis.Close()
	}
}

// LoadCatalog returns the built-in reference data or, when configured, the
// seed file that replaces it.
func LoadCatalog(cfg config.CatalogConfig) (*catalog.Tables, error) {
	if cfg.SeedPath == "" {
		return catalog.Load()
	}
	return catalog.LoadFile(cfg.SeedPath)
}

// Open connects the configured backends and builds the Store. For postgres
// the schema is applied first under the migration lock.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Deps, error) {
	tables, err := LoadCatalog(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	d := &Deps{}
	if cfg.Storage.RedisURL != "" {
		if d.Redis, err = OpenRedis(ctx, cfg.Storage.RedisURL); err != nil {
			if cfg.Storage.Type == config.StorageRedis {
				return nil, err
			}
			// Optional here; locks fall back to PG advisory locks.
			log.Warn("redis unavailable", "err", err)
		}
	}

	switch cfg.Storage.Type {
	case config.StoragePostgres:
		if d.DB, err = OpenDB(ctx, cfg.Storage.DatabaseURL); err != nil {
			d.Close()
			return nil, err
		}
		lock := distlock.New(d.Redis, d.DB, postgres.MigrationLockKey, 2*time.Minute)
		if err := postgres.Migrate(ctx, d.DB, lock, log); err != nil {
			d.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		d.Records = postgres.New(d.DB)
	case config.StorageRedis:
		if d.Redis == nil {
			return nil, errors.New("storage.type redis requires storage.redis_url")
		}
		d.Records = redisstore.New(d.Redis)
	case config.StorageMemory:
		d.Records = storage.NewMemoryRecords()
	default:
		d.Close()
		return nil, fmt.Errorf("unknown storage.type %q", cfg.Storage.Type)
	}

	d.Store = storage.New(tables, d.Records)
	log.Info("storage ready", "type", cfg.Storage.Type,
		"services", len(tables.Services()), "projects", len(tables.Projects()))
	return d, nil
}

// OpenDB opens and pings a PostgreSQL pool with conservative limits.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	if !strings.Contains(dsn, "connect_timeout") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "connect_timeout=5"
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(3)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// OpenRedis accepts a redis:// URL or a bare host:port.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	var client *redis.Client
	if opts, err := redis.ParseURL(url); err == nil {
		client = redis.NewClient(opts)
	} else {
		client = redis.NewClient(&redis.Options{Addr: url})
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
