package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ranjit-agency/site/internal/pkg/distlock"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// MigrationLockKey names the lock held while the schema is applied.
const MigrationLockKey = "site:migrate"

// Migrations lists the embedded migration files in apply order.
func Migrations() ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Migrate applies every embedded migration, each in its own transaction,
// while holding lock. The statements are idempotent so re-running is safe.
func Migrate(ctx context.Context, db *sql.DB, lock distlock.Lock, log *slog.Logger) error {
	return distlock.Run(ctx, lock, 500*time.Millisecond, func(ctx context.Context) error {
		files, err := Migrations()
		if err != nil {
			return fmt.Errorf("list migrations: %w", err)
		}
		for _, f := range files {
			data, err := migrationFS.ReadFile("migrations/" + f)
			if err != nil {
				return fmt.Errorf("read %s: %w", f, err)
			}
			if strings.TrimSpace(string(data)) == "" {
				continue
			}
			if err := applyMigration(ctx, db, string(data)); err != nil {
				return fmt.Errorf("apply %s: %w", f, err)
			}
			log.Info("migration applied", "file", f)
		}
		return nil
	})
}

func applyMigration(ctx context.Context, db *sql.DB, content string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, content); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
