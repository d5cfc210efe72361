package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rivo_backend/platform/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrDirtyMigration means a previous run failed midway and needs a manual force.
var ErrDirtyMigration = errors.New("database schema is dirty")

// RunMigrations applies pending up-migrations from dir and returns the
// resulting schema version. An empty dir disables migrations. Cancelling ctx
// stops after the migration currently running.
func RunMigrations(ctx context.Context, cfg config.DatabaseConfig, dir string) (uint, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return 0, nil
	}

	m, err := migrate.New("file://"+dir, cfg.GetDatabaseURL())
	if err != nil {
		return 0, fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()

	stop := context.AfterFunc(ctx, func() {
		select {
		case m.GracefulStop <- true:
		default:
		}
	})
	defer stop()

	if _, dirty, verr := m.Version(); verr == nil && dirty {
		return 0, ErrDirtyMigration
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	version, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
