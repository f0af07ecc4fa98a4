package database

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/chachabrian/ride-admin-backend/internal/config"
)

// RunMigrations applies (up) or rolls back (down) the versioned SQL files in
// cfg.MigrationsPath.
func RunMigrations(cfg *config.Config, direction string) error {
	path, err := filepath.Abs(cfg.MigrationsPath)
	if err != nil {
		return err
	}

	m, err := migrate.New("file://"+filepath.ToSlash(path), cfg.MigrateURL())
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}
	return nil
}
