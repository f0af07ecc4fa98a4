package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/chachabrian/ride-admin-backend/internal/config"
	"github.com/chachabrian/ride-admin-backend/internal/database"
	"github.com/chachabrian/ride-admin-backend/internal/logging"
)

func main() {
	flag.Usage = func() {
		os.Stderr.WriteString("usage: migrate [up|down]\n")
	}
	flag.Parse()

	direction := "up"
	if flag.NArg() > 0 {
		direction = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel)

	if err := database.RunMigrations(cfg, direction); err != nil {
		logger.Error("migration failed", "direction", direction, "error", err)
		os.Exit(1)
	}
	logger.Info("migrations applied", "direction", direction, "path", cfg.MigrationsPath)
}
