package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Rrens/sitepublish/internal/config"
	"github.com/Rrens/sitepublish/internal/logging"
	"github.com/Rrens/sitepublish/internal/repository/postgres"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	source := flag.String("source", "file://migrations", "migration source URL")
	down := flag.Int("down", 0, "number of migrations to roll back instead of applying")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if _, err := logging.Setup(config.LoggingConfig{Level: cfg.Logging.Level, Format: "console"}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	log.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("source", *source).
		Msg("Connecting to database")

	if *down > 0 {
		err = postgres.RollbackMigrations(cfg.Database.DSN(), *source, *down)
	} else {
		err = postgres.RunMigrations(cfg.Database.DSN(), *source)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
