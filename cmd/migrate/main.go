// Package main runs the sync server's goose migrations standalone, for
// deployments that apply schema changes as a separate release step rather
// than on every server start.
package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/noteflow/syncserver/internal/config"
	"github.com/noteflow/syncserver/internal/database/migrations"
)

func main() {
	var configPath string
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("migrations applied")
}

func run(cfg *config.Config) error {
	switch cfg.Profile {
	case config.ProfileStandard:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.Username, cfg.Database.Password,
			cfg.Database.Database, cfg.Database.SSLMode)
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return fmt.Errorf("opening postgres: %w", err)
		}
		defer db.Close()
		return migrations.RunPostgres(db)

	default:
		db, err := sql.Open("sqlite", cfg.Database.SQLitePath)
		if err != nil {
			return fmt.Errorf("opening sqlite: %w", err)
		}
		defer db.Close()
		return migrations.RunSQLite(db)
	}
}
