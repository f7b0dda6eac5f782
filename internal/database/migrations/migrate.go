// Package migrations runs the goose schema migrations embedded below
// against either backend, grounded on the teacher's internal/database
// RunMigrations (which wraps goose.Up with a dialect switch per profile).
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var fs embed.FS

// RunPostgres applies pending migrations against a Postgres database handle.
func RunPostgres(db *sql.DB) error {
	return run(db, "postgres")
}

// RunSQLite applies pending migrations against a SQLite database handle.
func RunSQLite(db *sql.DB) error {
	return run(db, "sqlite3")
}

func run(db *sql.DB, dialect string) error {
	goose.SetBaseFS(fs)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("setting goose dialect %q: %w", dialect, err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
