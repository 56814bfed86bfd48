package main

import (
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"fertilizer-guide/internal/config"
	"fertilizer-guide/internal/nutrient"
)

//go:embed schema.sql
var schema string

// sqlTarget returns the driver name and DSN for a SQL reference source.
func sqlTarget(cfg *config.Config) (driver, dsn string, err error) {
	switch cfg.Reference.Source {
	case config.SourcePostgres:
		return "postgres", cfg.Database.URL, nil
	case config.SourceSQLite:
		return "sqlite", cfg.Reference.Path, nil
	default:
		return "", "", fmt.Errorf("reference source %q is not a database", cfg.Reference.Source)
	}
}

// InitDB connects and applies schema.sql.
func InitDB(driver, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return conn, nil
}

// fetchRequirements reads the whole reference table ordered by crop name.
func fetchRequirements(db *sqlx.DB) ([]nutrient.Requirement, error) {
	var rows []nutrient.Requirement
	if err := db.Select(&rows, "SELECT crop, n, p, k FROM crop_requirements ORDER BY crop"); err != nil {
		return nil, fmt.Errorf("select crop_requirements: %w", err)
	}
	return rows, nil
}
