package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// DriverName returns the database/sql driver name for d.
func (d Driver) DriverName() string {
	if d == DriverPostgres {
		return "pgx"
	}
	return "sqlite"
}

// Open opens a DB and ensures the registry schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = "file:lti-provider.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
		}
	case DriverPostgres:
		if dsn == "" {
			dsn = "postgres://localhost:5432/ltiprovider?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(driver.DriverName(), dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema installs the consumer registry tables if missing.
func EnsureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	default:
		return fmt.Errorf("unsupported driver: %s", driver)
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS lti_consumer (
  slug TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS lti_passport (
  oauth_consumer_key TEXT PRIMARY KEY,
  shared_secret TEXT NOT NULL,
  consumer_slug TEXT NOT NULL REFERENCES lti_consumer(slug) ON DELETE CASCADE,
  title TEXT NOT NULL,
  is_enabled INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_lti_passport_consumer
  ON lti_passport(consumer_slug);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS lti_consumer (
  slug TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS lti_passport (
  oauth_consumer_key TEXT PRIMARY KEY,
  shared_secret TEXT NOT NULL,
  consumer_slug TEXT NOT NULL REFERENCES lti_consumer(slug) ON DELETE CASCADE,
  title TEXT NOT NULL,
  is_enabled BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS idx_lti_passport_consumer
  ON lti_passport(consumer_slug);
`
