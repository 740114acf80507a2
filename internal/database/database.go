package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// New opens and pings a database/sql handle. SQLite is limited to a single
// connection so an in-memory database is shared by every query.
func New(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS uploads (
		id           TEXT PRIMARY KEY,
		session_id   TEXT NOT NULL,
		filename     TEXT NOT NULL,
		format       TEXT NOT NULL,
		raw_rows     INTEGER NOT NULL,
		clean_rows   INTEGER NOT NULL,
		column_count INTEGER NOT NULL,
		degraded     INTEGER NOT NULL DEFAULT 0,
		created_at   BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS uploads_session_idx ON uploads (session_id, created_at)`,
}

// Migrate creates the schema if it does not exist. Statements are portable
// between SQLite and PostgreSQL.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}

	return nil
}

// Rebind rewrites '?' placeholders to the driver's bind style.
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}

	var (
		b strings.Builder
		n int
	)

	b.Grow(len(query) + 8)

	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}

		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}

	return b.String()
}
