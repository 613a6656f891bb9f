// Package introspect reads a live database's catalog into the plain model
// consumed by generator plugins. Each supported dialect has its own
// introspector; all of them are read-only and context-aware.
package introspect

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DanielFGray/pg-sourcerer-sub001/schema"
)

// Introspector reads one database's catalog.
type Introspector interface {
	// Introspect returns the model for the given namespaces. Dialects
	// without schema namespaces ignore the argument.
	Introspect(ctx context.Context, schemas []string) (*schema.Schema, error)
}

// New returns the introspector for a dialect over an open connection.
// Taking *sql.DB keeps the constructor testable against a mocked driver.
func New(dialect string, db *sql.DB) (Introspector, error) {
	switch dialect {
	case "postgres":
		return &postgres{db: db}, nil
	case "mysql":
		return &mysql{db: db}, nil
	case "sqlite":
		return &sqlite{db: db}, nil
	default:
		return nil, fmt.Errorf("sourcerer: no introspector for dialect %q", dialect)
	}
}

// Connect opens a database handle for a dialect and verifies the
// connection.
func Connect(ctx context.Context, dialect, url string) (*sql.DB, error) {
	driver, ok := driverNames[dialect]
	if !ok {
		return nil, fmt.Errorf("sourcerer: no driver for dialect %q", dialect)
	}
	db, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("sourcerer: open %s connection: %w", dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sourcerer: ping %s: %w", dialect, err)
	}
	return db, nil
}

var driverNames = map[string]string{
	"postgres": "postgres",
	"mysql":    "mysql",
	"sqlite":   "sqlite",
}

// Load is the high-level entry: connect, introspect, close.
func Load(ctx context.Context, dialect, url string, schemas []string) (*schema.Schema, error) {
	db, err := Connect(ctx, dialect, url)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	in, err := New(dialect, db)
	if err != nil {
		return nil, err
	}
	return in.Introspect(ctx, schemas)
}
