// Package store persists verse records and annotations to SQLite or
// PostgreSQL through database/sql, with SQLite as the default target.
//
// SQLite build modes:
//   - Default (CGO_ENABLED=0): pure Go modernc.org/sqlite
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): mattn/go-sqlite3
//
// Use Open() instead of sql.Open() so the right registered driver is used.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	verrors "github.com/FocuswithJustin/versetag/core/errors"
)

// Backend names accepted by Open.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Store is a verse database handle. All writes happen inside explicit
// transactions obtained from Begin; one transaction spans one batch.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open opens a verse database. backend selects the engine; dsn is a file
// path (SQLite) or a connection string (PostgreSQL).
func Open(backend, dsn string) (*Store, error) {
	switch backend {
	case BackendSQLite:
		db, err := sql.Open(sqliteDriverName, dsn)
		if err != nil {
			return nil, verrors.NewIO("open", dsn, err)
		}
		// Concurrent writers on one SQLite file corrupt nothing but fail
		// with SQLITE_BUSY. Serialize through a single connection.
		db.SetMaxOpenConns(1)
		return &Store{db: db, dialect: dialectSQLite}, nil

	case BackendPostgres:
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, verrors.NewIO("open", dsn, err)
		}
		return &Store{db: db, dialect: dialectPostgres}, nil
	}
	return nil, verrors.NewUnsupported("backend", backend)
}

// DriverType identifies the SQLite implementation compiled in.
func DriverType() string {
	return sqliteDriverType
}

// Begin starts a batch transaction.
func (s *Store) Begin(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind converts "?" placeholders to the "$n" form when targeting
// PostgreSQL. Queries are written once in SQLite form.
func (s *Store) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
