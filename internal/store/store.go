// Package store opens the archive database and applies its schema.
//
// The backend is selected from the DSN: "postgres://" or "postgresql://"
// URLs open a PostgreSQL connection through the pgx stdlib adapter,
// anything else is treated as a SQLite file path.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/arcanum/arcanum/internal/query"
)

//go:embed schema_sqlite.sql schema_postgres.sql
var schemaFS embed.FS

// Store owns the database connection and knows which dialect it speaks.
type Store struct {
	db      *sql.DB
	dialect query.Dialect
	dsn     string
}

const defaultSQLiteParams = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON"

// Open opens the database named by dsn, creating the containing directory
// for SQLite paths. The connection is verified with a ping before return.
func Open(dsn string) (*Store, error) {
	if isPostgresURL(dsn) {
		return open("pgx", dsn, query.Postgres, dsn)
	}

	// An in-memory database needs no directory and must skip the file
	// parameters that pin journal mode to a path on disk.
	if dsn == ":memory:" {
		return open("sqlite3", dsn, query.SQLite, dsn)
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return open("sqlite3", dsn+defaultSQLiteParams, query.SQLite, dsn)
}

func open(driver, connString string, dialect query.Dialect, dsn string) (*Store, error) {
	db, err := sql.Open(driver, connString)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db, dialect: dialect, dsn: dsn}, nil
}

func isPostgresURL(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// InitSchema applies the dialect's schema. All statements are idempotent,
// so calling it on an already-initialized database is safe. Statements are
// executed one at a time because the pgx adapter does not accept
// multi-statement strings over the extended protocol.
func (s *Store) InitSchema(ctx context.Context) error {
	name := fmt.Sprintf("schema_%s.sql", s.dialect.Name())
	schema, err := schemaFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read schema %s: %w", name, err)
	}
	for _, stmt := range strings.Split(string(schema), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the dialect the connection speaks.
func (s *Store) Dialect() query.Dialect {
	return s.dialect
}
