package query

import (
	"fmt"
	"time"
)

// Dialect abstracts the SQL differences between the two supported
// backends. Each implementation must produce predicates that evaluate to
// the same boolean result for every representable column state; the
// equivalence is covered by tests, not left to convention.
//
// The engine itself builds the surrounding statements; a Dialect only
// supplies placeholder syntax, the three predicates that genuinely differ
// between backends, and timestamp parameter encoding.
type Dialect interface {
	// Name returns the dialect tag ("sqlite" or "postgres").
	Name() string

	// Placeholder returns the bind marker for the n-th parameter (1-based).
	Placeholder(n int) string

	// TextMatch returns a case-insensitive substring predicate on the
	// message text column. The bound value is a LIKE pattern with
	// backslash-escaped wildcards.
	TextMatch(placeholder string) string

	// TagMatch returns an exact, case-sensitive membership predicate on
	// the message tag collection.
	TagMatch(placeholder string) string

	// MediaPresent returns a predicate that is true iff the media column
	// holds a non-empty collection. Must agree across dialects for every
	// state of the column: null, empty array, populated array.
	MediaPresent() string

	// BindTime encodes a timestamp for parameter binding.
	BindTime(t time.Time) any
}

// SQLite is the file-based dialect. Timestamps are stored as
// "YYYY-MM-DD HH:MM:SS" UTC text, tags and media as JSON array text.
var SQLite Dialect = sqliteDialect{}

// Postgres is the server-based dialect. Timestamps are TIMESTAMPTZ, tags
// and media are JSONB arrays.
var Postgres Dialect = postgresDialect{}

// DialectByName resolves a dialect tag to its implementation.
func DialectByName(name string) (Dialect, error) {
	switch name {
	case "sqlite":
		return SQLite, nil
	case "postgres", "postgresql":
		return Postgres, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", name)
	}
}

// sqliteTimeLayout matches how timestamps are written to SQLite and how
// bound comparison values must be encoded so text comparison orders
// chronologically.
const sqliteTimeLayout = "2006-01-02 15:04:05"

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) TextMatch(ph string) string {
	return fmt.Sprintf(`m.text LIKE %s ESCAPE '\'`, ph)
}

func (sqliteDialect) TagMatch(ph string) string {
	// Legacy rows may hold comma-separated text instead of a JSON array;
	// json_each raises on those, so they are guarded out of the match.
	return fmt.Sprintf("m.tags IS NOT NULL AND json_valid(m.tags) AND EXISTS (SELECT 1 FROM json_each(m.tags) WHERE json_each.value = %s)", ph)
}

func (sqliteDialect) MediaPresent() string {
	// The column stores raw text; treat '', '[]' and '{}' as empty so the
	// result matches jsonb_array_length on the server dialect.
	return "m.media IS NOT NULL AND TRIM(m.media) NOT IN ('', '[]', '{}')"
}

func (sqliteDialect) BindTime(t time.Time) any {
	return t.UTC().Format(sqliteTimeLayout)
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (postgresDialect) TextMatch(ph string) string {
	return fmt.Sprintf(`m.text ILIKE %s ESCAPE '\'`, ph)
}

func (postgresDialect) TagMatch(ph string) string {
	// JSONB key-existence doubles as exact membership for string arrays.
	// The function form avoids mixing the ? operator with bind markers.
	return fmt.Sprintf("jsonb_exists(m.tags, %s)", ph)
}

func (postgresDialect) MediaPresent() string {
	return "m.media IS NOT NULL AND jsonb_array_length(m.media) > 0"
}

func (postgresDialect) BindTime(t time.Time) any {
	return t.UTC()
}
