package query

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/arcanum/arcanum/internal/filter"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuildWhereEmptyDescriptor(t *testing.T) {
	for _, d := range []Dialect{SQLite, Postgres} {
		where, args := buildWhere(d, filter.Descriptor{})
		if where != "" {
			t.Errorf("%s: where = %q, want empty", d.Name(), where)
		}
		if len(args) != 0 {
			t.Errorf("%s: args = %v, want none", d.Name(), args)
		}
	}
}

func TestBuildWhereChatScopeOnly(t *testing.T) {
	where, args := buildWhere(SQLite, filter.Descriptor{ChatSlug: "alpha"})
	if where != "WHERE c.slug = ?" {
		t.Errorf("sqlite where = %q", where)
	}
	if diff := cmp.Diff([]any{"alpha"}, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}

	where, args = buildWhere(Postgres, filter.Descriptor{ChatSlug: "alpha"})
	if where != "WHERE c.slug = $1" {
		t.Errorf("postgres where = %q", where)
	}
	if diff := cmp.Diff([]any{"alpha"}, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildWhereTextSearch(t *testing.T) {
	desc := filter.Descriptor{Action: filter.ActionSearch, Query: "hello"}

	where, args := buildWhere(SQLite, desc)
	if want := `WHERE m.text LIKE ? ESCAPE '\'`; where != want {
		t.Errorf("sqlite where = %q, want %q", where, want)
	}
	if diff := cmp.Diff([]any{"%hello%"}, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}

	where, args = buildWhere(Postgres, desc)
	if want := `WHERE m.text ILIKE $1 ESCAPE '\'`; where != want {
		t.Errorf("postgres where = %q, want %q", where, want)
	}
	if diff := cmp.Diff([]any{"%hello%"}, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildWhereEscapesLikeWildcards(t *testing.T) {
	desc := filter.Descriptor{Action: filter.ActionSearch, Query: `100%_done\`}
	_, args := buildWhere(SQLite, desc)
	want := []any{`%100\%\_done\\%`}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildWhereTagMatch(t *testing.T) {
	desc := filter.Descriptor{Action: filter.ActionTag, Tag: "urgent"}

	where, args := buildWhere(SQLite, desc)
	want := "WHERE m.tags IS NOT NULL AND json_valid(m.tags) AND EXISTS (SELECT 1 FROM json_each(m.tags) WHERE json_each.value = ?)"
	if where != want {
		t.Errorf("sqlite where = %q, want %q", where, want)
	}
	if diff := cmp.Diff([]any{"urgent"}, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}

	where, args = buildWhere(Postgres, desc)
	if want := "WHERE jsonb_exists(m.tags, $1)"; where != want {
		t.Errorf("postgres where = %q, want %q", where, want)
	}
	if diff := cmp.Diff([]any{"urgent"}, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildWhereDateModes(t *testing.T) {
	tests := []struct {
		name       string
		desc       filter.Descriptor
		wantSQL    string
		wantBounds []time.Time
	}{
		{
			name: "on is a half-open day interval",
			desc: filter.Descriptor{
				Action: filter.ActionFilter, DateMode: filter.DateOn,
				Start: day("2024-03-05"),
			},
			wantSQL:    "WHERE m.timestamp >= ? AND m.timestamp < ?",
			wantBounds: []time.Time{day("2024-03-05"), day("2024-03-06")},
		},
		{
			name: "before is strict against the day start",
			desc: filter.Descriptor{
				Action: filter.ActionFilter, DateMode: filter.DateBefore,
				Start: day("2024-03-05"),
			},
			wantSQL:    "WHERE m.timestamp < ?",
			wantBounds: []time.Time{day("2024-03-05")},
		},
		{
			name: "after begins at the next day boundary",
			desc: filter.Descriptor{
				Action: filter.ActionFilter, DateMode: filter.DateAfter,
				Start: day("2024-03-05"),
			},
			wantSQL:    "WHERE m.timestamp >= ?",
			wantBounds: []time.Time{day("2024-03-06")},
		},
		{
			name: "between spans both full days",
			desc: filter.Descriptor{
				Action: filter.ActionFilter, DateMode: filter.DateBetween,
				Start: day("2024-01-01"), End: day("2024-01-02"),
			},
			wantSQL:    "WHERE m.timestamp >= ? AND m.timestamp < ?",
			wantBounds: []time.Time{day("2024-01-01"), day("2024-01-03")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, sqliteArgs := buildWhere(SQLite, tt.desc)
			if where != tt.wantSQL {
				t.Errorf("sqlite where = %q, want %q", where, tt.wantSQL)
			}

			// SQLite binds formatted text, PostgreSQL binds time.Time;
			// both must encode the exact same instants.
			_, pgArgs := buildWhere(Postgres, tt.desc)
			if len(sqliteArgs) != len(tt.wantBounds) || len(pgArgs) != len(tt.wantBounds) {
				t.Fatalf("arg counts: sqlite %d, postgres %d, want %d",
					len(sqliteArgs), len(pgArgs), len(tt.wantBounds))
			}
			for i, want := range tt.wantBounds {
				if got := sqliteArgs[i].(string); got != want.Format(sqliteTimeLayout) {
					t.Errorf("sqlite arg[%d] = %q, want %q", i, got, want.Format(sqliteTimeLayout))
				}
				if got := pgArgs[i].(time.Time); !got.Equal(want) {
					t.Errorf("postgres arg[%d] = %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestBuildWhereCombinesScopeAndAction(t *testing.T) {
	desc := filter.Descriptor{
		Action:   filter.ActionSearch,
		Query:    "report",
		ChatSlug: "alpha",
	}
	where, args := buildWhere(Postgres, desc)
	want := `WHERE c.slug = $1 AND m.text ILIKE $2 ESCAPE '\'`
	if where != want {
		t.Errorf("where = %q, want %q", where, want)
	}
	if diff := cmp.Diff([]any{"alpha", "%report%"}, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestMediaPresentTemplates(t *testing.T) {
	// The two media predicates differ syntactically but must agree on
	// every representable column state; TestComputeStatsMediaStates
	// executes the SQLite side against all states.
	if got := SQLite.MediaPresent(); got != "m.media IS NOT NULL AND TRIM(m.media) NOT IN ('', '[]', '{}')" {
		t.Errorf("sqlite media predicate = %q", got)
	}
	if got := Postgres.MediaPresent(); got != "m.media IS NOT NULL AND jsonb_array_length(m.media) > 0" {
		t.Errorf("postgres media predicate = %q", got)
	}
}
