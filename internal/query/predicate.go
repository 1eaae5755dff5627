package query

import (
	"fmt"
	"strings"

	"github.com/arcanum/arcanum/internal/filter"
)

// condBuilder accumulates WHERE conditions with dialect-correct bind
// markers. Conditions come from a fixed set of templates selected by the
// descriptor shape; user data only ever travels through args.
type condBuilder struct {
	dialect Dialect
	conds   []string
	args    []any
}

func newCondBuilder(d Dialect) *condBuilder {
	return &condBuilder{dialect: d}
}

// placeholder reserves the next bind marker and records its value.
func (b *condBuilder) placeholder(v any) string {
	b.args = append(b.args, v)
	return b.dialect.Placeholder(len(b.args))
}

func (b *condBuilder) add(cond string) {
	b.conds = append(b.conds, cond)
}

func (b *condBuilder) addf(format string, a ...any) {
	b.conds = append(b.conds, fmt.Sprintf(format, a...))
}

// whereClause renders the accumulated conditions, or an empty string when
// nothing restricts the result set.
func (b *condBuilder) whereClause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.conds, " AND ")
}

// buildWhere compiles a validated descriptor into a WHERE fragment and its
// bound parameters for the given dialect.
func buildWhere(d Dialect, desc filter.Descriptor) (string, []any) {
	b := newCondBuilder(d)

	if desc.ChatSlug != "" {
		b.addf("c.slug = %s", b.placeholder(desc.ChatSlug))
	}

	switch desc.Action {
	case filter.ActionSearch:
		pattern := "%" + escapeLike(desc.Query) + "%"
		b.add(d.TextMatch(b.placeholder(pattern)))
	case filter.ActionTag:
		b.add(d.TagMatch(b.placeholder(desc.Tag)))
	case filter.ActionFilter:
		addDateConditions(b, desc)
	}

	return b.whereClause(), b.args
}

// addDateConditions appends the timestamp predicate for the descriptor's
// date mode. Day boundaries are computed here and bound as parameters, so
// both dialects compare against identical instants.
//
// Rule for midnight: a message timestamped exactly at midnight belongs to
// the day that midnight starts. For the boundary between day D and D+1,
// such a message is excluded from "before D+1" and included in "after D".
func addDateConditions(b *condBuilder, desc filter.Descriptor) {
	dayStart := desc.Start
	nextDay := dayStart.AddDate(0, 0, 1)

	switch desc.DateMode {
	case filter.DateOn:
		// Half-open day interval, so sub-day times match correctly.
		b.addf("m.timestamp >= %s", b.placeholder(b.dialect.BindTime(dayStart)))
		b.addf("m.timestamp < %s", b.placeholder(b.dialect.BindTime(nextDay)))
	case filter.DateBefore:
		b.addf("m.timestamp < %s", b.placeholder(b.dialect.BindTime(dayStart)))
	case filter.DateAfter:
		b.addf("m.timestamp >= %s", b.placeholder(b.dialect.BindTime(nextDay)))
	case filter.DateBetween:
		afterEnd := desc.End.AddDate(0, 0, 1)
		b.addf("m.timestamp >= %s", b.placeholder(b.dialect.BindTime(dayStart)))
		b.addf("m.timestamp < %s", b.placeholder(b.dialect.BindTime(afterEnd)))
	}
}

// escapeLike neutralizes LIKE wildcards in user input so a search query
// always means a literal substring.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
