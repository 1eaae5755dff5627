// Package query provides the filter and aggregation engine for the message
// archive. It compiles validated filter descriptors into backend-specific
// SQL predicates, executes them against the active dialect (SQLite or
// PostgreSQL), groups flat results by chat, and computes archive-wide
// statistics. All operations are stateless, read-only, and honor the
// caller's context deadline.
package query

import "time"

// MessageRow is a query result projection of one message joined to its
// owning chat. Rows are immutable snapshots; nothing mutates them after
// the executor returns.
type MessageRow struct {
	ID         int64
	ChatRefID  int64
	MsgID      int64
	Timestamp  time.Time
	Link       string
	Text       string
	Media      []string
	Screenshot string
	Tags       []string
	Notes      string

	// Denormalized chat metadata from the join.
	ChatName string
	ChatSlug string
}

// ChatGroup holds one chat's messages in the order they appeared in the
// flat result stream.
type ChatGroup struct {
	Slug     string
	Name     string
	Messages []MessageRow
}

// GroupedResult partitions a flat, ordered result set by chat. Groups
// appear in first-appearance order; Total always equals the sum of the
// group sizes and the length of the input.
type GroupedResult struct {
	Groups []ChatGroup
	Total  int
}

// ChatSummary is one row of the chat listing view, with per-chat message
// counts and the most recent message timestamp (zero when the chat is
// empty).
type ChatSummary struct {
	ID            int64
	Slug          string
	Name          string
	MessageCount  int64
	LastMessageAt time.Time
}

// ChatActivity identifies the most active chat in a StatsSnapshot.
type ChatActivity struct {
	ID           int64
	Name         string
	MessageCount int64
}

// LastMessageInfo identifies the most recent message in a StatsSnapshot.
type LastMessageInfo struct {
	ID        int64
	ChatRefID int64
	Timestamp time.Time
}

// StatsSnapshot is an immutable aggregate over the whole archive, computed
// fresh on every request. MostActive and LastMessage are nil when the
// archive holds no messages, never zero-valued placeholders.
type StatsSnapshot struct {
	TotalChats    int64
	TotalMessages int64
	MediaMessages int64
	MostActive    *ChatActivity
	LastMessage   *LastMessageInfo
}

// Direction selects which neighbor the adjacent navigator looks for.
type Direction int

const (
	DirectionPrevious Direction = iota
	DirectionNext
)

func (d Direction) String() string {
	switch d {
	case DirectionPrevious:
		return "previous"
	case DirectionNext:
		return "next"
	default:
		return "unknown"
	}
}

// ParseDirection maps the wire form ("previous"/"next") to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "previous", "prev":
		return DirectionPrevious, true
	case "next":
		return DirectionNext, true
	default:
		return 0, false
	}
}
