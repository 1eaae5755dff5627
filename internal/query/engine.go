package query

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arcanum/arcanum/internal/filter"
)

// messageColumns is the fixed projection for message rows joined to their
// owning chat. Column order must match scanMessageRow.
const messageColumns = `m.id, m.chat_ref_id, m.msg_id, m.timestamp,
	COALESCE(m.link, ''), COALESCE(m.text, ''), m.media,
	COALESCE(m.screenshot, ''), m.tags, COALESCE(m.notes, ''),
	c.name, c.slug`

// Engine executes filter, listing, stats, and navigation queries against
// one backend. It holds no state across calls; concurrent use is safe as
// long as the underlying *sql.DB is.
type Engine struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// New creates an engine bound to a database handle and its dialect.
// A nil logger disables engine logging.
func New(db *sql.DB, dialect Dialect, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{db: db, dialect: dialect, logger: logger}
}

// Dialect returns the dialect the engine executes against.
func (e *Engine) Dialect() Dialect {
	return e.dialect
}

// RunFilteredQuery executes the descriptor against the messages/chats join
// and returns rows fully ordered by the resolved sort clause. The chat
// scope, when present, is verified first; an unknown slug yields
// ErrChatNotFound rather than an empty result.
func (e *Engine) RunFilteredQuery(ctx context.Context, desc filter.Descriptor, spec SortSpec) ([]MessageRow, error) {
	if desc.ChatSlug != "" {
		if _, err := e.chatIDBySlug(ctx, desc.ChatSlug); err != nil {
			return nil, err
		}
	}

	orderBy, err := orderClause(MessageView, spec)
	if err != nil {
		return nil, err
	}
	where, args := buildWhere(e.dialect, desc)

	query := fmt.Sprintf(`
		SELECT %s
		FROM messages m
		JOIN chats c ON m.chat_ref_id = c.id
		%s
		%s
	`, messageColumns, where, orderBy)

	rows, err := e.queryMessageRows(ctx, query, args...)
	if err != nil {
		return nil, queryErr("filtered query", err)
	}

	e.logger.Debug("filtered query",
		"dialect", e.dialect.Name(),
		"action", desc.Action.String(),
		"chat", orAll(desc.ChatSlug),
		"rows", len(rows))
	return rows, nil
}

// ListChatMessages returns every message of one chat, sorted per spec.
func (e *Engine) ListChatMessages(ctx context.Context, chatSlug string, spec SortSpec) ([]MessageRow, error) {
	desc := filter.Descriptor{ChatSlug: chatSlug}
	return e.RunFilteredQuery(ctx, desc, spec)
}

// ListChats returns the chat listing with message counts and last-message
// timestamps, sorted by a chat-view field.
func (e *Engine) ListChats(ctx context.Context, spec SortSpec) ([]ChatSummary, error) {
	orderBy, err := orderClause(ChatView, spec)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT c.id, c.slug, c.name,
			COUNT(m.id) AS message_count,
			MAX(m.timestamp) AS last_message
		FROM chats c
		LEFT JOIN messages m ON m.chat_ref_id = c.id
		GROUP BY c.id, c.slug, c.name
		%s
	`, orderBy)

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, queryErr("chat listing", err)
	}
	defer rows.Close()

	var chats []ChatSummary
	for rows.Next() {
		var c ChatSummary
		var last nullTime
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.MessageCount, &last); err != nil {
			return nil, queryErr("chat listing", err)
		}
		c.LastMessageAt = last.Time
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("chat listing", err)
	}
	return chats, nil
}

// GetMessage fetches a single message by primary key.
func (e *Engine) GetMessage(ctx context.Context, id int64) (*MessageRow, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM messages m
		JOIN chats c ON m.chat_ref_id = c.id
		WHERE m.id = %s
	`, messageColumns, e.dialect.Placeholder(1))

	row, err := e.queryOneMessageRow(ctx, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, queryErr("message lookup", err)
	}
	return row, nil
}

// chatIDBySlug resolves a chat slug to its primary key, or ErrChatNotFound.
func (e *Engine) chatIDBySlug(ctx context.Context, slug string) (int64, error) {
	query := fmt.Sprintf("SELECT id FROM chats WHERE slug = %s", e.dialect.Placeholder(1))
	var id int64
	err := e.db.QueryRowContext(ctx, query, slug).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrChatNotFound
	}
	if err != nil {
		return 0, queryErr("chat lookup", err)
	}
	return id, nil
}

func (e *Engine) queryMessageRows(ctx context.Context, query string, args ...any) ([]MessageRow, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MessageRow
	for rows.Next() {
		msg, err := scanMessageRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) queryOneMessageRow(ctx context.Context, query string, args ...any) (*MessageRow, error) {
	row := e.db.QueryRowContext(ctx, query, args...)
	msg, err := scanMessageRow(row)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessageRow(s rowScanner) (MessageRow, error) {
	var (
		msg   MessageRow
		msgID sql.NullInt64
		ts    nullTime
		media []byte
		tags  []byte
	)
	if err := s.Scan(
		&msg.ID,
		&msg.ChatRefID,
		&msgID,
		&ts,
		&msg.Link,
		&msg.Text,
		&media,
		&msg.Screenshot,
		&tags,
		&msg.Notes,
		&msg.ChatName,
		&msg.ChatSlug,
	); err != nil {
		return MessageRow{}, err
	}
	msg.MsgID = msgID.Int64
	msg.Timestamp = ts.Time
	msg.Media = parseStringList(media)
	msg.Tags = parseStringList(tags)
	return msg, nil
}

// parseStringList decodes a JSON array of strings, falling back to a
// comma-separated list for legacy rows.
func parseStringList(raw []byte) []string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "[]" || s == "{}" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(s), &items); err == nil {
		out := items[:0]
		for _, it := range items {
			if it = strings.TrimSpace(it); it != "" {
				out = append(out, it)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	var out []string
	for _, it := range strings.Split(s, ",") {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// nullTime scans timestamp values in whatever shape the driver hands back:
// native time.Time from PostgreSQL, or text from SQLite aggregate
// expressions that lose the declared column type.
type nullTime struct {
	Time  time.Time
	Valid bool
}

var sqliteScanLayouts = []string{
	sqliteTimeLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (n *nullTime) Scan(v any) error {
	n.Time, n.Valid = time.Time{}, false
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		n.Time, n.Valid = t.UTC(), true
		return nil
	case []byte:
		return n.parse(string(t))
	case string:
		return n.parse(t)
	default:
		return fmt.Errorf("cannot scan %T into timestamp", v)
	}
}

func (n *nullTime) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range sqliteScanLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			n.Time, n.Valid = t.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}

func orAll(slug string) string {
	if slug == "" {
		return "<all>"
	}
	return slug
}
