package query

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// testEnv encapsulates the DB, Engine, and Context setup for engine tests.
// All execution tests run against in-memory SQLite; PostgreSQL coverage is
// structural (generated SQL and bound parameters).
type testEnv struct {
	DB     *sql.DB
	Engine *Engine
	Ctx    context.Context
	T      *testing.T

	nextChatID    int64
	nextMessageID int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE chats (
			id INTEGER PRIMARY KEY,
			chat_id INTEGER UNIQUE,
			slug TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL
		);

		CREATE TABLE messages (
			id INTEGER PRIMARY KEY,
			chat_ref_id INTEGER NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			msg_id INTEGER,
			timestamp DATETIME NOT NULL,
			link TEXT,
			text TEXT,
			media TEXT,
			screenshot TEXT,
			tags TEXT,
			notes TEXT,
			UNIQUE (chat_ref_id, msg_id)
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	return &testEnv{
		DB:     db,
		Engine: New(db, SQLite, nil),
		Ctx:    context.Background(),
		T:      t,
	}
}

// addChat inserts a chat and returns its primary key.
func (e *testEnv) addChat(slug, name string) int64 {
	e.T.Helper()
	e.nextChatID++
	id := e.nextChatID
	_, err := e.DB.Exec(
		`INSERT INTO chats (id, chat_id, slug, name) VALUES (?, ?, ?, ?)`,
		id, 1000+id, slug, name,
	)
	if err != nil {
		e.T.Fatalf("insert chat %q: %v", slug, err)
	}
	return id
}

// msgOpt customizes one seeded message.
type msgOpt func(*seedMessage)

type seedMessage struct {
	text  string
	media any // nil, or a value stored verbatim (JSON text)
	tags  any
	notes string
}

func withText(text string) msgOpt {
	return func(m *seedMessage) { m.text = text }
}

func withTags(tags ...string) msgOpt {
	return func(m *seedMessage) {
		raw, _ := json.Marshal(tags)
		m.tags = string(raw)
	}
}

func withRawTags(raw string) msgOpt {
	return func(m *seedMessage) { m.tags = raw }
}

func withMedia(items ...string) msgOpt {
	return func(m *seedMessage) {
		raw, _ := json.Marshal(items)
		m.media = string(raw)
	}
}

func withRawMedia(raw string) msgOpt {
	return func(m *seedMessage) { m.media = raw }
}

// addMessage inserts a message with the given UTC timestamp string
// ("2006-01-02 15:04:05") and returns its primary key.
func (e *testEnv) addMessage(chatID int64, ts string, opts ...msgOpt) int64 {
	e.T.Helper()
	if _, err := time.ParseInLocation(sqliteTimeLayout, ts, time.UTC); err != nil {
		e.T.Fatalf("bad test timestamp %q: %v", ts, err)
	}

	m := seedMessage{text: "message body"}
	for _, opt := range opts {
		opt(&m)
	}

	e.nextMessageID++
	id := e.nextMessageID
	_, err := e.DB.Exec(`
		INSERT INTO messages (id, chat_ref_id, msg_id, timestamp, link, text, media, screenshot, tags, notes)
		VALUES (?, ?, ?, ?, '', ?, ?, '', ?, ?)`,
		id, chatID, id, ts, m.text, m.media, m.tags, m.notes,
	)
	if err != nil {
		e.T.Fatalf("insert message %d: %v", id, err)
	}
	return id
}

// ids projects the primary keys of a result set, preserving order.
func ids(rows []MessageRow) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}
