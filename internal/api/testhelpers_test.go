package api

import (
	"context"
	"log/slog"
	"testing"

	"github.com/arcanum/arcanum/internal/config"
	"github.com/arcanum/arcanum/internal/query"
	"github.com/arcanum/arcanum/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestServer builds a server over an in-memory SQLite archive seeded
// with two chats and a handful of messages.
func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()

	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if err := st.InitSchema(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	seed := `
		INSERT INTO chats (id, chat_id, slug, name) VALUES
			(1, 101, 'alpha', 'Alpha'),
			(2, 102, 'beta', 'Beta');

		INSERT INTO messages (id, chat_ref_id, msg_id, timestamp, link, text, media, screenshot, tags, notes) VALUES
			(1, 1, 1, '2024-03-04 09:00:00', '', 'hello from alpha', NULL, '', '["urgent"]', ''),
			(2, 1, 2, '2024-03-05 10:00:00', '', 'midweek update', '["a.jpg"]', '', NULL, ''),
			(3, 2, 1, '2024-03-05 11:00:00', '', 'hello from beta', NULL, '', NULL, ''),
			(4, 2, 2, '2024-03-06 12:00:00', '', 'closing note', NULL, '', '["done"]', '');
	`
	if _, err := st.DB().Exec(seed); err != nil {
		t.Fatalf("seed data: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{
			APIPort:      8080,
			APIKey:       apiKey,
			RateLimitQPS: 1000,
		},
	}

	engine := query.New(st.DB(), st.Dialect(), testLogger())
	return NewServer(cfg, engine, testLogger())
}
