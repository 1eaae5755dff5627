package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ComputeStats returns a fresh archive-wide snapshot. The three underlying
// reads are independent single statements and run concurrently under the
// caller's context. An empty archive yields nil MostActive and LastMessage
// so callers can tell "no data" from a legitimate zero count.
func (e *Engine) ComputeStats(ctx context.Context) (*StatsSnapshot, error) {
	stats := &StatsSnapshot{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.statsCounts(ctx, stats) })
	g.Go(func() error {
		active, err := e.mostActiveChat(ctx)
		if err != nil {
			return err
		}
		stats.MostActive = active
		return nil
	})
	g.Go(func() error {
		last, err := e.lastMessage(ctx)
		if err != nil {
			return err
		}
		stats.LastMessage = last
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.Debug("computed stats",
		"dialect", e.dialect.Name(),
		"chats", stats.TotalChats,
		"messages", stats.TotalMessages,
		"media_messages", stats.MediaMessages)
	return stats, nil
}

// statsCounts fills the three global counters in one statement. The media
// count uses the dialect's media-emptiness predicate; both dialects must
// agree for every column state.
func (e *Engine) statsCounts(ctx context.Context, stats *StatsSnapshot) error {
	query := fmt.Sprintf(`
		SELECT
			(SELECT COUNT(*) FROM chats),
			(SELECT COUNT(*) FROM messages),
			(SELECT COUNT(*) FROM messages m WHERE %s)
	`, e.dialect.MediaPresent())

	err := e.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalChats,
		&stats.TotalMessages,
		&stats.MediaMessages,
	)
	if err != nil {
		return queryErr("stats counts", err)
	}
	return nil
}

// mostActiveChat returns the chat with the most messages, ties broken by
// smallest chat id. Nil when no chat has any messages.
func (e *Engine) mostActiveChat(ctx context.Context) (*ChatActivity, error) {
	query := `
		SELECT c.id, c.name, COUNT(m.id) AS message_count
		FROM chats c
		JOIN messages m ON m.chat_ref_id = c.id
		GROUP BY c.id, c.name
		ORDER BY message_count DESC, c.id ASC
		LIMIT 1
	`

	var active ChatActivity
	err := e.db.QueryRowContext(ctx, query).Scan(&active.ID, &active.Name, &active.MessageCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, queryErr("most active chat", err)
	}
	return &active, nil
}

// lastMessage returns the most recent message, ties broken by largest
// message id. Nil when the archive has no messages.
func (e *Engine) lastMessage(ctx context.Context) (*LastMessageInfo, error) {
	query := `
		SELECT m.id, m.chat_ref_id, m.timestamp
		FROM messages m
		ORDER BY m.timestamp DESC, m.id DESC
		LIMIT 1
	`

	var (
		last LastMessageInfo
		ts   nullTime
	)
	err := e.db.QueryRowContext(ctx, query).Scan(&last.ID, &last.ChatRefID, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, queryErr("last message", err)
	}
	last.Timestamp = ts.Time
	return &last, nil
}
