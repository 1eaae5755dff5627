package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// FindAdjacent returns the single nearest message strictly before or after
// the reference timestamp within one chat. The comparison is always strict,
// so a message is never its own neighbor even when several messages share
// the reference timestamp. A missing neighbor is a normal outcome reported
// as (nil, nil), distinct from a query failure.
func (e *Engine) FindAdjacent(ctx context.Context, chatSlug string, ref time.Time, dir Direction) (*MessageRow, error) {
	chatID, err := e.chatIDBySlug(ctx, chatSlug)
	if err != nil {
		return nil, err
	}

	var comparator, order string
	switch dir {
	case DirectionPrevious:
		comparator, order = "<", "DESC"
	case DirectionNext:
		comparator, order = ">", "ASC"
	default:
		return nil, fmt.Errorf("invalid direction: %d", dir)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM messages m
		JOIN chats c ON m.chat_ref_id = c.id
		WHERE m.chat_ref_id = %s AND m.timestamp %s %s
		ORDER BY m.timestamp %s, m.id %s
		LIMIT 1
	`, messageColumns,
		e.dialect.Placeholder(1), comparator, e.dialect.Placeholder(2),
		order, order)

	row, err := e.queryOneMessageRow(ctx, query, chatID, e.dialect.BindTime(ref))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, queryErr("adjacent message lookup", err)
	}
	return row, nil
}
