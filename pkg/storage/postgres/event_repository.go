package postgres

import (
	"context"
	"fmt"

	"github.com/skillfeed/skillfeed/pkg/events"
)

type EventRepository struct {
	db *DB
}

func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Insert(ctx context.Context, ev *events.Event) error {
	const stmt = `INSERT INTO user_events (user_id, kind, item_id, keyword, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Pool().Exec(ctx, stmt, ev.UserID, string(ev.Kind), ev.ItemID, ev.Keyword, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	return nil
}

// ListRecentByUser returns the user's newest events first, capped at limit.
func (r *EventRepository) ListRecentByUser(ctx context.Context, userID int64, limit int) ([]*events.Event, error) {
	const stmt = `SELECT id, user_id, kind, item_id, keyword, created_at
FROM user_events
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`

	rows, err := r.db.Pool().Query(ctx, stmt, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	out := make([]*events.Event, 0, limit)
	for rows.Next() {
		var ev events.Event
		var kind string
		if err := rows.Scan(&ev.ID, &ev.UserID, &kind, &ev.ItemID, &ev.Keyword, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = events.Kind(kind)
		out = append(out, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return out, nil
}
