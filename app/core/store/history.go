package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"slicebot/app/pkg/types"
)

// SaveMessage appends one turn to the conversation log. Meta is an optional
// JSON blob describing how the turn was handled.
func (s *Store) SaveMessage(ctx context.Context, msg types.HistoryMessage) error {
	var meta interface{}
	if msg.Meta != "" {
		meta = msg.Meta
	}
	createdAt := msg.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().Unix()
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO messages (user_id, role, content, created_at, meta) VALUES (?, ?, ?, ?, ?)`,
		msg.UserID, msg.Role, msg.Content, createdAt, meta)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

// RecentHistory returns the user's last limit turns in chronological order.
func (s *Store) RecentHistory(ctx context.Context, userID string, limit int) ([]types.HistoryMessage, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.QueryContext(ctx, `
SELECT id, user_id, role, content, created_at, meta FROM messages
WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent history: %w", err)
	}
	defer rows.Close()

	var msgs []types.HistoryMessage
	for rows.Next() {
		var m types.HistoryMessage
		var meta sql.NullString
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt, &meta); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Meta = meta.String
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
