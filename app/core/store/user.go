package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsureUser registers a user id on first contact.
func (s *Store) EnsureUser(ctx context.Context, userID string) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id, created_at) VALUES (?, ?)`,
		userID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// UserOrderedItemNames returns item names the user has ordered since the
// cutoff, most ordered first.
func (s *Store) UserOrderedItemNames(ctx context.Context, userID string, since time.Time) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `
SELECT oi.item_name FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE o.user_id = ? AND o.created_at >= ?
GROUP BY oi.item_name
ORDER BY SUM(oi.quantity) DESC`, userID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("user ordered items: %w", err)
	}
	defer rows.Close()
	return scanNames(rows)
}

func scanNames(rows *sql.Rows) ([]string, error) {
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan item name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// PopularItemNames returns the most ordered item names across all users
// since the cutoff.
func (s *Store) PopularItemNames(ctx context.Context, since time.Time, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.conn.QueryContext(ctx, `
SELECT oi.item_name FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE o.created_at >= ?
GROUP BY oi.item_name
ORDER BY SUM(oi.quantity) DESC
LIMIT ?`, since.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("popular items: %w", err)
	}
	defer rows.Close()
	return scanNames(rows)
}
