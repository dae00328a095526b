package store

import (
	"context"
	"fmt"

	"slicebot/app/pkg/types"
)

// AddToCart adds quantity of a menu size to the user's cart, merging with an
// existing line for the same size. Returns the line's resulting quantity.
func (s *Store) AddToCart(ctx context.Context, userID string, menuSizeID int64, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	_, err := s.conn.ExecContext(ctx, `
INSERT INTO cart_items (user_id, menu_size_id, quantity) VALUES (?, ?, ?)
ON CONFLICT(user_id, menu_size_id) DO UPDATE SET quantity = quantity + excluded.quantity`,
		userID, menuSizeID, quantity)
	if err != nil {
		return 0, fmt.Errorf("add to cart: %w", err)
	}

	var total int
	err = s.conn.QueryRowContext(ctx,
		`SELECT quantity FROM cart_items WHERE user_id = ? AND menu_size_id = ?`,
		userID, menuSizeID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("read cart quantity: %w", err)
	}
	return total, nil
}

// GetCart returns the cart joined against the menu, with line subtotals and
// the running total. An empty cart is a snapshot with zero items, not nil.
func (s *Store) GetCart(ctx context.Context, userID string) (*types.CartSnapshot, error) {
	rows, err := s.conn.QueryContext(ctx, `
SELECT ci.menu_size_id, mi.name, mi.category, ms.size, ms.price, ci.quantity
FROM cart_items ci
JOIN menu_sizes ms ON ms.id = ci.menu_size_id
JOIN menu_items mi ON mi.id = ms.item_id
WHERE ci.user_id = ?
ORDER BY ci.id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	defer rows.Close()

	snapshot := &types.CartSnapshot{}
	for rows.Next() {
		var it types.CartItem
		if err := rows.Scan(&it.MenuSizeID, &it.ItemName, &it.Category, &it.Size, &it.Price, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		it.Subtotal = it.Price * float64(it.Quantity)
		snapshot.Items = append(snapshot.Items, it)
		snapshot.TotalPrice += it.Subtotal
	}
	// item_count is the number of cart lines, not the summed quantities
	snapshot.ItemCount = len(snapshot.Items)
	return snapshot, rows.Err()
}

// SetCartQuantity pins a cart line to an exact quantity; zero or less
// removes the line.
func (s *Store) SetCartQuantity(ctx context.Context, userID string, menuSizeID int64, quantity int) error {
	if quantity <= 0 {
		return s.RemoveCartItem(ctx, userID, menuSizeID)
	}
	_, err := s.conn.ExecContext(ctx,
		`UPDATE cart_items SET quantity = ? WHERE user_id = ? AND menu_size_id = ?`,
		quantity, userID, menuSizeID)
	if err != nil {
		return fmt.Errorf("set cart quantity: %w", err)
	}
	return nil
}

func (s *Store) RemoveCartItem(ctx context.Context, userID string, menuSizeID int64) error {
	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = ? AND menu_size_id = ?`,
		userID, menuSizeID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

// ClearCart removes every line and reports how many were dropped.
func (s *Store) ClearCart(ctx context.Context, userID string) (int, error) {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear cart count: %w", err)
	}
	return int(n), nil
}
