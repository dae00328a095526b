package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"slicebot/app/pkg/types"
)

const (
	OrderStatusConfirmed = "confirmed"
)

// Checkout turns the user's cart into an order inside one transaction. An
// empty cart yields a failed result rather than an error.
func (s *Store) Checkout(ctx context.Context, userID string) (*types.CheckoutResult, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return &types.CheckoutResult{
			Success: false,
			Message: "Your cart is empty",
		}, nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (user_id, status, total_price, created_at) VALUES (?, ?, ?, ?)`,
		userID, OrderStatusConfirmed, cart.TotalPrice, time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	items := make([]types.OrderItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, item_name, size, price, quantity) VALUES (?, ?, ?, ?, ?)`,
			orderID, ci.ItemName, ci.Size, ci.Price, ci.Quantity); err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, types.OrderItem{
			Name:     ci.ItemName,
			Size:     ci.Size,
			Quantity: ci.Quantity,
			Price:    ci.Price,
			Subtotal: ci.Subtotal,
		})
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("clear cart after checkout: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &types.CheckoutResult{
		Success:    true,
		OrderID:    orderID,
		TotalPrice: cart.TotalPrice,
		Items:      items,
	}, nil
}

// GetOrder loads one of the user's orders with its items. Returns nil when
// the order does not exist or belongs to someone else.
func (s *Store) GetOrder(ctx context.Context, userID string, orderID int64) (*types.Order, error) {
	var o types.Order
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, user_id, status, total_price, created_at FROM orders WHERE id = ? AND user_id = ?`,
		orderID, userID).
		Scan(&o.ID, &o.UserID, &o.Status, &o.TotalPrice, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	if err := s.loadOrderItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// LatestOrder returns the user's most recent order, or nil when they have
// never ordered.
func (s *Store) LatestOrder(ctx context.Context, userID string) (*types.Order, error) {
	var o types.Order
	err := s.conn.QueryRowContext(ctx, `
SELECT id, user_id, status, total_price, created_at FROM orders
WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, userID).
		Scan(&o.ID, &o.UserID, &o.Status, &o.TotalPrice, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest order: %w", err)
	}
	if err := s.loadOrderItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) loadOrderItems(ctx context.Context, o *types.Order) error {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT item_name, size, quantity, price FROM order_items WHERE order_id = ? ORDER BY id ASC`, o.ID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it types.OrderItem
		if err := rows.Scan(&it.Name, &it.Size, &it.Quantity, &it.Price); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		it.Subtotal = it.Price * float64(it.Quantity)
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}
