package store

import (
	"context"
	"fmt"

	"slicebot/app/pkg/logger"
)

type seedSize struct {
	size  string
	price float64
}

type seedItem struct {
	name     string
	category string
	sizes    []seedSize
}

var menuSeed = []seedItem{
	{"Margherita Pizza", "pizza", []seedSize{{"S", 83}, {"M", 100}, {"L", 140}}},
	{"Vegetables Pizza", "pizza", []seedSize{{"S", 85}, {"M", 105}, {"L", 145}}},
	{"Mushroom Pizza", "pizza", []seedSize{{"S", 90}, {"M", 120}, {"L", 160}}},
	{"Cheese Lovers Pizza", "pizza", []seedSize{{"S", 100}, {"M", 125}, {"L", 170}}},
	{"Hot Dog Pizza", "pizza", []seedSize{{"S", 100}, {"M", 125}, {"L", 170}}},
	{"Salami Pizza", "pizza", []seedSize{{"S", 105}, {"M", 135}, {"L", 180}}},
	{"Pastrami Pizza", "pizza", []seedSize{{"S", 105}, {"M", 135}, {"L", 180}}},
	{"Double Pepperoni Pizza", "pizza", []seedSize{{"S", 110}, {"M", 145}, {"L", 195}}},
	{"Super Supreme Pizza", "pizza", []seedSize{{"S", 125}, {"M", 165}, {"L", 215}}},
	{"Fries", "addition", []seedSize{{"REG", 50}}},
	{"Mango Juice", "addition", []seedSize{{"REG", 40}}},
	{"Cola", "addition", []seedSize{{"REG", 20}}},
	{"Water", "addition", []seedSize{{"REG", 10}}},
}

// Seed loads the menu once. A non-empty menu_items table is left alone.
func (s *Store) Seed(ctx context.Context) error {
	var count int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&count); err != nil {
		return fmt.Errorf("count menu items: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, item := range menuSeed {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO menu_items (name, category, available) VALUES (?, ?, 1)`,
			item.name, item.category)
		if err != nil {
			return fmt.Errorf("seed item %q: %w", item.name, err)
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, sz := range item.sizes {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO menu_sizes (item_id, size, price, available) VALUES (?, ?, ?, 1)`,
				itemID, sz.size, sz.price); err != nil {
				return fmt.Errorf("seed size %s/%s: %w", item.name, sz.size, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.Info("menu seeded with %d items", len(menuSeed))
	return nil
}
