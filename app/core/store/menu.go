package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"slicebot/app/pkg/types"
)

// ListMenu returns all available items with their available sizes, pizzas
// first, each category alphabetical.
func (s *Store) ListMenu(ctx context.Context) ([]types.MenuItem, error) {
	rows, err := s.conn.QueryContext(ctx, `
SELECT id, name, description, category, available FROM menu_items
WHERE available = 1
ORDER BY CASE category WHEN 'pizza' THEN 0 ELSE 1 END, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	defer rows.Close()

	var items []types.MenuItem
	for rows.Next() {
		var it types.MenuItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Category, &it.Available); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		sizes, err := s.itemSizes(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Sizes = sizes
	}
	return items, nil
}

// FindItem looks an item up by case-insensitive substring match and loads
// its sizes. Returns nil when nothing matches.
func (s *Store) FindItem(ctx context.Context, name string) (*types.MenuItem, error) {
	var it types.MenuItem
	err := s.conn.QueryRowContext(ctx, `
SELECT id, name, description, category, available FROM menu_items
WHERE LOWER(name) LIKE '%' || LOWER(?) || '%'
ORDER BY id ASC LIMIT 1`, strings.TrimSpace(name)).
		Scan(&it.ID, &it.Name, &it.Description, &it.Category, &it.Available)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item %q: %w", name, err)
	}

	sizes, err := s.itemSizes(ctx, it.ID)
	if err != nil {
		return nil, err
	}
	it.Sizes = sizes
	return &it, nil
}

// SearchItemsFuzzy matches any word of the query against item names and
// ranks results by how close the name length is to the query length.
func (s *Store) SearchItemsFuzzy(ctx context.Context, query string, limit int) ([]types.MenuItem, error) {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	if len(words) == 0 {
		return nil, nil
	}

	rows, err := s.conn.QueryContext(ctx, `SELECT id, name, description, category, available FROM menu_items WHERE available = 1`)
	if err != nil {
		return nil, fmt.Errorf("fuzzy search: %w", err)
	}
	defer rows.Close()

	var matched []types.MenuItem
	for rows.Next() {
		var it types.MenuItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Category, &it.Available); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		lowerName := strings.ToLower(it.Name)
		for _, w := range words {
			if strings.Contains(lowerName, w) {
				matched = append(matched, it)
				break
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return absInt(len(matched[i].Name)-len(query)) < absInt(len(matched[j].Name)-len(query))
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	for i := range matched {
		sizes, err := s.itemSizes(ctx, matched[i].ID)
		if err != nil {
			return nil, err
		}
		matched[i].Sizes = sizes
	}
	return matched, nil
}

func (s *Store) itemSizes(ctx context.Context, itemID int64) ([]types.SizePrice, error) {
	rows, err := s.conn.QueryContext(ctx, `
SELECT id, size, price, available FROM menu_sizes
WHERE item_id = ? AND available = 1
ORDER BY price ASC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("item sizes: %w", err)
	}
	defer rows.Close()

	var sizes []types.SizePrice
	for rows.Next() {
		var sp types.SizePrice
		if err := rows.Scan(&sp.ID, &sp.Size, &sp.Price, &sp.Available); err != nil {
			return nil, fmt.Errorf("scan size: %w", err)
		}
		sizes = append(sizes, sp)
	}
	return sizes, rows.Err()
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
