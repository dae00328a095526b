package dialogue

import (
	"context"
	"fmt"
	"strings"

	"slicebot/app/pkg/types"
)

// validatedItem is a menu line resolved down to a concrete size row.
type validatedItem struct {
	ItemID     int64
	ItemName   string
	Category   string
	MenuSizeID int64
	Size       string
	Price      float64
	Sizes      []types.SizePrice
}

// validateItem resolves a raw item name against the menu with fuzzy
// fallback. On failure the message is user-facing.
func (e *Engine) validateItem(ctx context.Context, itemName string) (*types.MenuItem, string, bool) {
	name := strings.TrimSpace(itemName)
	if name == "" {
		return nil, "Item name cannot be empty", false
	}

	item, err := e.store.FindItem(ctx, name)
	if err != nil {
		return nil, "Something went wrong looking up the menu", false
	}
	if item == nil {
		similar, err := e.store.SearchItemsFuzzy(ctx, name, 3)
		if err == nil && len(similar) > 0 {
			names := make([]string, 0, len(similar))
			for _, s := range similar {
				names = append(names, s.Name)
			}
			return nil, fmt.Sprintf("'%s' not found. Did you mean: %s?", name, strings.Join(names, ", ")), false
		}
		return nil, fmt.Sprintf("'%s' not found in menu", name), false
	}
	if !item.Available {
		return nil, fmt.Sprintf("%s is currently out of stock", item.Name), false
	}
	return item, "", true
}

// validateSize picks the size row for an item. An empty size falls back to
// the item's first available size (additions only carry REG).
func validateSize(item *types.MenuItem, size string) (*types.SizePrice, string, bool) {
	if len(item.Sizes) == 0 {
		return nil, fmt.Sprintf("%s has no available sizes", item.Name), false
	}

	size = strings.ToUpper(strings.TrimSpace(size))
	if size == "" {
		return &item.Sizes[0], "", true
	}
	for i := range item.Sizes {
		if item.Sizes[i].Size == size {
			return &item.Sizes[i], "", true
		}
	}

	available := make([]string, 0, len(item.Sizes))
	for _, s := range item.Sizes {
		available = append(available, s.Size)
	}
	return nil, fmt.Sprintf("Size %s not available. Try: %s", size, strings.Join(available, ", ")), false
}

// validateFullItem combines item and size validation.
func (e *Engine) validateFullItem(ctx context.Context, itemName, size string) (*validatedItem, string, bool) {
	item, msg, ok := e.validateItem(ctx, itemName)
	if !ok {
		return nil, msg, false
	}
	sp, msg, ok := validateSize(item, size)
	if !ok {
		return nil, msg, false
	}
	return &validatedItem{
		ItemID:     item.ID,
		ItemName:   item.Name,
		Category:   item.Category,
		MenuSizeID: sp.ID,
		Size:       sp.Size,
		Price:      sp.Price,
		Sizes:      item.Sizes,
	}, "", true
}
