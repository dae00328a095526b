package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"slicebot/app/core/nlp"
	"slicebot/app/pkg/logger"
	"slicebot/app/pkg/types"
)

const (
	popularWindow      = 30 * 24 * time.Hour
	personalizedWindow = 90 * 24 * time.Hour
)

// Catalog is the slice of the store the engine reads from.
type Catalog interface {
	ListMenu(ctx context.Context) ([]types.MenuItem, error)
	UserOrderedItemNames(ctx context.Context, userID string, since time.Time) ([]string, error)
	PopularItemNames(ctx context.Context, since time.Time, limit int) ([]string, error)
}

// Engine layers three strategies: complements for the current cart, items
// similar to the user's favorites, then globally popular items. Errors from
// any strategy degrade to fewer recommendations, never to a failed turn.
type Engine struct {
	catalog Catalog
}

func NewEngine(catalog Catalog) *Engine {
	return &Engine{catalog: catalog}
}

func (e *Engine) Recommend(ctx context.Context, userID string, cart *types.CartSnapshot, maxItems int) []types.Recommendation {
	if maxItems <= 0 {
		maxItems = 3
	}

	menu, err := e.catalog.ListMenu(ctx)
	if err != nil {
		logger.Error("recommendations unavailable: %v", err)
		return nil
	}
	byName := make(map[string]types.MenuItem, len(menu))
	for _, it := range menu {
		byName[it.Name] = it
	}

	var recs []types.Recommendation
	seen := make(map[string]bool)
	add := func(item types.MenuItem, reason, badge string) {
		if seen[item.Name] || len(recs) >= maxItems {
			return
		}
		seen[item.Name] = true
		recs = append(recs, types.Recommendation{
			Name:        item.Name,
			Category:    item.Category,
			Description: item.Description,
			Sizes:       item.Sizes,
			Reason:      reason,
			Badge:       badge,
		})
	}

	e.addComplements(cart, menu, add)
	if len(recs) < maxItems {
		e.addPersonalized(ctx, userID, menu, byName, add)
	}
	if len(recs) < maxItems {
		e.addPopular(ctx, byName, maxItems, add)
	}
	return recs
}

// addComplements suggests a drink and a side when the cart holds pizza but
// not those.
func (e *Engine) addComplements(cart *types.CartSnapshot, menu []types.MenuItem, add func(types.MenuItem, string, string)) {
	if cart == nil || len(cart.Items) == 0 {
		return
	}

	var hasPizza, hasDrink, hasSide bool
	for _, it := range cart.Items {
		name := strings.ToLower(it.ItemName)
		switch {
		case it.Category == "pizza":
			hasPizza = true
		case strings.Contains(name, "cola") || strings.Contains(name, "juice"):
			hasDrink = true
		case strings.Contains(name, "fries"):
			hasSide = true
		}
	}
	if !hasPizza {
		return
	}

	if !hasDrink {
		for _, it := range menu {
			if it.Name == "Cola" || it.Name == "Mango Juice" {
				add(it, "Perfect with your pizza!", "🥤 Pair it")
				break
			}
		}
	}
	if !hasSide {
		for _, it := range menu {
			if it.Name == "Fries" {
				add(it, "Complete your meal!", "🍟 Add on")
				break
			}
		}
	}
}

// addPersonalized finds items in the same category as the user's recent
// favorites that they have not ordered yet.
func (e *Engine) addPersonalized(ctx context.Context, userID string, menu []types.MenuItem, byName map[string]types.MenuItem, add func(types.MenuItem, string, string)) {
	favorites, err := e.catalog.UserOrderedItemNames(ctx, userID, time.Now().Add(-personalizedWindow))
	if err != nil {
		logger.Error("personalized recommendations unavailable: %v", err)
		return
	}
	if len(favorites) > 3 {
		favorites = favorites[:3]
	}
	ordered := make(map[string]bool, len(favorites))
	for _, name := range favorites {
		ordered[name] = true
	}

	for _, favorite := range favorites {
		fav, ok := byName[favorite]
		if !ok {
			continue
		}
		similar := 0
		for _, it := range menu {
			if similar >= 2 {
				break
			}
			if it.Category != fav.Category || ordered[it.Name] {
				continue
			}
			add(it, fmt.Sprintf("Similar to your favorite %s", favorite), "✨ For You")
			similar++
		}
	}
}

func (e *Engine) addPopular(ctx context.Context, byName map[string]types.MenuItem, maxItems int, add func(types.MenuItem, string, string)) {
	popular, err := e.catalog.PopularItemNames(ctx, time.Now().Add(-popularWindow), maxItems)
	if err != nil {
		logger.Error("popular recommendations unavailable: %v", err)
		return
	}
	for _, name := range popular {
		if it, ok := byName[name]; ok {
			add(it, "Popular choice", "🔥 Popular")
		}
	}
}

// FormatText renders recommendations for chat output.
func FormatText(recs []types.Recommendation, lang string) string {
	if len(recs) == 0 {
		return ""
	}

	currency := "EGP"
	header := "🎯 Recommendations for you:\n\n"
	if lang == nlp.LangArabic {
		currency = "جنيه"
		header = "🎯 اقتراحات ليك:\n\n"
	}

	var b strings.Builder
	b.WriteString(header)
	for _, rec := range recs {
		badge := rec.Badge
		if badge == "" {
			badge = "⭐"
		}
		fmt.Fprintf(&b, "%s %s\n", badge, rec.Name)
		if rec.Reason != "" {
			fmt.Fprintf(&b, "   %s\n", rec.Reason)
		}
		if len(rec.Sizes) == 1 {
			fmt.Fprintf(&b, "   %s %s\n", formatPrice(rec.Sizes[0].Price), currency)
		} else if len(rec.Sizes) > 1 {
			parts := make([]string, 0, len(rec.Sizes))
			for _, s := range rec.Sizes {
				parts = append(parts, fmt.Sprintf("%s(%s %s)", s.Size, formatPrice(s.Price), currency))
			}
			fmt.Fprintf(&b, "   %s\n", strings.Join(parts, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatPrice(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%d", int64(p))
	}
	return fmt.Sprintf("%.2f", p)
}
