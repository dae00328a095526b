package store

import (
	"context"
	"testing"
	"time"

	"slicebot/app/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return s
}

func mustFindSize(t *testing.T, item *types.MenuItem, size string) types.SizePrice {
	t.Helper()
	for _, sp := range item.Sizes {
		if sp.Size == size {
			return sp
		}
	}
	t.Fatalf("size %q not found on %q", size, item.Name)
	return types.SizePrice{}
}

func TestSeedIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Seed(context.Background()); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	menu, err := s.ListMenu(context.Background())
	if err != nil {
		t.Fatalf("ListMenu: %v", err)
	}
	if len(menu) != 13 {
		t.Fatalf("expected 13 menu items, got %d", len(menu))
	}
}

func TestFindItemSubstringMatch(t *testing.T) {
	s := newTestStore(t)

	item, err := s.FindItem(context.Background(), "margherita")
	if err != nil {
		t.Fatalf("FindItem: %v", err)
	}
	if item == nil || item.Name != "Margherita Pizza" {
		t.Fatalf("unexpected item: %+v", item)
	}
	if len(item.Sizes) != 3 {
		t.Fatalf("expected 3 sizes, got %d", len(item.Sizes))
	}
	if got := mustFindSize(t, item, "L").Price; got != 140 {
		t.Fatalf("unexpected L price: %f", got)
	}

	missing, err := s.FindItem(context.Background(), "sushi")
	if err != nil {
		t.Fatalf("FindItem: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected no match, got %+v", missing)
	}
}

func TestSearchItemsFuzzyRanksByLength(t *testing.T) {
	s := newTestStore(t)

	items, err := s.SearchItemsFuzzy(context.Background(), "pizza", 3)
	if err != nil {
		t.Fatalf("SearchItemsFuzzy: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(items))
	}
	// shortest name difference first
	for i := 1; i < len(items); i++ {
		if len(items[i-1].Name) > len(items[i].Name) {
			t.Fatalf("results not ranked by closeness: %q before %q", items[i-1].Name, items[i].Name)
		}
	}
}

func TestCartAddMergeAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, err := s.FindItem(ctx, "cola")
	if err != nil || item == nil {
		t.Fatalf("FindItem: %v %v", item, err)
	}
	sizeID := mustFindSize(t, item, "REG").ID

	if _, err := s.AddToCart(ctx, "u1", sizeID, 2); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	total, err := s.AddToCart(ctx, "u1", sizeID, 1)
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected merged quantity 3, got %d", total)
	}

	cart, err := s.GetCart(ctx, "u1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("expected one merged line of 3, got %+v", cart.Items)
	}
	if cart.TotalPrice != 60 {
		t.Fatalf("unexpected total: %f", cart.TotalPrice)
	}
	if cart.ItemCount != 1 {
		t.Fatalf("unexpected item count: %d", cart.ItemCount)
	}

	removed, err := s.ClearCart(ctx, "u1")
	if err != nil {
		t.Fatalf("ClearCart: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed line, got %d", removed)
	}
	cart, err = s.GetCart(ctx, "u1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(cart.Items) != 0 || cart.TotalPrice != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
}

func TestSetCartQuantityZeroRemovesLine(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, _ := s.FindItem(ctx, "fries")
	sizeID := mustFindSize(t, item, "REG").ID

	if _, err := s.AddToCart(ctx, "u1", sizeID, 2); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if err := s.SetCartQuantity(ctx, "u1", sizeID, 0); err != nil {
		t.Fatalf("SetCartQuantity: %v", err)
	}
	cart, _ := s.GetCart(ctx, "u1")
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", cart.Items)
	}
}

func TestCheckoutMovesCartToOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, _ := s.FindItem(ctx, "margherita")
	sizeID := mustFindSize(t, item, "L").ID
	if _, err := s.AddToCart(ctx, "u1", sizeID, 2); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	result, err := s.Checkout(ctx, "u1")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if !result.Success || result.OrderID == 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.TotalPrice != 280 {
		t.Fatalf("unexpected total: %f", result.TotalPrice)
	}

	cart, _ := s.GetCart(ctx, "u1")
	if len(cart.Items) != 0 {
		t.Fatal("cart should be empty after checkout")
	}

	order, err := s.GetOrder(ctx, "u1", result.OrderID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if order == nil || order.Status != OrderStatusConfirmed || len(order.Items) != 1 {
		t.Fatalf("unexpected order: %+v", order)
	}

	// another user cannot read it
	other, err := s.GetOrder(ctx, "u2", result.OrderID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if other != nil {
		t.Fatalf("expected nil for foreign order, got %+v", other)
	}
}

func TestCheckoutEmptyCartFails(t *testing.T) {
	s := newTestStore(t)

	result, err := s.Checkout(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if result.Success {
		t.Fatalf("expected failure, got %+v", result)
	}
}

func TestRecentHistoryOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Unix()
	for i := 0; i < 5; i++ {
		err := s.SaveMessage(ctx, types.HistoryMessage{
			UserID:    "u1",
			Role:      "user",
			Content:   string(rune('0' + i)),
			CreatedAt: base + int64(i),
		})
		if err != nil {
			t.Fatalf("SaveMessage: %v", err)
		}
	}

	msgs, err := s.RecentHistory(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("RecentHistory: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "2" || msgs[2].Content != "4" {
		t.Fatalf("unexpected order: %+v", msgs)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fresh, err := s.GetSession(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if fresh.State != types.StateIdle || fresh.Pending != nil || fresh.Suggestion != nil {
		t.Fatalf("unexpected fresh session: %+v", fresh)
	}

	fresh.State = types.StateAwaitingSize
	fresh.Pending = &types.PendingAction{
		ActionType:  "add_item",
		MissingInfo: []string{"size"},
		PartialData: map[string]interface{}{"item": "margherita pizza"},
		CreatedAt:   time.Now(),
	}
	fresh.Suggestion = &types.PendingSuggestion{
		Type: "add_item", Item: "cola", Size: "REG", Quantity: 1, CreatedAt: time.Now(),
	}
	if err := s.SaveSession(ctx, fresh); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	loaded, err := s.GetSession(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if loaded.State != types.StateAwaitingSize {
		t.Fatalf("unexpected state: %q", loaded.State)
	}
	if loaded.Pending == nil || loaded.Pending.ActionType != "add_item" {
		t.Fatalf("unexpected pending: %+v", loaded.Pending)
	}
	if got := loaded.Pending.PartialData["item"]; got != "margherita pizza" {
		t.Fatalf("unexpected partial data: %v", got)
	}
	if loaded.Suggestion == nil || loaded.Suggestion.Item != "cola" {
		t.Fatalf("unexpected suggestion: %+v", loaded.Suggestion)
	}

	// clearing both fields persists
	loaded.State = types.StateIdle
	loaded.Pending = nil
	loaded.Suggestion = nil
	if err := s.SaveSession(ctx, loaded); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	cleared, _ := s.GetSession(ctx, "u1")
	if cleared.Pending != nil || cleared.Suggestion != nil {
		t.Fatalf("expected cleared session, got %+v", cleared)
	}
}

func TestPopularAndUserItemNames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cola, _ := s.FindItem(ctx, "cola")
	fries, _ := s.FindItem(ctx, "fries")
	colaID := mustFindSize(t, cola, "REG").ID
	friesID := mustFindSize(t, fries, "REG").ID

	if _, err := s.AddToCart(ctx, "u1", colaID, 3); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if _, err := s.AddToCart(ctx, "u1", friesID, 1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if _, err := s.Checkout(ctx, "u1"); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	since := time.Now().Add(-24 * time.Hour)
	popular, err := s.PopularItemNames(ctx, since, 5)
	if err != nil {
		t.Fatalf("PopularItemNames: %v", err)
	}
	if len(popular) != 2 || popular[0] != "Cola" {
		t.Fatalf("unexpected popular items: %v", popular)
	}

	mine, err := s.UserOrderedItemNames(ctx, "u1", since)
	if err != nil {
		t.Fatalf("UserOrderedItemNames: %v", err)
	}
	if len(mine) != 2 || mine[0] != "Cola" {
		t.Fatalf("unexpected user items: %v", mine)
	}
}
