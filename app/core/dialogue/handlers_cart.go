package dialogue

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"slicebot/app/core/nlp"
	"slicebot/app/pkg/logger"
)

// leadingRemoveQuantity splits "2 fries" into a count and an item name.
var leadingRemoveQuantity = regexp.MustCompile(`^(\d+)\s+(.+)$`)

// removeItemHandler takes items out of the cart, optionally just some of a
// line's quantity.
type removeItemHandler struct {
	e *Engine
}

func (h *removeItemHandler) Name() string { return "remove_item" }

func (h *removeItemHandler) CanHandle(c *Context) bool {
	return c.Intent == nlp.IntentRemoveItem && c.Entities.Has("item")
}

func (h *removeItemHandler) Handle(ctx context.Context, c *Context) {
	itemText := strings.TrimSpace(c.Entities.String("item"))

	quantityToRemove := 0
	itemName := itemText
	if m := leadingRemoveQuantity.FindStringSubmatch(itemText); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			quantityToRemove = n
			itemName = strings.TrimSpace(m[2])
		}
	}

	cart, err := h.e.store.GetCart(ctx, c.UserID)
	if err != nil {
		logger.Error("get cart failed for user %s: %v", c.UserID, err)
		c.Result = &HandlerResult{Success: false, Error: "Error reading your cart"}
		return
	}
	if len(cart.Items) == 0 {
		c.Result = &HandlerResult{Success: false, Error: "Your cart is empty"}
		return
	}

	// Substring match in both directions so "pepperoni" finds
	// "Double Pepperoni Pizza" and "margherita pizza large" finds "Margherita Pizza".
	lowered := strings.ToLower(itemName)
	var found *struct {
		menuSizeID int64
		name       string
		quantity   int
	}
	for _, it := range cart.Items {
		cartName := strings.ToLower(it.ItemName)
		if strings.Contains(cartName, lowered) || strings.Contains(lowered, cartName) {
			found = &struct {
				menuSizeID int64
				name       string
				quantity   int
			}{it.MenuSizeID, it.ItemName, it.Quantity}
			break
		}
	}
	if found == nil {
		var names []string
		for _, it := range cart.Items {
			names = append(names, it.ItemName)
		}
		c.Result = &HandlerResult{
			Success: false,
			Error:   fmt.Sprintf("'%s' not found in cart. You have: %s", itemName, strings.Join(names, ", ")),
		}
		return
	}

	var message string
	switch {
	case quantityToRemove > 0 && quantityToRemove >= found.quantity:
		if err := h.e.store.RemoveCartItem(ctx, c.UserID, found.menuSizeID); err != nil {
			c.Result = &HandlerResult{Success: false, Error: "Error removing item from cart"}
			return
		}
		message = fmt.Sprintf("Removed all %s from cart", found.name)
	case quantityToRemove > 0:
		remaining := found.quantity - quantityToRemove
		if err := h.e.store.SetCartQuantity(ctx, c.UserID, found.menuSizeID, remaining); err != nil {
			c.Result = &HandlerResult{Success: false, Error: "Error updating cart"}
			return
		}
		message = fmt.Sprintf("Removed %d %s, %d remaining", quantityToRemove, found.name, remaining)
	default:
		if err := h.e.store.RemoveCartItem(ctx, c.UserID, found.menuSizeID); err != nil {
			c.Result = &HandlerResult{Success: false, Error: "Error removing item from cart"}
			return
		}
		message = fmt.Sprintf("Removed %s from cart", found.name)
	}

	c.Result = &HandlerResult{
		Success: true,
		Message: message,
		Data:    map[string]interface{}{"item_name": found.name},
	}
	h.e.refreshCart(ctx, c)
}

// viewCartHandler renders the current cart as text.
type viewCartHandler struct {
	e *Engine
}

func (h *viewCartHandler) Name() string { return "view_cart" }

func (h *viewCartHandler) CanHandle(c *Context) bool {
	return c.Intent == nlp.IntentViewCart
}

func (h *viewCartHandler) Handle(ctx context.Context, c *Context) {
	cart, err := h.e.store.GetCart(ctx, c.UserID)
	if err != nil {
		logger.Error("get cart failed for user %s: %v", c.UserID, err)
		c.Result = &HandlerResult{Success: false, Error: "Error reading your cart"}
		return
	}
	c.Cart = cart

	if len(cart.Items) == 0 {
		c.Result = &HandlerResult{
			Success: true,
			Message: "Your cart is empty",
			Data:    map[string]interface{}{"item_count": 0, "total_price": 0.0},
		}
		return
	}

	var b strings.Builder
	b.WriteString("Current Cart:\n")
	for _, it := range cart.Items {
		fmt.Fprintf(&b, "  • %s (%s) x%d = %s EGP\n", it.ItemName, it.Size, it.Quantity, formatPrice(it.Subtotal))
	}
	fmt.Fprintf(&b, "\nTotal: %s EGP", formatPrice(cart.TotalPrice))

	c.Result = &HandlerResult{
		Success: true,
		Message: b.String(),
		Data: map[string]interface{}{
			"item_count":  cart.ItemCount,
			"total_price": cart.TotalPrice,
		},
	}
}

// clearCartHandler empties the cart in one shot.
type clearCartHandler struct {
	e *Engine
}

func (h *clearCartHandler) Name() string { return "clear_cart" }

func (h *clearCartHandler) CanHandle(c *Context) bool {
	return c.Intent == nlp.IntentClearCart
}

func (h *clearCartHandler) Handle(ctx context.Context, c *Context) {
	removed, err := h.e.store.ClearCart(ctx, c.UserID)
	if err != nil {
		logger.Error("clear cart failed for user %s: %v", c.UserID, err)
		c.Result = &HandlerResult{Success: false, Error: "Error clearing your cart"}
		return
	}

	c.Result = &HandlerResult{
		Success: true,
		Message: "Cart cleared! Ready for a new order 🛒",
		Data:    map[string]interface{}{"removed_items": removed},
	}
	h.e.refreshCart(ctx, c)
}
