package dialogue

import (
	"context"
	"fmt"

	"slicebot/app/core/nlp"
	"slicebot/app/pkg/logger"
	"slicebot/app/pkg/types"
)

// confirmationHandler resolves a bare "yes" against the pending suggestion.
// Expiry is checked here, not by any background job.
type confirmationHandler struct {
	e *Engine
}

func (h *confirmationHandler) Name() string { return "confirmation" }

func (h *confirmationHandler) CanHandle(c *Context) bool {
	return c.Intent == nlp.IntentConfirmation
}

func (h *confirmationHandler) Handle(ctx context.Context, c *Context) {
	pending := c.Session.Suggestion
	if pending == nil {
		c.Result = &HandlerResult{
			Success: false,
			Message: "I'm not sure what you're confirming. Could you please be more specific?",
		}
		return
	}
	if suggestionExpired(pending) {
		c.Session.Suggestion = nil
		c.Result = &HandlerResult{
			Success: false,
			Message: "That suggestion has expired. What would you like to order?",
		}
		return
	}
	if pending.Type != "add_item" {
		c.Session.Suggestion = nil
		c.Result = &HandlerResult{Success: false, Message: "I couldn't process that confirmation."}
		return
	}

	item, err := h.e.store.FindItem(ctx, pending.Item)
	if err != nil {
		logger.Error("confirm lookup failed for %q: %v", pending.Item, err)
		c.Result = &HandlerResult{Success: false, Error: "Error looking up the menu"}
		return
	}
	if item == nil {
		c.Session.Suggestion = nil
		c.Result = &HandlerResult{
			Success: false,
			Error:   fmt.Sprintf("Sorry, I couldn't find '%s' in our menu anymore.", pending.Item),
		}
		return
	}

	// Size fallback chain: the suggested size, then REG, then whatever the
	// item actually has.
	sp := pickSize(item.Sizes, pending.Size)
	if sp == nil {
		c.Session.Suggestion = nil
		c.Result = &HandlerResult{
			Success: false,
			Error:   fmt.Sprintf("Sorry, I couldn't find the right size for %s.", item.Name),
		}
		return
	}

	quantity := pending.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	if _, err := h.e.store.AddToCart(ctx, c.UserID, sp.ID, quantity); err != nil {
		logger.Error("confirm add failed for user %s: %v", c.UserID, err)
		c.Result = &HandlerResult{Success: false, Error: "Failed to add item to cart"}
		return
	}

	c.Session.Suggestion = nil
	c.Result = &HandlerResult{
		Success: true,
		Message: fmt.Sprintf("✅ Added %dx %s %s to your cart!", quantity, sp.Size, item.Name),
		Data: map[string]interface{}{
			"item_name": item.Name,
			"size":      sp.Size,
			"quantity":  quantity,
		},
	}
	h.e.refreshCart(ctx, c)
}

func pickSize(sizes []types.SizePrice, want string) *types.SizePrice {
	for i := range sizes {
		if sizes[i].Size == want {
			return &sizes[i]
		}
	}
	for i := range sizes {
		if sizes[i].Size == "REG" {
			return &sizes[i]
		}
	}
	if len(sizes) > 0 {
		return &sizes[0]
	}
	return nil
}

// rejectionHandler clears the pending suggestion on "no".
type rejectionHandler struct {
	e *Engine
}

func (h *rejectionHandler) Name() string { return "rejection" }

func (h *rejectionHandler) CanHandle(c *Context) bool {
	return c.Intent == nlp.IntentRejection
}

func (h *rejectionHandler) Handle(ctx context.Context, c *Context) {
	hadPending := c.Session.Suggestion != nil
	c.Session.Suggestion = nil

	message := "Okay! How can I help you?"
	if hadPending {
		message = "No problem! What would you like to order instead?"
	}
	c.Result = &HandlerResult{
		Success: true,
		Message: message,
		Data:    map[string]interface{}{"had_pending": hadPending},
	}
}
