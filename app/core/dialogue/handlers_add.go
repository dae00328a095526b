package dialogue

import (
	"context"
	"fmt"
	"strings"

	"slicebot/app/core/nlp"
	"slicebot/app/pkg/logger"
)

// addItemHandler validates a single item against the menu and puts it in
// the cart. An unknown item turns into a pending suggestion instead of a
// dead-end error.
type addItemHandler struct {
	e *Engine
}

func (h *addItemHandler) Name() string { return "add_item" }

func (h *addItemHandler) CanHandle(c *Context) bool {
	return c.Intent == nlp.IntentAddItem && c.Entities.Has("item")
}

func (h *addItemHandler) Handle(ctx context.Context, c *Context) {
	itemName := c.Entities.String("item")
	size := c.Entities.String("size")
	quantity := c.Entities.Int("quantity", 1)
	if quantity <= 0 {
		quantity = 1
	}

	v, msg, ok := h.e.validateFullItem(ctx, itemName, size)
	if !ok {
		if strings.Contains(msg, "Did you mean:") {
			h.suggestAlternative(c, itemName, size, quantity, msg)
			return
		}
		c.Result = &HandlerResult{Success: false, Error: msg}
		return
	}

	newQuantity, err := h.e.store.AddToCart(ctx, c.UserID, v.MenuSizeID, quantity)
	if err != nil {
		logger.Error("add to cart failed for user %s: %v", c.UserID, err)
		c.Result = &HandlerResult{Success: false, Error: "Error adding item to cart"}
		return
	}

	c.Result = &HandlerResult{
		Success: true,
		Message: fmt.Sprintf("Added %s (%s) x %d to cart", v.ItemName, v.Size, newQuantity),
		Data: map[string]interface{}{
			"item_name": v.ItemName,
			"size":      v.Size,
			"price":     v.Price,
			"quantity":  newQuantity,
		},
	}
	h.e.refreshCart(ctx, c)
}

// suggestAlternative stores the closest menu match as a pending suggestion
// so a plain "yes" on the next turn adds it.
func (h *addItemHandler) suggestAlternative(c *Context, original, size string, quantity int, validationMsg string) {
	part := strings.SplitN(validationMsg, "Did you mean:", 2)[1]
	part = strings.SplitN(part, "?", 2)[0]
	first := strings.TrimSpace(strings.SplitN(part, ",", 2)[0])
	if first == "" {
		c.Result = &HandlerResult{Success: false, Error: validationMsg}
		return
	}

	suggestedSize := size
	if suggestedSize == "" {
		suggestedSize = "REG"
	}
	c.Session.Suggestion = newAddItemSuggestion(first, suggestedSize, quantity)

	var question string
	if c.Language == nlp.LangArabic {
		question = fmt.Sprintf("لم أجد '%s'. هل تقصد %s؟", original, first)
	} else {
		var parts []string
		if quantity > 1 {
			parts = append(parts, fmt.Sprintf("%d", quantity))
		}
		if size != "" {
			parts = append(parts, size)
		}
		parts = append(parts, first)
		question = fmt.Sprintf("I couldn't find '%s'. Did you mean %s? (Say 'yes' to add it)", original, strings.Join(parts, " "))
	}

	c.BotResponse = question
	c.Result = &HandlerResult{
		Success: false,
		Error:   validationMsg,
		Message: question,
		Data:    map[string]interface{}{"suggestion_created": true},
	}
}

// batchAddHandler adds every parsed item of a multi-item command, reporting
// partial failures instead of aborting the whole batch.
type batchAddHandler struct {
	e *Engine
}

func (h *batchAddHandler) Name() string { return "batch_add_item" }

func (h *batchAddHandler) CanHandle(c *Context) bool {
	return len(c.BatchItems) > 1
}

func (h *batchAddHandler) Handle(ctx context.Context, c *Context) {
	type failure struct {
		item string
		err  string
	}

	var added []string
	var failed []failure
	successCount := 0

	for _, bi := range c.BatchItems {
		name := strings.TrimSpace(bi.Item)
		v, msg, ok := h.e.validateFullItem(ctx, name, bi.Size)
		if !ok {
			failed = append(failed, failure{item: name, err: msg})
			continue
		}

		quantity := bi.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		if _, err := h.e.store.AddToCart(ctx, c.UserID, v.MenuSizeID, quantity); err != nil {
			logger.Error("batch add failed for %q: %v", name, err)
			failed = append(failed, failure{item: name, err: "could not add to cart"})
			continue
		}

		successCount++
		entry := v.ItemName
		if v.Size != "" {
			entry += fmt.Sprintf(" (%s)", v.Size)
		}
		if quantity > 1 {
			entry += fmt.Sprintf(" x%d", quantity)
		}
		added = append(added, entry)
	}

	if successCount > 0 {
		message := fmt.Sprintf("Added %d items to cart: %s", successCount, strings.Join(added, ", "))
		if len(failed) > 0 {
			var names []string
			for _, f := range failed {
				names = append(names, fmt.Sprintf("%s (%s)", f.item, f.err))
			}
			message += "\n\nCouldn't add: " + strings.Join(names, ", ")
		}
		c.Result = &HandlerResult{
			Success: true,
			Message: message,
			Data: map[string]interface{}{
				"added_count":  successCount,
				"failed_count": len(failed),
			},
		}
	} else {
		var details []string
		for _, f := range failed {
			details = append(details, fmt.Sprintf("  • %s: %s", f.item, f.err))
		}
		c.Result = &HandlerResult{
			Success: false,
			Error:   "Couldn't add any items:\n" + strings.Join(details, "\n"),
		}
	}

	h.e.refreshCart(ctx, c)
}
