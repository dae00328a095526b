package dialogue

import (
	"context"
	"fmt"
	"strings"

	"slicebot/app/core/nlp"
	"slicebot/app/pkg/logger"
	"slicebot/app/pkg/types"
)

// browseMenuHandler answers menu questions: a specific item when one was
// named, the full listing otherwise. It also fields the item_info and
// get_price intents the LLM fallback sometimes produces.
type browseMenuHandler struct {
	e *Engine
}

func (h *browseMenuHandler) Name() string { return "browse_menu" }

func (h *browseMenuHandler) CanHandle(c *Context) bool {
	switch c.Intent {
	case nlp.IntentBrowseMenu, "item_info", "get_price":
		return true
	}
	return false
}

func (h *browseMenuHandler) Handle(ctx context.Context, c *Context) {
	if query := strings.TrimSpace(c.Entities.String("item")); query != "" {
		item, err := h.e.store.FindItem(ctx, query)
		if err != nil {
			logger.Error("menu lookup failed for %q: %v", query, err)
			c.Result = &HandlerResult{Success: false, Error: "Error reading the menu"}
			return
		}
		if item == nil {
			c.Result = &HandlerResult{Success: false, Error: fmt.Sprintf("Item '%s' not found in menu", query)}
			return
		}
		c.Result = &HandlerResult{
			Success: true,
			Message: formatItemLine(item),
			Data:    map[string]interface{}{"item_name": item.Name, "category": item.Category},
		}
		return
	}

	menu, err := h.e.store.ListMenu(ctx)
	if err != nil {
		logger.Error("list menu failed: %v", err)
		c.Result = &HandlerResult{Success: false, Error: "Error reading the menu"}
		return
	}

	var pizzas, additions []string
	for _, item := range menu {
		line := "  • " + formatItemLine(&item)
		if item.Category == "pizza" {
			pizzas = append(pizzas, line)
		} else {
			additions = append(additions, line)
		}
	}

	var b strings.Builder
	b.WriteString("🍕 Our Menu:\n\nPizzas:\n")
	b.WriteString(strings.Join(pizzas, "\n"))
	b.WriteString("\n\nAdditions:\n")
	b.WriteString(strings.Join(additions, "\n"))

	c.Result = &HandlerResult{
		Success: true,
		Message: b.String(),
		Data: map[string]interface{}{
			"pizza_count":    len(pizzas),
			"addition_count": len(additions),
		},
	}
}

// formatItemLine renders "Margherita Pizza (S: 83 EGP, M: 100 EGP, L: 140 EGP)".
func formatItemLine(item *types.MenuItem) string {
	if len(item.Sizes) == 0 {
		return fmt.Sprintf("%s (Currently unavailable)", item.Name)
	}
	var parts []string
	for _, s := range item.Sizes {
		parts = append(parts, fmt.Sprintf("%s: %s EGP", s.Size, formatPrice(s.Price)))
	}
	return fmt.Sprintf("%s (%s)", item.Name, strings.Join(parts, ", "))
}

// welcomeHandler greets and points at the menu.
type welcomeHandler struct{}

func (h *welcomeHandler) Name() string { return "welcome" }

func (h *welcomeHandler) CanHandle(c *Context) bool {
	return c.Intent == nlp.IntentWelcome
}

func (h *welcomeHandler) Handle(ctx context.Context, c *Context) {
	message := "👋 Welcome to Slicebot! I can help you order pizza. Try 'show menu' to see what we have."
	if c.Language == nlp.LangArabic {
		message = "👋 أهلا بيك في سلايس بوت! ممكن تقول 'قائمة' تشوف المنيو."
	}
	c.Result = &HandlerResult{Success: true, Message: message}
	c.SuggestedActions = []string{"browse_menu", "add_item"}
}

// newOrderHandler wipes the cart for a fresh start.
type newOrderHandler struct {
	e *Engine
}

func (h *newOrderHandler) Name() string { return "new_order" }

func (h *newOrderHandler) CanHandle(c *Context) bool {
	return c.Intent == nlp.IntentNewOrder
}

func (h *newOrderHandler) Handle(ctx context.Context, c *Context) {
	if _, err := h.e.store.ClearCart(ctx, c.UserID); err != nil {
		logger.Error("clear cart failed for user %s: %v", c.UserID, err)
		c.Result = &HandlerResult{Success: false, Error: "Error starting a new order"}
		return
	}
	c.Cart = &types.CartSnapshot{}

	message := "Starting a fresh order 🍕 Your cart is empty. What would you like?"
	if c.Language == nlp.LangArabic {
		message = "نبدأ طلب جديد 🍕 السلة فاضية. تحب تطلب إيه؟"
	}
	c.Result = &HandlerResult{Success: true, Message: message}
	c.SuggestedActions = []string{"browse_menu", "add_item"}
}
