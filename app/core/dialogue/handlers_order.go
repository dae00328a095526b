package dialogue

import (
	"context"
	"fmt"
	"strings"

	"slicebot/app/core/nlp"
	"slicebot/app/pkg/logger"
	"slicebot/app/pkg/types"
)

// checkoutHandler turns the cart into an order.
type checkoutHandler struct {
	e *Engine
}

func (h *checkoutHandler) Name() string { return "checkout" }

func (h *checkoutHandler) CanHandle(c *Context) bool {
	return c.Intent == nlp.IntentCheckout
}

func (h *checkoutHandler) Handle(ctx context.Context, c *Context) {
	if c.Cart == nil || len(c.Cart.Items) == 0 {
		c.Result = &HandlerResult{Success: false, Error: "Your cart is empty. Cannot checkout."}
		return
	}
	result, err := h.e.store.Checkout(ctx, c.UserID)
	if err != nil {
		logger.Error("checkout failed for user %s: %v", c.UserID, err)
		c.Result = &HandlerResult{Success: false, Error: "Error placing your order"}
		return
	}
	if !result.Success {
		c.Result = &HandlerResult{Success: false, Error: result.Message}
		return
	}

	c.Checkout = result
	c.Cart = &types.CartSnapshot{}
	c.Result = &HandlerResult{
		Success: true,
		Message: "Order placed successfully",
		Data: map[string]interface{}{
			"order_id":    result.OrderID,
			"total_price": result.TotalPrice,
		},
	}
}

// trackOrderHandler reports the status of a past order. Without an order
// number it falls back to the user's most recent order.
type trackOrderHandler struct {
	e *Engine
}

func (h *trackOrderHandler) Name() string { return "track_order" }

func (h *trackOrderHandler) CanHandle(c *Context) bool {
	return c.Intent == nlp.IntentTrackOrder
}

func (h *trackOrderHandler) Handle(ctx context.Context, c *Context) {
	var order *types.Order
	var err error

	if c.Entities.Has("order_id") {
		orderID := int64(c.Entities.Int("order_id", 0))
		order, err = h.e.store.GetOrder(ctx, c.UserID, orderID)
		if err == nil && order == nil {
			c.Result = &HandlerResult{Success: false, Error: fmt.Sprintf("Order #%d not found", orderID)}
			return
		}
	} else {
		order, err = h.e.store.LatestOrder(ctx, c.UserID)
		if err == nil && order == nil {
			c.Result = &HandlerResult{Success: false, Error: "You don't have any orders yet. Say 'show menu' to start one."}
			return
		}
	}
	if err != nil {
		logger.Error("track order failed for user %s: %v", c.UserID, err)
		c.Result = &HandlerResult{Success: false, Error: "Error looking up your order"}
		return
	}

	var lines []string
	for _, it := range order.Items {
		lines = append(lines, fmt.Sprintf("  • %dx %s %s", it.Quantity, it.Size, it.Name))
	}
	message := fmt.Sprintf("📦 Order #%d is %s.\n%s\nTotal: %s EGP",
		order.ID, order.Status, strings.Join(lines, "\n"), formatPrice(order.TotalPrice))

	c.Result = &HandlerResult{
		Success: true,
		Message: message,
		Data: map[string]interface{}{
			"order_id":    order.ID,
			"status":      order.Status,
			"total_price": order.TotalPrice,
		},
	}
}
