package dialogue

import (
	"context"
	"fmt"
)

// Handler processes one intent. CanHandle gates on the turn context, which
// lets the batch handler intercept add_item turns that parsed multiple items.
type Handler interface {
	Name() string
	CanHandle(c *Context) bool
	Handle(ctx context.Context, c *Context)
}

// route finds the first handler willing to take the turn. Order matters:
// the batch handler is registered before the single-item one.
func (e *Engine) route(c *Context) Handler {
	if c.Intent == "" && len(c.BatchItems) == 0 {
		return nil
	}
	for _, h := range e.handlers {
		if h.CanHandle(c) {
			return h
		}
	}
	return nil
}

func (e *Engine) executeHandler(ctx context.Context, c *Context) {
	h := e.route(c)
	if h == nil {
		c.Result = &HandlerResult{
			Success: false,
			Error:   fmt.Sprintf("No handler found for intent: %s", c.Intent),
		}
		return
	}

	h.Handle(ctx, c)
	c.HandlerName = h.Name()
	c.HandlerExecuted = true
}
