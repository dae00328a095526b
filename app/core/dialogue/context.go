package dialogue

import (
	"fmt"
	"strings"

	"slicebot/app/core/nlp"
	"slicebot/app/pkg/types"
)

// HandlerResult is the structured outcome of one handler execution. It is
// serialized into the response envelope and into the generator context, so
// replies can only reference data that actually came out of a handler.
type HandlerResult struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Context carries everything about one conversation turn through the
// pipeline. It is built fresh per message; durable state lives in Session.
type Context struct {
	UserID      string
	UserMessage string

	// extraction
	Language   string
	Intent     string
	Entities   nlp.Entities
	BatchItems []nlp.BatchItem
	Source     string
	Confidence float64

	// loaded state
	History []types.HistoryMessage
	Cart    *types.CartSnapshot
	Session *types.Session

	// handler outcome
	HandlerExecuted bool
	HandlerName     string
	Result          *HandlerResult
	Checkout        *types.CheckoutResult

	// response
	BotResponse           string
	ClarificationNeeded   bool
	ClarificationQuestion string
	Recommendations       []types.Recommendation
	SuggestedActions      []string
}

func (c *Context) historyText(maxMessages int) string {
	if len(c.History) == 0 {
		return ""
	}
	msgs := c.History
	if maxMessages > 0 && len(msgs) > maxMessages {
		msgs = msgs[len(msgs)-maxMessages:]
	}
	var b strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	return b.String()
}

func (c *Context) resultMessage() string {
	if c.Result == nil {
		return ""
	}
	if c.Result.Message != "" {
		return c.Result.Message
	}
	return c.Result.Error
}
