package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/sjson"

	"slicebot/app/core/nlp"
	"slicebot/app/core/recommend"
	"slicebot/app/pkg/logger"
	"slicebot/app/pkg/types"
)

const (
	defaultHistoryLimit  = 20
	promptHistoryLimit   = 6
	maxTurnSuggestions   = 2
	maxClarifyAttempts   = 3
	fallbackNoGenerator  = "I understand your message, but I need more specific menu commands. Try: 'add [item] [size]', 'show cart', or 'checkout'"
	fallbackOnLLMFailure = "I processed your request. Please let me know if you need anything else."
)

// deterministicIntents reply with the handler's own message. These outcomes
// carry exact numbers, so they never go through the generator.
var deterministicIntents = map[string]bool{
	nlp.IntentViewCart:     true,
	nlp.IntentClearCart:    true,
	nlp.IntentBrowseMenu:   true,
	nlp.IntentCheckout:     true,
	nlp.IntentConfirmation: true,
	nlp.IntentRejection:    true,
	nlp.IntentWelcome:      true,
	nlp.IntentNewOrder:     true,
	nlp.IntentTrackOrder:   true,
}

// Engine runs the fixed message pipeline: extract, load state, clarify or
// route, respond, persist. One Engine serves all users; per-user state lives
// in the store.
type Engine struct {
	store       Store
	extractor   Extractor
	recommender Recommender
	generator   Generator
	handlers    []Handler

	historyLimit       int
	promptHistory      int
	maxRecommendations int
}

// NewEngine wires the pipeline. recommender and generator may be nil.
func NewEngine(store Store, extractor Extractor, recommender Recommender, generator Generator) *Engine {
	e := &Engine{
		store:              store,
		extractor:          extractor,
		recommender:        recommender,
		generator:          generator,
		historyLimit:       defaultHistoryLimit,
		promptHistory:      promptHistoryLimit,
		maxRecommendations: maxTurnSuggestions,
	}
	// Registration order is priority order. The batch handler goes first so
	// multi-item turns never reach the single-item handler.
	e.handlers = []Handler{
		&batchAddHandler{e},
		&addItemHandler{e},
		&removeItemHandler{e},
		&viewCartHandler{e},
		&checkoutHandler{e},
		&trackOrderHandler{e},
		&browseMenuHandler{e},
		&clearCartHandler{e},
		&confirmationHandler{e},
		&rejectionHandler{e},
		&welcomeHandler{},
		&newOrderHandler{e},
	}
	return e
}

// SetLimits overrides the default history and recommendation limits.
// Zero or negative values keep the current setting.
func (e *Engine) SetLimits(historyLimit, promptHistory, maxRecommendations int) {
	if historyLimit > 0 {
		e.historyLimit = historyLimit
	}
	if promptHistory > 0 {
		e.promptHistory = promptHistory
	}
	if maxRecommendations > 0 {
		e.maxRecommendations = maxRecommendations
	}
}

// Envelope is the structured result of one turn, returned to every channel.
type Envelope struct {
	Success               bool                   `json:"success"`
	UserMessage           string                 `json:"user_message"`
	BotResponse           string                 `json:"bot_response"`
	Intent                string                 `json:"intent"`
	Lang                  string                 `json:"lang"`
	NLPSource             string                 `json:"nlp_source"`
	Confidence            float64                `json:"confidence"`
	HandlerName           string                 `json:"handler_name,omitempty"`
	HandlerExecuted       bool                   `json:"handler_executed"`
	HandlerResult         *HandlerResult         `json:"handler_result,omitempty"`
	CurrentCart           *types.CartSnapshot    `json:"current_cart,omitempty"`
	Recommendations       []types.Recommendation `json:"recommendations,omitempty"`
	SuggestedActions      []string               `json:"suggested_actions,omitempty"`
	ClarificationNeeded   bool                   `json:"clarification_needed"`
	ClarificationQuestion string                 `json:"clarification_question,omitempty"`
	Metadata              map[string]interface{} `json:"metadata,omitempty"`
}

// ProcessMessage runs one full turn. It never returns an error: internal
// failures degrade to an apology envelope so channels always have something
// to show.
func (e *Engine) ProcessMessage(ctx context.Context, userID, text string) *Envelope {
	c := &Context{
		UserID:      userID,
		UserMessage: text,
	}

	if err := e.store.EnsureUser(ctx, userID); err != nil {
		logger.Error("ensure user %s failed: %v", userID, err)
		return e.apologyEnvelope(c)
	}

	res := e.extractor.Extract(ctx, text)
	c.Intent = res.Intent
	c.Language = res.Language
	c.Entities = res.Entities
	c.BatchItems = res.BatchItems
	c.Source = res.Source
	c.Confidence = res.Confidence

	e.loadState(ctx, c)
	e.resolvePending(c)

	switch {
	case e.shouldClarify(c):
		e.askClarification(ctx, c)
	case c.Intent != "" || len(c.BatchItems) > 1:
		e.executeHandler(ctx, c)
		c.Session.Pending = nil
		if c.Session.Suggestion != nil {
			c.Session.State = types.StateAwaitingConfirmation
		} else {
			c.Session.State = types.StateIdle
		}
	}

	e.respond(ctx, c)
	e.persist(ctx, c)

	return e.envelope(c)
}

func (e *Engine) loadState(ctx context.Context, c *Context) {
	history, err := e.store.RecentHistory(ctx, c.UserID, e.historyLimit)
	if err != nil {
		logger.Error("load history for %s failed: %v", c.UserID, err)
	}
	c.History = history

	sess, err := e.store.GetSession(ctx, c.UserID)
	if err != nil {
		logger.Error("load session for %s failed: %v", c.UserID, err)
		sess = &types.Session{UserID: c.UserID, State: types.StateIdle}
	}
	c.Session = sess

	cart, err := e.store.GetCart(ctx, c.UserID)
	if err != nil {
		logger.Error("load cart for %s failed: %v", c.UserID, err)
		cart = &types.CartSnapshot{}
	}
	c.Cart = cart
}

// resolvePending lets a free-form reply like "large" or "3" complete the
// command a prior turn left half-finished. The resumed intent then goes
// through the normal clarify-or-route gate again.
func (e *Engine) resolvePending(c *Context) {
	if c.Intent != "" || len(c.BatchItems) > 0 {
		return
	}
	p := c.Session.Pending
	if p == nil {
		return
	}

	if p.PartialData == nil {
		p.PartialData = map[string]interface{}{}
	}
	for _, field := range p.MissingInfo {
		if v := extractFromContext(c.UserMessage, field); v != nil {
			p.PartialData[field] = v
		}
	}

	c.Intent = p.ActionType
	ents := nlp.EmptyEntities()
	for k, v := range p.PartialData {
		ents[k] = v
	}
	c.Entities = ents
}

// shouldClarify gates on the intent's required slots. Batch turns bypass
// clarification entirely; their per-item gaps surface as partial failures.
func (e *Engine) shouldClarify(c *Context) bool {
	if len(c.BatchItems) > 1 {
		return false
	}
	if c.Intent == "" {
		return false
	}
	need, _ := needsClarification(c.Intent, c.Entities)
	return need
}

func (e *Engine) askClarification(ctx context.Context, c *Context) {
	_, missing := needsClarification(c.Intent, c.Entities)

	attempts := 1
	if prior := c.Session.Pending; prior != nil && prior.ActionType == c.Intent {
		attempts = prior.Attempts + 1
	}
	if attempts > maxClarifyAttempts {
		c.Session.Pending = nil
		c.Session.State = types.StateIdle
		c.BotResponse = "Let's start over. What would you like to order?"
		if c.Language == nlp.LangArabic {
			c.BotResponse = "خلينا نبدأ من الأول. تحب تطلب إيه؟"
		}
		return
	}

	partial := map[string]interface{}{}
	for k, v := range c.Entities {
		if v != nil {
			partial[k] = v
		}
	}
	c.Session.Pending = &types.PendingAction{
		ActionType:  c.Intent,
		MissingInfo: missing,
		PartialData: partial,
		CreatedAt:   time.Now(),
		Attempts:    attempts,
	}
	c.Session.State = stateForMissing(missing)

	question := e.clarificationQuestion(ctx, c, missing)
	c.ClarificationNeeded = true
	c.ClarificationQuestion = question
	c.BotResponse = question
}

// respond picks the reply text. Clarifications and suggestion questions are
// already set; checkout gets a fixed structured reply; deterministic intents
// echo the handler message; everything else may go through the generator.
func (e *Engine) respond(ctx context.Context, c *Context) {
	e.attachRecommendations(ctx, c)

	if c.BotResponse != "" {
		return
	}

	if c.Checkout != nil && c.Checkout.Success {
		c.BotResponse = formatCheckoutReply(c.Checkout)
		return
	}

	if deterministicIntents[c.Intent] {
		if msg := c.resultMessage(); msg != "" {
			c.BotResponse = msg
			e.appendRecommendationText(c)
			return
		}
	}

	if e.generator == nil {
		if msg := c.resultMessage(); msg != "" {
			c.BotResponse = msg
		} else {
			c.BotResponse = fallbackNoGenerator
		}
		e.appendRecommendationText(c)
		return
	}

	reply, err := e.generator.GenerateReply(ctx, e.generatorContext(c), c.UserMessage)
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			logger.Error("reply generation failed for %s: %v", c.UserID, err)
		}
		if msg := c.resultMessage(); msg != "" {
			c.BotResponse = msg
		} else {
			c.BotResponse = fallbackOnLLMFailure
		}
	} else {
		c.BotResponse = strings.TrimSpace(reply)
	}
	e.appendRecommendationText(c)
}

// attachRecommendations fills c.Recommendations after a successful cart add.
func (e *Engine) attachRecommendations(ctx context.Context, c *Context) {
	if e.recommender == nil || c.Result == nil || !c.Result.Success {
		return
	}
	switch c.HandlerName {
	case "add_item", "batch_add_item", "confirmation":
	default:
		return
	}
	c.Recommendations = e.recommender.Recommend(ctx, c.UserID, c.Cart, e.maxRecommendations)
}

func (e *Engine) appendRecommendationText(c *Context) {
	if len(c.Recommendations) == 0 {
		return
	}
	text := recommend.FormatText(c.Recommendations, c.Language)
	if text == "" {
		return
	}
	c.BotResponse += "\n\n" + text
}

// formatCheckoutReply renders the order receipt from the checkout record
// alone, never from generated text.
func formatCheckoutReply(res *types.CheckoutResult) string {
	var b strings.Builder
	b.WriteString("✅ Order placed successfully!\n\n")
	for _, it := range res.Items {
		fmt.Fprintf(&b, "• %dx %s %s - ₹%s\n", it.Quantity, it.Size, it.Name, formatPrice(it.Subtotal))
	}
	fmt.Fprintf(&b, "💰 Total: ₹%s\n", formatPrice(res.TotalPrice))
	fmt.Fprintf(&b, "📦 Order ID: #%d\n\n", res.OrderID)
	b.WriteString("Your delicious pizza will be ready in 30-40 minutes. Thank you for your order! 🍕")
	return b.String()
}

// generatorContext builds the grounding block handed to the LLM. The reply
// must come from this data, so it leads with the handler result verbatim.
func (e *Engine) generatorContext(c *Context) string {
	var b strings.Builder

	b.WriteString("Conversation History:\n")
	b.WriteString(c.historyText(e.promptHistory))
	b.WriteString("\n\nUser's current message: ")
	b.WriteString(c.UserMessage)

	b.WriteString("\n\nHandler Information:\n")
	if c.HandlerExecuted {
		fmt.Fprintf(&b, "Handler executed: %s\n", c.HandlerName)
		fmt.Fprintf(&b, "Results: %s", c.resultMessage())
	} else {
		fmt.Fprintf(&b, "No specific handler for intent: %s", c.Intent)
	}

	b.WriteString("\n\nCRITICAL - ACTUAL DATA (do not modify or guess):\n")
	if c.Result != nil {
		if blob, err := json.Marshal(c.Result); err == nil {
			fmt.Fprintf(&b, "Handler Result: %s\n", blob)
		}
	}
	if c.Cart != nil {
		if blob, err := json.Marshal(c.Cart); err == nil {
			fmt.Fprintf(&b, "\nCurrent cart: %s\n", blob)
		}
	}

	b.WriteString("\nInstructions:\n")
	b.WriteString("1. For orders/checkout: Use EXACT quantities, items, sizes and prices from the data above\n")
	b.WriteString("2. Do not invent menu items, prices or order numbers\n")
	b.WriteString("3. If the handler reported an error, relay it helpfully\n")
	b.WriteString("4. Keep it concise (1-2 sentences)\n")
	b.WriteString("\nPlease provide a natural, friendly response based ONLY on the actual data above.")

	return b.String()
}

// persist writes the session and both turn messages. Failures are logged,
// not surfaced; the reply already exists.
func (e *Engine) persist(ctx context.Context, c *Context) {
	if err := e.store.SaveSession(ctx, c.Session); err != nil {
		logger.Error("save session for %s failed: %v", c.UserID, err)
	}

	userMeta, _ := sjson.Set("", "intent", c.Intent)
	userMeta, _ = sjson.Set(userMeta, "nlp_source", c.Source)
	if err := e.store.SaveMessage(ctx, types.HistoryMessage{
		UserID:  c.UserID,
		Role:    "user",
		Content: c.UserMessage,
		Meta:    userMeta,
	}); err != nil {
		logger.Error("save user message for %s failed: %v", c.UserID, err)
	}

	botMeta, _ := sjson.Set("", "handler", c.HandlerName)
	botMeta, _ = sjson.Set(botMeta, "handler_executed", c.HandlerExecuted)
	if err := e.store.SaveMessage(ctx, types.HistoryMessage{
		UserID:  c.UserID,
		Role:    "bot",
		Content: c.BotResponse,
		Meta:    botMeta,
	}); err != nil {
		logger.Error("save bot message for %s failed: %v", c.UserID, err)
	}
}

func (e *Engine) refreshCart(ctx context.Context, c *Context) {
	cart, err := e.store.GetCart(ctx, c.UserID)
	if err != nil {
		logger.Error("refresh cart for %s failed: %v", c.UserID, err)
		return
	}
	c.Cart = cart
}

func (e *Engine) envelope(c *Context) *Envelope {
	success := true
	if c.Result != nil {
		success = c.Result.Success
	}
	if c.ClarificationNeeded {
		success = true
	}

	meta := map[string]interface{}{}
	if c.Session != nil {
		meta["state"] = string(c.Session.State)
	}

	return &Envelope{
		Success:               success,
		UserMessage:           c.UserMessage,
		BotResponse:           c.BotResponse,
		Intent:                c.Intent,
		Lang:                  c.Language,
		NLPSource:             c.Source,
		Confidence:            c.Confidence,
		HandlerName:           c.HandlerName,
		HandlerExecuted:       c.HandlerExecuted,
		HandlerResult:         c.Result,
		CurrentCart:           c.Cart,
		Recommendations:       c.Recommendations,
		SuggestedActions:      c.SuggestedActions,
		ClarificationNeeded:   c.ClarificationNeeded,
		ClarificationQuestion: c.ClarificationQuestion,
		Metadata:              meta,
	}
}

func (e *Engine) apologyEnvelope(c *Context) *Envelope {
	return &Envelope{
		Success:     false,
		UserMessage: c.UserMessage,
		BotResponse: "Sorry, something went wrong on our side. Please try again.",
		NLPSource:   nlp.SourceError,
	}
}
