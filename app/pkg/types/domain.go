package types

import "time"

// SizePrice is one orderable size of a menu item.
type SizePrice struct {
	ID        int64   `json:"menu_size_id"`
	Size      string  `json:"size"` // S, M, L, REG
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

// MenuItem is one product on the menu with its size/price options.
type MenuItem struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category"` // "pizza" or "addition"
	Available   bool        `json:"available"`
	Sizes       []SizePrice `json:"sizes"`
}

// CartItem is one line in a user's cart.
type CartItem struct {
	MenuSizeID int64   `json:"menu_size_id"`
	ItemName   string  `json:"item_name"`
	Category   string  `json:"category"`
	Size       string  `json:"size"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	Subtotal   float64 `json:"subtotal"`
}

// CartSnapshot is the cart as loaded at one point in the pipeline.
type CartSnapshot struct {
	Items      []CartItem `json:"items"`
	TotalPrice float64    `json:"total_price"`
	ItemCount  int        `json:"item_count"`
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	Name     string  `json:"name"`
	Size     string  `json:"size"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Subtotal float64 `json:"subtotal"`
}

// Order is a placed order.
type Order struct {
	ID         int64       `json:"order_id"`
	UserID     string      `json:"user_id"`
	Status     string      `json:"status"`
	TotalPrice float64     `json:"total_price"`
	CreatedAt  int64       `json:"created_at"`
	Items      []OrderItem `json:"items,omitempty"`
}

// CheckoutResult is the structured outcome of placing an order.
// Replies about a checkout are built from this record only.
type CheckoutResult struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	OrderID    int64       `json:"order_id"`
	TotalPrice float64     `json:"total_price"`
	Items      []OrderItem `json:"items"`
}

// HistoryMessage is one stored conversation turn.
type HistoryMessage struct {
	ID        int64  `json:"id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"` // "user" or "bot"
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
	Meta      string `json:"meta,omitempty"` // JSON blob
}

// Recommendation is one suggested menu item with its reason.
type Recommendation struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Description string      `json:"description,omitempty"`
	Sizes       []SizePrice `json:"sizes,omitempty"`
	Reason      string      `json:"recommendation_reason,omitempty"`
	Badge       string      `json:"badge,omitempty"`
}

// DialogueState is the multi-turn phase a conversation is in.
type DialogueState string

const (
	StateIdle                 DialogueState = "idle"
	StateAwaitingSize         DialogueState = "awaiting_size"
	StateAwaitingQuantity     DialogueState = "awaiting_quantity"
	StateAwaitingConfirmation DialogueState = "awaiting_confirmation"
	StateAwaitingAddress      DialogueState = "awaiting_address"
	StateAwaitingPayment      DialogueState = "awaiting_payment"
	StateClarifyingItem       DialogueState = "clarifying_item"
)

// PendingAction tracks one incomplete command awaiting clarification.
// At most one exists per user; creating a new one discards the prior.
type PendingAction struct {
	ActionType  string                 `json:"action_type"`
	MissingInfo []string               `json:"missing_info"`
	PartialData map[string]interface{} `json:"partial_data"`
	CreatedAt   time.Time              `json:"created_at"`
	Attempts    int                    `json:"attempts"`
}

// PendingSuggestion is one proposed action awaiting yes/no confirmation.
// At most one exists per user; it expires 5 minutes after creation,
// checked lazily on the next confirmation turn.
type PendingSuggestion struct {
	Type      string    `json:"type"` // "add_item"
	Item      string    `json:"item"`
	Size      string    `json:"size,omitempty"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the durable per-user dialogue state, owned by the store and
// written back explicitly at end of turn.
type Session struct {
	UserID     string             `json:"user_id"`
	State      DialogueState      `json:"state"`
	Pending    *PendingAction     `json:"pending_action,omitempty"`
	Suggestion *PendingSuggestion `json:"pending_suggestion,omitempty"`
	UpdatedAt  int64              `json:"updated_at"`
}
