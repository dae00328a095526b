package dialogue

import (
	"context"
	"time"

	"slicebot/app/core/nlp"
	"slicebot/app/pkg/types"
)

// Store is the persistence surface the dialogue engine needs. The sqlite
// store satisfies it; tests swap in an in-memory one.
type Store interface {
	EnsureUser(ctx context.Context, userID string) error

	ListMenu(ctx context.Context) ([]types.MenuItem, error)
	FindItem(ctx context.Context, name string) (*types.MenuItem, error)
	SearchItemsFuzzy(ctx context.Context, query string, limit int) ([]types.MenuItem, error)

	AddToCart(ctx context.Context, userID string, menuSizeID int64, quantity int) (int, error)
	GetCart(ctx context.Context, userID string) (*types.CartSnapshot, error)
	SetCartQuantity(ctx context.Context, userID string, menuSizeID int64, quantity int) error
	RemoveCartItem(ctx context.Context, userID string, menuSizeID int64) error
	ClearCart(ctx context.Context, userID string) (int, error)

	Checkout(ctx context.Context, userID string) (*types.CheckoutResult, error)
	GetOrder(ctx context.Context, userID string, orderID int64) (*types.Order, error)
	LatestOrder(ctx context.Context, userID string) (*types.Order, error)

	SaveMessage(ctx context.Context, msg types.HistoryMessage) error
	RecentHistory(ctx context.Context, userID string, limit int) ([]types.HistoryMessage, error)

	GetSession(ctx context.Context, userID string) (*types.Session, error)
	SaveSession(ctx context.Context, sess *types.Session) error
}

// Recommender produces upsell suggestions after successful cart changes.
type Recommender interface {
	Recommend(ctx context.Context, userID string, cart *types.CartSnapshot, maxItems int) []types.Recommendation
}

// Generator phrases a turn's outcome conversationally. It is optional; a nil
// generator degrades to the handlers' own messages.
type Generator interface {
	GenerateReply(ctx context.Context, contextBlob, userMessage string) (string, error)
}

// Extractor turns raw text into an intent and entities.
type Extractor interface {
	Extract(ctx context.Context, text string) *nlp.Result
}

// suggestionTTL is how long a pending suggestion stays confirmable.
const suggestionTTL = 5 * time.Minute
