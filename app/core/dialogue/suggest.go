package dialogue

import (
	"fmt"
	"strings"
	"time"

	"slicebot/app/core/nlp"
	"slicebot/app/pkg/types"
)

func newAddItemSuggestion(item, size string, quantity int) *types.PendingSuggestion {
	if quantity <= 0 {
		quantity = 1
	}
	return &types.PendingSuggestion{
		Type:      "add_item",
		Item:      item,
		Size:      size,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}
}

// suggestionExpired is checked lazily at confirmation time; nothing reaps
// suggestions in the background.
func suggestionExpired(s *types.PendingSuggestion) bool {
	if s == nil {
		return true
	}
	return time.Since(s.CreatedAt) > suggestionTTL
}

func formatSuggestionQuestion(s *types.PendingSuggestion, lang string) string {
	if s == nil || s.Type != "add_item" {
		return "Would you like to proceed?"
	}

	var parts []string
	if s.Quantity > 1 {
		parts = append(parts, fmt.Sprintf("%d", s.Quantity))
	}
	if s.Size != "" {
		parts = append(parts, s.Size)
	}
	parts = append(parts, s.Item)
	described := strings.Join(parts, " ")

	if lang == nlp.LangArabic {
		return fmt.Sprintf("هل تريد إضافة %s إلى السلة؟", described)
	}
	return fmt.Sprintf("Would you like to add %s to your cart?", described)
}
