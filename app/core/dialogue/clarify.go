package dialogue

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"slicebot/app/core/nlp"
	"slicebot/app/pkg/types"
)

// additionKeywords mark single-size items: for these add_item only needs the
// item name, everything else also needs a size.
var additionKeywords = []string{"fries", "cola", "juice", "water", "drink"}

// requiredFields returns the entity slots an intent cannot run without.
func requiredFields(intent string, entities nlp.Entities) []string {
	switch intent {
	case nlp.IntentAddItem:
		item := strings.ToLower(entities.String("item"))
		for _, kw := range additionKeywords {
			if strings.Contains(item, kw) {
				return []string{"item"}
			}
		}
		return []string{"item", "size"}
	case nlp.IntentRemoveItem:
		return []string{"item"}
	default:
		return nil
	}
}

// needsClarification reports the required slots still missing.
func needsClarification(intent string, entities nlp.Entities) (bool, []string) {
	var missing []string
	for _, field := range requiredFields(intent, entities) {
		if !entities.Has(field) {
			missing = append(missing, field)
		}
	}
	return len(missing) > 0, missing
}

// stateForMissing maps the first missing slot to a dialogue state.
func stateForMissing(missing []string) types.DialogueState {
	if len(missing) == 0 {
		return types.StateIdle
	}
	switch missing[0] {
	case "size":
		return types.StateAwaitingSize
	case "quantity":
		return types.StateAwaitingQuantity
	case "item":
		return types.StateClarifyingItem
	default:
		return types.StateClarifyingItem
	}
}

// clarificationQuestion builds the follow-up question for the missing slots.
func (e *Engine) clarificationQuestion(ctx context.Context, c *Context, missing []string) string {
	switch c.Intent {
	case nlp.IntentAddItem:
		return e.clarifyAddItem(ctx, c, missing)
	case nlp.IntentRemoveItem:
		return clarifyRemoveItem(c, missing)
	default:
		return genericClarification(missing, c.Language)
	}
}

func (e *Engine) clarifyAddItem(ctx context.Context, c *Context, missing []string) string {
	itemName := c.Entities.String("item")

	if contains(missing, "item") {
		if c.Language == nlp.LangArabic {
			return "عايز تطلب إيه؟ قول اسم البيتزا أو الإضافة."
		}
		return "What would you like to order? Please tell me the item name."
	}

	if contains(missing, "size") && itemName != "" {
		sizes := e.availableSizesFor(ctx, itemName)
		if len(sizes) == 0 {
			if c.Language == nlp.LangArabic {
				return fmt.Sprintf("آسف، مش لاقي '%s' في القائمة. ممكن تتأكد من الاسم؟", itemName)
			}
			return fmt.Sprintf("Sorry, I couldn't find '%s' in our menu. Could you check the name?", itemName)
		}
		if c.Language == nlp.LangArabic {
			return fmt.Sprintf("أي حجم عايز من %s؟\n%s", itemName, formatSizesArabic(sizes))
		}
		return fmt.Sprintf("What size would you like for %s?\n%s", itemName, formatSizesEnglish(sizes))
	}

	return genericClarification(missing, c.Language)
}

func clarifyRemoveItem(c *Context, missing []string) string {
	if c.Cart == nil || len(c.Cart.Items) == 0 {
		if c.Language == nlp.LangArabic {
			return "السلة فاضية، مفيهاش حاجة."
		}
		return "Your cart is empty. There's nothing to remove."
	}

	if contains(missing, "item") {
		var lines []string
		for _, it := range c.Cart.Items {
			lines = append(lines, fmt.Sprintf("  • %s (%s) × %d", it.ItemName, it.Size, it.Quantity))
		}
		cartText := strings.Join(lines, "\n")
		if c.Language == nlp.LangArabic {
			return fmt.Sprintf("عايز تشيل إيه؟\nفي السلة دلوقتي:\n%s", cartText)
		}
		return fmt.Sprintf("What would you like to remove?\nCurrently in your cart:\n%s", cartText)
	}

	return genericClarification(missing, c.Language)
}

func genericClarification(missing []string, lang string) string {
	if lang == nlp.LangArabic {
		return fmt.Sprintf("محتاج معلومات إضافية: %s", strings.Join(missing, "، "))
	}
	return fmt.Sprintf("I need more information: %s", strings.Join(missing, ", "))
}

// availableSizesFor looks up an item's sizes, falling back to word-by-word
// search for compound names like "margherita pizza large".
func (e *Engine) availableSizesFor(ctx context.Context, itemName string) []types.SizePrice {
	item, err := e.store.FindItem(ctx, itemName)
	if err != nil {
		return nil
	}
	if item == nil {
		for _, word := range strings.Fields(strings.ToLower(itemName)) {
			if len(word) <= 3 {
				continue
			}
			item, err = e.store.FindItem(ctx, word)
			if err == nil && item != nil {
				break
			}
		}
	}
	if item == nil {
		return nil
	}
	return item.Sizes
}

var sizeNamesEnglish = map[string]string{"S": "Small", "M": "Medium", "L": "Large", "REG": "Regular"}
var sizeNamesArabic = map[string]string{"S": "صغير", "M": "متوسط", "L": "كبير", "REG": "عادي"}

func formatSizesEnglish(sizes []types.SizePrice) string {
	var lines []string
	for _, s := range sizes {
		name := sizeNamesEnglish[s.Size]
		if name == "" {
			name = s.Size
		}
		lines = append(lines, fmt.Sprintf("  • %s (%s) - %s EGP", name, s.Size, formatPrice(s.Price)))
	}
	return strings.Join(lines, "\n")
}

func formatSizesArabic(sizes []types.SizePrice) string {
	var lines []string
	for _, s := range sizes {
		name := sizeNamesArabic[s.Size]
		if name == "" {
			name = s.Size
		}
		lines = append(lines, fmt.Sprintf("  • %s (%s) - %s جنيه", name, s.Size, formatPrice(s.Price)))
	}
	return strings.Join(lines, "\n")
}

// contextSizeWords maps substrings in a clarification reply to size codes.
// Checked in order, first hit wins.
var contextSizeWords = []struct {
	code  string
	words []string
}{
	{"S", []string{"small", "s", "صغير", "ص"}},
	{"M", []string{"medium", "m", "متوسط", "م"}},
	{"L", []string{"large", "l", "big", "كبير", "ك"}},
	{"REG", []string{"regular", "reg", "عادي", "عاد"}},
}

var digitsPattern = regexp.MustCompile(`\d+`)

// extractFromContext pulls one missing slot's value out of a free-form
// clarification reply ("large", "3", "order 17").
func extractFromContext(message, missingField string) interface{} {
	lower := strings.TrimSpace(strings.ToLower(message))

	switch missingField {
	case "size":
		for _, entry := range contextSizeWords {
			for _, w := range entry.words {
				if strings.Contains(lower, w) {
					return entry.code
				}
			}
		}
	case "quantity":
		if m := digitsPattern.FindString(lower); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				return n
			}
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func formatPrice(p float64) string {
	if p == float64(int64(p)) {
		return strconv.FormatInt(int64(p), 10)
	}
	return strconv.FormatFloat(p, 'f', 2, 64)
}
