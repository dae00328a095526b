package nlp

import "testing"

func TestMatchAddItemWithSize(t *testing.T) {
	res := NewMatcher().Match("add large margherita pizza")
	if res == nil {
		t.Fatal("expected a match")
	}
	if res.Intent != IntentAddItem {
		t.Fatalf("unexpected intent: %q", res.Intent)
	}
	if got := res.Entities.String("item"); got != "margherita pizza" {
		t.Fatalf("unexpected item: %q", got)
	}
	if got := res.Entities.String("size"); got != "L" {
		t.Fatalf("unexpected size: %q", got)
	}
	if res.Source != SourcePattern || res.Confidence != 1.0 {
		t.Fatalf("unexpected source/confidence: %q %f", res.Source, res.Confidence)
	}
}

func TestMatchAddItemLeadingNumeral(t *testing.T) {
	res := NewMatcher().Match("order 3 medium pepperoni pizza")
	if res == nil || res.Intent != IntentAddItem {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := res.Entities.Int("quantity", 0); got != 3 {
		t.Fatalf("unexpected quantity: %d", got)
	}
	if got := res.Entities.String("size"); got != "M" {
		t.Fatalf("unexpected size: %q", got)
	}
	if got := res.Entities.String("item"); got != "pepperoni pizza" {
		t.Fatalf("unexpected item: %q", got)
	}
}

func TestMatchAddItemWordQuantity(t *testing.T) {
	res := NewMatcher().Match("i want two cola")
	if res == nil || res.Intent != IntentAddItem {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := res.Entities.Int("quantity", 0); got != 2 {
		t.Fatalf("unexpected quantity: %d", got)
	}
	if got := res.Entities.String("item"); got != "cola" {
		t.Fatalf("unexpected item: %q", got)
	}
}

func TestMatchAddItemStripsFillerWords(t *testing.T) {
	res := NewMatcher().Match("add some water")
	if res == nil || res.Intent != IntentAddItem {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := res.Entities.String("item"); got != "water" {
		t.Fatalf("unexpected item: %q", got)
	}
	if res.Entities.Has("size") {
		t.Fatalf("unexpected size: %v", res.Entities["size"])
	}
}

func TestMatchAddItemMultiItemBatch(t *testing.T) {
	res := NewMatcher().Match("i want 1 fries and 2 cola")
	if res == nil || res.Intent != IntentAddItem {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.BatchItems) != 2 {
		t.Fatalf("expected 2 batch items, got %d", len(res.BatchItems))
	}
	if res.BatchItems[0].Item != "fries" || res.BatchItems[0].Quantity != 1 {
		t.Fatalf("unexpected first batch item: %+v", res.BatchItems[0])
	}
	if res.BatchItems[1].Item != "cola" || res.BatchItems[1].Quantity != 2 {
		t.Fatalf("unexpected second batch item: %+v", res.BatchItems[1])
	}
}

func TestMatchTrackOrderCapturesID(t *testing.T) {
	res := NewMatcher().Match("track my order number 42")
	if res == nil || res.Intent != IntentTrackOrder {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := res.Entities.String("order_id"); got != "42" {
		t.Fatalf("unexpected order id: %q", got)
	}
}

func TestMatchTrackOrderWithoutID(t *testing.T) {
	res := NewMatcher().Match("track my order")
	if res == nil || res.Intent != IntentTrackOrder {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Entities.Has("order_id") {
		t.Fatalf("unexpected order id: %v", res.Entities["order_id"])
	}
}

func TestMatchConfirmationExactOnly(t *testing.T) {
	if res := NewMatcher().Match("yes"); res == nil || res.Intent != IntentConfirmation {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res := NewMatcher().Match("yes add it and a cola too"); res != nil && res.Intent == IntentConfirmation {
		t.Fatalf("confirmation must be anchored, got %+v", res)
	}
}

func TestMatchRejection(t *testing.T) {
	res := NewMatcher().Match("no")
	if res == nil || res.Intent != IntentRejection {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestMatchViewCart(t *testing.T) {
	for _, text := range []string{"show my cart", "what is the total", "how much did i spend"} {
		res := NewMatcher().Match(text)
		if res == nil || res.Intent != IntentViewCart {
			t.Fatalf("%q: unexpected result: %+v", text, res)
		}
	}
}

func TestMatchArabicAddItem(t *testing.T) {
	res := NewMatcher().Match("عايز بيتزا كبير")
	if res == nil || res.Intent != IntentAddItem {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Language != LangArabic {
		t.Fatalf("unexpected language: %q", res.Language)
	}
	if got := res.Entities.String("size"); got != "L" {
		t.Fatalf("unexpected size: %q", got)
	}
	if got := res.Entities.String("item"); got != "بيتزا" {
		t.Fatalf("unexpected item: %q", got)
	}
}

func TestMatchNoRule(t *testing.T) {
	if res := NewMatcher().Match("tell me a joke"); res != nil {
		t.Fatalf("expected no match, got %+v", res)
	}
}

func TestExtractSizeOrdering(t *testing.T) {
	size, rest := ExtractSize("small margherita", LangEnglish)
	if size != "S" || rest != "margherita" {
		t.Fatalf("unexpected extraction: %q %q", size, rest)
	}
	size, rest = ExtractSize("fries", LangEnglish)
	if size != "" || rest != "fries" {
		t.Fatalf("unexpected extraction: %q %q", size, rest)
	}
	size, _ = ExtractSize("reg fries", LangEnglish)
	if size != "REG" {
		t.Fatalf("unexpected size: %q", size)
	}
}
