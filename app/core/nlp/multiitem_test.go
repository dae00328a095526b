package nlp

import "testing"

func TestIsMultiItemNumbered(t *testing.T) {
	if !IsMultiItem("1 fries 2 cola") {
		t.Fatal("expected multi-item")
	}
}

func TestIsMultiItemSeparator(t *testing.T) {
	if !IsMultiItem("fries and cola") {
		t.Fatal("expected multi-item")
	}
}

func TestIsMultiItemCommaNeedsAdjacentWords(t *testing.T) {
	if !IsMultiItem("fries,cola") {
		t.Fatal("expected multi-item")
	}
	// a comma followed by a space has no word edge on its right
	if IsMultiItem("fries, cola") {
		t.Fatal("unexpected multi-item")
	}
}

func TestIsMultiItemSingleNumberedItem(t *testing.T) {
	if IsMultiItem("1 large pizza") {
		t.Fatal("unexpected multi-item")
	}
}

func TestParseMultiItemsNumbered(t *testing.T) {
	items := ParseMultiItems("2 large pepperoni pizza and 1 cola")
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Item != "pepperoni pizza" || items[0].Size != "L" || items[0].Quantity != 2 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Item != "cola" || items[1].Size != "" || items[1].Quantity != 1 {
		t.Fatalf("unexpected second item: %+v", items[1])
	}
}

func TestParseMultiItemsAdjacentNumbered(t *testing.T) {
	items := ParseMultiItems("1 fries 2 cola")
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Item != "fries" || items[1].Item != "cola" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestParseMultiItemsSeparated(t *testing.T) {
	items := ParseMultiItems("fries and cola")
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	for _, it := range items {
		if it.Quantity != 1 {
			t.Fatalf("expected default quantity 1, got %+v", it)
		}
	}
}

func TestParseMultiItemsSeparatedWithSizes(t *testing.T) {
	items := ParseMultiItems("large margherita and small fries")
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Item != "margherita" || items[0].Size != "L" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Item != "fries" || items[1].Size != "S" {
		t.Fatalf("unexpected second item: %+v", items[1])
	}
}
