package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	digitItemHint = regexp.MustCompile(`\d+\s*[a-z]`)
	multiItemHint = regexp.MustCompile(`\b(and|,)\b`)
	multiSep      = regexp.MustCompile(`\band\b|,`)
	digitRun      = regexp.MustCompile(`\d+`)
	segmentStop   = regexp.MustCompile(`\s+and\s+|,`)
	segmentName   = regexp.MustCompile(`^\s*([a-z]+(?:\s+[a-z]+)*)`)
	partQuantity  = regexp.MustCompile(`^(\d+)\s*(.+)$`)
)

// IsMultiItem reports whether the phrase names more than one item, either by
// carrying two or more numbered items ("1 fries 2 cola") or by a separator
// with two non-empty halves ("fries and cola").
func IsMultiItem(text string) bool {
	lower := strings.ToLower(text)
	if len(digitItemHint.FindAllString(lower, -1)) >= 2 {
		return true
	}
	if multiItemHint.MatchString(lower) {
		parts := 0
		for _, p := range multiSep.Split(lower, -1) {
			if strings.TrimSpace(p) != "" {
				parts++
			}
		}
		return parts >= 2
	}
	return false
}

// ParseMultiItems splits a multi-item phrase into batch entries. Numbered
// segments take priority; otherwise the phrase is split on "and"/",".
// Sizes inside segments are only recognized in their English spelling.
func ParseMultiItems(text string) []BatchItem {
	lower := strings.ToLower(text)
	if items := parseNumberedItems(lower); len(items) >= 2 {
		return items
	}
	return parseSeparatedItems(lower)
}

// parseNumberedItems walks the digit runs in the text. Each item name is the
// span between a quantity and the next quantity, cut short at the first
// "and"/"," separator.
func parseNumberedItems(text string) []BatchItem {
	var items []BatchItem
	locs := digitRun.FindAllStringIndex(text, -1)
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		seg := text[loc[1]:end]
		if stop := segmentStop.FindStringIndex(seg); stop != nil {
			seg = seg[:stop[0]]
		}
		nm := segmentName.FindStringSubmatch(seg)
		if nm == nil {
			continue
		}

		qty, _ := strconv.Atoi(text[loc[0]:loc[1]])
		size, rest := ExtractSize(nm[1], LangEnglish)
		name := CleanItemName(rest, LangEnglish)
		if name == "" {
			continue
		}
		items = append(items, BatchItem{Item: name, Size: size, Quantity: qty})
	}
	return items
}

func parseSeparatedItems(text string) []BatchItem {
	var items []BatchItem
	for _, part := range multiSep.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		qty := 1
		if m := partQuantity.FindStringSubmatch(part); m != nil {
			qty, _ = strconv.Atoi(m[1])
			part = strings.TrimSpace(m[2])
		}

		size, rest := ExtractSize(part, LangEnglish)
		name := CleanItemName(rest, LangEnglish)
		if name == "" {
			continue
		}
		items = append(items, BatchItem{Item: name, Size: size, Quantity: qty})
	}
	return items
}
