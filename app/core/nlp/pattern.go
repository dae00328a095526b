package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent vocabulary. The extractor is closed over this set; anything else
// comes back from the fallback provider as-is and falls through the router.
const (
	IntentWelcome      = "welcome"
	IntentTrackOrder   = "track_order"
	IntentAddItem      = "add_item"
	IntentRemoveItem   = "remove_item"
	IntentViewCart     = "view_cart"
	IntentClearCart    = "clear_cart"
	IntentCheckout     = "checkout"
	IntentBrowseMenu   = "browse_menu"
	IntentNewOrder     = "new_order"
	IntentConfirmation = "confirmation"
	IntentRejection    = "rejection"
)

type rule struct {
	lang string
	re   *regexp.Regexp
}

type intentRules struct {
	intent string
	rules  []rule
}

// intentTable is ordered: the first same-language rule that fires wins.
// There is no scoring between candidates and no cross-language matching.
var intentTable = []intentRules{
	{IntentWelcome, []rule{
		{LangEnglish, regexp.MustCompile(`(hi|hello|hey)`)},
		{LangArabic, regexp.MustCompile(`(اهلا|مرحبا|هاي)`)},
	}},
	{IntentTrackOrder, []rule{
		{LangEnglish, regexp.MustCompile(`(track|status of) my order(?: number (?P<order_id>\d+))?`)},
		{LangArabic, regexp.MustCompile(`(عايز اعرف|حالة) طلبي(?: رقم (?P<order_id>\d+))?`)},
	}},
	{IntentAddItem, []rule{
		{LangEnglish, regexp.MustCompile(`(?:add|order|i want to order|i want|get me|give me)\s+(?:a\s+)?(?P<full_input>[\w\s]+?)(?:\s+(?:please|thanks|thank you))?$`)},
		{LangArabic, regexp.MustCompile(`(?:ضيف|طلب|عايز)\s+(?P<full_input>[\p{L}\p{N}\s]+?)(?:\s+(?:من فضلك|شكرا))?$`)},
	}},
	{IntentRemoveItem, []rule{
		{LangEnglish, regexp.MustCompile(`(?:remove|delete|cancel)\s+(?P<item>[\d\w\s]+)`)},
		{LangArabic, regexp.MustCompile(`(?:شيل|احذف) (?P<item>[\p{L}\p{N}\s]+)`)},
	}},
	{IntentViewCart, []rule{
		{LangEnglish, regexp.MustCompile(`(show|view|what|see) (?:my )?cart`)},
		{LangEnglish, regexp.MustCompile(`(what|how much|what's) (?:is )?(?:the |my )?total`)},
		{LangEnglish, regexp.MustCompile(`(how much|what) (?:do |did )?i (?:order|have|spend)`)},
		{LangEnglish, regexp.MustCompile(`(what's|show) (?:my )?(?:order|price)`)},
		{LangArabic, regexp.MustCompile(`(اعرض|شف) (?:سلة )?الطلب|كام في السلة`)},
		{LangArabic, regexp.MustCompile(`(كام|إيه|ايه) (?:المجموع|السعر)`)},
	}},
	{IntentClearCart, []rule{
		{LangEnglish, regexp.MustCompile(`(clear|empty|reset|cancel) (?:my )?cart`)},
		{LangArabic, regexp.MustCompile(`(امسح|فضي|الغي) (?:السلة|الطلب)`)},
	}},
	{IntentCheckout, []rule{
		{LangEnglish, regexp.MustCompile(`(checkout|confirm|place order|pay|complete)`)},
		{LangArabic, regexp.MustCompile(`(ادفع|اكمل|اتمم الطلب|قرر)`)},
	}},
	{IntentBrowseMenu, []rule{
		{LangEnglish, regexp.MustCompile(`(what do you have|show menu|menu|pizza|items)`)},
		{LangArabic, regexp.MustCompile(`(في إيه|قائمة|عندك إيه|بيتزا)`)},
	}},
	{IntentNewOrder, []rule{
		{LangEnglish, regexp.MustCompile(`(new order|start order)`)},
		{LangArabic, regexp.MustCompile(`(طلب جديد|ابدأ طلب)`)},
	}},
	{IntentConfirmation, []rule{
		{LangEnglish, regexp.MustCompile(`^(yes|yeah|yep|yup|sure|ok|okay|correct|right|fine|alright|sounds good|that's right)$`)},
		{LangArabic, regexp.MustCompile(`^(نعم|ايوة|ماشي|تمام|صح)$`)},
	}},
	{IntentRejection, []rule{
		{LangEnglish, regexp.MustCompile(`^(no|nope|nah|not really|incorrect|wrong|cancel that)$`)},
		{LangArabic, regexp.MustCompile(`^(لا|مش صح|غلط)$`)},
	}},
}

type sizeRule struct {
	code string
	re   *regexp.Regexp
}

// Size sub-table, tried in order. Go's \b is ASCII-only, so word edges are
// spelled out to keep the Arabic rules working.
var sizeTable = map[string][]sizeRule{
	LangEnglish: {
		{"S", regexp.MustCompile(`(^|\s)(small|s)($|\s)`)},
		{"M", regexp.MustCompile(`(^|\s)(medium|m)($|\s)`)},
		{"L", regexp.MustCompile(`(^|\s)(large|l)($|\s)`)},
		{"REG", regexp.MustCompile(`(^|\s)(regular|reg)($|\s)`)},
	},
	LangArabic: {
		{"S", regexp.MustCompile(`(^|\s)(صغير|ص)($|\s)`)},
		{"M", regexp.MustCompile(`(^|\s)(متوسط|م)($|\s)`)},
		{"L", regexp.MustCompile(`(^|\s)(كبير|ك)($|\s)`)},
		{"REG", regexp.MustCompile(`(^|\s)(عادي|عاد)($|\s)`)},
	},
}

var fillerWords = map[string][]string{
	LangEnglish: {"a", "an", "the", "some"},
	LangArabic:  {},
}

var textNumbers = map[string]map[string]int{
	LangEnglish: {
		"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	},
	LangArabic: {
		"واحد": 1, "اتنين": 2, "تلاتة": 3, "اربعة": 4, "خمسة": 5,
		"ستة": 6, "سبعة": 7, "تمانية": 8, "تسعة": 9, "عشرة": 10,
	},
}

var leadingQuantity = regexp.MustCompile(`^(\d+)\s*([a-z].+)$`)

// Matcher is the deterministic tier of the extractor.
type Matcher struct{}

func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match runs the rule table against text and returns the first hit, or nil
// when no same-language rule fires.
func (m *Matcher) Match(text string) *Result {
	lower := strings.ToLower(text)
	lang := DetectLanguage(lower)

	for _, group := range intentTable {
		for _, r := range group.rules {
			if r.lang != lang {
				continue
			}
			match := r.re.FindStringSubmatch(lower)
			if match == nil {
				continue
			}

			entities := EmptyEntities()
			var fullInput string
			for i, name := range r.re.SubexpNames() {
				if name == "" || i >= len(match) || match[i] == "" {
					continue
				}
				if name == "full_input" {
					fullInput = match[i]
					continue
				}
				entities[name] = match[i]
			}

			res := &Result{
				Intent:     group.intent,
				Language:   lang,
				Entities:   entities,
				Source:     SourcePattern,
				Confidence: 1.0,
			}
			if group.intent == IntentAddItem && strings.TrimSpace(fullInput) != "" {
				m.fillAddItem(res, strings.TrimSpace(fullInput), lang)
			}
			return res
		}
	}
	return nil
}

// fillAddItem normalizes the captured item phrase: multi-item split first,
// then word-number or leading-numeral quantity, size token, filler words.
func (m *Matcher) fillAddItem(res *Result, fullInput, lang string) {
	if IsMultiItem(fullInput) {
		if batch := ParseMultiItems(fullInput); len(batch) >= 2 {
			res.BatchItems = batch
			return
		}
	}

	if qty, rest, ok := wordNumber(fullInput, lang); ok {
		res.Entities["quantity"] = qty
		fullInput = rest
	} else if qm := leadingQuantity.FindStringSubmatch(fullInput); qm != nil {
		qty, _ := strconv.Atoi(qm[1])
		res.Entities["quantity"] = qty
		fullInput = strings.TrimSpace(qm[2])
	}

	size, cleaned := ExtractSize(fullInput, lang)
	cleaned = CleanItemName(cleaned, lang)

	res.Entities["item"] = cleaned
	if size != "" {
		res.Entities["size"] = size
	}
}

// ExtractSize pulls a size token out of text and returns (code, remainder).
// The code is "" when no size word is present.
func ExtractSize(text, lang string) (string, string) {
	lower := strings.TrimSpace(strings.ToLower(text))
	rules, ok := sizeTable[lang]
	if !ok {
		rules = sizeTable[LangEnglish]
	}
	for _, sr := range rules {
		if sr.re.MatchString(lower) {
			cleaned := sr.re.ReplaceAllString(lower, " ")
			return sr.code, strings.Join(strings.Fields(cleaned), " ")
		}
	}
	return "", lower
}

// CleanItemName strips leading filler words: "a sea ranch pizza" -> "sea ranch pizza".
func CleanItemName(text, lang string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	fillers := fillerWords[lang]
	for len(words) > 0 && containsWord(fillers, words[0]) {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// wordNumber converts a leading text number: "one cola" -> (1, "cola", true).
func wordNumber(text, lang string) (int, string, bool) {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	if len(words) == 0 {
		return 0, text, false
	}
	nums, ok := textNumbers[lang]
	if !ok {
		nums = textNumbers[LangEnglish]
	}
	if qty, ok := nums[words[0]]; ok {
		return qty, strings.Join(words[1:], " "), true
	}
	return 0, text, false
}

func containsWord(words []string, w string) bool {
	for _, candidate := range words {
		if candidate == w {
			return true
		}
	}
	return false
}
