package nlp

import "strconv"

// Extraction source tags. Pattern hits always report confidence 1.0;
// "none" and "error" report 0.
const (
	SourcePattern  = "pattern"
	SourceFallback = "fallback"
	SourceNone     = "none"
	SourceError    = "error"
)

// Entities is the extracted slot map. Keys come from a fixed vocabulary;
// a match replaces the whole map, it is never merged field by field.
type Entities map[string]interface{}

// EntityKeys is the closed slot vocabulary.
var EntityKeys = []string{"item", "size", "quantity", "order_id", "address", "phone"}

// EmptyEntities returns the slot map with every known key unset.
func EmptyEntities() Entities {
	e := make(Entities, len(EntityKeys))
	for _, k := range EntityKeys {
		e[k] = nil
	}
	return e
}

// String returns the entity as a string, or "" when unset.
func (e Entities) String(key string) string {
	if e == nil {
		return ""
	}
	v, ok := e[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	}
	return ""
}

// Int returns the entity as an int, or def when unset or unparsable.
func (e Entities) Int(key string, def int) int {
	if e == nil {
		return def
	}
	switch v := e[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Has reports whether the entity is present with a usable value.
func (e Entities) Has(key string) bool {
	if e == nil {
		return false
	}
	v, ok := e[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr && s == "" {
		return false
	}
	return true
}

// BatchItem is one parsed element of a multi-item command.
type BatchItem struct {
	Item     string `json:"item"`
	Size     string `json:"size,omitempty"`
	Quantity int    `json:"quantity"`
}

// Result is the standardized extraction outcome.
type Result struct {
	Intent     string      `json:"intent"`
	Language   string      `json:"lang"`
	Entities   Entities    `json:"entities"`
	BatchItems []BatchItem `json:"batch_items,omitempty"`
	Source     string      `json:"source"`
	Confidence float64     `json:"confidence"`
}
