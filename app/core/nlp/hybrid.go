package nlp

import (
	"context"
	"strings"

	"slicebot/app/pkg/logger"
)

// Fallback produces an extraction when the rule table has no answer.
// The concrete implementation lives in the llm package.
type Fallback interface {
	ExtractIntent(ctx context.Context, text string) (*Result, error)
}

// Extractor is the two-tier intent extractor: deterministic rules first,
// fallback second. Extract never returns nil and never propagates errors;
// a broken fallback degrades to an empty "error" result.
type Extractor struct {
	matcher  *Matcher
	fallback Fallback
}

func NewExtractor(fallback Fallback) *Extractor {
	return &Extractor{
		matcher:  NewMatcher(),
		fallback: fallback,
	}
}

func (e *Extractor) Extract(ctx context.Context, text string) *Result {
	lang := DetectLanguage(strings.ToLower(text))

	if res := e.matcher.Match(text); res != nil {
		return res
	}

	if e.fallback == nil {
		return &Result{
			Language:   lang,
			Entities:   EmptyEntities(),
			Source:     SourceNone,
			Confidence: 0,
		}
	}

	res, err := e.fallback.ExtractIntent(ctx, text)
	if err != nil || res == nil {
		logger.Error("fallback extraction failed: %v", err)
		return &Result{
			Language:   lang,
			Entities:   EmptyEntities(),
			Source:     SourceError,
			Confidence: 0,
		}
	}

	res.Language = lang
	res.Source = SourceFallback
	if res.Entities == nil {
		res.Entities = EmptyEntities()
	}
	return res
}
