package nlp

import (
	"context"
	"errors"
	"testing"
)

type stubFallback struct {
	res    *Result
	err    error
	called bool
}

func (s *stubFallback) ExtractIntent(ctx context.Context, text string) (*Result, error) {
	s.called = true
	return s.res, s.err
}

func TestExtractPatternTierShortCircuits(t *testing.T) {
	fb := &stubFallback{}
	e := NewExtractor(fb)

	res := e.Extract(context.Background(), "show my cart")
	if res.Intent != IntentViewCart || res.Source != SourcePattern {
		t.Fatalf("unexpected result: %+v", res)
	}
	if fb.called {
		t.Fatal("fallback must not run when a rule fires")
	}
}

func TestExtractUsesFallback(t *testing.T) {
	fb := &stubFallback{res: &Result{
		Intent:     IntentAddItem,
		Entities:   Entities{"item": "margherita"},
		Confidence: 0.9,
	}}
	e := NewExtractor(fb)

	res := e.Extract(context.Background(), "maybe that round cheesy one")
	if !fb.called {
		t.Fatal("expected fallback to run")
	}
	if res.Intent != IntentAddItem || res.Source != SourceFallback {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Language != LangEnglish {
		t.Fatalf("unexpected language: %q", res.Language)
	}
}

func TestExtractFallbackErrorDegrades(t *testing.T) {
	fb := &stubFallback{err: errors.New("boom")}
	e := NewExtractor(fb)

	res := e.Extract(context.Background(), "blorp zorp")
	if res.Intent != "" || res.Source != SourceError || res.Confidence != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Entities.Has("item") {
		t.Fatalf("expected empty entities, got %+v", res.Entities)
	}
}

func TestExtractWithoutFallback(t *testing.T) {
	e := NewExtractor(nil)

	res := e.Extract(context.Background(), "blorp zorp")
	if res.Intent != "" || res.Source != SourceNone {
		t.Fatalf("unexpected result: %+v", res)
	}
}
