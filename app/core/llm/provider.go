package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"slicebot/app/core/nlp"
	"slicebot/app/pkg/logger"
)

// Provider adapts the chat client to the extractor fallback and the
// response generator.
type Provider struct {
	client *Client
}

func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

// ExtractIntent asks the model to classify a message the rule table could
// not handle. The reply is salvaged as JSON even when the model wraps it in
// code fences or chatter.
func (p *Provider) ExtractIntent(ctx context.Context, text string) (*nlp.Result, error) {
	raw, err := p.client.Complete(ctx, parseSystemPrompt, buildParsePrompt(text))
	if err != nil {
		return nil, err
	}

	obj := extractJSONObject(raw)
	parsed := gjson.Parse(obj)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("model returned no parsable JSON: %q", truncate(raw, 120))
	}

	res := &nlp.Result{
		Intent:     parsed.Get("intent").String(),
		Entities:   nlp.EmptyEntities(),
		Confidence: parsed.Get("confidence").Float(),
	}
	parsed.Get("entities").ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.Number:
			res.Entities[key.String()] = int(value.Int())
		case gjson.String:
			res.Entities[key.String()] = value.String()
		}
		return true
	})

	logger.Info("fallback extraction: intent=%s confidence=%.2f", res.Intent, res.Confidence)
	return res, nil
}

// GenerateReply produces the conversational wording for a turn. The context
// blob is authoritative; the model only phrases it.
func (p *Provider) GenerateReply(ctx context.Context, contextBlob, userMessage string) (string, error) {
	reply, err := p.client.Complete(ctx, replySystemPrompt, buildReplyPrompt(contextBlob, userMessage))
	if err != nil {
		return "", err
	}
	if reply == "" {
		return "", fmt.Errorf("model returned an empty reply")
	}
	return reply, nil
}

// extractJSONObject cuts the first top-level JSON object out of a model
// reply, dropping markdown fences first.
func extractJSONObject(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.Index(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
