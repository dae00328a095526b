package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"slicebot/app/core/nlp"
)

func fakeCompletionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		body := `{"choices":[{"message":{"role":"assistant","content":` + jsonString(content) + `}}]}`
		w.Write([]byte(body))
	}))
}

func jsonString(s string) string {
	out := `"`
	for _, r := range s {
		switch r {
		case '"':
			out += `\"`
		case '\n':
			out += `\n`
		case '\\':
			out += `\\`
		default:
			out += string(r)
		}
	}
	return out + `"`
}

func newTestProvider(t *testing.T, srv *httptest.Server) *Provider {
	t.Helper()
	return NewProvider(NewClient(Options{
		APIKey:  "test",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}))
}

func TestExtractIntentParsesCleanJSON(t *testing.T) {
	srv := fakeCompletionServer(t, `{"intent": "add_item", "entities": {"item": "margherita", "quantity": 2}, "confidence": 0.9}`)
	defer srv.Close()

	res, err := newTestProvider(t, srv).ExtractIntent(context.Background(), "that cheesy one, twice")
	require.NoError(t, err)
	require.Equal(t, nlp.IntentAddItem, res.Intent)
	require.Equal(t, "margherita", res.Entities.String("item"))
	require.Equal(t, 2, res.Entities.Int("quantity", 0))
	require.Equal(t, 0.9, res.Confidence)
}

func TestExtractIntentSalvagesFencedJSON(t *testing.T) {
	srv := fakeCompletionServer(t, "Here you go:\n```json\n{\"intent\": \"checkout\", \"entities\": {}, \"confidence\": 0.8}\n```")
	defer srv.Close()

	res, err := newTestProvider(t, srv).ExtractIntent(context.Background(), "wrap it up")
	require.NoError(t, err)
	require.Equal(t, nlp.IntentCheckout, res.Intent)
}

func TestExtractIntentRejectsNonJSON(t *testing.T) {
	srv := fakeCompletionServer(t, "I am not sure what you mean.")
	defer srv.Close()

	_, err := newTestProvider(t, srv).ExtractIntent(context.Background(), "blorp")
	require.Error(t, err)
}

func TestGenerateReply(t *testing.T) {
	srv := fakeCompletionServer(t, "Your cart has 2 items totaling 240 EGP.")
	defer srv.Close()

	reply, err := newTestProvider(t, srv).GenerateReply(context.Background(), "CART: 2 items, 240 EGP", "what do i have")
	require.NoError(t, err)
	require.Equal(t, "Your cart has 2 items totaling 240 EGP.", reply)
}
