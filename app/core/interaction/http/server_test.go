package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"slicebot/app/pkg/types"
)

func TestHandleMessageRoundTrip(t *testing.T) {
	c := NewHTTPChannel(0)
	c.handler = func(msg types.Message) {
		reply := types.Message{
			Content:   "pong",
			RequestID: msg.RequestID,
			Meta:      map[string]interface{}{"envelope": map[string]interface{}{"intent": "welcome"}},
		}
		if err := c.Send(context.Background(), reply); err != nil {
			t.Errorf("send: %v", err)
		}
	}

	req := httptest.NewRequest("POST", "/api/message", strings.NewReader(`{"content":"ping","user_id":"u1"}`))
	rec := httptest.NewRecorder()
	c.handleMessage(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	var payload outgoingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Response != "pong" {
		t.Fatalf("response = %q", payload.Response)
	}
	if payload.Result == nil {
		t.Fatal("envelope missing from payload")
	}
}

func TestHandleMessageRejectsEmptyContent(t *testing.T) {
	c := NewHTTPChannel(0)
	c.handler = func(types.Message) {}

	req := httptest.NewRequest("POST", "/api/message", strings.NewReader(`{"content":"  "}`))
	rec := httptest.NewRecorder()
	c.handleMessage(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSendDropsUnknownRequestID(t *testing.T) {
	c := NewHTTPChannel(0)
	if err := c.Send(context.Background(), types.Message{RequestID: "missing", Content: "x"}); err != nil {
		t.Fatalf("send should not error on unknown request: %v", err)
	}
}

func TestPendingCleanupAfterResponse(t *testing.T) {
	c := NewHTTPChannel(0)
	msg, respCh := c.prepareMessage(incomingRequest{Content: "hi", UserID: "u1"})

	if err := c.Send(context.Background(), types.Message{RequestID: msg.RequestID, Content: "ok"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case got := <-respCh:
		if got.Content != "ok" {
			t.Fatalf("content = %q", got.Content)
		}
	default:
		t.Fatal("reply not correlated to pending request")
	}

	c.removePendingRequest(msg.RequestID)
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	if len(c.pending) != 0 {
		t.Fatalf("pending not cleaned up: %d entries", len(c.pending))
	}
}
