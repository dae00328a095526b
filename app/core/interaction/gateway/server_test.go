package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"slicebot/app/pkg/types"
)

type scriptedChannel struct {
	id      string
	inbound []types.Message
	sent    chan types.Message
}

func newScriptedChannel(id string, inbound ...types.Message) *scriptedChannel {
	return &scriptedChannel{id: id, inbound: inbound, sent: make(chan types.Message, 8)}
}

func (c *scriptedChannel) ID() string { return c.id }

func (c *scriptedChannel) Start(ctx context.Context, handler func(types.Message)) error {
	for _, msg := range c.inbound {
		handler(msg)
	}
	return nil
}

func (c *scriptedChannel) Send(ctx context.Context, msg types.Message) error {
	c.sent <- msg
	return nil
}

type echoAgent struct {
	err error
}

func (a *echoAgent) Name() string { return "echo" }

func (a *echoAgent) Process(ctx context.Context, msg types.Message) (types.Message, error) {
	if a.err != nil {
		return types.Message{}, a.err
	}
	return types.Message{Content: "echo: " + msg.Content}, nil
}

func TestGatewayRoutesReplyToSourceChannel(t *testing.T) {
	ch := newScriptedChannel("cli", types.Message{
		ID:        "m1",
		Content:   "hello",
		ChannelID: "cli",
		UserID:    "u1",
		RequestID: "r1",
	})

	gw := NewGateway(&echoAgent{})
	gw.RegisterChannel(ch)

	if err := gw.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case reply := <-ch.sent:
		if reply.Content != "echo: hello" {
			t.Fatalf("unexpected reply content %q", reply.Content)
		}
		if reply.ChannelID != "cli" || reply.UserID != "u1" || reply.RequestID != "r1" {
			t.Fatalf("reply not normalized: %+v", reply)
		}
		if reply.Role != types.MessageRoleAssistant {
			t.Fatalf("role = %q", reply.Role)
		}
	case <-time.After(time.Second):
		t.Fatal("no reply delivered")
	}
}

func TestGatewayDeliversErrorReply(t *testing.T) {
	ch := newScriptedChannel("cli", types.Message{
		ID:        "m1",
		Content:   "hello",
		ChannelID: "cli",
		UserID:    "u1",
	})

	gw := NewGateway(&echoAgent{err: errors.New("agent down")})
	gw.RegisterChannel(ch)

	if err := gw.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case reply := <-ch.sent:
		if reply.Content != "Error: agent down" {
			t.Fatalf("unexpected error reply %q", reply.Content)
		}
	case <-time.After(time.Second):
		t.Fatal("no error reply delivered")
	}
}

func TestHealthStatusTracksChannels(t *testing.T) {
	gw := NewGateway(&echoAgent{})
	gw.RegisterChannel(newScriptedChannel("cli"))
	gw.RegisterChannel(newScriptedChannel("http"))

	status := gw.HealthStatus()
	if status.AgentName != "echo" {
		t.Fatalf("agent name = %q", status.AgentName)
	}
	if len(status.RegisteredChannels) != 2 || status.RegisteredChannels[0] != "cli" {
		t.Fatalf("channels = %v", status.RegisteredChannels)
	}
	if status.QueueEnabled {
		t.Fatal("queue should be disabled by default")
	}
}
