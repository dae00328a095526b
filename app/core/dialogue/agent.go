package dialogue

import (
	"context"

	"github.com/google/uuid"

	"slicebot/app/pkg/types"
)

// Agent adapts the dialogue engine to the channel-facing Agent interface.
type Agent struct {
	name   string
	engine *Engine
}

func NewAgent(name string, engine *Engine) *Agent {
	return &Agent{name: name, engine: engine}
}

func (a *Agent) Name() string { return a.name }

// Process runs one turn and wraps the reply for the originating channel.
// The envelope is attached in Meta so rich channels can render more than
// the text.
func (a *Agent) Process(ctx context.Context, msg types.Message) (types.Message, error) {
	env := a.engine.ProcessMessage(ctx, msg.UserID, msg.Content)

	return types.Message{
		ID:        uuid.NewString(),
		Content:   env.BotResponse,
		Role:      types.MessageRoleAssistant,
		ChannelID: msg.ChannelID,
		UserID:    msg.UserID,
		RequestID: msg.RequestID,
		Meta: map[string]interface{}{
			"envelope": env,
		},
	}, nil
}
