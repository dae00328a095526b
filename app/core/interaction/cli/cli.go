package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"slicebot/app/pkg/types"
)

// CLIChannel is a line-oriented local REPL. Every line becomes one message
// for the fixed local user.
type CLIChannel struct {
	id     string
	userID string
}

func NewCLIChannel(userID string) *CLIChannel {
	if strings.TrimSpace(userID) == "" {
		userID = "local_user"
	}
	return &CLIChannel{id: "cli", userID: userID}
}

func (c *CLIChannel) ID() string {
	return c.id
}

func (c *CLIChannel) Start(ctx context.Context, handler func(types.Message)) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println(">> Slicebot CLI started. Type 'exit' to quit.")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			fmt.Print("> ")
			if !scanner.Scan() {
				return nil
			}
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			if text == "exit" || text == "quit" {
				fmt.Println("Exiting CLI loop...")
				return nil
			}

			handler(types.Message{
				ID:        uuid.NewString(),
				Content:   text,
				Role:      types.MessageRoleUser,
				ChannelID: c.id,
				UserID:    c.userID,
			})
		}
	}
}

func (c *CLIChannel) Send(ctx context.Context, msg types.Message) error {
	fmt.Printf("[Slicebot]: %s\n", msg.Content)
	return nil
}
