package history

import (
	"context"
	"strings"

	"github.com/ait-tooling/ait/internal/bus"
	"github.com/ait-tooling/ait/internal/schema"
)

// Chat is the conversation as the user sees it: messages they send are
// logged and handed to the automator together with the prior history.
type Chat struct {
	log       *Log
	automator schema.Automator
}

func NewChat(log *Log, automator schema.Automator) *Chat {
	return &Chat{log: log, automator: automator}
}

// SendMessage submits content. Blank input is ignored. The history passed to
// the automator is the model-facing source of every earlier message.
//
// The user message is logged only after the automator accepted the
// submission; a busy automator returns agent.ErrBusy and leaves the log as
// it was.
func (c *Chat) SendMessage(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return c.automator.Submit(ctx, content, func() (schema.Messages, error) {
		history := bus.Sources(c.log.Messages())
		if err := c.log.Append(ctx, bus.NewUserMessage(content)); err != nil {
			return schema.Messages{}, err
		}
		return history, nil
	})
}

// Messages returns the conversation in order.
func (c *Chat) Messages() []bus.DialogMessage { return c.log.Messages() }

// Clear drops the conversation.
func (c *Chat) Clear(ctx context.Context) error { return c.log.Clear(ctx) }

// Running reports whether an automation is in progress.
func (c *Chat) Running() bool { return c.automator.Running() }
