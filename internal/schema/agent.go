package schema

import (
	"context"
	"time"
)

type AgentSettings struct {
	SystemPrompt    string
	MaxTurns        int
	ToolChoice      string
	ToolConcurrency int
	ToolTimeout     time.Duration
}

func NewAgentSettings(systemPrompt string, maxTurns, toolConcurrency int, toolTimeout time.Duration) AgentSettings {
	return AgentSettings{
		SystemPrompt:    systemPrompt,
		MaxTurns:        maxTurns,
		ToolConcurrency: toolConcurrency,
		ToolTimeout:     toolTimeout,
	}
}

// Automator runs one user submission through the model until it produces a
// final answer.
type Automator interface {
	Automate(ctx context.Context, userQuery string, history Messages) error
	// Submit claims the automator before calling prepare for the history,
	// and rejects the submission without calling it while another runs.
	Submit(ctx context.Context, userQuery string, prepare func() (Messages, error)) error
	Running() bool
}
