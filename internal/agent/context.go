package agent

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/ait-tooling/ait/internal/capability"
	"github.com/ait-tooling/ait/internal/schema"
)

// DefaultSystemPrompt instructs the model to operate the application through
// the registered tools.
const DefaultSystemPrompt = `You are an assistant embedded in a running application.
You operate the application on behalf of the user by calling the provided tools.

Tool names have the form <Component>___<method>. Only call tools that are listed.
The META INFORMATION and STATE INFORMATION messages describe the components that
are currently available and their current state; prefer them over guessing ids.

When a task needs several steps, call the tools for all of them. When a tool
returns an empty result the action failed; read the state again and adapt.
When you are done, answer with one or two short sentences describing what changed.`

// ContextBuilder assembles the message list sent on the first turn of an
// automation.
type ContextBuilder struct {
	systemPrompt string
	registry     *capability.Registry
}

// NewContextBuilder creates a ContextBuilder. An empty systemPrompt selects
// DefaultSystemPrompt.
func NewContextBuilder(systemPrompt string, registry *capability.Registry) *ContextBuilder {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &ContextBuilder{systemPrompt: systemPrompt, registry: registry}
}

// BuildSystemPrompt returns the instructions followed by the runtime section.
func (cb *ContextBuilder) BuildSystemPrompt() string {
	return cb.systemPrompt + "\n\n" + buildRuntime()
}

func buildRuntime() string {
	now := time.Now().Format("2006-01-02 15:04 (Monday)")
	tz, _ := time.Now().Zone()
	if tz == "" {
		tz = "UTC"
	}
	return fmt.Sprintf("## Current Time\n%s (%s)\n\n## Runtime\n%s %s, Go %s",
		now, tz, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

// BuildMessages builds the complete message list for the first model request:
// system prompt, meta information, state information, history, user message.
func (cb *ContextBuilder) BuildMessages(history schema.Messages, userQuery string) schema.Messages {
	messages := schema.NewMessages()
	messages.AddSystem(cb.BuildSystemPrompt())
	messages.AddSystem(cb.registry.MetaInformation())
	messages.AddSystem(cb.registry.StateInformation())
	messages.Append(history)
	messages.AddUser(userQuery)
	return messages
}
