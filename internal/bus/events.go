// Package bus defines the notifications that flow from the orchestrator to
// the chat log and the UI subscribers.
package bus

import (
	"time"

	"github.com/ait-tooling/ait/internal/schema"
	"github.com/ait-tooling/ait/internal/shared/llmutils"
)

// DialogMessage is one entry of the visible conversation.
//
// Source mirrors what was sent to, or received from, the model. Only messages
// carrying a Source are replayed as history on the next submission.
type DialogMessage struct {
	Role      schema.Role     `json:"role"`
	Message   string          `json:"message"`
	Extended  string          `json:"extended,omitempty"` // error details or extra context
	Timestamp time.Time       `json:"timestamp"`
	Source    *schema.Message `json:"source,omitempty"`
}

// Notifier receives every dialog message produced during an automation.
type Notifier interface {
	Notify(msg DialogMessage)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(msg DialogMessage)

func (f NotifierFunc) Notify(msg DialogMessage) { f(msg) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(DialogMessage) {})

// NewUserMessage builds the dialog entry for text typed by the user.
func NewUserMessage(content string) DialogMessage {
	src := schema.NewUserMessage(content)
	return DialogMessage{
		Role:      schema.RoleUser,
		Message:   content,
		Timestamp: time.Now(),
		Source:    &src,
	}
}

// Sources returns the model messages behind msgs, skipping entries without one.
func Sources(msgs []DialogMessage) schema.Messages {
	out := schema.NewMessages()
	for _, m := range msgs {
		if m.Source != nil {
			out.Add(*m.Source)
		}
	}
	return out
}

// ContentPreview returns a short snippet of the message for logging.
func (m DialogMessage) ContentPreview() string {
	return llmutils.Truncate(m.Message, 80)
}
