package schema

import "context"

// Finish reasons reported by chat-completion backends.
const (
	FinishStop      = "stop"
	FinishToolCalls = "tool_calls"
	FinishLength    = "length"
)

// PromptRequest is one chat-completion request.
type PromptRequest struct {
	Messages    Messages
	Tools       []ToolDescriptor
	ToolChoice  string   // "", "auto", "none", "required"; only sent with tools
	Model       string   // overrides the provider default when set
	Temperature *float64 // overrides the provider default when set
}

// Choice is one candidate completion returned by the backend.
type Choice struct {
	Index        int
	Message      Message
	FinishReason string
}

// RequestsTools reports whether the model stopped to have tools executed.
func (c Choice) RequestsTools() bool { return c.FinishReason == FinishToolCalls }

// Usage is the token accounting reported with a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// LLMProvider is the interface every model backend must satisfy.
type LLMProvider interface {
	// Prompt sends one chat-completion request and returns every choice.
	Prompt(ctx context.Context, req PromptRequest) ([]Choice, error)
	DefaultModel() string
}
