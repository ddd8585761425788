// Package providers implements the chat-completion backend client.
//
// One HTTP client speaks the OpenAI chat-completions contract and carries
// compatibility shims for backends that deviate from it (Ollama's native chat
// endpoint and Anthropic's Messages API).
package providers

import (
	"fmt"

	"github.com/ait-tooling/ait/internal/schema"
)

// LLMProvider is the interface every model backend must satisfy.
// The canonical definition lives in internal/schema.
type LLMProvider = schema.LLMProvider

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}
