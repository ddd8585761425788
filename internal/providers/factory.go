package providers

import "time"

// Params are the raw values needed to construct a provider.
// Extracted from config.Config by the caller to avoid an import cycle.
type Params struct {
	APIKey       string
	APIBase      string
	ExtraHeaders map[string]string
	DefaultModel string
	Temperature  float64
	Compat       string        // CompatOpenAI when empty
	Timeout      time.Duration // 0 disables the client timeout
}

// New creates the provider for the given params.
func New(p Params) *OpenAIProvider {
	return NewOpenAIProvider(p)
}
