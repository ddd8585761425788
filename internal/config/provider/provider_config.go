package provider

import "time"

// ProviderConfig selects the model backend and holds its credentials.
type ProviderConfig struct {
	Name         string            `yaml:"name" validate:"required,oneof=openai groq openrouter ollama anthropic"`
	APIKey       string            `yaml:"apiKey,omitempty"`
	APIBase      string            `yaml:"apiBase,omitempty" validate:"omitempty,url"`
	ExtraHeaders map[string]string `yaml:"extraHeaders,omitempty"`
	Timeout      time.Duration     `yaml:"timeout" validate:"gte=0"` // 0 disables the request timeout
}

func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{Name: "openai", Timeout: 2 * time.Minute}
}
