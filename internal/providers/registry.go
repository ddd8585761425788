package providers

import "strings"

// Wire dialects understood by OpenAIProvider.
const (
	CompatOpenAI    = "openai"    // OpenAI chat-completions shape
	CompatOllama    = "ollama"    // Ollama native /api/chat
	CompatAnthropic = "anthropic" // Anthropic Messages API
)

// ProviderSpec is the metadata record for one model backend preset.
type ProviderSpec struct {
	Name           string   // config value, e.g. "groq"
	DisplayName    string   // shown in `ait status`
	Keywords       []string // model-name keywords for matching (lowercase)
	EnvKey         string   // env var holding the API key; empty for keyless backends
	DefaultAPIBase string
	DefaultModel   string
	Compat         string
	IsLocal        bool // runs on this machine and needs no credential
}

// Label returns the display name, defaulting to Title-cased Name.
func (s ProviderSpec) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return strings.ToTitle(s.Name[:1]) + s.Name[1:]
}

// RequiresKey reports whether the backend refuses unauthenticated requests.
func (s ProviderSpec) RequiresKey() bool { return !s.IsLocal }

// PROVIDERS is the preset registry. Order = match priority.
var PROVIDERS = []ProviderSpec{
	{
		Name:           "openai",
		DisplayName:    "OpenAI",
		Keywords:       []string{"gpt", "o1", "o3", "o4"},
		EnvKey:         "OPENAI_API_KEY",
		DefaultAPIBase: "https://api.openai.com/v1",
		DefaultModel:   "gpt-4o",
		Compat:         CompatOpenAI,
	},
	{
		Name:           "groq",
		DisplayName:    "Groq",
		Keywords:       []string{"groq"},
		EnvKey:         "GROQ_API_KEY",
		DefaultAPIBase: "https://api.groq.com/openai/v1",
		DefaultModel:   "llama3-groq-8b-8192-tool-use-preview",
		Compat:         CompatOpenAI,
	},
	{
		Name:           "openrouter",
		DisplayName:    "OpenRouter",
		Keywords:       []string{"openrouter"},
		EnvKey:         "OPENROUTER_API_KEY",
		DefaultAPIBase: "https://openrouter.ai/api/v1",
		DefaultModel:   "openai/gpt-4o-mini",
		Compat:         CompatOpenAI,
	},
	{
		Name:           "ollama",
		DisplayName:    "Ollama",
		Keywords:       []string{"llama", "mistral", "qwen"},
		DefaultAPIBase: "http://localhost:11434",
		DefaultModel:   "llama3.1:latest",
		Compat:         CompatOllama,
		IsLocal:        true,
	},
	{
		Name:           "anthropic",
		DisplayName:    "Anthropic",
		Keywords:       []string{"claude", "anthropic"},
		EnvKey:         "ANTHROPIC_API_KEY",
		DefaultAPIBase: "https://api.anthropic.com/v1",
		DefaultModel:   "claude-3-5-sonnet-20240620",
		Compat:         CompatAnthropic,
	},
}

// FindByName returns the ProviderSpec whose Name equals name.
func FindByName(name string) *ProviderSpec {
	name = strings.ToLower(strings.TrimSpace(name))
	for i := range PROVIDERS {
		if PROVIDERS[i].Name == name {
			return &PROVIDERS[i]
		}
	}
	return nil
}

// FindByModel matches a preset by model-name keyword (case-insensitive).
// An explicit "provider/" prefix wins over keywords.
func FindByModel(model string) *ProviderSpec {
	modelLower := strings.ToLower(model)
	if prefix, _, ok := strings.Cut(modelLower, "/"); ok {
		if spec := FindByName(prefix); spec != nil {
			return spec
		}
	}
	for i := range PROVIDERS {
		for _, kw := range PROVIDERS[i].Keywords {
			if strings.Contains(modelLower, kw) {
				return &PROVIDERS[i]
			}
		}
	}
	return nil
}
