package agent

import "time"

// AgentDefaults configures how automations are run.
type AgentDefaults struct {
	Model           string        `yaml:"model"` // empty selects the provider preset's model
	SystemPrompt    string        `yaml:"systemPrompt,omitempty"`
	Temperature     float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTurns        int           `yaml:"maxTurns" validate:"gte=1,lte=64"`
	ToolChoice      string        `yaml:"toolChoice" validate:"omitempty,oneof=auto none required"`
	ToolConcurrency int           `yaml:"toolConcurrency" validate:"gte=1,lte=64"`
	ToolTimeout     time.Duration `yaml:"toolTimeout" validate:"gte=0"`
}

type AgentsConfig struct {
	Defaults AgentDefaults `yaml:"defaults"`
}

func defaultAgentDefaults() AgentDefaults {
	return AgentDefaults{
		Temperature:     0.2,
		MaxTurns:        8,
		ToolChoice:      "auto",
		ToolConcurrency: 4,
		ToolTimeout:     30 * time.Second,
	}
}

func DefaultAgentsConfig() AgentsConfig {
	return AgentsConfig{Defaults: defaultAgentDefaults()}
}
