package providers

import (
	"context"
	"encoding/json"

	"github.com/ait-tooling/ait/internal/schema"
)

// chatOllama talks to Ollama's native /api/chat endpoint. Ollama wants tool
// arguments as objects and answers with a single message instead of choices.
func (p *OpenAIProvider) chatOllama(
	ctx context.Context,
	req schema.PromptRequest,
	model string,
	temperature float64,
) ([]schema.Choice, error) {
	body := map[string]any{
		"model":    model,
		"messages": convertMessagesToOllama(req.Messages),
		"stream":   false,
		"options":  map[string]any{"temperature": temperature},
	}
	if len(req.Tools) > 0 {
		body["tools"] = req.Tools
	}

	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}

	raw, err := p.post(ctx, p.apiBase+"/api/chat", body, headers)
	if err != nil {
		return nil, err
	}
	return parseOpenAIResponse(raw)
}

func convertMessagesToOllama(messages schema.Messages) []map[string]any {
	out := make([]map[string]any, 0, len(messages.Messages))
	for _, m := range messages.Messages {
		wire := map[string]any{
			"role":    m.Role,
			"content": m.Content,
		}
		if len(m.ToolCalls) > 0 {
			calls := make([]map[string]any, 0, len(m.ToolCalls))
			for _, tc := range m.ToolCalls {
				calls = append(calls, map[string]any{
					"function": map[string]any{
						"name":      tc.Function.Name,
						"arguments": argumentObject(tc.Function.Arguments),
					},
				})
			}
			wire["tool_calls"] = calls
		}
		if m.Role == schema.RoleTool {
			// Ollama matches tool results to calls by function name.
			wire["tool_name"] = m.Name
		}
		out = append(out, wire)
	}
	return out
}

// argumentObject decodes a JSON argument string; anything that is not an
// object becomes an empty one.
func argumentObject(s string) map[string]any {
	out := map[string]any{}
	if s == "" {
		return out
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return map[string]any{}
	}
	return out
}
