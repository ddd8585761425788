package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ait-tooling/ait/internal/schema"
)

const (
	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 4096
)

func (p *OpenAIProvider) chatAnthropic(
	ctx context.Context,
	req schema.PromptRequest,
	model string,
	temperature float64,
) ([]schema.Choice, error) {
	system, msgs := convertMessagesToAnthropic(req.Messages)

	body := map[string]any{
		"model":       model,
		"messages":    msgs,
		"max_tokens":  anthropicMaxTokens,
		"temperature": temperature,
	}
	if system != "" {
		body["system"] = system
	}
	if len(req.Tools) > 0 {
		body["tools"] = convertToolsToAnthropic(req.Tools)
		if tc := anthropicToolChoice(req.ToolChoice); tc != nil {
			body["tool_choice"] = tc
		}
	}

	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicVersion,
	}

	raw, err := p.post(ctx, p.apiBase+"/messages", body, headers)
	if err != nil {
		return nil, err
	}
	return parseAnthropicResponse(raw)
}

// convertMessagesToAnthropic converts typed messages to Anthropic's wire format.
// Returns (system_prompt, converted_messages).
func convertMessagesToAnthropic(messages schema.Messages) (string, []map[string]any) {
	var system string
	var out []map[string]any

	for _, msg := range messages.Messages {
		switch msg.Role {
		case schema.RoleSystem:
			if system != "" {
				system += "\n\n"
			}
			system += msg.Content

		case schema.RoleUser:
			out = append(out, map[string]any{"role": "user", "content": msg.Content})

		case schema.RoleTool:
			block := map[string]any{
				"type":        "tool_result",
				"tool_use_id": msg.ToolCallID,
				"content":     msg.Content,
			}
			// Merge consecutive tool results into one user message.
			if n := len(out); n > 0 && out[n-1]["role"] == "user" {
				if c, ok := out[n-1]["content"].([]any); ok {
					out[n-1]["content"] = append(c, block)
					continue
				}
			}
			out = append(out, map[string]any{"role": "user", "content": []any{block}})

		case schema.RoleAssistant:
			var blocks []any
			if msg.Content != "" {
				blocks = append(blocks, map[string]any{"type": "text", "text": msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				blocks = append(blocks, map[string]any{
					"type":  "tool_use",
					"id":    tc.ID,
					"name":  tc.Function.Name,
					"input": argumentObject(tc.Function.Arguments),
				})
			}
			if len(blocks) == 0 {
				blocks = []any{map[string]any{"type": "text", "text": ""}}
			}
			out = append(out, map[string]any{"role": "assistant", "content": blocks})
		}
	}
	return system, out
}

// convertToolsToAnthropic converts function descriptors to Anthropic tool format.
// Key difference: "parameters" → "input_schema".
func convertToolsToAnthropic(tools []schema.ToolDescriptor) []map[string]any {
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		out = append(out, map[string]any{
			"name":         t.Function.Name,
			"description":  t.Function.Description,
			"input_schema": t.Function.Parameters,
		})
	}
	return out
}

func anthropicToolChoice(choice string) map[string]any {
	switch choice {
	case "auto":
		return map[string]any{"type": "auto"}
	case "required":
		return map[string]any{"type": "any"}
	default:
		return nil
	}
}

// anthropicRespBody models the Anthropic Messages API response.
type anthropicRespBody struct {
	Content []struct {
		Type  string          `json:"type"`
		Text  string          `json:"text"`  // type=text
		ID    string          `json:"id"`    // type=tool_use
		Name  string          `json:"name"`  // type=tool_use
		Input json.RawMessage `json:"input"` // type=tool_use
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseAnthropicResponse(raw []byte) ([]schema.Choice, error) {
	var body anthropicRespBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("parse Anthropic response: %w", err)
	}

	msg := schema.Message{Role: schema.RoleAssistant}
	for _, block := range body.Content {
		switch block.Type {
		case "text":
			msg.Content += block.Text
		case "tool_use":
			msg.ToolCalls = append(msg.ToolCalls, schema.NewToolCall(block.ID, block.Name, argumentString(block.Input)))
		}
	}

	finish := schema.FinishStop
	switch body.StopReason {
	case "tool_use":
		finish = schema.FinishToolCalls
	case "max_tokens":
		finish = schema.FinishLength
	}

	return []schema.Choice{{Index: 0, Message: msg, FinishReason: finish}}, nil
}
