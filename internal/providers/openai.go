package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ait-tooling/ait/internal/schema"
	"github.com/ait-tooling/ait/internal/shared/llmutils"
)

// OpenAIProvider makes direct HTTP calls to any OpenAI-compatible endpoint,
// and also handles the Ollama and Anthropic dialects as special cases.
type OpenAIProvider struct {
	apiKey       string
	apiBase      string
	defaultModel string
	temperature  float64
	extraHeaders map[string]string
	compat       string
	httpClient   *http.Client
}

// NewOpenAIProvider constructs a provider from raw config values.
func NewOpenAIProvider(p Params) *OpenAIProvider {
	compat := p.Compat
	if compat == "" {
		compat = CompatOpenAI
	}
	base := strings.TrimRight(p.APIBase, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}

	return &OpenAIProvider{
		apiKey:       p.APIKey,
		apiBase:      base,
		defaultModel: p.DefaultModel,
		temperature:  p.Temperature,
		extraHeaders: p.ExtraHeaders,
		compat:       compat,
		httpClient:   &http.Client{Timeout: p.Timeout},
	}
}

func (p *OpenAIProvider) DefaultModel() string { return p.defaultModel }

// Compat returns the wire dialect this provider speaks.
func (p *OpenAIProvider) Compat() string { return p.compat }

// Prompt implements schema.LLMProvider. It sends exactly one request; there
// are no retries, and transport failures are returned to the caller.
func (p *OpenAIProvider) Prompt(ctx context.Context, req schema.PromptRequest) ([]schema.Choice, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}
	temperature := p.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	switch p.compat {
	case CompatOllama:
		return p.chatOllama(ctx, req, model, temperature)
	case CompatAnthropic:
		return p.chatAnthropic(ctx, req, model, temperature)
	default:
		return p.chatOpenAI(ctx, req, model, temperature)
	}
}

// ---------------------------------------------------------------------------
// OpenAI-compatible path
// ---------------------------------------------------------------------------

func (p *OpenAIProvider) chatOpenAI(
	ctx context.Context,
	req schema.PromptRequest,
	model string,
	temperature float64,
) ([]schema.Choice, error) {
	body := map[string]any{
		"model":       model,
		"messages":    sanitizeMessages(req.Messages),
		"temperature": temperature,
	}
	if len(req.Tools) > 0 {
		body["tools"] = req.Tools
		if req.ToolChoice != "" {
			body["tool_choice"] = req.ToolChoice
		}
	}

	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}

	raw, err := p.post(ctx, p.apiBase+"/chat/completions", body, headers)
	if err != nil {
		return nil, err
	}
	return parseOpenAIResponse(raw)
}

// post sends body as JSON and returns the raw response of a 2xx answer.
func (p *OpenAIProvider) post(ctx context.Context, url string, body any, headers map[string]string) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for k, v := range p.extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: friendlyHTTPError(resp.StatusCode, raw)}
	}
	return raw, nil
}

// ---------------------------------------------------------------------------
// Message sanitisation
// ---------------------------------------------------------------------------

// messageToWireMap converts a typed Message to the OpenAI wire-format map.
func messageToWireMap(m schema.Message) map[string]any {
	wire := map[string]any{
		"role":    m.Role,
		"content": m.Content,
	}
	if m.Role == schema.RoleAssistant && len(m.ToolCalls) > 0 {
		// Strict providers require "content" even for tool-call-only messages.
		if m.Content == "" {
			wire["content"] = nil
		}
		wire["tool_calls"] = m.ToolCalls
	}
	if m.Role == schema.RoleTool {
		wire["tool_call_id"] = m.ToolCallID
		wire["name"] = m.Name
	}
	return wire
}

func sanitizeMessages(messages schema.Messages) []map[string]any {
	out := make([]map[string]any, 0, len(messages.Messages))
	for _, m := range messages.Messages {
		out = append(out, messageToWireMap(m))
	}
	return out
}

// ---------------------------------------------------------------------------
// Response parsers
// ---------------------------------------------------------------------------

type wireToolCall struct {
	ID       string `json:"id"`
	Function struct {
		Name string `json:"name"`
		// Arguments is a JSON string per the OpenAI contract; some
		// compatible backends send the object itself.
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

type wireMessage struct {
	Role      string         `json:"role"`
	Content   *string        `json:"content"`
	ToolCalls []wireToolCall `json:"tool_calls"`
}

// openAIRespBody is the subset of the OpenAI chat completion response we care about.
// Message and DoneReason are the Ollama-native fields accepted by the shim.
type openAIRespBody struct {
	Choices []struct {
		Index        int         `json:"index"`
		Message      wireMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Model string       `json:"model"`
	Usage schema.Usage `json:"usage"`

	Message    *wireMessage `json:"message"`
	DoneReason string       `json:"done_reason"`
}

func parseOpenAIResponse(raw []byte) ([]schema.Choice, error) {
	var body openAIRespBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("parse chat completion: %w", err)
	}

	if len(body.Choices) == 0 && body.Message != nil {
		// Ollama reports done_reason "stop" even when it asks for tools.
		finish := body.DoneReason
		if len(body.Message.ToolCalls) > 0 {
			finish = schema.FinishToolCalls
		}
		return []schema.Choice{toChoice(0, *body.Message, finish)}, nil
	}
	if len(body.Choices) == 0 {
		return nil, fmt.Errorf("empty choices in response")
	}

	slog.Debug("chat completion", "model", body.Model, "choices", len(body.Choices),
		"prompt_tokens", body.Usage.PromptTokens, "completion_tokens", body.Usage.CompletionTokens)

	out := make([]schema.Choice, 0, len(body.Choices))
	for _, c := range body.Choices {
		out = append(out, toChoice(c.Index, c.Message, c.FinishReason))
	}
	return out, nil
}

// toChoice normalises one wire message. Tool calls without an id get a
// generated one, object arguments are re-encoded as a JSON string, and a
// missing finish reason is derived from the presence of tool calls.
func toChoice(index int, m wireMessage, finish string) schema.Choice {
	msg := schema.Message{Role: schema.RoleAssistant}
	if m.Role != "" {
		msg.Role = schema.Role(m.Role)
	}
	if m.Content != nil {
		msg.Content = *m.Content
	}

	for _, tc := range m.ToolCalls {
		id := tc.ID
		if id == "" {
			id = "call_" + uuid.NewString()
		}
		msg.ToolCalls = append(msg.ToolCalls, schema.NewToolCall(id, tc.Function.Name, argumentString(tc.Function.Arguments)))
	}

	switch {
	case finish == "" && msg.HasToolCalls():
		finish = schema.FinishToolCalls
	case finish == "":
		finish = schema.FinishStop
	}

	return schema.Choice{Index: index, Message: msg, FinishReason: finish}
}

// argumentString returns the argument blob as the JSON text the tool will parse.
func argumentString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// ---------------------------------------------------------------------------
// Utilities
// ---------------------------------------------------------------------------

func friendlyHTTPError(code int, body []byte) string {
	if code == http.StatusTooManyRequests {
		return "rate limit exceeded"
	}
	return llmutils.Truncate(strings.TrimSpace(string(body)), 300)
}
