// Package agent runs user submissions through the model and executes the
// tool calls it asks for.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ait-tooling/ait/internal/bus"
	"github.com/ait-tooling/ait/internal/capability"
	"github.com/ait-tooling/ait/internal/schema"
	"github.com/ait-tooling/ait/internal/shared/llmutils"
)

var (
	// ErrBusy is returned when a submission arrives while another automation runs.
	ErrBusy = errors.New("an automation is already running")
	// ErrTurnLimit is returned when the model keeps requesting tools past MaxTurns.
	ErrTurnLimit = errors.New("turn limit reached without a final answer")
)

const (
	defaultMaxTurns = 8
	noMessage       = "NO MESSAGE"
)

// Orchestrator drives one automation at a time: it prompts the model, runs
// the requested tools and feeds their results back until the model answers.
type Orchestrator struct {
	provider schema.LLMProvider
	registry *capability.Registry
	notifier bus.Notifier
	settings schema.AgentSettings
	metrics  *Metrics

	builder    *ContextBuilder
	dispatcher *Dispatcher
	running    atomic.Bool
}

// NewOrchestrator wires an Orchestrator. metrics may be nil.
func NewOrchestrator(
	provider schema.LLMProvider,
	registry *capability.Registry,
	notifier bus.Notifier,
	settings schema.AgentSettings,
	metrics *Metrics,
) *Orchestrator {
	if notifier == nil {
		notifier = bus.Discard
	}
	if settings.MaxTurns <= 0 {
		settings.MaxTurns = defaultMaxTurns
	}
	return &Orchestrator{
		provider:   provider,
		registry:   registry,
		notifier:   notifier,
		settings:   settings,
		metrics:    metrics,
		builder:    NewContextBuilder(settings.SystemPrompt, registry),
		dispatcher: NewDispatcher(notifier, settings.ToolConcurrency, settings.ToolTimeout, metrics),
	}
}

// Running reports whether an automation is in progress.
func (o *Orchestrator) Running() bool { return o.running.Load() }

// Automate runs userQuery to completion. Every assistant answer, tool
// execution and failure is reported to the notifier as it happens.
//
// Returns ErrBusy if another automation is running, ErrTurnLimit if the model
// never stops requesting tools, the context error on cancellation, or the
// backend error when a model request fails.
func (o *Orchestrator) Automate(ctx context.Context, userQuery string, history schema.Messages) error {
	return o.Submit(ctx, userQuery, func() (schema.Messages, error) { return history, nil })
}

// Submit is Automate for callers that record the submission themselves.
// prepare runs only once the orchestrator has been claimed, so a rejected
// submission never reaches it. An error from prepare ends the submission
// before any model request.
func (o *Orchestrator) Submit(ctx context.Context, userQuery string, prepare func() (schema.Messages, error)) error {
	if !o.running.CompareAndSwap(false, true) {
		return ErrBusy
	}
	o.metrics.SetRunning(true)
	defer func() {
		o.running.Store(false)
		o.metrics.SetRunning(false)
	}()

	history, err := prepare()
	if err != nil {
		return err
	}

	slog.Info("Processing message", "content", llmutils.Truncate(userQuery, 80), "history", history.Len())

	conversation := o.builder.BuildMessages(history, userQuery)

	for turn := 1; turn <= o.settings.MaxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			o.notifyError("Automation cancelled", err)
			return err
		}

		tools := o.registry.Descriptors()
		choices, err := o.prompt(ctx, conversation, tools)
		if err != nil {
			o.notifyError("Model request failed", err)
			return fmt.Errorf("prompt model: %w", err)
		}

		pending := false
		for _, choice := range choices {
			if !choice.RequestsTools() || !choice.Message.HasToolCalls() {
				o.notifyAnswer(choice.Message)
				continue
			}

			toolMap := BuildToolMap(tools, o.registry.Snapshot())
			results := o.dispatcher.Dispatch(ctx, choice.Message.ToolCalls, toolMap)

			conversation.Add(choice.Message)
			for _, r := range results {
				conversation.AddToolResult(r.CallID, r.Name, r.Content)
			}
			pending = true
		}

		if !pending {
			o.metrics.ObserveTurns(turn)
			return nil
		}
	}

	o.metrics.ObserveTurns(o.settings.MaxTurns)
	slog.Warn("Turn limit reached", "max_turns", o.settings.MaxTurns)
	o.notifyError("Turn limit reached", ErrTurnLimit)
	return ErrTurnLimit
}

func (o *Orchestrator) prompt(ctx context.Context, conversation schema.Messages, tools []schema.ToolDescriptor) ([]schema.Choice, error) {
	req := schema.PromptRequest{Messages: conversation.Clone(), Tools: tools}
	if len(tools) > 0 {
		req.ToolChoice = o.settings.ToolChoice
	}

	start := time.Now()
	choices, err := o.provider.Prompt(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.metrics.ObserveRequest(status, time.Since(start))
	if err != nil {
		slog.Error("LLM error", "err", err)
		return nil, err
	}
	return choices, nil
}

func (o *Orchestrator) notifyAnswer(msg schema.Message) {
	source := msg
	text := llmutils.StringOrDefault(llmutils.StripThink(msg.Content), noMessage)
	role := msg.Role
	if role == "" {
		role = schema.RoleAssistant
	}
	slog.Info("Response", "content", llmutils.Truncate(text, 120))
	o.notifier.Notify(bus.DialogMessage{
		Role:      role,
		Message:   text,
		Timestamp: time.Now(),
		Source:    &source,
	})
}

func (o *Orchestrator) notifyError(message string, err error) {
	o.notifier.Notify(bus.DialogMessage{
		Role:      schema.RoleSystem,
		Message:   "[Error] " + message,
		Extended:  err.Error(),
		Timestamp: time.Now(),
	})
}
