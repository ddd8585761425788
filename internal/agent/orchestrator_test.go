package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ait-tooling/ait/internal/capability"
	"github.com/ait-tooling/ait/internal/schema"
)

func newOrchestrator(t *testing.T, p *scriptedProvider, caps ...*capability.Capability) (*Orchestrator, *recorder, *capability.Registry) {
	t.Helper()
	reg := capability.NewRegistry()
	for _, c := range caps {
		reg.Register(c)
	}
	rec := &recorder{}
	return NewOrchestrator(p, reg, rec, settings(), MustNewMetrics(prometheus.NewRegistry())), rec, reg
}

func TestAutomate_ShoppingList(t *testing.T) {
	s, c := newShop()
	p := &scriptedProvider{replies: []func(context.Context, schema.PromptRequest) ([]schema.Choice, error){
		reply(toolCalls(
			schema.NewToolCall("c1", "Shop___addItem", `{"title":"Bread"}`),
			schema.NewToolCall("c2", "Shop___addItem", `{"title":"Eggs"}`),
		)),
		reply(answer("Added bread and eggs.")),
	}}
	o, rec, _ := newOrchestrator(t, p, c)

	err := o.Automate(context.Background(), "add bread and eggs", schema.NewMessages())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Milk", "Bread", "Eggs"}, s.items)
	assert.False(t, o.Running())

	reqs := p.sent()
	require.Len(t, reqs, 2)

	first := reqs[0].Messages.Messages
	require.Len(t, first, 4)
	assert.Equal(t, schema.RoleSystem, first[0].Role)
	assert.Equal(t, `META INFORMATION: ["shopping list"]`, first[1].Content)
	assert.Equal(t, `STATE INFORMATION: ["open"]`, first[2].Content)
	assert.Equal(t, schema.NewUserMessage("add bread and eggs"), first[3])
	assert.Len(t, reqs[0].Tools, 4)

	second := reqs[1].Messages.Messages
	require.Len(t, second, 7)
	assert.True(t, second[4].HasToolCalls())
	assert.Equal(t, schema.NewToolResultMessage("c1", "Shop___addItem", ""), second[5])
	assert.Equal(t, schema.NewToolResultMessage("c2", "Shop___addItem", ""), second[6])

	assert.Len(t, rec.withPrefix("[Tool] Shop.addItem"), 2)
	answers := rec.withPrefix("Added")
	require.Len(t, answers, 1)
	assert.Equal(t, schema.RoleAssistant, answers[0].Role)
	require.NotNil(t, answers[0].Source)
	assert.Equal(t, "Added bread and eggs.", answers[0].Source.Content)
}

func TestAutomate_HistoryPrecedesUserMessage(t *testing.T) {
	_, c := newShop()
	p := &scriptedProvider{}
	o, _, _ := newOrchestrator(t, p, c)

	history := schema.NewMessages(
		schema.NewUserMessage("hi"),
		schema.NewAssistantMessage("hello", nil),
	)
	require.NoError(t, o.Automate(context.Background(), "next", history))

	msgs := p.sent()[0].Messages.Messages
	require.Len(t, msgs, 6)
	assert.Equal(t, "hi", msgs[3].Content)
	assert.Equal(t, "hello", msgs[4].Content)
	assert.Equal(t, "next", msgs[5].Content)
}

func TestAutomate_EmptyContentAnswer(t *testing.T) {
	p := &scriptedProvider{replies: []func(context.Context, schema.PromptRequest) ([]schema.Choice, error){
		reply(answer("")),
	}}
	o, rec, _ := newOrchestrator(t, p)

	require.NoError(t, o.Automate(context.Background(), "?", schema.NewMessages()))

	msgs := rec.all()
	require.Len(t, msgs, 1)
	assert.Equal(t, noMessage, msgs[0].Message)
}

func TestAutomate_NoToolsOmitsToolChoice(t *testing.T) {
	p := &scriptedProvider{}
	reg := capability.NewRegistry()
	s := settings()
	s.ToolChoice = "auto"
	o := NewOrchestrator(p, reg, nil, s, nil)

	require.NoError(t, o.Automate(context.Background(), "hi", schema.NewMessages()))
	req := p.sent()[0]
	assert.Empty(t, req.Tools)
	assert.Empty(t, req.ToolChoice)
}

func TestAutomate_MultipleChoices(t *testing.T) {
	s, c := newShop()
	p := &scriptedProvider{replies: []func(context.Context, schema.PromptRequest) ([]schema.Choice, error){
		reply([]schema.Choice{
			toolCalls(schema.NewToolCall("a", "Shop___addItem", `{"title":"Tea"}`))[0],
			{Index: 1, Message: schema.NewAssistantMessage("Working on it.", nil), FinishReason: schema.FinishStop},
		}),
		reply(answer("Tea added.")),
	}}
	o, rec, _ := newOrchestrator(t, p, c)

	require.NoError(t, o.Automate(context.Background(), "add tea", schema.NewMessages()))

	assert.Contains(t, s.items, "Tea")
	assert.Len(t, p.sent(), 2)
	assert.Len(t, rec.withPrefix("Working on it."), 1)
	assert.Len(t, rec.withPrefix("Tea added."), 1)
}

func TestAutomate_ToolsRecomputedEachTurn(t *testing.T) {
	_, c := newShop()
	extra := &capability.Capability{
		ClassName: "Extra",
		Instance:  &shop{},
		Tools:     []capability.Tool{capability.Method("getItems", "List", (*shop).GetItems)},
	}
	var reg *capability.Registry
	p := &scriptedProvider{replies: []func(context.Context, schema.PromptRequest) ([]schema.Choice, error){
		func(context.Context, schema.PromptRequest) ([]schema.Choice, error) {
			reg.Register(extra)
			return toolCalls(schema.NewToolCall("a", "Shop___getItems", `{}`)), nil
		},
	}}
	var o *Orchestrator
	o, _, reg = newOrchestrator(t, p, c)

	require.NoError(t, o.Automate(context.Background(), "list", schema.NewMessages()))

	reqs := p.sent()
	require.Len(t, reqs, 2)
	assert.Len(t, reqs[0].Tools, 4)
	assert.Len(t, reqs[1].Tools, 5)
	assert.Equal(t, `["Milk"]`, reqs[1].Messages.Messages[5].Content)
}

func TestAutomate_UnknownClassIsIsolated(t *testing.T) {
	_, c := newShop()
	p := &scriptedProvider{replies: []func(context.Context, schema.PromptRequest) ([]schema.Choice, error){
		reply(toolCalls(
			schema.NewToolCall("g", "Ghost___haunt", `{}`),
			schema.NewToolCall("s", "Shop___getItems", ``),
		)),
	}}
	o, rec, _ := newOrchestrator(t, p, c)

	require.NoError(t, o.Automate(context.Background(), "go", schema.NewMessages()))

	second := p.sent()[1].Messages.Messages
	assert.Equal(t, schema.NewToolResultMessage("g", "Ghost___haunt", ""), second[5])
	assert.Equal(t, schema.NewToolResultMessage("s", "Shop___getItems", `["Milk"]`), second[6])

	errs := rec.withPrefix("[Error] Ghost___haunt")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Extended, "Tool execution failed")
}

func TestAutomate_TurnLimit(t *testing.T) {
	_, c := newShop()
	loop := reply(toolCalls(schema.NewToolCall("a", "Shop___getItems", `{}`)))
	p := &scriptedProvider{replies: []func(context.Context, schema.PromptRequest) ([]schema.Choice, error){
		loop, loop, loop, loop, loop, loop,
	}}
	o, rec, _ := newOrchestrator(t, p, c)

	err := o.Automate(context.Background(), "forever", schema.NewMessages())

	assert.ErrorIs(t, err, ErrTurnLimit)
	assert.Len(t, p.sent(), 4)
	assert.False(t, o.Running())
	assert.Len(t, rec.withPrefix("[Error] Turn limit"), 1)
}

func TestAutomate_TransportErrorClearsRunning(t *testing.T) {
	backendErr := errors.New("connection refused")
	p := &scriptedProvider{replies: []func(context.Context, schema.PromptRequest) ([]schema.Choice, error){
		func(context.Context, schema.PromptRequest) ([]schema.Choice, error) { return nil, backendErr },
	}}
	metrics := MustNewMetrics(prometheus.NewRegistry())
	o := NewOrchestrator(p, capability.NewRegistry(), nil, settings(), metrics)

	err := o.Automate(context.Background(), "hi", schema.NewMessages())

	assert.ErrorIs(t, err, backendErr)
	assert.False(t, o.Running())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.running))

	// A later submission is accepted.
	require.NoError(t, o.Automate(context.Background(), "again", schema.NewMessages()))
}

func TestAutomate_RejectsConcurrentSubmission(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	p := &scriptedProvider{replies: []func(context.Context, schema.PromptRequest) ([]schema.Choice, error){
		func(context.Context, schema.PromptRequest) ([]schema.Choice, error) {
			close(entered)
			<-release
			return answer("first"), nil
		},
	}}
	o, _, _ := newOrchestrator(t, p)

	done := make(chan error, 1)
	go func() { done <- o.Automate(context.Background(), "one", schema.NewMessages()) }()

	<-entered
	assert.True(t, o.Running())
	assert.ErrorIs(t, o.Automate(context.Background(), "two", schema.NewMessages()), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, o.Running())
	assert.Len(t, p.sent(), 1)
}

func TestAutomate_Cancelled(t *testing.T) {
	p := &scriptedProvider{}
	o, _, _ := newOrchestrator(t, p)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := o.Automate(ctx, "hi", schema.NewMessages())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, p.sent())
	assert.False(t, o.Running())
}

func TestAutomate_CancelledDuringTools(t *testing.T) {
	_, c := newShop()
	ctx, cancel := context.WithCancel(context.Background())
	p := &scriptedProvider{replies: []func(context.Context, schema.PromptRequest) ([]schema.Choice, error){
		func(context.Context, schema.PromptRequest) ([]schema.Choice, error) {
			time.AfterFunc(20*time.Millisecond, cancel)
			return toolCalls(schema.NewToolCall("w", "Shop___wait", `{"millis":5000}`)), nil
		},
	}}
	o, rec, _ := newOrchestrator(t, p, c)

	err := o.Automate(ctx, "wait", schema.NewMessages())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, p.sent(), 1)
	assert.Len(t, rec.withPrefix("[Error] Shop___wait"), 1)
}
