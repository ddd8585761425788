package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ait-tooling/ait/internal/bus"
	"github.com/ait-tooling/ait/internal/capability"
	"github.com/ait-tooling/ait/internal/schema"
	"github.com/ait-tooling/ait/internal/shared/llmutils"
)

// ErrToolNotFound is returned for a call whose name is not in the tool map.
var ErrToolNotFound = errors.New("tool not found")

// ResolutionError explains why a descriptor could not be bound to a method.
type ResolutionError struct {
	Name   string // qualified tool name
	Class  string
	Method string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s: %s", e.Name, e.Reason)
}

// BoundTool is a table entry bound to the instance it runs on. Err is set
// when the descriptor could not be resolved; calling such a tool fails.
type BoundTool struct {
	Class    string
	Method   string
	Instance any
	Invoke   capability.InvokeFunc
	Err      error
}

// ToolMap maps qualified tool names to their bound implementation.
type ToolMap map[string]BoundTool

// BuildToolMap binds every descriptor to the first capability in snapshot
// whose class name matches. Names that cannot be bound are kept with their
// resolution error so the failure surfaces only when that tool is called.
func BuildToolMap(descriptors []schema.ToolDescriptor, snapshot []*capability.Capability) ToolMap {
	out := make(ToolMap, len(descriptors))
	for _, d := range descriptors {
		name := d.Function.Name
		class, method := capability.SplitQualifiedName(name)
		bt := BoundTool{Class: class, Method: method}

		c := findCapability(snapshot, class)
		switch {
		case c == nil:
			bt.Err = &ResolutionError{Name: name, Class: class, Method: method,
				Reason: fmt.Sprintf("no capability registered as %q", class)}
		default:
			t, ok := c.Lookup(method)
			switch {
			case !ok:
				bt.Err = &ResolutionError{Name: name, Class: class, Method: method,
					Reason: fmt.Sprintf("function %s not found in instance of %s", method, class)}
			case t.Invoke == nil:
				bt.Err = &ResolutionError{Name: name, Class: class, Method: method,
					Reason: fmt.Sprintf("%s is not a function in instance of %s", method, class)}
			default:
				bt.Instance = c.Instance
				bt.Invoke = t.Invoke
			}
		}
		out[name] = bt
	}
	return out
}

func findCapability(snapshot []*capability.Capability, class string) *capability.Capability {
	for _, c := range snapshot {
		if c != nil && c.ClassName == class {
			return c
		}
	}
	return nil
}

// ExecuteToolCall runs one tool call against tools. Empty arguments are
// treated as an empty object.
func ExecuteToolCall(ctx context.Context, call schema.ToolCall, tools ToolMap) (result any, err error) {
	bt, ok := tools[call.Function.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, call.Function.Name)
	}
	if bt.Err != nil {
		return nil, bt.Err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %s panicked: %v", call.Function.Name, r)
		}
	}()
	return bt.Invoke(ctx, bt.Instance, json.RawMessage(call.Function.Arguments))
}

// ToolResult is the outcome of one tool call. Err is nil on success.
type ToolResult struct {
	CallID  string
	Name    string
	Content string
	Err     error
}

// Dispatcher executes the tool calls of one assistant message.
type Dispatcher struct {
	notifier    bus.Notifier
	concurrency int
	timeout     time.Duration
	metrics     *Metrics
}

// NewDispatcher creates a Dispatcher. concurrency < 1 runs calls one at a
// time; timeout 0 disables the per-call deadline.
func NewDispatcher(notifier bus.Notifier, concurrency int, timeout time.Duration, metrics *Metrics) *Dispatcher {
	if notifier == nil {
		notifier = bus.Discard
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{notifier: notifier, concurrency: concurrency, timeout: timeout, metrics: metrics}
}

// Dispatch runs calls concurrently and returns exactly one result per call,
// in call order. A failing call never affects its siblings.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []schema.ToolCall, tools ToolMap) []ToolResult {
	results := make([]ToolResult, len(calls))
	sem := semaphore.NewWeighted(int64(d.concurrency))

	slog.Info("Dispatching tool calls", "count", len(calls), "calls", llmutils.Truncate(llmutils.ToolHint(calls), 200))

	var g errgroup.Group
	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = d.fail(call, err)
				return nil
			}
			defer sem.Release(1)
			results[i] = d.run(ctx, call, tools)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (d *Dispatcher) run(ctx context.Context, call schema.ToolCall, tools ToolMap) ToolResult {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	slog.Info("Tool call", "name", call.Function.Name, "args", llmutils.Truncate(call.Function.Arguments, 200))

	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := ExecuteToolCall(ctx, call, tools)
		done <- outcome{v, err}
	}()

	var res outcome
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	if res.err != nil {
		return d.fail(call, res.err)
	}

	content, err := encodeResult(res.value)
	if err != nil {
		return d.fail(call, err)
	}

	class, method := capability.SplitQualifiedName(call.Function.Name)
	d.metrics.IncToolCall("ok")
	d.notifier.Notify(bus.DialogMessage{
		Role:      schema.RoleTool,
		Message:   fmt.Sprintf("[Tool] %s.%s", class, method),
		Timestamp: time.Now(),
	})
	return ToolResult{CallID: call.ID, Name: call.Function.Name, Content: content}
}

func (d *Dispatcher) fail(call schema.ToolCall, err error) ToolResult {
	slog.Warn("Tool execution failed", "name", call.Function.Name, "err", err)
	d.metrics.IncToolCall("error")
	d.notifier.Notify(bus.DialogMessage{
		Role:      schema.RoleTool,
		Message:   "[Error] " + call.Function.Name,
		Extended:  "Tool execution failed: " + err.Error(),
		Timestamp: time.Now(),
	})
	return ToolResult{CallID: call.ID, Name: call.Function.Name, Err: err}
}

// encodeResult serialises a tool return value. A nil value yields "".
func encodeResult(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(data), nil
}
