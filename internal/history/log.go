package history

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ait-tooling/ait/internal/bus"
)

// Log is the in-memory conversation backed by a Store. Every appended
// message is persisted and then forwarded to the next notifier (usually the
// hub feeding the UI).
type Log struct {
	mu      sync.Mutex
	msgs    []bus.DialogMessage
	store   Store
	forward bus.Notifier
}

// NewLog loads the saved conversation from store. forward may be nil.
func NewLog(ctx context.Context, store Store, forward bus.Notifier) (*Log, error) {
	msgs, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if forward == nil {
		forward = bus.Discard
	}
	slog.Debug("Conversation loaded", "messages", len(msgs))
	return &Log{msgs: msgs, store: store, forward: forward}, nil
}

// Notify implements bus.Notifier. Persistence failures are logged; the
// message is still kept in memory and forwarded.
func (l *Log) Notify(msg bus.DialogMessage) {
	l.mu.Lock()
	l.msgs = append(l.msgs, msg)
	err := l.store.Save(context.Background(), l.msgs)
	l.mu.Unlock()

	if err != nil {
		slog.Error("Persist conversation", "err", err)
	}
	l.forward.Notify(msg)
}

// Append adds msg, saves the whole conversation and forwards msg. When the
// save fails msg is dropped again and not forwarded.
func (l *Log) Append(ctx context.Context, msg bus.DialogMessage) error {
	l.mu.Lock()
	l.msgs = append(l.msgs, msg)
	if err := l.store.Save(ctx, l.msgs); err != nil {
		l.msgs = l.msgs[:len(l.msgs)-1]
		l.mu.Unlock()
		return fmt.Errorf("save conversation: %w", err)
	}
	l.mu.Unlock()

	l.forward.Notify(msg)
	return nil
}

// Messages returns a copy of the conversation in order.
func (l *Log) Messages() []bus.DialogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]bus.DialogMessage, len(l.msgs))
	copy(out, l.msgs)
	return out
}

// Len returns the number of messages.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.msgs)
}

// Clear empties the conversation and its stored copy.
func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = nil
	if err := l.store.Clear(ctx); err != nil {
		return err
	}
	return l.store.Save(ctx, nil)
}
