// Package history persists the visible conversation and feeds it back to the
// orchestrator as model history.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ait-tooling/ait/internal/bus"
)

// DefaultKey is the storage key the conversation is kept under.
const DefaultKey = "chat_messages"

// Store persists the ordered conversation as a whole.
type Store interface {
	// Load returns the saved messages, or none if nothing was saved yet.
	Load(ctx context.Context) ([]bus.DialogMessage, error)
	// Save replaces the saved messages.
	Save(ctx context.Context, msgs []bus.DialogMessage) error
	// Clear removes everything saved under the key.
	Clear(ctx context.Context) error
}

// encode renders msgs as the JSON array stored under the key.
func encode(msgs []bus.DialogMessage) ([]byte, error) {
	if msgs == nil {
		msgs = []bus.DialogMessage{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msgs); err != nil {
		return nil, fmt.Errorf("encode messages: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func decode(data []byte) ([]bus.DialogMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	var msgs []bus.DialogMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return msgs, nil
}
