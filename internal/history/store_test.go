package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ait-tooling/ait/internal/bus"
	"github.com/ait-tooling/ait/internal/schema"
)

func sampleConversation() []bus.DialogMessage {
	user := schema.NewUserMessage("add milk")
	reply := schema.NewAssistantMessage("Added milk.", nil)
	return []bus.DialogMessage{
		{Role: schema.RoleUser, Message: "add milk", Source: &user,
			Timestamp: time.Date(2024, 3, 9, 14, 5, 7, 123456789, time.UTC)},
		{Role: schema.RoleTool, Message: "[Tool] TodoStore.addTodo",
			Timestamp: time.Date(2024, 3, 9, 14, 5, 8, 1, time.FixedZone("CET", 3600))},
		{Role: schema.RoleAssistant, Message: "Added milk.", Source: &reply,
			Timestamp: time.Date(2024, 3, 9, 14, 5, 9, 0, time.UTC)},
	}
}

func assertSameConversation(t *testing.T, want, got []bus.DialogMessage) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp), "timestamp %d: want %s got %s", i, want[i].Timestamp, got[i].Timestamp)
		assert.Equal(t, want[i].Role, got[i].Role)
		assert.Equal(t, want[i].Message, got[i].Message)
		assert.Equal(t, want[i].Extended, got[i].Extended)
		assert.Equal(t, want[i].Source, got[i].Source)
	}
}

func stores(t *testing.T) map[string]func() Store {
	dir := t.TempDir()
	return map[string]func() Store{
		"file": func() Store {
			s, err := NewFileStore(dir, DefaultKey)
			require.NoError(t, err)
			return s
		},
		"sqlite": func() Store {
			s, err := NewSQLiteStore(filepath.Join(dir, "history.db"), DefaultKey)
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestStore_RoundTripAcrossRestart(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := sampleConversation()

			require.NoError(t, open().Save(ctx, want))

			got, err := open().Load(ctx)
			require.NoError(t, err)
			assertSameConversation(t, want, got)
		})
	}
}

func TestStore_EmptyAndClear(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open()

			got, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)

			require.NoError(t, s.Save(ctx, sampleConversation()))
			require.NoError(t, s.Clear(ctx))
			require.NoError(t, s.Clear(ctx))

			got, err = s.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestFileStore_WritesJSONArray(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, "chat:messages")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chat_messages.json"), s.Path())

	require.NoError(t, s.Save(context.Background(), nil))
	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	_, err = s.Load(context.Background())
	assert.ErrorContains(t, err, "decode messages")
}

func TestSQLiteStore_KeysAreIndependent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	a, err := NewSQLiteStore(path, "a")
	require.NoError(t, err)
	defer a.Close()
	b, err := NewSQLiteStore(path, "b")
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	require.NoError(t, a.Save(ctx, sampleConversation()))

	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
