package dependency

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ait-tooling/ait/internal/bus"
	"github.com/ait-tooling/ait/internal/config"
	"github.com/ait-tooling/ait/internal/config/storage"
	"github.com/ait-tooling/ait/internal/history"
	"github.com/ait-tooling/ait/internal/schema"
)

type stubProvider struct{}

func (stubProvider) DefaultModel() string { return "stub" }

func (stubProvider) Prompt(context.Context, schema.PromptRequest) ([]schema.Choice, error) {
	return []schema.Choice{{Message: schema.NewAssistantMessage("ok", nil), FinishReason: schema.FinishStop}}, nil
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Provider.Name = "ollama"
	cfg.Storage.Dir = t.TempDir()
	return &cfg
}

func TestNew_WiresApplication(t *testing.T) {
	c, err := New(testConfig(t))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "llama3.1:latest", c.Provider().DefaultModel())

	var names []string
	for _, entry := range c.Registry().Snapshot() {
		names = append(names, entry.ClassName)
	}
	assert.Equal(t, []string{"TodoListStore", "TodoStore", "ScrollService"}, names)
	assert.Len(t, c.Todos().Lists(), 3)
	assert.False(t, c.Chat().Running())
}

func TestNew_MissingCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := testConfig(t)
	cfg.Provider.Name = "openai"

	_, err := New(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingCredential), "got %v", err)
}

func TestNew_ProviderOverrideSkipsCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := testConfig(t)
	cfg.Provider.Name = "openai"

	c, err := New(cfg, WithProvider(stubProvider{}))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "stub", c.Provider().DefaultModel())
}

func TestNew_ChatPersistsAndPublishes(t *testing.T) {
	cfg := testConfig(t)
	c, err := New(cfg, WithProvider(stubProvider{}))
	require.NoError(t, err)
	defer c.Close()

	msgs, cancel := c.Hub().Subscribe(8)
	defer cancel()

	require.NoError(t, c.Chat().SendMessage(context.Background(), "hello"))

	var got []bus.DialogMessage
	for len(got) < 2 {
		got = append(got, <-msgs)
	}
	assert.Equal(t, "hello", got[0].Message)
	assert.Equal(t, "ok", got[1].Message)

	_, err = os.Stat(filepath.Join(cfg.Storage.Dir, history.DefaultKey+".json"))
	assert.NoError(t, err)
}

func TestNewHistoryStore(t *testing.T) {
	cfg := testConfig(t)

	cfg.Storage.Backend = storage.BackendSQLite
	st, err := NewHistoryStore(cfg)
	require.NoError(t, err)
	_, ok := st.(*history.SQLiteStore)
	assert.True(t, ok)
	require.NoError(t, st.(*history.SQLiteStore).Close())

	cfg.Storage.Backend = "redis"
	_, err = NewHistoryStore(cfg)
	assert.Error(t, err)
}
