package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ait-tooling/ait/internal/agent"
	"github.com/ait-tooling/ait/internal/bus"
	"github.com/ait-tooling/ait/internal/capability"
	"github.com/ait-tooling/ait/internal/schema"
)

// fakeAutomator records its calls and emits a scripted answer to the log.
type fakeAutomator struct {
	mu      sync.Mutex
	log     *Log
	queries []string
	history []schema.Messages
	seen    int // log length when Automate was entered
	running bool
	err     error
}

func (f *fakeAutomator) Automate(_ context.Context, q string, h schema.Messages) error {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.history = append(f.history, h)
	f.seen = f.log.Len()
	f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	reply := schema.NewAssistantMessage("ok: "+q, nil)
	f.log.Notify(bus.DialogMessage{Role: schema.RoleTool, Message: "[Tool] TodoStore.addTodo", Timestamp: time.Now()})
	f.log.Notify(bus.DialogMessage{Role: schema.RoleAssistant, Message: reply.Content, Source: &reply, Timestamp: time.Now()})
	return nil
}

func (f *fakeAutomator) Submit(ctx context.Context, q string, prepare func() (schema.Messages, error)) error {
	if f.Running() {
		return agent.ErrBusy
	}
	h, err := prepare()
	if err != nil {
		return err
	}
	return f.Automate(ctx, q, h)
}

func (f *fakeAutomator) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func newChat(t *testing.T) (*Chat, *fakeAutomator, *Log, *bus.Hub) {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), DefaultKey)
	require.NoError(t, err)
	hub := bus.NewHub()
	log, err := NewLog(context.Background(), store, hub)
	require.NoError(t, err)
	auto := &fakeAutomator{log: log}
	return NewChat(log, auto), auto, log, hub
}

func TestChat_BlankInputIsIgnored(t *testing.T) {
	chat, auto, _, _ := newChat(t)

	require.NoError(t, chat.SendMessage(context.Background(), "   \n\t"))

	assert.Empty(t, auto.queries)
	assert.Empty(t, chat.Messages())
}

func TestChat_SendMessage(t *testing.T) {
	chat, auto, _, _ := newChat(t)
	ctx := context.Background()

	require.NoError(t, chat.SendMessage(ctx, "add milk"))
	require.NoError(t, chat.SendMessage(ctx, "add eggs"))

	msgs := chat.Messages()
	require.Len(t, msgs, 6)
	assert.Equal(t, schema.RoleUser, msgs[0].Role)
	assert.Equal(t, "add milk", msgs[0].Message)
	assert.Equal(t, "ok: add eggs", msgs[5].Message)

	// The user message is logged before the automation starts.
	assert.Equal(t, 4, auto.seen)

	require.Len(t, auto.history, 2)
	assert.Equal(t, 0, auto.history[0].Len())
	second := auto.history[1].Messages
	require.Len(t, second, 2, "tool notifications carry no source")
	assert.Equal(t, schema.NewUserMessage("add milk"), second[0])
	assert.Equal(t, schema.NewAssistantMessage("ok: add milk", nil), second[1])
}

func TestChat_RejectsWhileRunning(t *testing.T) {
	chat, auto, _, _ := newChat(t)
	auto.running = true

	err := chat.SendMessage(context.Background(), "hello")

	assert.ErrorIs(t, err, agent.ErrBusy)
	assert.Empty(t, chat.Messages())
}

// blockingProvider holds every model request until release is closed.
type blockingProvider struct {
	entered chan struct{}
	release chan struct{}
}

func (p *blockingProvider) DefaultModel() string { return "blocking" }

func (p *blockingProvider) Prompt(ctx context.Context, _ schema.PromptRequest) ([]schema.Choice, error) {
	p.entered <- struct{}{}
	select {
	case <-p.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return []schema.Choice{{Message: schema.NewAssistantMessage("done", nil), FinishReason: schema.FinishStop}}, nil
}

func TestChat_RejectedSubmissionIsNotLogged(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), DefaultKey)
	require.NoError(t, err)
	log, err := NewLog(context.Background(), store, nil)
	require.NoError(t, err)

	provider := &blockingProvider{entered: make(chan struct{}, 1), release: make(chan struct{})}
	orchestrator := agent.NewOrchestrator(provider, capability.NewRegistry(), log,
		schema.NewAgentSettings("", 4, 1, time.Second), nil)
	chat := NewChat(log, orchestrator)

	first := make(chan error, 1)
	go func() { first <- chat.SendMessage(context.Background(), "first") }()
	<-provider.entered

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = chat.SendMessage(context.Background(), "second")
		}()
	}
	wg.Wait()
	for _, err := range errs {
		assert.ErrorIs(t, err, agent.ErrBusy)
	}

	close(provider.release)
	require.NoError(t, <-first)

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	var users []string
	for _, m := range saved {
		if m.Role == schema.RoleUser {
			users = append(users, m.Message)
		}
	}
	assert.Equal(t, []string{"first"}, users)
	assert.Len(t, chat.Messages(), 2)
}

// failingStore refuses every save.
type failingStore struct{ saves int }

func (s *failingStore) Load(context.Context) ([]bus.DialogMessage, error) { return nil, nil }
func (s *failingStore) Clear(context.Context) error                       { return nil }
func (s *failingStore) Save(context.Context, []bus.DialogMessage) error {
	s.saves++
	return errors.New("disk full")
}

func TestLog_AppendDropsUnsavedMessage(t *testing.T) {
	hub := bus.NewHub()
	sub, cancel := hub.Subscribe(8)
	defer cancel()
	store := &failingStore{}
	log, err := NewLog(context.Background(), store, hub)
	require.NoError(t, err)

	err = log.Append(context.Background(), bus.NewUserMessage("hi"))
	require.ErrorContains(t, err, "disk full")
	assert.Equal(t, 0, log.Len())
	assert.Empty(t, sub)

	// Notifications from a running automation are still shown.
	log.Notify(bus.DialogMessage{Role: schema.RoleAssistant, Message: "answer"})
	assert.Equal(t, 1, log.Len())
	assert.Len(t, sub, 1)
	assert.Equal(t, 2, store.saves)
}

func TestChat_SaveFailureSkipsAutomation(t *testing.T) {
	log, err := NewLog(context.Background(), &failingStore{}, nil)
	require.NoError(t, err)
	auto := &fakeAutomator{log: log}
	chat := NewChat(log, auto)

	err = chat.SendMessage(context.Background(), "hello")

	require.ErrorContains(t, err, "disk full")
	assert.Empty(t, auto.queries)
	assert.Empty(t, chat.Messages())
}

func TestChat_AutomationErrorIsReturned(t *testing.T) {
	chat, auto, _, _ := newChat(t)
	auto.err = errors.New("backend down")

	err := chat.SendMessage(context.Background(), "hello")

	assert.EqualError(t, err, "backend down")
	assert.Len(t, chat.Messages(), 1)
}

func TestLog_PersistsAndForwards(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, DefaultKey)
	require.NoError(t, err)
	hub := bus.NewHub()
	sub, cancel := hub.Subscribe(8)
	defer cancel()

	log, err := NewLog(context.Background(), store, hub)
	require.NoError(t, err)
	log.Notify(bus.NewUserMessage("hi"))

	select {
	case msg := <-sub:
		assert.Equal(t, "hi", msg.Message)
	case <-time.After(time.Second):
		t.Fatal("message was not forwarded")
	}

	reloaded, err := NewLog(context.Background(), store, nil)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Len())

	require.NoError(t, reloaded.Clear(context.Background()))
	again, err := NewLog(context.Background(), store, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Len())
}
