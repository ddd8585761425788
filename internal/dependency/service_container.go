// Package dependency wires core ait services using go.uber.org/dig.
package dependency

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/dig"

	"github.com/ait-tooling/ait/internal/agent"
	"github.com/ait-tooling/ait/internal/bus"
	"github.com/ait-tooling/ait/internal/capability"
	"github.com/ait-tooling/ait/internal/config"
	"github.com/ait-tooling/ait/internal/config/storage"
	"github.com/ait-tooling/ait/internal/history"
	"github.com/ait-tooling/ait/internal/providers"
	"github.com/ait-tooling/ait/internal/schema"
	"github.com/ait-tooling/ait/internal/targets"
	"github.com/ait-tooling/ait/internal/todo"
)

// ServiceContainer holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type ServiceContainer struct {
	provider     schema.LLMProvider
	registry     *capability.Registry
	hub          *bus.Hub
	store        history.Store
	orchestrator *agent.Orchestrator
	chat         *history.Chat
	todos        *todo.Store
	clicks       *targets.ClickService
	scrolls      *targets.ScrollService
	metrics      *agent.Metrics
}

func (c *ServiceContainer) Provider() schema.LLMProvider          { return c.provider }
func (c *ServiceContainer) Registry() *capability.Registry        { return c.registry }
func (c *ServiceContainer) Hub() *bus.Hub                         { return c.hub }
func (c *ServiceContainer) Orchestrator() *agent.Orchestrator     { return c.orchestrator }
func (c *ServiceContainer) Chat() *history.Chat                   { return c.chat }
func (c *ServiceContainer) Todos() *todo.Store                    { return c.todos }
func (c *ServiceContainer) ClickService() *targets.ClickService   { return c.clicks }
func (c *ServiceContainer) ScrollService() *targets.ScrollService { return c.scrolls }
func (c *ServiceContainer) Metrics() *agent.Metrics               { return c.metrics }

// Close releases the history store.
func (c *ServiceContainer) Close() error {
	if closer, ok := c.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

type options struct {
	provider schema.LLMProvider
}

// Option customises the container before it is built.
type Option func(*options)

// WithProvider replaces the configured model backend, e.g. with a fake in
// tests. The configured backend is then never built, so no credential is
// needed.
func WithProvider(p schema.LLMProvider) Option {
	return func(o *options) { o.provider = p }
}

// appCapabilities marks the application's own capabilities as registered.
type appCapabilities struct{}

// New builds and wires all core services from cfg.
func New(cfg *config.Config, opts ...Option) (*ServiceContainer, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var providerCtor any = newProvider
	if o.provider != nil {
		providerCtor = func() schema.LLMProvider { return o.provider }
	}

	d := dig.New()

	constructors := []any{
		func() *config.Config { return cfg },
		providerCtor,
		capability.NewRegistry,
		bus.NewHub,
		newMetrics,
		newTodoStore,
		registerAppCapabilities,
		targets.NewClickService,
		targets.NewScrollService,
		NewHistoryStore,
		newLog,
		newOrchestrator,
		newChat,
	}
	for _, c := range constructors {
		if err := d.Provide(c); err != nil {
			return nil, err
		}
	}

	var result *ServiceContainer
	err := d.Invoke(func(
		provider schema.LLMProvider,
		registry *capability.Registry,
		hub *bus.Hub,
		store history.Store,
		orchestrator *agent.Orchestrator,
		chat *history.Chat,
		todos *todo.Store,
		_ appCapabilities,
		clicks *targets.ClickService,
		scrolls *targets.ScrollService,
		metrics *agent.Metrics,
	) {
		result = &ServiceContainer{
			provider:     provider,
			registry:     registry,
			hub:          hub,
			store:        store,
			orchestrator: orchestrator,
			chat:         chat,
			todos:        todos,
			clicks:       clicks,
			scrolls:      scrolls,
			metrics:      metrics,
		}
	})
	if err != nil {
		return nil, dig.RootCause(err)
	}
	return result, nil
}

func newProvider(cfg *config.Config) (schema.LLMProvider, error) {
	params, err := cfg.ProviderParams()
	if err != nil {
		return nil, err
	}
	return providers.New(params), nil
}

func newMetrics() *agent.Metrics {
	return agent.DefaultMetrics()
}

func newTodoStore() *todo.Store {
	return todo.NewDemoStore()
}

func registerAppCapabilities(registry *capability.Registry, todos *todo.Store) appCapabilities {
	registry.Register(todo.NewListCapability(todos))
	registry.Register(todo.NewTodoCapability(todos))
	return appCapabilities{}
}

// NewHistoryStore opens the configured conversation store.
func NewHistoryStore(cfg *config.Config) (history.Store, error) {
	dir := cfg.StoragePath()
	switch cfg.Storage.Backend {
	case storage.BackendSQLite:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
		return history.NewSQLiteStore(filepath.Join(dir, "history.db"), cfg.Storage.Key)
	case storage.BackendFile, "":
		return history.NewFileStore(dir, cfg.Storage.Key)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func newLog(store history.Store, hub *bus.Hub) (*history.Log, error) {
	return history.NewLog(context.Background(), store, hub)
}

func newOrchestrator(
	p schema.LLMProvider,
	registry *capability.Registry,
	log *history.Log,
	cfg *config.Config,
	metrics *agent.Metrics,
	_ appCapabilities,
) *agent.Orchestrator {
	return agent.NewOrchestrator(p, registry, log, cfg.AgentSettings(), metrics)
}

func newChat(log *history.Log, o *agent.Orchestrator) *history.Chat {
	return history.NewChat(log, o)
}
