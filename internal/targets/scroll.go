package targets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ait-tooling/ait/internal/capability"
)

// ErrUnknownTarget is returned when scrolling to an id nobody registered.
var ErrUnknownTarget = errors.New("unknown scroll target")

type scrollTarget struct {
	meta   string
	action ActionFunc
}

// ScrollService is registered as "ScrollService" for its whole lifetime.
type ScrollService struct {
	registry *capability.Registry
	cap      *capability.Capability

	mu      sync.RWMutex
	targets map[string]scrollTarget
}

type scrollArgs struct {
	ID string `json:"id" validate:"required" jsonschema:"description=Given id of the target to scroll to"`
}

// NewScrollService creates the service and registers it with registry.
func NewScrollService(registry *capability.Registry) *ScrollService {
	s := &ScrollService{registry: registry, targets: make(map[string]scrollTarget)}
	s.cap = &capability.Capability{
		ClassName: "ScrollService",
		Instance:  s,
		Tools: []capability.Tool{
			capability.Method("getScrollTargets",
				"Get a map of scroll target ids. The key is the target id and the value is the description of the target.",
				(*ScrollService).GetScrollTargets),
			capability.Action("scrollTo",
				"Scrolls a known element into view, e.g. when the user asks to \"scroll the shopping list into view\". Only scrolls to known elements.",
				(*ScrollService).ScrollTo),
		},
		State: s.state,
	}
	registry.Register(s.cap)
	return s
}

// Close unregisters the service.
func (s *ScrollService) Close() { s.registry.Remove(s.cap) }

// Register adds or replaces the target with id.
func (s *ScrollService) Register(id, meta string, action ActionFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets[id] = scrollTarget{meta: meta, action: action}
}

func (s *ScrollService) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.targets, id)
}

func (s *ScrollService) GetScrollTargets(_ context.Context, _ capability.NoArgs) (map[string]string, error) {
	return s.descriptions(), nil
}

func (s *ScrollService) ScrollTo(ctx context.Context, args scrollArgs) error {
	s.mu.RLock()
	t, ok := s.targets[args.ID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, args.ID)
	}
	if t.action == nil {
		return nil
	}
	return t.action(ctx)
}

func (s *ScrollService) descriptions() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.targets))
	for id, t := range s.targets {
		out[id] = t.meta
	}
	return out
}

func (s *ScrollService) state() string {
	data, _ := json.Marshal(map[string]any{
		"scrollableTargets": map[string]any{
			"description": "Available elements to scroll to identified by an id and a description",
			"targets":     s.descriptions(),
		},
	})
	return string(data)
}
