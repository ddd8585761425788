// Package targets lets UI elements offer themselves to the model as things it
// can click on or scroll to.
package targets

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ait-tooling/ait/internal/capability"
)

// ActionFunc performs the UI side of a click or scroll.
type ActionFunc func(ctx context.Context) error

// ClickTarget is one clickable element.
type ClickTarget struct {
	ID     string
	Info   func() string // current description shown to the model
	Action ActionFunc
}

// ClickService is registered as "ClickService" only while it has targets.
type ClickService struct {
	registry *capability.Registry
	cap      *capability.Capability

	mu      sync.Mutex
	targets []ClickTarget
}

type clickArgs struct {
	TargetID string `json:"targetId" validate:"required" jsonschema:"description=ID of the target that should be clicked."`
}

func NewClickService(registry *capability.Registry) *ClickService {
	s := &ClickService{registry: registry}
	s.cap = &capability.Capability{
		ClassName: "ClickService",
		Instance:  s,
		Tools: []capability.Tool{
			capability.Action("clickOn",
				"Clicks on a designated target. Available targets are listed in the meta information of the ClickService.",
				(*ClickService).ClickOn),
		},
		MetaInfo: s.metaInfo,
	}
	return s
}

// Register adds a target. The first target registers the service.
func (s *ClickService) Register(t ClickTarget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets = append(s.targets, t)
	if len(s.targets) == 1 {
		s.registry.Register(s.cap)
	}
}

// Remove drops the target with id. Removing the last target unregisters the
// service.
func (s *ClickService) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.targets)
	kept := s.targets[:0]
	for _, t := range s.targets {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.targets = kept
	if n > 0 && len(s.targets) == 0 {
		s.registry.Remove(s.cap)
	}
}

// Len returns the number of targets.
func (s *ClickService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.targets)
}

// ClickOn clicks the target. An unknown id is a no-op.
func (s *ClickService) ClickOn(ctx context.Context, args clickArgs) error {
	s.mu.Lock()
	var action ActionFunc
	for _, t := range s.targets {
		if t.ID == args.TargetID {
			action = t.Action
			break
		}
	}
	s.mu.Unlock()

	if action == nil {
		return nil
	}
	if err := action(ctx); err != nil {
		return fmt.Errorf("click %s: %w", args.TargetID, err)
	}
	return nil
}

func (s *ClickService) metaInfo() string {
	s.mu.Lock()
	pairs := make([][2]string, 0, len(s.targets))
	for _, t := range s.targets {
		info := ""
		if t.Info != nil {
			info = t.Info()
		}
		pairs = append(pairs, [2]string{t.ID, info})
	}
	s.mu.Unlock()

	data, _ := json.Marshal(pairs)
	return "# Information about clickable targets as a map: " + string(data)
}
