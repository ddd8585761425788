package capability

import (
	"encoding/json"
	"sync"

	"github.com/ait-tooling/ait/internal/schema"
)

// Registry is the live, ordered set of registered capabilities.
// Components publish themselves with Register on init and Remove on teardown.
type Registry struct {
	mu   sync.RWMutex
	caps []*Capability
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends c. Registering the same capability twice keeps two entries.
func (r *Registry) Register(c *Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps = append(r.caps, c)
}

// Remove drops the first entry that is c. Removing an unknown capability is a no-op.
func (r *Registry) Remove(c *Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.caps {
		if existing == c {
			r.caps = append(r.caps[:i:i], r.caps[i+1:]...)
			return
		}
	}
}

// Snapshot returns the registered capabilities in registration order.
func (r *Registry) Snapshot() []*Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Capability, len(r.caps))
	copy(out, r.caps)
	return out
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.caps)
}

// Descriptors returns the function descriptors of every registered capability.
func (r *Registry) Descriptors() []schema.ToolDescriptor {
	var out []schema.ToolDescriptor
	for _, c := range r.Snapshot() {
		out = append(out, Descriptors(c)...)
	}
	return out
}

// MetaInformation renders the meta info of every capability as a system prompt block.
func (r *Registry) MetaInformation() string {
	return "META INFORMATION: " + r.render(func(c *Capability) func() string { return c.MetaInfo })
}

// StateInformation renders the state of every capability as a system prompt block.
func (r *Registry) StateInformation() string {
	return "STATE INFORMATION: " + r.render(func(c *Capability) func() string { return c.State })
}

func (r *Registry) render(producer func(*Capability) func() string) string {
	snap := r.Snapshot()
	parts := make([]string, len(snap))
	for i, c := range snap {
		if fn := producer(c); fn != nil {
			parts[i] = fn()
		}
	}
	data, _ := json.Marshal(parts)
	return string(data)
}
