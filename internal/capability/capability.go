// Package capability holds the live set of objects whose methods the model
// may call, and turns their tool tables into function descriptors.
package capability

import "github.com/ait-tooling/ait/internal/schema"

// Capability is one registered tool provider.
//
// Instance is the object the tools are bound to when dispatched. ClassName
// routes qualified tool names back to the capability and must not contain
// the name separator. MetaInfo and State are optional producers whose output
// is shown to the model on every turn.
type Capability struct {
	ClassName string
	Instance  any
	Tools     []Tool
	MetaInfo  func() string
	State     func() string
}

// Lookup returns the table entry named method.
func (c *Capability) Lookup(method string) (Tool, bool) {
	for _, t := range c.Tools {
		if t.Name == method {
			return t, true
		}
	}
	return Tool{}, false
}

// Descriptors returns one function descriptor per tool in c's table.
// Entries without a name or without an invoke function are not callable and
// are skipped.
func Descriptors(c *Capability) []schema.ToolDescriptor {
	if c == nil {
		return nil
	}
	out := make([]schema.ToolDescriptor, 0, len(c.Tools))
	for _, t := range c.Tools {
		if t.Name == "" || t.Invoke == nil {
			continue
		}
		out = append(out, schema.NewToolDescriptor(
			QualifiedName(c.ClassName, t.Name),
			t.Description,
			t.Parameters,
		))
	}
	return out
}
