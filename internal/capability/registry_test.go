package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterKeepsDuplicates(t *testing.T) {
	r := NewRegistry()
	c := &Capability{ClassName: "Shop"}

	r.Register(c)
	r.Register(c)
	require.Equal(t, 2, r.Len())

	r.Remove(c)
	snap := r.Snapshot()
	require.Len(t, snap, 1)
	assert.Same(t, c, snap[0])
}

func TestRegistry_RemoveUnknownIsNoop(t *testing.T) {
	r := NewRegistry()
	a := &Capability{ClassName: "A"}
	r.Register(a)

	r.Remove(&Capability{ClassName: "A"})

	require.Equal(t, 1, r.Len())
	assert.Same(t, a, r.Snapshot()[0])
}

func TestRegistry_RemoveMatchesByIdentity(t *testing.T) {
	r := NewRegistry()
	a := &Capability{ClassName: "Same"}
	b := &Capability{ClassName: "Same"}
	r.Register(a)
	r.Register(b)

	r.Remove(b)

	snap := r.Snapshot()
	require.Len(t, snap, 1)
	assert.Same(t, a, snap[0])
}

func TestRegistry_SnapshotIsCopy(t *testing.T) {
	r := NewRegistry()
	r.Register(&Capability{ClassName: "A"})

	snap := r.Snapshot()
	snap[0] = nil

	assert.NotNil(t, r.Snapshot()[0])
}

func TestRegistry_InformationBlocks(t *testing.T) {
	r := NewRegistry()
	r.Register(&Capability{
		ClassName: "Click",
		MetaInfo:  func() string { return "two buttons" },
	})
	r.Register(&Capability{
		ClassName: "Scroll",
		State:     func() string { return `{"targets":1}` },
	})

	assert.Equal(t, `META INFORMATION: ["two buttons",""]`, r.MetaInformation())
	assert.Equal(t, `STATE INFORMATION: ["","{\"targets\":1}"]`, r.StateInformation())
}

func TestRegistry_InformationReflectsLatestState(t *testing.T) {
	r := NewRegistry()
	count := 0
	r.Register(&Capability{
		ClassName: "Counter",
		State: func() string {
			count++
			return "n"
		},
	})

	r.StateInformation()
	r.StateInformation()
	assert.Equal(t, 2, count)
}

func TestRegistry_Descriptors(t *testing.T) {
	r := NewRegistry()
	r.Register(newShop())
	r.Register(&Capability{ClassName: "Empty"})

	descs := r.Descriptors()
	require.Len(t, descs, 2)
	assert.Equal(t, "Shop___getItems", descs[0].Function.Name)
	assert.Equal(t, "Shop___addItem", descs[1].Function.Name)
}
