package cache

import (
	"sync"

	"github.com/OCAP2/simvis/internal/scene"
	"github.com/OCAP2/simvis/pkg/core"
)

// EntityTable maps object ids to render handles, one to one.
type EntityTable struct {
	mu      sync.RWMutex
	handles map[core.ObjectID]scene.Handle
	objects map[scene.Handle]core.ObjectID
	kinds   map[core.ObjectID]core.Kind
}

func NewEntityTable() *EntityTable {
	return &EntityTable{
		handles: make(map[core.ObjectID]scene.Handle),
		objects: make(map[scene.Handle]core.ObjectID),
		kinds:   make(map[core.ObjectID]core.Kind),
	}
}

// Resolve returns the handle for id, calling create to allocate one on
// first use. The bool reports whether create ran.
func (t *EntityTable) Resolve(id core.ObjectID, kind core.Kind, create func() scene.Handle) (scene.Handle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if h, ok := t.handles[id]; ok {
		return h, false
	}
	h := create()
	t.handles[id] = h
	t.objects[h] = id
	t.kinds[id] = kind
	return h, true
}

// Lookup returns the handle registered for id.
func (t *EntityTable) Lookup(id core.ObjectID) (scene.Handle, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.handles[id]
	return h, ok
}

// ObjectID returns the id registered for h.
func (t *EntityTable) ObjectID(h scene.Handle) (core.ObjectID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.objects[h]
	return id, ok
}

// Kind returns the kind id was registered with.
func (t *EntityTable) Kind(id core.ObjectID) (core.Kind, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	k, ok := t.kinds[id]
	return k, ok
}

func (t *EntityTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.handles)
}

// Reset clears all registrations.
func (t *EntityTable) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handles = make(map[core.ObjectID]scene.Handle)
	t.objects = make(map[scene.Handle]core.ObjectID)
	t.kinds = make(map[core.ObjectID]core.Kind)
}
