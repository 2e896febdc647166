// Package scene is the render-state container the sync layer writes into:
// entity handles plus per-entity components that a renderer consumes.
// Components carry revision counters; a component is "dirty" for a
// renderer when its revision moved since the renderer last looked.
package scene

import (
	"sort"
	"sync"
)

// Handle identifies a render entity. The zero Handle is never allocated.
type Handle uint32

// Null is the invalid handle.
const Null Handle = 0

// Registry owns render entities and their components.
type Registry struct {
	mu    sync.RWMutex
	next  Handle
	alive map[Handle]struct{}

	Transforms *Store[Transform]
	Icons      *Store[Icon]
	Labels     *Store[Label]
	Lines      *Store[Line]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		alive:      make(map[Handle]struct{}),
		Transforms: newStore[Transform](),
		Icons:      newStore[Icon](),
		Labels:     newStore[Label](),
		Lines:      newStore[Line](),
	}
}

// Write acquires exclusive access. Required for anything that creates
// entities or attaches components. The returned release func is safe to
// call more than once.
func (r *Registry) Write() (*Registry, func()) {
	r.mu.Lock()
	return r, sync.OnceFunc(r.mu.Unlock)
}

// Read acquires shared access. Holders may mutate existing components in
// place but must not create entities or attach components.
func (r *Registry) Read() (*Registry, func()) {
	r.mu.RLock()
	return r, sync.OnceFunc(r.mu.RUnlock)
}

// Create allocates a new entity handle.
func (r *Registry) Create() Handle {
	r.next++
	r.alive[r.next] = struct{}{}
	return r.next
}

// Valid reports whether h was allocated by this registry.
func (r *Registry) Valid(h Handle) bool {
	_, ok := r.alive[h]
	return ok
}

// Len returns the number of entities.
func (r *Registry) Len() int {
	return len(r.alive)
}

// Handles returns all entity handles in allocation order.
func (r *Registry) Handles() []Handle {
	out := make([]Handle, 0, len(r.alive))
	for h := range r.alive {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Store holds one component type keyed by entity handle.
type Store[T any] struct {
	items map[Handle]*T
}

func newStore[T any]() *Store[T] {
	return &Store[T]{items: make(map[Handle]*T)}
}

// Get returns the component attached to h.
func (s *Store[T]) Get(h Handle) (*T, bool) {
	c, ok := s.items[h]
	return c, ok
}

// Has reports whether h has this component.
func (s *Store[T]) Has(h Handle) bool {
	_, ok := s.items[h]
	return ok
}

// GetOrEmplace returns the component attached to h, attaching a zero one
// first if needed.
func (s *Store[T]) GetOrEmplace(h Handle) *T {
	if c, ok := s.items[h]; ok {
		return c
	}
	c := new(T)
	s.items[h] = c
	return c
}

// Emplace attaches a fresh zero component to h, replacing any existing one.
func (s *Store[T]) Emplace(h Handle) *T {
	c := new(T)
	s.items[h] = c
	return c
}

// Len returns the number of attached components.
func (s *Store[T]) Len() int {
	return len(s.items)
}
