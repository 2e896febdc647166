package adapter

import (
	"log/slog"
	"sort"

	"github.com/OCAP2/simvis/internal/cache"
	"github.com/OCAP2/simvis/internal/scene"
	"github.com/OCAP2/simvis/pkg/core"
)

// HostResolver tracks which entity each hosted entity is attached to.
// Links are kept by object id and resolved to transforms on every use, so
// nothing holds on to another entity's components between events.
// Dependents whose host is not yet registered wait in a pending set and
// are linked as soon as the host is created.
type HostResolver struct {
	scene    *scene.Registry
	entities *cache.EntityTable
	log      *slog.Logger

	links   map[core.ObjectID]core.ObjectID
	pending map[core.ObjectID]map[core.ObjectID]struct{}
}

func NewHostResolver(reg *scene.Registry, entities *cache.EntityTable, log *slog.Logger) *HostResolver {
	return &HostResolver{
		scene:    reg,
		entities: entities,
		log:      log,
		links:    make(map[core.ObjectID]core.ObjectID),
		pending:  make(map[core.ObjectID]map[core.ObjectID]struct{}),
	}
}

// Link attaches dependent to host. When host is unknown the link is left
// pending and Link returns false.
func (r *HostResolver) Link(dependent, host core.ObjectID) bool {
	r.unlink(dependent)

	dh, ok := r.entities.Lookup(dependent)
	if !ok {
		r.log.Warn("Dependent not registered", "dependent", dependent, "host", host)
		return false
	}
	dt, ok := r.scene.Transforms.Get(dh)
	if !ok {
		r.log.Warn("Dependent has no transform", "dependent", dependent)
		return false
	}

	hh, ok := r.entities.Lookup(host)
	if !ok || !r.scene.Transforms.Has(hh) {
		r.log.Warn("Host not registered yet, deferring", "dependent", dependent, "host", host)
		waiting, exists := r.pending[host]
		if !exists {
			waiting = make(map[core.ObjectID]struct{})
			r.pending[host] = waiting
		}
		waiting[dependent] = struct{}{}
		return false
	}

	r.links[dependent] = host
	dt.Parent = hh
	dt.Dirty()
	return true
}

func (r *HostResolver) unlink(dependent core.ObjectID) {
	delete(r.links, dependent)
	for host, waiting := range r.pending {
		delete(waiting, dependent)
		if len(waiting) == 0 {
			delete(r.pending, host)
		}
	}
	if dh, ok := r.entities.Lookup(dependent); ok {
		if dt, ok := r.scene.Transforms.Get(dh); ok && dt.Parent != scene.Null {
			dt.Parent = scene.Null
			dt.Dirty()
		}
	}
}

// HostCreated links every dependent waiting on host and returns them in
// id order.
func (r *HostResolver) HostCreated(host core.ObjectID) []core.ObjectID {
	waiting, ok := r.pending[host]
	if !ok {
		return nil
	}
	deps := make([]core.ObjectID, 0, len(waiting))
	for d := range waiting {
		deps = append(deps, d)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i] < deps[j] })

	linked := deps[:0]
	for _, d := range deps {
		if r.Link(d, host) {
			linked = append(linked, d)
		}
	}
	return linked
}

// Host returns the host dependent is linked to.
func (r *HostResolver) Host(dependent core.ObjectID) (core.ObjectID, bool) {
	h, ok := r.links[dependent]
	return h, ok
}

// Linked reports whether dependent has a resolved host.
func (r *HostResolver) Linked(dependent core.ObjectID) bool {
	_, ok := r.links[dependent]
	return ok
}

// Pending counts the dependents waiting on host.
func (r *HostResolver) Pending(host core.ObjectID) int {
	return len(r.pending[host])
}

// Transform looks up the current transform of dependent's host.
func (r *HostResolver) Transform(dependent core.ObjectID) (*scene.Transform, bool) {
	host, ok := r.links[dependent]
	if !ok {
		return nil, false
	}
	hh, ok := r.entities.Lookup(host)
	if !ok {
		return nil, false
	}
	return r.scene.Transforms.Get(hh)
}
