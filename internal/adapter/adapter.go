// Package adapter translates simulation records into render components.
//
// Each entity kind has one adapter with the same four operations: Create,
// ApplyProperties, ApplyPreferences and ApplyUpdate. Every operation diffs
// the incoming record against the last-applied one and mutates only the
// components whose inputs changed. Failures never propagate: the adapter
// logs, skips, and returns false.
package adapter

import (
	"context"
	"log/slog"

	"github.com/OCAP2/simvis/internal/cache"
	"github.com/OCAP2/simvis/internal/geo"
	"github.com/OCAP2/simvis/internal/logging"
	"github.com/OCAP2/simvis/internal/resource"
	"github.com/OCAP2/simvis/internal/scene"
	"github.com/OCAP2/simvis/pkg/core"
)

// Adapter is the capability set of one entity kind. P, Q and U are the
// kind's properties, preferences and update records.
type Adapter[P, Q, U any] interface {
	Create(props P) (scene.Handle, bool)
	ApplyProperties(props P) bool
	ApplyPreferences(id core.ObjectID, prefs Q) bool
	ApplyUpdate(id core.ObjectID, update U) bool
}

// Context carries what every adapter of one session shares. Scene must be
// held by the caller: under its write lock for Create, ApplyProperties and
// ApplyPreferences, and at least its read lock for ApplyUpdate.
type Context struct {
	Scene     *scene.Registry
	Entities  *cache.EntityTable
	Resources *resource.Cache
	Hosts     *HostResolver
	Logger    *slog.Logger
}

// NewContext wires a context around reg and res with fresh bookkeeping.
func NewContext(reg *scene.Registry, res *resource.Cache, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	entities := cache.NewEntityTable()
	return &Context{
		Scene:     reg,
		Entities:  entities,
		Resources: res,
		Hosts:     NewHostResolver(reg, entities, logger.With("component", "host")),
		Logger:    logger,
	}
}

// register resolves id to a handle, creating the entity and its transform
// on first use. Newly created entities release any dependents that were
// waiting on them as a host.
func (c *Context) register(id core.ObjectID, kind core.Kind, log *slog.Logger) scene.Handle {
	h, created := c.Entities.Resolve(id, kind, c.Scene.Create)
	if !created {
		return h
	}
	tr := c.Scene.Transforms.Emplace(h)
	tr.Rotation, tr.Local = geo.Identity, geo.Identity
	log.InfoContext(logging.WithEntity(context.Background(), id), "Entity created", "kind", kind, "handle", h)
	if linked := c.Hosts.HostCreated(id); len(linked) > 0 {
		log.Debug("Resolved pending dependents", "host", id, "dependents", linked)
	}
	return h
}

// lookup returns the live handle of id, logging when it is unknown.
func (c *Context) lookup(id core.ObjectID, log *slog.Logger, op string) (scene.Handle, bool) {
	h, ok := c.Entities.Lookup(id)
	if !ok || !c.Scene.Valid(h) {
		log.WarnContext(logging.WithEntity(context.Background(), id), "Entity not registered, skipping", "op", op)
		return scene.Null, false
	}
	return h, true
}
