// Package syncer keeps the scene in step with a record store. It listens
// for structural notifications and pulls per-tick updates, dispatching each
// to the adapter of the entity's kind.
package syncer

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/OCAP2/simvis/internal/adapter"
	"github.com/OCAP2/simvis/internal/datastore"
	"github.com/OCAP2/simvis/internal/logging"
	"github.com/OCAP2/simvis/internal/resource"
	"github.com/OCAP2/simvis/internal/scene"
	"github.com/OCAP2/simvis/pkg/core"
)

const (
	eventAdd         = "add"
	eventProperties  = "properties"
	eventPreferences = "preferences"
	eventUpdate      = "update"
)

// Orchestrator implements datastore.Listener.
//
// Structural events run under the scene's write lock since they may
// create entities or attach components. Update batches first register any
// entity that was missed, under the write lock, then apply samples under
// the read lock.
type Orchestrator struct {
	scene     *scene.Registry
	ctx       *adapter.Context
	bindings  map[core.Kind]binding
	resources *resource.Cache
	log       *slog.Logger

	Platforms *adapter.Platform
	Beams     *adapter.Beam
	Gates     *adapter.Gate

	events  metric.Int64Counter
	skipped metric.Int64Counter
}

var _ datastore.Listener = (*Orchestrator)(nil)

// New creates an orchestrator writing into reg. The resource cache is
// owned by the orchestrator from here on and reset by Close.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(reg *scene.Registry, res *resource.Cache, logger *slog.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx := adapter.NewContext(reg, res, logger)
	bindings, platforms, beams, gates := newBindings(ctx)

	o := &Orchestrator{
		scene:     reg,
		ctx:       ctx,
		bindings:  bindings,
		resources: res,
		log:       logger.With("component", "syncer"),
		Platforms: platforms,
		Beams:     beams,
		Gates:     gates,
	}

	m := meter()
	var err error

	o.events, err = m.Int64Counter(
		"simvis.sync.events",
		metric.WithDescription("Total sync events applied"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating events counter: %w", err)
	}

	o.skipped, err = m.Int64Counter(
		"simvis.sync.skipped",
		metric.WithDescription("Total sync events skipped or abandoned"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating skipped counter: %w", err)
	}

	return o, nil
}

// Context exposes the adapter context, mainly for inspection.
func (o *Orchestrator) Context() *adapter.Context { return o.ctx }

// Close tears down the session's resources.
func (o *Orchestrator) Close() {
	o.resources.Reset()
}

func (o *Orchestrator) count(event string, kind core.Kind, applied bool) {
	attrs := metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("kind", kind.String()),
	)
	if applied {
		o.events.Add(context.Background(), 1, attrs)
	} else {
		o.skipped.Add(context.Background(), 1, attrs)
	}
}

func (o *Orchestrator) binding(id core.ObjectID, kind core.Kind) (binding, bool) {
	b, ok := o.bindings[kind]
	if !ok {
		o.log.WarnContext(logging.WithEntity(context.Background(), id), "No adapter for entity kind", "kind", kind)
	}
	return b, ok
}

// ensure creates id when the table has not seen it. Caller holds the
// write lock.
func (o *Orchestrator) ensure(ds datastore.DataStore, id core.ObjectID, kind core.Kind, b binding) bool {
	if _, ok := o.ctx.Entities.Lookup(id); ok {
		return true
	}
	o.log.DebugContext(logging.WithEntity(context.Background(), id), "Creating missed entity", "kind", kind)
	ok := b.create(ds, id)
	o.count(eventAdd, kind, ok)
	return ok
}

func (o *Orchestrator) OnAddEntity(ds datastore.DataStore, id core.ObjectID, kind core.Kind) {
	_, release := o.scene.Write()
	defer release()

	b, ok := o.binding(id, kind)
	if !ok {
		o.count(eventAdd, kind, false)
		return
	}
	o.count(eventAdd, kind, b.create(ds, id))
}

func (o *Orchestrator) OnPropertiesChange(ds datastore.DataStore, id core.ObjectID) {
	kind := ds.Kind(id)

	_, release := o.scene.Write()
	defer release()

	b, ok := o.binding(id, kind)
	if !ok {
		o.count(eventProperties, kind, false)
		return
	}
	if _, known := o.ctx.Entities.Lookup(id); !known {
		// Create applies the fresh properties itself.
		o.count(eventProperties, kind, o.ensure(ds, id, kind, b))
		return
	}
	o.count(eventProperties, kind, b.properties(ds, id))
}

func (o *Orchestrator) OnPrefsChange(ds datastore.DataStore, id core.ObjectID) {
	kind := ds.Kind(id)

	_, release := o.scene.Write()
	defer release()

	b, ok := o.binding(id, kind)
	if !ok || !o.ensure(ds, id, kind, b) {
		o.count(eventPreferences, kind, false)
		return
	}
	o.count(eventPreferences, kind, b.preferences(ds, id))
}

// Update applies the current sample of each id. It returns the number of
// entities whose components changed.
func (o *Orchestrator) Update(ds datastore.DataStore, ids []core.ObjectID) int {
	kinds := make([]core.Kind, len(ids))
	var missing []int
	for i, id := range ids {
		kinds[i] = ds.Kind(id)
		if _, ok := o.ctx.Entities.Lookup(id); !ok {
			missing = append(missing, i)
		}
	}

	if len(missing) > 0 {
		_, release := o.scene.Write()
		for _, i := range missing {
			if b, ok := o.binding(ids[i], kinds[i]); ok {
				o.ensure(ds, ids[i], kinds[i], b)
			}
		}
		release()
	}

	_, release := o.scene.Read()
	defer release()

	changed := 0
	for i, id := range ids {
		b, ok := o.bindings[kinds[i]]
		if !ok {
			continue
		}
		if _, known := o.ctx.Entities.Lookup(id); !known {
			continue
		}
		if b.update(ds, id) {
			changed++
			o.count(eventUpdate, kinds[i], true)
		}
	}
	return changed
}
