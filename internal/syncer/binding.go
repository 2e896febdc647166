package syncer

import (
	"log/slog"

	"github.com/OCAP2/simvis/internal/adapter"
	"github.com/OCAP2/simvis/internal/datastore"
	"github.com/OCAP2/simvis/pkg/core"
)

// binding drives one kind's adapter from the store. Every record read is
// a scoped transaction completed before returning.
type binding interface {
	create(ds datastore.DataStore, id core.ObjectID) bool
	properties(ds datastore.DataStore, id core.ObjectID) bool
	preferences(ds datastore.DataStore, id core.ObjectID) bool
	update(ds datastore.DataStore, id core.ObjectID) bool
}

type kindBinding[P, Q, U any] struct {
	adapter adapter.Adapter[P, Q, U]
	props   func(datastore.DataStore, core.ObjectID) *datastore.Record[P]
	prefs   func(datastore.DataStore, core.ObjectID) *datastore.Record[Q]
	updates func(datastore.DataStore, core.ObjectID) datastore.Slice[U]
	log     *slog.Logger
}

func readRecord[T any](rec *datastore.Record[T]) (T, bool) {
	defer rec.Complete()
	return rec.Value()
}

func (b *kindBinding[P, Q, U]) create(ds datastore.DataStore, id core.ObjectID) bool {
	p, ok := readRecord(b.props(ds, id))
	if !ok {
		b.log.Warn("No properties record, abandoning create", "id", id)
		return false
	}
	_, ok = b.adapter.Create(p)
	return ok
}

func (b *kindBinding[P, Q, U]) properties(ds datastore.DataStore, id core.ObjectID) bool {
	p, ok := readRecord(b.props(ds, id))
	if !ok {
		b.log.Warn("No properties record", "id", id)
		return false
	}
	return b.adapter.ApplyProperties(p)
}

func (b *kindBinding[P, Q, U]) preferences(ds datastore.DataStore, id core.ObjectID) bool {
	q, ok := readRecord(b.prefs(ds, id))
	if !ok {
		b.log.Warn("No preferences record", "id", id)
		return false
	}
	return b.adapter.ApplyPreferences(id, q)
}

func (b *kindBinding[P, Q, U]) update(ds datastore.DataStore, id core.ObjectID) bool {
	u, ok := b.updates(ds, id).Current()
	if !ok {
		return false
	}
	return b.adapter.ApplyUpdate(id, u)
}

func newBindings(ctx *adapter.Context) (map[core.Kind]binding, *adapter.Platform, *adapter.Beam, *adapter.Gate) {
	platform := adapter.NewPlatform(ctx)
	beam := adapter.NewBeam(ctx)
	gate := adapter.NewGate(ctx)
	log := ctx.Logger.With("component", "syncer")

	return map[core.Kind]binding{
		core.KindPlatform: &kindBinding[core.PlatformProperties, core.PlatformPrefs, core.PlatformUpdate]{
			adapter: platform,
			props:   datastore.DataStore.PlatformProperties,
			prefs:   datastore.DataStore.PlatformPrefs,
			updates: datastore.DataStore.PlatformUpdates,
			log:     log,
		},
		core.KindBeam: &kindBinding[core.BeamProperties, core.BeamPrefs, core.BeamUpdate]{
			adapter: beam,
			props:   datastore.DataStore.BeamProperties,
			prefs:   datastore.DataStore.BeamPrefs,
			updates: datastore.DataStore.BeamUpdates,
			log:     log,
		},
		core.KindGate: &kindBinding[core.GateProperties, core.GatePrefs, core.GateUpdate]{
			adapter: gate,
			props:   datastore.DataStore.GateProperties,
			prefs:   datastore.DataStore.GatePrefs,
			updates: datastore.DataStore.GateUpdates,
			log:     log,
		},
	}, platform, beam, gate
}
