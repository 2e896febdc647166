// Package datastore is the simulation record store the sync layer reads
// from: canonical entity records, time-sampled updates, and change
// notifications.
package datastore

import (
	"sync"

	"github.com/OCAP2/simvis/pkg/core"
)

// Listener receives structural notifications. Calls are made synchronously
// after the store has released its own lock, so listeners may read.
type Listener interface {
	OnAddEntity(ds DataStore, id core.ObjectID, kind core.Kind)
	OnPropertiesChange(ds DataStore, id core.ObjectID)
	OnPrefsChange(ds DataStore, id core.ObjectID)
}

// DataStore is the read side of a record store.
//
// Record accessors return an open read transaction: the caller reads the
// value then calls Complete.
type DataStore interface {
	Kind(id core.ObjectID) core.Kind
	IDs(kind core.Kind) []core.ObjectID
	Time() float64

	PlatformProperties(id core.ObjectID) *Record[core.PlatformProperties]
	PlatformPrefs(id core.ObjectID) *Record[core.PlatformPrefs]
	PlatformUpdates(id core.ObjectID) Slice[core.PlatformUpdate]

	BeamProperties(id core.ObjectID) *Record[core.BeamProperties]
	BeamPrefs(id core.ObjectID) *Record[core.BeamPrefs]
	BeamUpdates(id core.ObjectID) Slice[core.BeamUpdate]

	GateProperties(id core.ObjectID) *Record[core.GateProperties]
	GatePrefs(id core.ObjectID) *Record[core.GatePrefs]
	GateUpdates(id core.ObjectID) Slice[core.GateUpdate]

	AddListener(l Listener)
}

// Record is a read transaction over one record.
type Record[T any] struct {
	value T
	ok    bool
	done  func()
}

func newRecord[T any](v T, ok bool, done func()) *Record[T] {
	if done == nil {
		done = func() {}
	}
	return &Record[T]{value: v, ok: ok, done: sync.OnceFunc(done)}
}

// Value returns the record and whether it exists.
func (r *Record[T]) Value() (T, bool) {
	return r.value, r.ok
}

// Complete ends the transaction. Safe to call more than once.
func (r *Record[T]) Complete() {
	r.done()
}

// Slice is the time-ordered update history of one entity.
type Slice[T any] interface {
	// Current returns the latest sample at or before the store time.
	Current() (T, bool)
	Len() int
}

// Txn is a write transaction. Complete commits it and dispatches the
// resulting notification; later calls do nothing.
type Txn struct {
	commit func()
	once   sync.Once
}

// Complete commits the transaction.
func (t *Txn) Complete() {
	t.once.Do(t.commit)
}
