// Package cache keeps the sync layer's bookkeeping: the last-applied
// records per entity, and the object id to render handle table.
package cache

import (
	"sync"

	"github.com/OCAP2/simvis/pkg/core"
)

// RecordKind selects one of the three cached record slots.
type RecordKind uint8

const (
	RecordProperties RecordKind = iota
	RecordPreferences
	RecordUpdate
)

func (k RecordKind) String() string {
	switch k {
	case RecordProperties:
		return "properties"
	case RecordPreferences:
		return "preferences"
	case RecordUpdate:
		return "update"
	}
	return "unknown"
}

type entry[P, Q, U any] struct {
	props    P
	prefs    Q
	update   U
	hasProps bool
	hasPrefs bool
	hasUpd   bool
}

// RecordCache stores, per entity, the last-applied copy of its properties,
// preferences and latest update. Diffs are always taken against these
// copies. A missing slot reads as the zero record, whose fields are all
// absent.
type RecordCache[P, Q, U any] struct {
	m       sync.Mutex
	entries map[core.ObjectID]*entry[P, Q, U]
}

func NewRecordCache[P, Q, U any]() *RecordCache[P, Q, U] {
	return &RecordCache[P, Q, U]{
		entries: make(map[core.ObjectID]*entry[P, Q, U]),
	}
}

func (c *RecordCache[P, Q, U]) slot(id core.ObjectID) *entry[P, Q, U] {
	e, ok := c.entries[id]
	if !ok {
		e = &entry[P, Q, U]{}
		c.entries[id] = e
	}
	return e
}

func (c *RecordCache[P, Q, U]) Properties(id core.ObjectID) (P, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if e, ok := c.entries[id]; ok && e.hasProps {
		return e.props, true
	}
	var zero P
	return zero, false
}

func (c *RecordCache[P, Q, U]) SetProperties(id core.ObjectID, p P) {
	c.m.Lock()
	defer c.m.Unlock()
	e := c.slot(id)
	e.props, e.hasProps = p, true
}

func (c *RecordCache[P, Q, U]) Preferences(id core.ObjectID) (Q, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if e, ok := c.entries[id]; ok && e.hasPrefs {
		return e.prefs, true
	}
	var zero Q
	return zero, false
}

// SetPreferences replaces the cached preferences in full.
func (c *RecordCache[P, Q, U]) SetPreferences(id core.ObjectID, q Q) {
	c.m.Lock()
	defer c.m.Unlock()
	e := c.slot(id)
	e.prefs, e.hasPrefs = q, true
}

func (c *RecordCache[P, Q, U]) Update(id core.ObjectID) (U, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if e, ok := c.entries[id]; ok && e.hasUpd {
		return e.update, true
	}
	var zero U
	return zero, false
}

func (c *RecordCache[P, Q, U]) SetUpdate(id core.ObjectID, u U) {
	c.m.Lock()
	defer c.m.Unlock()
	e := c.slot(id)
	e.update, e.hasUpd = u, true
}

// Has reports whether the given slot of id holds a record.
func (c *RecordCache[P, Q, U]) Has(id core.ObjectID, kind RecordKind) bool {
	c.m.Lock()
	defer c.m.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return false
	}
	switch kind {
	case RecordProperties:
		return e.hasProps
	case RecordPreferences:
		return e.hasPrefs
	case RecordUpdate:
		return e.hasUpd
	}
	return false
}

// Len returns the number of entities with at least one cached record.
func (c *RecordCache[P, Q, U]) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.entries)
}

func (c *RecordCache[P, Q, U]) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.entries = make(map[core.ObjectID]*entry[P, Q, U])
}
