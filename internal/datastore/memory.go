package datastore

import (
	"sort"
	"sync"

	"github.com/OCAP2/simvis/pkg/core"
)

type table[P, Q, U any] struct {
	props   map[core.ObjectID]P
	prefs   map[core.ObjectID]Q
	updates map[core.ObjectID][]U
	timeOf  func(U) float64
}

func newTable[P, Q, U any](timeOf func(U) float64) *table[P, Q, U] {
	return &table[P, Q, U]{
		props:   make(map[core.ObjectID]P),
		prefs:   make(map[core.ObjectID]Q),
		updates: make(map[core.ObjectID][]U),
		timeOf:  timeOf,
	}
}

// insert keeps samples ordered by time; equal times keep insertion order.
func (t *table[P, Q, U]) insert(id core.ObjectID, u U) {
	s := t.updates[id]
	at := t.timeOf(u)
	i := sort.Search(len(s), func(i int) bool { return t.timeOf(s[i]) > at })
	var zero U
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = u
	t.updates[id] = s
}

// Memory is an in-process DataStore. Writers obtain a mutable copy of a
// record with a Txn; completing the Txn stores the copy and notifies
// listeners.
type Memory struct {
	mu        sync.RWMutex
	next      core.ObjectID
	time      float64
	kinds     map[core.ObjectID]core.Kind
	platforms *table[core.PlatformProperties, core.PlatformPrefs, core.PlatformUpdate]
	beams     *table[core.BeamProperties, core.BeamPrefs, core.BeamUpdate]
	gates     *table[core.GateProperties, core.GatePrefs, core.GateUpdate]

	lmu       sync.Mutex
	listeners []Listener
}

var _ DataStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		kinds:     make(map[core.ObjectID]core.Kind),
		platforms: newTable[core.PlatformProperties, core.PlatformPrefs](func(u core.PlatformUpdate) float64 { return u.Time }),
		beams:     newTable[core.BeamProperties, core.BeamPrefs](func(u core.BeamUpdate) float64 { return u.Time }),
		gates:     newTable[core.GateProperties, core.GatePrefs](func(u core.GateUpdate) float64 { return u.Time }),
	}
}

func (m *Memory) AddListener(l Listener) {
	m.lmu.Lock()
	defer m.lmu.Unlock()
	m.listeners = append(m.listeners, l)
}

func (m *Memory) notify(fn func(Listener)) {
	m.lmu.Lock()
	ls := append([]Listener(nil), m.listeners...)
	m.lmu.Unlock()
	for _, l := range ls {
		fn(l)
	}
}

func (m *Memory) Kind(id core.ObjectID) core.Kind {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.kinds[id]
}

// IDs returns the ids of kind in ascending order. KindNone returns all.
func (m *Memory) IDs(kind core.Kind) []core.ObjectID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []core.ObjectID
	for id, k := range m.kinds {
		if kind == core.KindNone || k == kind {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (m *Memory) Time() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.time
}

// Update moves the store clock. Slices report samples up to t.
func (m *Memory) Update(t float64) {
	m.mu.Lock()
	m.time = t
	m.mu.Unlock()
}

func (m *Memory) allocate() core.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return m.next
}

// addEntity hands out a mutable properties record for a new entity of
// kind. Completing the Txn registers it and fires OnAddEntity.
func addEntity[P, Q, U any](m *Memory, t *table[P, Q, U], kind core.Kind, init func(core.ObjectID) P) (*P, *Txn) {
	id := m.allocate()
	p := init(id)
	return &p, &Txn{commit: func() {
		m.mu.Lock()
		m.kinds[id] = kind
		t.props[id] = p
		m.mu.Unlock()
		m.notify(func(l Listener) { l.OnAddEntity(m, id, kind) })
	}}
}

// mutable hands out a copy of the record in src for id. Completing the Txn
// writes it back and fires event.
func mutable[T any](m *Memory, src map[core.ObjectID]T, id core.ObjectID, event func(Listener)) (*T, *Txn) {
	m.mu.RLock()
	v := src[id]
	m.mu.RUnlock()
	return &v, &Txn{commit: func() {
		m.mu.Lock()
		src[id] = v
		m.mu.Unlock()
		m.notify(event)
	}}
}

func read[T any](m *Memory, src map[core.ObjectID]T, id core.ObjectID) *Record[T] {
	m.mu.RLock()
	v, ok := src[id]
	return newRecord(v, ok, m.mu.RUnlock)
}

func addUpdate[P, Q, U any](m *Memory, t *table[P, Q, U], id core.ObjectID, u U) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.insert(id, u)
}

func slice[P, Q, U any](m *Memory, t *table[P, Q, U], id core.ObjectID) Slice[U] {
	return &memorySlice[P, Q, U]{m: m, t: t, id: id}
}

type memorySlice[P, Q, U any] struct {
	m  *Memory
	t  *table[P, Q, U]
	id core.ObjectID
}

func (s *memorySlice[P, Q, U]) Current() (U, bool) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	samples := s.t.updates[s.id]
	i := sort.Search(len(samples), func(i int) bool { return s.t.timeOf(samples[i]) > s.m.time })
	if i == 0 {
		var zero U
		return zero, false
	}
	return samples[i-1], true
}

func (s *memorySlice[P, Q, U]) Len() int {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	return len(s.t.updates[s.id])
}

// AddPlatform starts a new platform.
func (m *Memory) AddPlatform() (*core.PlatformProperties, *Txn) {
	return addEntity(m, m.platforms, core.KindPlatform, func(id core.ObjectID) core.PlatformProperties {
		return core.PlatformProperties{ID: core.Some(id)}
	})
}

// AddBeam starts a new beam; set HostID before completing.
func (m *Memory) AddBeam() (*core.BeamProperties, *Txn) {
	return addEntity(m, m.beams, core.KindBeam, func(id core.ObjectID) core.BeamProperties {
		return core.BeamProperties{ID: core.Some(id)}
	})
}

// AddGate starts a new gate; set HostID before completing.
func (m *Memory) AddGate() (*core.GateProperties, *Txn) {
	return addEntity(m, m.gates, core.KindGate, func(id core.ObjectID) core.GateProperties {
		return core.GateProperties{ID: core.Some(id)}
	})
}

func (m *Memory) prefsChanged(id core.ObjectID) func(Listener) {
	return func(l Listener) { l.OnPrefsChange(m, id) }
}

func (m *Memory) propertiesChanged(id core.ObjectID) func(Listener) {
	return func(l Listener) { l.OnPropertiesChange(m, id) }
}

func (m *Memory) MutablePlatformPrefs(id core.ObjectID) (*core.PlatformPrefs, *Txn) {
	return mutable(m, m.platforms.prefs, id, m.prefsChanged(id))
}

func (m *Memory) MutableBeamPrefs(id core.ObjectID) (*core.BeamPrefs, *Txn) {
	return mutable(m, m.beams.prefs, id, m.prefsChanged(id))
}

func (m *Memory) MutableGatePrefs(id core.ObjectID) (*core.GatePrefs, *Txn) {
	return mutable(m, m.gates.prefs, id, m.prefsChanged(id))
}

func (m *Memory) MutablePlatformProperties(id core.ObjectID) (*core.PlatformProperties, *Txn) {
	return mutable(m, m.platforms.props, id, m.propertiesChanged(id))
}

func (m *Memory) MutableBeamProperties(id core.ObjectID) (*core.BeamProperties, *Txn) {
	return mutable(m, m.beams.props, id, m.propertiesChanged(id))
}

func (m *Memory) MutableGateProperties(id core.ObjectID) (*core.GateProperties, *Txn) {
	return mutable(m, m.gates.props, id, m.propertiesChanged(id))
}

func (m *Memory) AddPlatformUpdate(id core.ObjectID, u core.PlatformUpdate) {
	addUpdate(m, m.platforms, id, u)
}

func (m *Memory) AddBeamUpdate(id core.ObjectID, u core.BeamUpdate) {
	addUpdate(m, m.beams, id, u)
}

func (m *Memory) AddGateUpdate(id core.ObjectID, u core.GateUpdate) {
	addUpdate(m, m.gates, id, u)
}

func (m *Memory) PlatformProperties(id core.ObjectID) *Record[core.PlatformProperties] {
	return read(m, m.platforms.props, id)
}

func (m *Memory) PlatformPrefs(id core.ObjectID) *Record[core.PlatformPrefs] {
	return read(m, m.platforms.prefs, id)
}

func (m *Memory) PlatformUpdates(id core.ObjectID) Slice[core.PlatformUpdate] {
	return slice(m, m.platforms, id)
}

func (m *Memory) BeamProperties(id core.ObjectID) *Record[core.BeamProperties] {
	return read(m, m.beams.props, id)
}

func (m *Memory) BeamPrefs(id core.ObjectID) *Record[core.BeamPrefs] {
	return read(m, m.beams.prefs, id)
}

func (m *Memory) BeamUpdates(id core.ObjectID) Slice[core.BeamUpdate] {
	return slice(m, m.beams, id)
}

func (m *Memory) GateProperties(id core.ObjectID) *Record[core.GateProperties] {
	return read(m, m.gates.props, id)
}

func (m *Memory) GatePrefs(id core.ObjectID) *Record[core.GatePrefs] {
	return read(m, m.gates.prefs, id)
}

func (m *Memory) GateUpdates(id core.ObjectID) Slice[core.GateUpdate] {
	return slice(m, m.gates, id)
}
