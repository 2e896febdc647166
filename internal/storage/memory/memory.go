package memory

import (
	"errors"
	"sort"
	"sync"

	"github.com/OCAP2/simvis/internal/config"
	"github.com/OCAP2/simvis/pkg/core"
)

// ErrNoSession is returned when recording before StartSession.
var ErrNoSession = errors.New("no active session")

// EntityRecord groups an entity with all its frames
type EntityRecord struct {
	Entity core.EntityInfo
	Frames []core.EntityFrame
}

// Backend keeps session frames in memory and exports them to JSON on EndSession
type Backend struct {
	cfg     config.MemoryConfig
	session *core.Session

	entities map[core.ObjectID]*EntityRecord

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		entities: make(map[core.ObjectID]*EntityRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins recording a new session
func (b *Backend) StartSession(s *core.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.session = s
	b.entities = make(map[core.ObjectID]*EntityRecord)
	b.lastExportPath = ""
	return nil
}

// EndSession finalizes and exports the session data
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	err := b.exportJSON()
	b.session = nil
	return err
}

// RecordEntity registers a materialized entity. Re-registering replaces
// the descriptor and keeps the frames.
func (b *Backend) RecordEntity(e *core.EntityInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	if rec, ok := b.entities[e.ID]; ok {
		rec.Entity = *e
		return nil
	}
	b.entities[e.ID] = &EntityRecord{Entity: *e}
	return nil
}

// RecordFrame appends a frame to its entity. Frames for unregistered
// entities are ignored.
func (b *Backend) RecordFrame(f *core.EntityFrame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	if rec, ok := b.entities[f.EntityID]; ok {
		rec.Frames = append(rec.Frames, *f)
	}
	return nil
}

// ExportedFilePath returns the file written by the last EndSession.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// Entity returns a copy of the record for id.
func (b *Backend) Entity(id core.ObjectID) (EntityRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.entities[id]
	if !ok {
		return EntityRecord{}, false
	}
	out := EntityRecord{Entity: rec.Entity, Frames: make([]core.EntityFrame, len(rec.Frames))}
	copy(out.Frames, rec.Frames)
	return out, true
}

// sortedRecords returns the entity records ordered by ObjectID.
func (b *Backend) sortedRecords() []*EntityRecord {
	out := make([]*EntityRecord, 0, len(b.entities))
	for _, rec := range b.entities {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Entity.ID < out[j].Entity.ID })
	return out
}
