// Package gormstore implements the storage.Backend interface on GORM with
// internal queues and a background DB writer goroutine. It serves both the
// sqlite and postgres storage types; SQLite databases held in memory are
// periodically dumped to disk via VACUUM INTO.
package gormstore

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OCAP2/simvis/internal/database"
	"github.com/OCAP2/simvis/internal/model"
	"github.com/OCAP2/simvis/internal/model/convert"
	"github.com/OCAP2/simvis/internal/queue"
	"github.com/OCAP2/simvis/pkg/core"

	"gorm.io/gorm"
)

// ErrNoSession is returned when recording before StartSession.
var ErrNoSession = errors.New("no active session")

const defaultBatchSize = 2000

// Config holds configuration for the GORM storage backend.
type Config struct {
	FlushInterval time.Duration // 0 disables the background writer
	BatchSize     int
	DumpPath      string // VACUUM INTO target, SQLite only
	InstanceName  string
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	db  *gorm.DB
	cfg Config
	log *slog.Logger

	entities *queue.Queue[model.Entity]
	frames   *queue.Queue[model.Frame]

	sessionID atomic.Uint64
	flushMu   sync.Mutex

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{} // closed when writeLoop exits
}

// New creates a new GORM storage backend on an open connection.
func New(db *gorm.DB, cfg Config, logger *slog.Logger) *Backend {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		db:       db,
		cfg:      cfg,
		log:      logger.With("component", "gormstore", "dialect", db.Name()),
		entities: queue.New[model.Entity](),
		frames:   queue.New[model.Frame](),
		stopChan: make(chan struct{}),
	}
}

// Init runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if err := database.Migrate(b.db, b.cfg.InstanceName); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.log.Info("Database schema ready")

	if b.cfg.FlushInterval > 0 && b.done == nil {
		b.done = make(chan struct{})
		go b.writeLoop()
	}
	return nil
}

// Close stops the writer, flushes what is queued and writes a final dump.
func (b *Backend) Close() error {
	b.stopOnce.Do(func() { close(b.stopChan) })
	if b.done != nil {
		<-b.done
	}

	err := b.Flush()
	if dumpErr := b.dump(); dumpErr != nil {
		err = errors.Join(err, dumpErr)
	}
	return err
}

// StartSession inserts the session row synchronously so that its ID can be
// assigned before any frame is queued.
func (b *Backend) StartSession(s *core.Session) error {
	row := convert.CoreToSession(*s)
	row.ID = 0
	if err := b.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert new session: %w", err)
	}
	s.ID = row.ID
	b.sessionID.Store(uint64(row.ID))
	b.log.Info("Session started", "sessionId", row.ID, "name", row.Name)
	return nil
}

// EndSession flushes the queues and closes the session.
func (b *Backend) EndSession() error {
	if b.sessionID.Load() == 0 {
		return ErrNoSession
	}
	err := b.Flush()
	b.sessionID.Store(0)
	if dumpErr := b.dump(); dumpErr != nil {
		err = errors.Join(err, dumpErr)
	}
	return err
}

// RecordEntity converts an entity descriptor and pushes it to the write queue.
func (b *Backend) RecordEntity(e *core.EntityInfo) error {
	id := b.sessionID.Load()
	if id == 0 {
		return ErrNoSession
	}
	b.entities.Push(convert.CoreToEntity(uint(id), *e))
	return nil
}

// RecordFrame converts a frame and pushes it to the write queue.
func (b *Backend) RecordFrame(f *core.EntityFrame) error {
	id := b.sessionID.Load()
	if id == 0 {
		return ErrNoSession
	}
	b.frames.Push(convert.CoreToFrame(uint(id), *f))
	return nil
}

// RecordPerformance writes one row of tick statistics synchronously.
func (b *Backend) RecordPerformance(p model.SyncPerformance) error {
	id := b.sessionID.Load()
	if id == 0 {
		return ErrNoSession
	}
	p.SessionID = uint(id)
	return b.db.Create(&p).Error
}

// QueueLen returns the number of rows waiting to be written.
func (b *Backend) QueueLen() int {
	return b.entities.Len() + b.frames.Len()
}

// Flush writes all queued rows. Entities are written before frames.
func (b *Backend) Flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	start := time.Now()
	nEntities, err := writeQueue(b.db, b.entities, b.cfg.BatchSize)
	if err != nil {
		b.log.Error("Error writing entities", "error", err)
		return fmt.Errorf("write entities: %w", err)
	}
	nFrames, err := writeQueue(b.db, b.frames, b.cfg.BatchSize)
	if err != nil {
		b.log.Error("Error writing frames", "error", err)
		return fmt.Errorf("write frames: %w", err)
	}
	if nEntities+nFrames > 0 {
		b.log.Debug("Flushed queues",
			"entities", nEntities,
			"frames", nFrames,
			"duration", time.Since(start))
	}
	return nil
}

// writeQueue writes all items from a queue to the database in a transaction.
// On failure the items go back to the front of the queue.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], batchSize int) (int, error) {
	if q.Empty() {
		return 0, nil
	}

	items := q.Drain(0)
	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&items, batchSize).Error
	})
	if err != nil {
		q.Requeue(items)
		return 0, err
	}
	return len(items), nil
}

// writeLoop periodically drains queues into the DB until Close.
func (b *Backend) writeLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			_ = b.Flush()
		}
	}
}

func (b *Backend) dump() error {
	if b.cfg.DumpPath == "" || b.db.Name() != "sqlite" {
		return nil
	}
	start := time.Now()
	if err := database.DumpToDisk(b.db, b.cfg.DumpPath); err != nil {
		b.log.Error("Error dumping to disk", "error", err)
		return err
	}
	b.log.Debug("Dumped to disk", "path", b.cfg.DumpPath, "duration", time.Since(start))
	return nil
}
