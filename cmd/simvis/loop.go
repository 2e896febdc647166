package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/OCAP2/simvis/internal/datastore"
	"github.com/OCAP2/simvis/internal/influx"
	"github.com/OCAP2/simvis/internal/model"
	"github.com/OCAP2/simvis/internal/recorder"
	"github.com/OCAP2/simvis/internal/storage"
	"github.com/OCAP2/simvis/internal/syncer"
	"github.com/OCAP2/simvis/pkg/core"
)

// perfRecorder is implemented by backends that keep tick statistics.
type perfRecorder interface {
	RecordPerformance(model.SyncPerformance) error
	QueueLen() int
}

type runResult struct {
	Ticks   int
	Frames  int
	Applied int
}

type tickLoop struct {
	scenario *scenario
	ds       *datastore.Memory
	orch     *syncer.Orchestrator
	rec      *recorder.Recorder
	backend  storage.Backend
	stats    *influx.Manager // nil when disabled
	session  *core.Session
	log      *slog.Logger
}

// Run drives the scenario to its end or until ctx is cancelled. Each tick
// appends samples, moves the store time, syncs the scene and records it.
func (l *tickLoop) Run(ctx context.Context) (runResult, error) {
	var res runResult
	var errs []error

	var ticker *time.Ticker
	if l.scenario.cfg.Realtime && l.scenario.cfg.Step > 0 {
		ticker = time.NewTicker(l.scenario.cfg.Step)
		defer ticker.Stop()
	}

	ids := l.ds.IDs(core.KindNone)
	perf, _ := l.backend.(perfRecorder)

	for n := 0; n <= l.scenario.steps(); n++ {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return res, err
		}

		t := l.scenario.timeAt(n)
		l.scenario.advance(l.ds, n)
		l.ds.Update(t)

		began := time.Now()
		applied := l.orch.Update(l.ds, ids)
		frames, err := l.rec.Record(t)
		elapsed := time.Since(began)
		if err != nil {
			errs = append(errs, err)
		}

		res.Ticks++
		res.Frames += frames
		res.Applied += applied

		if l.stats != nil {
			if err := l.stats.WriteTick(influx.TickStats{
				Time:     began,
				Session:  l.session.Name,
				SimTime:  t,
				Entities: len(ids),
				Applied:  applied,
				Frames:   frames,
				Duration: elapsed,
			}); err != nil {
				l.log.Warn("Failed to write tick statistics", "error", err)
			}
		}
		if perf != nil {
			if err := perf.RecordPerformance(model.SyncPerformance{
				Time:           began,
				SessionID:      l.session.ID,
				SimTime:        t,
				Entities:       len(ids),
				Applied:        applied,
				FrameQueue:     perf.QueueLen(),
				TickDurationMs: float32(elapsed.Microseconds()) / 1000,
			}); err != nil {
				l.log.Warn("Failed to record sync performance", "error", err)
			}
		}

		if n%100 == 0 {
			l.log.Debug("Tick", "n", n, "time", t, "applied", applied, "frames", frames)
		}
	}
	return res, errors.Join(errs...)
}
