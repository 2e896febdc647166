package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/simvis/internal/config"
	"github.com/OCAP2/simvis/internal/datastore"
	"github.com/OCAP2/simvis/internal/recorder"
	"github.com/OCAP2/simvis/internal/resource"
	"github.com/OCAP2/simvis/internal/scene"
	"github.com/OCAP2/simvis/internal/storage/memory"
	"github.com/OCAP2/simvis/internal/syncer"
	"github.com/OCAP2/simvis/pkg/core"
)

type stubLoader struct{}

func (stubLoader) LoadImage(uri string) (*resource.Image, error) {
	return &resource.Image{URI: uri, Width: 10, Height: 10, Pix: make([]uint8, 400)}, nil
}

func (stubLoader) LoadFont(name string) (*resource.Font, error) {
	return &resource.Font{Name: name}, nil
}

func testScenarioConfig() config.ScenarioConfig {
	return config.ScenarioConfig{
		Duration:     100 * time.Millisecond,
		Step:         10 * time.Millisecond,
		Start:        "2.0,35.0,10000",
		LonStep:      0.001,
		Name:         "AB-652",
		Icon:         "icon.png",
		Scale:        2,
		PointSize:    24,
		BeamHWidth:   30,
		BeamVWidth:   25,
		BeamRange:    35000,
		GateWidth:    5,
		GateMinRange: 20000,
		GateMaxRange: 30000,
	}
}

func TestScenario_Build(t *testing.T) {
	ds := datastore.NewMemory()
	sc, err := newScenario(ds, testScenarioConfig())
	require.NoError(t, err)

	assert.Equal(t, core.KindPlatform, ds.Kind(sc.platform))
	assert.Equal(t, core.KindBeam, ds.Kind(sc.beam))
	assert.Equal(t, core.KindGate, ds.Kind(sc.gate))

	beam, ok := ds.BeamProperties(sc.beam).Value()
	require.True(t, ok)
	assert.Equal(t, sc.platform, beam.HostID.Value())

	gate, ok := ds.GateProperties(sc.gate).Value()
	require.True(t, ok)
	assert.Equal(t, sc.beam, gate.HostID.Value())

	assert.Equal(t, 10, sc.steps())
	assert.InDelta(t, 0.05, sc.timeAt(5), 1e-12)
}

func TestScenario_InvalidStart(t *testing.T) {
	cfg := testScenarioConfig()
	cfg.Start = "nowhere"
	_, err := newScenario(datastore.NewMemory(), cfg)
	assert.Error(t, err)
}

func TestScenario_TrackMovesEast(t *testing.T) {
	sc, err := newScenario(datastore.NewMemory(), testScenarioConfig())
	require.NoError(t, err)

	p := sc.position(10).Geo
	assert.InDelta(t, 2.01, p.Longitude, 1e-9)
	assert.InDelta(t, 35.0, p.Latitude, 1e-9)
	assert.InDelta(t, 10000.0, p.Altitude, 1e-6)
}

func TestTickLoop_RunRecordsSession(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ds := datastore.NewMemory()
	orch, err := syncer.New(scene.NewRegistry(), resource.NewCache(stubLoader{}, "arial.ttf", logger), logger)
	require.NoError(t, err)
	t.Cleanup(orch.Close)
	ds.AddListener(orch)

	sc, err := newScenario(ds, testScenarioConfig())
	require.NoError(t, err)

	backend := memory.New(config.MemoryConfig{OutputDir: t.TempDir()})
	session := &core.Session{Name: "test run", StartTime: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, backend.StartSession(session))

	loop := &tickLoop{
		scenario: sc,
		ds:       ds,
		orch:     orch,
		rec:      recorder.New(orch.Context(), backend, logger),
		backend:  backend,
		session:  session,
		log:      logger,
	}
	res, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 11, res.Ticks)
	assert.Positive(t, res.Applied)

	rec, ok := backend.Entity(sc.platform)
	require.True(t, ok)
	assert.Equal(t, "AB-652", rec.Entity.Name)
	require.Len(t, rec.Frames, 11, "platform moves every tick")
	assert.InDelta(t, 2.01, rec.Frames[10].Position.Longitude, 1e-6)

	beam, ok := backend.Entity(sc.beam)
	require.True(t, ok)
	assert.Equal(t, sc.platform, beam.Entity.HostID)

	require.NoError(t, backend.EndSession())
	assert.FileExists(t, backend.ExportedFilePath())
}

func TestTickLoop_CancelledContext(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ds := datastore.NewMemory()
	orch, err := syncer.New(scene.NewRegistry(), resource.NewCache(stubLoader{}, "arial.ttf", logger), logger)
	require.NoError(t, err)
	t.Cleanup(orch.Close)
	ds.AddListener(orch)

	sc, err := newScenario(ds, testScenarioConfig())
	require.NoError(t, err)
	backend := memory.New(config.MemoryConfig{OutputDir: t.TempDir()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loop := &tickLoop{
		scenario: sc,
		ds:       ds,
		orch:     orch,
		rec:      recorder.New(orch.Context(), backend, logger),
		backend:  backend,
		session:  &core.Session{},
		log:      logger,
	}
	res, err := loop.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Ticks)
}
