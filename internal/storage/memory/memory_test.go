package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OCAP2/simvis/internal/config"
	"github.com/OCAP2/simvis/pkg/core"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession() *core.Session {
	return &core.Session{
		Name:             "demo run: 1",
		StartTime:        time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC),
		ExtensionVersion: "0.1.0",
	}
}

func platformFrame(t float64) *core.EntityFrame {
	return &core.EntityFrame{
		EntityID:    1,
		Time:        t,
		HasPosition: true,
		Position:    core.GeoPosition{Longitude: 2 + t/100, Latitude: 35, Altitude: 10000},
		Rotation:    [4]float64{0, 0, 0, 1},
		Label:       "AB-652",
		IconSize:    64,
	}
}

func TestRecordBeforeStartSession(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	assert.ErrorIs(t, b.RecordEntity(&core.EntityInfo{ID: 1}), ErrNoSession)
	assert.ErrorIs(t, b.RecordFrame(platformFrame(0)), ErrNoSession)
	assert.ErrorIs(t, b.EndSession(), ErrNoSession)
}

func TestRecordFrames(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	require.NoError(t, b.Init())
	require.NoError(t, b.StartSession(newSession()))

	require.NoError(t, b.RecordEntity(&core.EntityInfo{ID: 1, Kind: core.KindPlatform, Name: "AB-652"}))
	require.NoError(t, b.RecordFrame(platformFrame(0)))
	require.NoError(t, b.RecordFrame(platformFrame(0.01)))
	// unknown entity is dropped
	require.NoError(t, b.RecordFrame(&core.EntityFrame{EntityID: 99}))

	rec, ok := b.Entity(1)
	require.True(t, ok)
	assert.Equal(t, "AB-652", rec.Entity.Name)
	assert.Len(t, rec.Frames, 2)

	_, ok = b.Entity(99)
	assert.False(t, ok)
}

func TestRecordEntity_ReRegisterKeepsFrames(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	require.NoError(t, b.StartSession(newSession()))

	require.NoError(t, b.RecordEntity(&core.EntityInfo{ID: 1, Kind: core.KindPlatform}))
	require.NoError(t, b.RecordFrame(platformFrame(0)))
	require.NoError(t, b.RecordEntity(&core.EntityInfo{ID: 1, Kind: core.KindPlatform, Name: "renamed"}))

	rec, _ := b.Entity(1)
	assert.Equal(t, "renamed", rec.Entity.Name)
	assert.Len(t, rec.Frames, 1)
}

func TestStartSessionResets(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	require.NoError(t, b.StartSession(newSession()))
	require.NoError(t, b.RecordEntity(&core.EntityInfo{ID: 1}))

	require.NoError(t, b.StartSession(newSession()))
	_, ok := b.Entity(1)
	assert.False(t, ok)
}

func TestEndSession_PlainJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: false})
	require.NoError(t, b.StartSession(newSession()))
	require.NoError(t, b.RecordEntity(&core.EntityInfo{ID: 2, Kind: core.KindBeam, HostID: 1}))
	require.NoError(t, b.RecordEntity(&core.EntityInfo{ID: 1, Kind: core.KindPlatform, Name: "AB-652"}))
	require.NoError(t, b.RecordFrame(platformFrame(0)))
	require.NoError(t, b.RecordFrame(platformFrame(1.5)))
	require.NoError(t, b.RecordFrame(&core.EntityFrame{EntityID: 2, Time: 1.5, LineVertices: 2, LineWKT: "MULTILINESTRING Z ((0 0 0,1 1 1))"}))

	require.NoError(t, b.EndSession())

	path := b.ExportedFilePath()
	assert.Equal(t, filepath.Join(dir, "demo_run__1_20261014_093000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var export SessionExport
	require.NoError(t, json.Unmarshal(data, &export))
	assert.Equal(t, "demo run: 1", export.SessionName)
	assert.Equal(t, "2026-10-14T09:30:00Z", export.StartTime)
	assert.Equal(t, 1.5, export.EndTime)
	require.Len(t, export.Entities, 2)

	// sorted by id
	assert.Equal(t, uint64(1), export.Entities[0].ID)
	assert.Equal(t, "platform", export.Entities[0].Kind)
	require.Len(t, export.Entities[0].Frames, 2)
	assert.Equal(t, []any{2.0, 35.0, 10000.0}, export.Entities[0].Frames[0][1])
	assert.Equal(t, "AB-652", export.Entities[0].Frames[0][3])

	beam := export.Entities[1]
	assert.Equal(t, "beam", beam.Kind)
	assert.Equal(t, uint64(1), beam.HostID)
	assert.Nil(t, beam.Frames[0][1])
	assert.Equal(t, "MULTILINESTRING Z ((0 0 0,1 1 1))", beam.Frames[0][5])
}

func TestEndSession_Gzip(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: filepath.Join(dir, "out"), CompressOutput: true})
	require.NoError(t, b.StartSession(&core.Session{StartTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}))
	require.NoError(t, b.RecordEntity(&core.EntityInfo{ID: 1, Kind: core.KindPlatform}))
	require.NoError(t, b.RecordFrame(platformFrame(0)))
	require.NoError(t, b.EndSession())

	path := b.ExportedFilePath()
	assert.Equal(t, "session_20260102_030405.json.gz", filepath.Base(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	var export SessionExport
	require.NoError(t, json.NewDecoder(gz).Decode(&export))
	require.Len(t, export.Entities, 1)
	assert.Len(t, export.Entities[0].Frames, 1)
}
