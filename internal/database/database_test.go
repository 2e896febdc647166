package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/OCAP2/simvis/internal/config"
	"github.com/OCAP2/simvis/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.DBConfig{
		Host:     "db.local",
		Port:     "5433",
		Username: "sim",
		Password: "secret",
		Database: "simvis",
	})
	assert.Equal(t, "host=db.local port=5433 user=sim password=secret dbname=simvis sslmode=disable", dsn)
}

func TestOpenSQLite_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sim.db")
	db, err := OpenSQLite(path)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestMigrate_CreatesSchemaOnce(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "sim.db"))
	require.NoError(t, err)

	require.NoError(t, Migrate(db, "test"))
	require.NoError(t, Migrate(db, "test"))

	for _, m := range model.DatabaseModels {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}

	var infos []model.SimvisInfo
	require.NoError(t, db.Find(&infos).Error)
	require.Len(t, infos, 1)
	assert.Equal(t, "test", infos[0].InstanceName)
}

func TestDumpToDisk(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenSQLite(filepath.Join(dir, "src.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db, "dump"))
	require.NoError(t, db.Create(&model.Session{Name: "run"}).Error)

	target := filepath.Join(dir, "copy.db")
	require.NoError(t, DumpToDisk(db, target))
	// second dump replaces the first
	require.NoError(t, DumpToDisk(db, target))

	copyDB, err := OpenSQLite(target)
	require.NoError(t, err)
	var sessions []model.Session
	require.NoError(t, copyDB.Find(&sessions).Error)
	require.Len(t, sessions, 1)
	assert.Equal(t, "run", sessions[0].Name)
}

func TestDumpToDisk_NoPath(t *testing.T) {
	assert.ErrorIs(t, DumpToDisk(nil, ""), ErrNoPath)
}

func TestManager_ConnectFallsBackToSQLite(t *testing.T) {
	m := NewManager(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "local.db")

	require.NoError(t, m.Connect(nil, path))
	t.Cleanup(func() { _ = m.Close() })

	assert.True(t, m.IsValid)
	assert.True(t, m.IsLocal)
	require.NoError(t, m.Setup("manager"))
	assert.True(t, m.DB.Migrator().HasTable(&model.Frame{}))
}

func TestManager_CloseWithoutConnect(t *testing.T) {
	assert.NoError(t, NewManager(zerolog.Nop()).Close())
}
