package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/zerolog"

	"github.com/OCAP2/simvis/internal/config"
	"github.com/OCAP2/simvis/internal/database"
	"github.com/OCAP2/simvis/internal/storage"
	"github.com/OCAP2/simvis/internal/storage/gormstore"
)

// createStorageBackend resolves the configured backend. "database" tries
// Postgres and falls back to a local SQLite file.
func createStorageBackend(cfg config.StorageConfig, zlog zerolog.Logger, logger *slog.Logger) (storage.Backend, error) {
	if cfg.Type != "database" {
		b, err := storage.NewBackend(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("creating storage backend: %w", err)
		}
		logger.Info("Storage backend created", "type", cfg.Type)
		return b, nil
	}

	m := database.NewManager(zlog.With().Str("component", "database").Logger())
	if err := m.Connect(&cfg.Postgres, cfg.SQLite.Path); err != nil {
		return nil, err
	}
	gcfg := gormstore.Config{
		FlushInterval: 2 * time.Second,
		BatchSize:     10000,
		InstanceName:  ExtensionName,
	}
	if m.IsLocal {
		gcfg.FlushInterval = cfg.SQLite.FlushInterval
		gcfg.BatchSize = 0
	}
	logger.Info("Storage backend created", "type", cfg.Type, "local", m.IsLocal)
	return gormstore.New(m.DB, gcfg, logger), nil
}
