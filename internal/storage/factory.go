// internal/storage/factory.go
package storage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/OCAP2/simvis/internal/config"
	"github.com/OCAP2/simvis/internal/database"
	"github.com/OCAP2/simvis/internal/storage/gormstore"
	"github.com/OCAP2/simvis/internal/storage/memory"
	"github.com/OCAP2/simvis/internal/storage/websocket"
)

const instanceName = "simvis"

// NewBackend creates a storage backend based on configuration. The returned
// backend is not yet initialized.
func NewBackend(cfg config.StorageConfig, logger *slog.Logger) (Backend, error) {
	switch cfg.Type {
	case "memory":
		return memory.New(cfg.Memory), nil
	case "sqlite":
		// in-memory database, dumped to cfg.SQLite.Path
		db, err := database.OpenSQLite("")
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
		}
		return gormstore.New(db, gormstore.Config{
			FlushInterval: cfg.SQLite.FlushInterval,
			DumpPath:      cfg.SQLite.Path,
			InstanceName:  instanceName,
		}, logger), nil
	case "postgres":
		db, err := database.OpenPostgres(cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return gormstore.New(db, gormstore.Config{
			FlushInterval: 2 * time.Second,
			BatchSize:     10000,
			InstanceName:  instanceName,
		}, logger), nil
	case "websocket":
		return websocket.New(cfg.WebSocket, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}
}
