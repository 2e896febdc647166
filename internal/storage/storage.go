// internal/storage/storage.go
package storage

import (
	"errors"

	"github.com/OCAP2/simvis/pkg/core"
)

// ErrUnknownType is returned by NewBackend for an unsupported storage.type.
var ErrUnknownType = errors.New("unknown storage type")

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(s *core.Session) error
	EndSession() error

	// Entity registration, called once per materialized entity
	RecordEntity(e *core.EntityInfo) error

	// State recording
	RecordFrame(f *core.EntityFrame) error
}

// Exportable is an optional interface for backends that write a file
// when a session ends.
type Exportable interface {
	ExportedFilePath() string
}
