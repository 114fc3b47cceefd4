// Package sqlite provides the public API for the SQLite collection store.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/boardroom/internal/sqlite"
	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// Store is a types.Store with an attach/detach lifecycle.
type Store interface {
	types.Store
	Attach(config types.Config) error
	Detach() error
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "data",
//	})
//	defer store.Detach()
func NewBackend() Store {
	return sqlite.NewBackend()
}
