// Package sqlitestorage implements the storage.Backend interface on a SQLite
// file through the pure Go glebarez driver. It wraps the GORM backend and only
// owns the connection.
package sqlitestorage

import (
	"log/slog"

	"github.com/prowogene/toolkit/internal/database"
	gormstorage "github.com/prowogene/toolkit/internal/storage/gorm"
	"github.com/rs/zerolog"
)

// Backend wraps the GORM backend for a SQLite database.
type Backend struct {
	*gormstorage.Backend
	manager *database.Manager
}

// New opens the SQLite database at path. An empty path uses an in-memory DB.
func New(path string, logger *slog.Logger, dbLogger zerolog.Logger) (*Backend, error) {
	manager := database.NewManager(dbLogger)
	if err := manager.OpenSQLite(path); err != nil {
		return nil, err
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{DB: manager.DB, Logger: logger}),
		manager: manager,
	}, nil
}

// Close closes the database connection.
func (b *Backend) Close() error {
	return b.manager.Close()
}
