// Package postgres implements the storage.Backend interface on PostgreSQL.
// It wraps the GORM backend and only owns the connection.
package postgres

import (
	"log/slog"

	"github.com/prowogene/toolkit/internal/database"
	gormstorage "github.com/prowogene/toolkit/internal/storage/gorm"
	"github.com/rs/zerolog"
)

// Backend wraps the GORM backend for a Postgres database.
type Backend struct {
	*gormstorage.Backend
	manager *database.Manager
}

// New connects to Postgres. The connection is verified before returning.
func New(cfg database.PostgresConfig, logger *slog.Logger, dbLogger zerolog.Logger) (*Backend, error) {
	manager := database.NewManager(dbLogger)
	if err := manager.OpenPostgres(cfg); err != nil {
		_ = manager.Close()
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
