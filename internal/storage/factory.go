// internal/storage/factory.go
package storage

import (
	"fmt"
	"log/slog"

	"github.com/prowogene/toolkit/internal/config"
	"github.com/prowogene/toolkit/internal/database"
	"github.com/prowogene/toolkit/internal/storage/memory"
	"github.com/prowogene/toolkit/internal/storage/postgres"
	sqlitestorage "github.com/prowogene/toolkit/internal/storage/sqlite"
	"github.com/rs/zerolog"
)

// Dependencies holds the loggers handed to the backends.
type Dependencies struct {
	Logger   *slog.Logger
	DBLogger zerolog.Logger
}

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, deps Dependencies) (Backend, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	switch cfg.Type {
	case "postgres":
		b, err := postgres.New(database.PostgresConfigFromViper(), deps.Logger, deps.DBLogger)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "sqlite":
		b, err := sqlitestorage.New(cfg.SQLite.Path, deps.Logger, deps.DBLogger)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "memory":
		return memory.New(cfg.Memory), nil
	case "none":
		// no output dir: runs are kept in memory and never exported
		return memory.New(config.MemoryConfig{}), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
