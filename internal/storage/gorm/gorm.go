// Package gormstorage implements the storage.Backend interface on top of GORM.
// Writes are synchronous; the SQLite and Postgres backends wrap it and only
// own the connection.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prowogene/toolkit/internal/model"
	"github.com/prowogene/toolkit/internal/model/convert"
	"github.com/prowogene/toolkit/pkg/core"
	"gorm.io/gorm"
)

var (
	errNoDB  = errors.New("database not opened")
	errNoRun = errors.New("no import run in progress")
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

// Backend records import runs and placed models as database rows.
type Backend struct {
	db     *gorm.DB
	logger *slog.Logger

	runID uint
	mu    sync.Mutex
}

// New creates a GORM backend.
func New(deps Dependencies) *Backend {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{db: deps.DB, logger: logger}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.db
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.db == nil {
		return errNoDB
	}
	if err := b.db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close is a no-op; the wrapping backend owns the connection.
func (b *Backend) Close() error {
	return nil
}

// StartRun inserts the run row and assigns its ID.
func (b *Backend) StartRun(run *core.ImportRun) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return errNoDB
	}

	row := convert.CoreToImportRun(*run)
	row.ID = 0
	if err := b.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}

	run.ID = row.ID
	b.runID = row.ID
	b.logger.Debug("Import run started", "runId", row.ID, "config", run.ConfigPath)
	return nil
}

// EndRun stores the end time and counters of the run.
func (b *Backend) EndRun(run *core.ImportRun) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return errNoDB
	}
	if b.runID == 0 {
		return errNoRun
	}

	row := convert.CoreToImportRun(*run)
	result := b.db.Model(&model.ImportRun{}).Where("id = ?", b.runID).Updates(map[string]any{
		"end_time":      row.EndTime,
		"item_count":    row.ItemCount,
		"placed_count":  row.PlacedCount,
		"skipped_count": row.SkippedCount,
		"aborted":       row.Aborted,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update import run: %w", result.Error)
	}

	b.logger.Debug("Import run ended", "runId", b.runID, "placed", run.PlacedCount)
	b.runID = 0
	return nil
}

// LoadModel inserts a placed model row and assigns its ID.
func (b *Backend) LoadModel(obj *core.PlacedObject) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return errNoDB
	}
	if b.runID == 0 {
		return errNoRun
	}

	obj.RunID = b.runID
	row := convert.CoreToPlacedModel(*obj)
	row.ID = 0
	if err := b.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create placed model: %w", err)
	}
	obj.ID = row.ID
	return nil
}

// SetPosition updates the position of a placed model.
func (b *Backend) SetPosition(id uint, pos core.Position3D) error {
	return b.update(id, map[string]any{"position": convert.PositionToPoint(pos)})
}

// SetRotation updates the rotation of a placed model.
func (b *Backend) SetRotation(id uint, angle float64) error {
	return b.update(id, map[string]any{
		"angle":            angle,
		"rotation_applied": true,
	})
}

func (b *Backend) update(id uint, values map[string]any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return errNoDB
	}

	result := b.db.Model(&model.PlacedModel{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return fmt.Errorf("failed to update placed model %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("unknown object id %d", id)
	}
	return nil
}

// Runs returns the most recent import runs, newest first.
func (b *Backend) Runs(limit int) ([]core.ImportRun, error) {
	if b.db == nil {
		return nil, errNoDB
	}

	var rows []model.ImportRun
	if err := b.db.Order("id desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query import runs: %w", err)
	}

	runs := make([]core.ImportRun, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, convert.ImportRunToCore(row))
	}
	return runs, nil
}

// Objects returns the models placed by a run in load order.
func (b *Backend) Objects(runID uint) ([]core.PlacedObject, error) {
	if b.db == nil {
		return nil, errNoDB
	}

	var rows []model.PlacedModel
	if err := b.db.Where("import_run_id = ?", runID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query placed models: %w", err)
	}

	objects := make([]core.PlacedObject, 0, len(rows))
	for _, row := range rows {
		objects = append(objects, convert.PlacedModelToCore(row))
	}
	return objects, nil
}
