// Package toolkit ties the generator, the import config reader, the scene
// placer and the storage backends together into the user facing commands.
package toolkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/prowogene/toolkit/internal/config"
	"github.com/prowogene/toolkit/internal/generator"
	"github.com/prowogene/toolkit/internal/importcfg"
	"github.com/prowogene/toolkit/internal/influx"
	"github.com/prowogene/toolkit/internal/prefs"
	"github.com/prowogene/toolkit/internal/scene"
	"github.com/prowogene/toolkit/internal/storage"
	"github.com/prowogene/toolkit/internal/storage/memory"
	"github.com/prowogene/toolkit/pkg/core"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/metric"
)

// Status is the outcome of a command.
type Status = generator.Status

const (
	StatusCancelled = generator.StatusCancelled
	StatusFinished  = generator.StatusFinished
)

var (
	errNoPrefs = errors.New("no preference store configured")

	// ErrNoHistory is returned by History for backends that keep no runs.
	ErrNoHistory = errors.New("storage backend keeps no run history")
)

// RunRecord is a past import run with the models it placed.
type RunRecord struct {
	Run     core.ImportRun
	Objects []core.PlacedObject
}

// Dependencies holds the collaborators of a Service. All fields are optional.
type Dependencies struct {
	Fs            afero.Fs
	Logger        *slog.Logger
	Prefs         *prefs.Store
	Generator     *generator.Runner
	Storage       storage.Backend
	Reporter      *influx.Reporter
	Meter         metric.Meter
	ApplyRotation bool
	Now           func() time.Time
}

// Service implements the generate, import and recent commands.
type Service struct {
	fs        afero.Fs
	logger    *slog.Logger
	prefs     *prefs.Store
	generator *generator.Runner
	storage   storage.Backend
	reporter  *influx.Reporter
	placer    *scene.Placer
	now       func() time.Time
}

// New creates a Service. Missing optional dependencies get defaults: the OS
// filesystem, slog.Default, a generator writing to stdout and an in-memory
// scene that is never exported.
func New(deps Dependencies) (*Service, error) {
	s := &Service{
		fs:        deps.Fs,
		logger:    deps.Logger,
		prefs:     deps.Prefs,
		generator: deps.Generator,
		storage:   deps.Storage,
		reporter:  deps.Reporter,
		now:       deps.Now,
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.generator == nil {
		s.generator = generator.New(generator.Dependencies{Logger: s.logger})
	}
	if s.storage == nil {
		s.storage = memory.New(config.MemoryConfig{})
	}
	if s.now == nil {
		s.now = time.Now
	}

	placer, err := scene.New(scene.Dependencies{
		Host:          s.storage,
		Logger:        s.logger,
		Meter:         deps.Meter,
		ApplyRotation: deps.ApplyRotation,
	})
	if err != nil {
		return nil, err
	}
	s.placer = placer
	return s, nil
}

// remember stores p for the next session. Failures are only logged.
func (s *Service) remember(p prefs.Preferences) {
	if s.prefs == nil {
		return
	}
	if err := s.prefs.Save(p); err != nil {
		s.logger.Warn("Failed to save preferences", "path", s.prefs.Path(), "error", err)
	}
}

// Generate runs the generator application with the settings file.
func (s *Service) Generate(ctx context.Context, p prefs.Preferences) Status {
	s.remember(p)

	status, err := s.generator.Run(ctx, generator.Request{
		Application: p.Application,
		Settings:    p.Settings,
		WorkingDir:  p.WorkingDir,
	})
	if err != nil {
		s.logger.Error("Generation cancelled", "error", err)
	}
	return status
}

// Recent returns the preferences saved by the last command.
func (s *Service) Recent() (prefs.Preferences, error) {
	if s.prefs == nil {
		return prefs.Preferences{}, errNoPrefs
	}
	return s.prefs.Load()
}

// History returns up to limit past import runs, newest first.
func (s *Service) History(limit int) ([]RunRecord, error) {
	h, ok := s.storage.(storage.History)
	if !ok {
		return nil, ErrNoHistory
	}
	runs, err := h.Runs(limit)
	if err != nil {
		return nil, err
	}
	records := make([]RunRecord, 0, len(runs))
	for _, run := range runs {
		objects, err := h.Objects(run.ID)
		if err != nil {
			return nil, fmt.Errorf("objects of run %d: %w", run.ID, err)
		}
		records = append(records, RunRecord{Run: run, Objects: objects})
	}
	return records, nil
}

func (s *Service) workerFor(p prefs.Preferences) *importcfg.Worker {
	return importcfg.New(importcfg.Dependencies{
		Fs:      s.fs,
		Logger:  s.logger,
		BaseDir: p.WorkingDir,
	})
}

func (s *Service) workingDirExists(dir string) bool {
	if dir == "" {
		return false
	}
	ok, err := afero.DirExists(s.fs, dir)
	return err == nil && ok
}

// Validate reports which layout the import config named by the settings
// file would be imported with, and why the others were rejected.
func (s *Service) Validate(p prefs.Preferences) importcfg.Report {
	worker := s.workerFor(p)
	return worker.Inspect(worker.GetImportConfigName(p.Settings))
}

// Import reads the import config named by the generator settings and places
// its models into the scene.
func (s *Service) Import(ctx context.Context, p prefs.Preferences) Status {
	s.remember(p)

	if !s.workingDirExists(p.WorkingDir) {
		s.logger.Error("Working directory not found", "workingDir", p.WorkingDir)
		return StatusCancelled
	}

	worker := s.workerFor(p)
	configPath := worker.GetImportConfigName(p.Settings)
	mode := worker.ChooseMode(configPath)
	if mode == core.ImportModeNone {
		s.logger.Error("Invalid import config", "config", configPath)
		return StatusCancelled
	}

	waterLevel := worker.GetWaterLevel(configPath)
	s.logger.Info("Water level", "value", waterLevel)

	result := worker.Extract(configPath, mode)
	if result.Mode == core.ImportModeNone {
		s.logger.Warn("Import config changed after validation, nothing to place", "config", configPath)
	}

	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(p.WorkingDir, configPath)
	}
	run := core.ImportRun{
		ConfigPath: configPath,
		WorkingDir: p.WorkingDir,
		Mode:       mode,
		WaterLevel: result.WaterLevel,
		StartTime:  s.now(),
	}
	if err := s.storage.StartRun(&run); err != nil {
		s.logger.Error("Failed to start import run", "error", err)
		return StatusCancelled
	}

	status := StatusFinished
	if err := s.placer.Place(ctx, &run, result.Items); err != nil {
		s.logger.Error("Failed to place models", "error", err)
		status = StatusCancelled
	}

	run.EndTime = s.now()
	if err := s.storage.EndRun(&run); err != nil {
		s.logger.Error("Failed to end import run", "runId", run.ID, "error", err)
		status = StatusCancelled
	}
	if exp, ok := s.storage.(storage.Exportable); ok && exp.LastExportPath() != "" {
		s.logger.Info("Scene manifest written", "path", exp.LastExportPath())
	}

	if s.reporter != nil {
		if err := s.reporter.Report(ctx, run); err != nil {
			s.logger.Warn("Failed to report import run", "error", err)
		}
	}

	s.logger.Info("Import finished",
		"mode", mode.String(),
		"placed", run.PlacedCount,
		"skipped", run.SkippedCount,
		"status", status.String(),
	)
	return status
}
