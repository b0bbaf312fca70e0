package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prowogene/toolkit/internal/config"
	"github.com/prowogene/toolkit/internal/generator"
	"github.com/prowogene/toolkit/internal/influx"
	"github.com/prowogene/toolkit/internal/logging"
	intOtel "github.com/prowogene/toolkit/internal/otel"
	"github.com/prowogene/toolkit/internal/prefs"
	"github.com/prowogene/toolkit/internal/storage"
	"github.com/prowogene/toolkit/internal/toolkit"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// application holds everything set up for one command.
type application struct {
	logger   *slog.Logger
	slog     *logging.SlogManager
	logFile  *os.File
	otel     *intOtel.Provider
	storage  storage.Backend
	reporter *influx.Reporter
	service  *toolkit.Service
}

func setup(ctx context.Context, configDir string, start time.Time, console io.Writer) (*application, error) {
	app := &application{slog: logging.NewSlogManager()}

	// console only until the log file exists
	app.slog.Setup(console, config.GetString("logLevel"), nil)
	app.logger = app.slog.Logger()

	if err := config.Load(configDir); err != nil {
		app.logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		app.logger.Info("Loaded config", "path", viper.ConfigFileUsed())
	}

	logsDir := config.GetString("logsDir")
	logFile, err := logging.OpenLogFile(logsDir, AppName, start)
	if err != nil {
		app.logger.Error("Failed to create/open log file!", "error", err)
	}
	app.logFile = logFile

	var logOut io.Writer = console
	if logFile != nil {
		logOut = io.MultiWriter(console, logFile)
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		cfg := intOtel.Config{
			Enabled:      true,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		}
		if logFile != nil {
			cfg.LogWriter = logFile
		}
		app.otel, err = intOtel.New(ctx, cfg)
		if err != nil {
			app.logger.Error("Failed to initialize OTel provider", "error", err)
		}
	}
	if app.otel == nil {
		app.otel, _ = intOtel.New(ctx, intOtel.Config{})
	}

	var otelLogProvider *sdklog.LoggerProvider
	if app.otel.Enabled() {
		otelLogProvider = app.otel.LoggerProvider()
	}
	app.slog.Setup(logOut, config.GetString("logLevel"), otelLogProvider)
	app.logger = app.slog.Logger()
	if logFile != nil {
		app.logger.Info("Logging to file", "path", logFile.Name())
	}

	if config.GetBool("graylog.enabled") {
		if err := app.slog.EnableGraylog(config.GetString("graylog.address")); err != nil {
			app.logger.Warn("Failed to enable Graylog output", "error", err)
		}
	}

	dbLogger := zerolog.New(logOut).With().Timestamp().Logger()
	if level, err := zerolog.ParseLevel(config.GetString("logLevel")); err == nil {
		dbLogger = dbLogger.Level(level)
	}

	storageCfg := config.GetStorageConfig()
	backend, err := storage.NewBackend(storageCfg, storage.Dependencies{
		Logger:   app.logger,
		DBLogger: dbLogger,
	})
	if err != nil {
		app.shutdown()
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}
	app.storage = backend
	if err := backend.Init(); err != nil {
		app.slog.WriteLog("setup", fmt.Sprintf("Failed to initialize %s storage: %v", storageCfg.Type, err), "ERROR")
		app.shutdown()
		return nil, fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	app.logger.Info("Storage backend initialized", "type", storageCfg.Type)

	influxCfg := config.GetInfluxConfig()
	if influxCfg.Enabled {
		reporter := influx.NewReporter(influxCfg, dbLogger, filepath.Join(logsDir, "influx_backup.log.gz"))
		if err := reporter.Connect(ctx); err != nil {
			app.logger.Warn("InfluxDB reporting disabled", "error", err)
		} else {
			app.reporter = reporter
		}
	}

	store, err := prefsStore()
	if err != nil {
		app.logger.Warn("Preferences will not be saved", "error", err)
	}

	app.service, err = toolkit.New(toolkit.Dependencies{
		Logger:        app.logger,
		Prefs:         store,
		Generator:     generator.New(generator.Dependencies{Logger: app.logger}),
		Storage:       backend,
		Reporter:      app.reporter,
		Meter:         app.otel.SceneMeter(),
		ApplyRotation: config.GetBool("scene.applyRotation"),
	})
	if err != nil {
		app.shutdown()
		return nil, err
	}
	return app, nil
}

func prefsStore() (*prefs.Store, error) {
	path := config.GetString("prefs.cacheFile")
	if path == "" {
		var err error
		path, err = prefs.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return prefs.NewStore(nil, path), nil
}

func (a *application) shutdown() {
	if a.reporter != nil {
		if err := a.reporter.Close(); err != nil {
			a.logger.Warn("Failed to close InfluxDB reporter", "error", err)
		}
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			a.logger.Warn("Failed to close storage backend", "error", err)
		}
	}
	if a.otel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.otel.Flush(ctx); err != nil {
			a.logger.Warn("Failed to flush OTel logs", "error", err)
		}
		if err := a.otel.Shutdown(ctx); err != nil {
			a.logger.Warn("Failed to shut down OTel", "error", err)
		}
	}
	if err := a.slog.Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
