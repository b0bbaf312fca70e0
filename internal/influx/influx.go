package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/prowogene/toolkit/internal/config"
	"github.com/prowogene/toolkit/pkg/core"
	"github.com/rs/zerolog"
)

// Measurement is the name of the per-run point.
const Measurement = "import_run"

var errDisabled = errors.New("influx reporting is disabled")

// Reporter writes one point per import run to InfluxDB. When the server
// cannot be reached, points go to a gzipped line protocol backup file.
type Reporter struct {
	Client       influxdb2.Client
	Writer       influxdb2_api.WriteAPIBlocking
	BackupWriter *gzip.Writer
	BackupPath   string
	IsValid      bool
	Logger       zerolog.Logger

	cfg        config.InfluxConfig
	backupFile *os.File
	mu         sync.Mutex
}

// NewReporter creates a reporter. Connect must be called before Report.
func NewReporter(cfg config.InfluxConfig, log zerolog.Logger, backupPath string) *Reporter {
	return &Reporter{
		cfg:        cfg,
		Logger:     log,
		BackupPath: backupPath,
	}
}

// Enabled reports whether influx.enabled is set.
func (r *Reporter) Enabled() bool {
	return r.cfg.Enabled
}

// Connect creates the client and checks the server health. An unreachable
// server switches the reporter to the backup file if one is configured.
func (r *Reporter) Connect(ctx context.Context) error {
	if !r.cfg.Enabled {
		return errDisabled
	}

	r.Client = influxdb2.NewClientWithOptions(
		r.cfg.URL,
		r.cfg.Token,
		influxdb2.DefaultOptions().SetHTTPRequestTimeout(10),
	)

	running, err := r.Client.Ping(ctx)
	if err == nil && running {
		r.Writer = r.Client.WriteAPIBlocking(r.cfg.Org, r.cfg.Bucket)
		r.IsValid = true
		r.Logger.Info().Str("url", r.cfg.URL).Msg("InfluxDB client initialized")
		return nil
	}

	r.IsValid = false
	if r.BackupPath == "" {
		return fmt.Errorf("influxdb not reachable at %s: %v", r.cfg.URL, err)
	}

	r.Logger.Warn().Str("backupPath", r.BackupPath).
		Msg("InfluxDB client failed to initialize, writing to backup file")
	f, ferr := os.OpenFile(r.BackupPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if ferr != nil {
		return fmt.Errorf("failed to open influx backup file: %w", ferr)
	}
	r.backupFile = f
	r.BackupWriter = gzip.NewWriter(f)
	return nil
}

// RunPoint builds the point describing a finished run.
func RunPoint(run core.ImportRun) *influxdb2_write.Point {
	duration := time.Duration(0)
	if !run.EndTime.IsZero() {
		duration = run.EndTime.Sub(run.StartTime)
	}

	return influxdb2.NewPoint(
		Measurement,
		map[string]string{
			"mode": run.Mode.String(),
		},
		map[string]interface{}{
			"items":       run.ItemCount,
			"placed":      run.PlacedCount,
			"skipped":     run.SkippedCount,
			"water_level": run.WaterLevel,
			"duration_ms": duration.Milliseconds(),
		},
		run.StartTime,
	)
}

// Report writes the point for run. It is a no-op when reporting is disabled.
func (r *Reporter) Report(ctx context.Context, run core.ImportRun) error {
	if !r.cfg.Enabled {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	point := RunPoint(run)
	if r.IsValid {
		if err := r.Writer.WritePoint(ctx, point); err != nil {
			r.Logger.Error().Err(err).Str("bucket", r.cfg.Bucket).Msg("Error sending data to InfluxDB")
			return fmt.Errorf("failed to write import run point: %w", err)
		}
		return nil
	}

	if r.BackupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}
	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := r.BackupWriter.Write([]byte(lineProtocol + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %s", err)
	}
	return nil
}

// Close flushes the backup file and closes the client.
func (r *Reporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if r.BackupWriter != nil {
		errs = append(errs, r.BackupWriter.Close())
		r.BackupWriter = nil
	}
	if r.backupFile != nil {
		errs = append(errs, r.backupFile.Close())
		r.backupFile = nil
	}
	if r.Client != nil {
		r.Client.Close()
		r.Client = nil
	}
	return errors.Join(errs...)
}
