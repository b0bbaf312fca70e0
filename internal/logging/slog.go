package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// default output when Setup gets no file
var osStdout = os.Stdout

// SlogManager manages slog-based logging with optional OTel and Graylog output.
type SlogManager struct {
	logger   *slog.Logger
	handlers []slog.Handler
	opts     *slog.HandlerOptions

	gelfWriter *gelf.Writer
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup initializes the logging system. Records go to file when given,
// otherwise to stdout, and to OTel when provider is non-nil.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider) {
	m.opts = &slog.HandlerOptions{
		Level: parseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	m.handlers = m.handlers[:0]
	if file != nil {
		m.handlers = append(m.handlers, slog.NewTextHandler(file, m.opts))
	} else {
		m.handlers = append(m.handlers, slog.NewTextHandler(osStdout, m.opts))
	}

	if provider != nil {
		m.handlers = append(m.handlers, otelslog.NewHandler("prowogene-toolkit", otelslog.WithLoggerProvider(provider)))
	}

	m.logger = slog.New(NewMultiHandler(m.handlers...))
	m.logger.Info("Logging initialized", "level", level)
}

// EnableGraylog adds a GELF output sending records to the Graylog input at address.
// Setup must have been called first.
func (m *SlogManager) EnableGraylog(address string) error {
	if m.opts == nil {
		return fmt.Errorf("logging not set up")
	}
	w, err := gelf.NewWriter(address)
	if err != nil {
		return fmt.Errorf("failed to create GELF writer for %s: %w", address, err)
	}
	m.gelfWriter = w
	m.handlers = append(m.handlers, slog.NewTextHandler(w, m.opts))
	m.logger = slog.New(NewMultiHandler(m.handlers...))
	m.logger.Info("Graylog output enabled", "address", address)
	return nil
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Close releases the Graylog connection, if any.
func (m *SlogManager) Close() error {
	if m.gelfWriter != nil {
		return m.gelfWriter.Close()
	}
	return nil
}

// WriteLog logs data at the named level, tagged with functionName.
func (m *SlogManager) WriteLog(functionName, data, level string) {
	if m.logger == nil {
		return
	}
	m.logger.Log(context.Background(), parseLevel(level), data, "function", functionName)
}
