package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/andrescamacho/remoteminer-go/internal/application/common"
	"github.com/andrescamacho/remoteminer-go/internal/infrastructure/config"
)

// CharmLogger implements common.EngineLogger on top of charmbracelet/log
type CharmLogger struct {
	logger *log.Logger
	closer io.Closer
}

var _ common.EngineLogger = (*CharmLogger)(nil)

// NewCharmLogger creates a logger writing to the configured output
func NewCharmLogger(cfg config.LoggingConfig) (*CharmLogger, error) {
	var (
		out    io.Writer
		closer io.Closer
	)

	switch cfg.Output {
	case "stdout":
		out = os.Stdout
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.FilePath, err)
		}
		out, closer = f, f
	default:
		out = os.Stderr
	}

	l := NewCharmLoggerWithWriter(out, cfg)
	l.closer = closer
	return l, nil
}

// NewCharmLoggerWithWriter creates a logger writing to w
func NewCharmLoggerWithWriter(w io.Writer, cfg config.LoggingConfig) *CharmLogger {
	logger := log.NewWithOptions(w, log.Options{
		Level:           parseLevel(cfg.Level),
		Prefix:          cfg.Prefix,
		ReportCaller:    cfg.IncludeCaller,
		ReportTimestamp: true,
		Formatter:       parseFormatter(cfg.Format),
	})
	return &CharmLogger{logger: logger}
}

// Log writes one line. Metadata keys are emitted in sorted order.
func (l *CharmLogger) Log(level, message string, metadata map[string]interface{}) {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	keyvals := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		keyvals = append(keyvals, k, metadata[k])
	}

	l.logger.Log(parseLevel(level), message, keyvals...)
}

// Logger exposes the underlying logger for lifecycle output
func (l *CharmLogger) Logger() *log.Logger {
	return l.logger
}

// Close releases the log file, if any
func (l *CharmLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func parseFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
