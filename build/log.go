package build

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// LogWriter is a stdout-plus-rotating-file io.Writer, the same shape the
// root package's loggers are built on.
type LogWriter struct {
	io.Writer
}

// Write writes to stdout in addition to the underlying io.Writer.
func (w *LogWriter) Write(b []byte) (int, error) {
	os.Stdout.Write(b)
	return w.Writer.Write(b)
}

// RotatingLogWriter is a wrapper around the logging subsystem that supports
// adding new subsystem loggers and rotating the log file on disk once it
// reaches a given size.
type RotatingLogWriter struct {
	sync.Mutex

	backend *slog.Backend

	logRotator *rotator.Rotator

	subsystemLoggers map[string]slog.Logger
}

// NewRotatingLogWriter initializes a new RotatingLogWriter with a default
// logging level of info for every subsystem registered after this call.
func NewRotatingLogWriter() *RotatingLogWriter {
	logWriter := &LogWriter{Writer: io.Discard}
	backend := slog.NewBackend(logWriter)

	return &RotatingLogWriter{
		backend:          backend,
		subsystemLoggers: make(map[string]slog.Logger),
	}
}

// InitLogRotator opens and runs a rotator of the log file at the given
// path, rolling the file over once it reaches maxLogFileSize kilobytes, and
// keeping at most maxLogFiles rolled copies around.
func (r *RotatingLogWriter) InitLogRotator(logFile string, maxLogFileSize, maxLogFiles int) error {
	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("build: create log directory: %w", err)
	}

	rr, err := rotator.New(logFile, int64(maxLogFileSize), false, maxLogFiles)
	if err != nil {
		return fmt.Errorf("build: create log rotator: %w", err)
	}

	r.Lock()
	r.logRotator = rr
	r.backend = slog.NewBackend(&LogWriter{Writer: rr})
	r.Unlock()

	return nil
}

// GenSubLogger creates a new subsystem logger under the root rotating
// backend, satisfying the func(string) slog.Logger shape NewSubLogger
// expects once the rotator is ready.
func (r *RotatingLogWriter) GenSubLogger(subsystem string) slog.Logger {
	r.Lock()
	defer r.Unlock()

	logger := r.backend.Logger(subsystem)
	logger.SetLevel(slog.LevelInfo)
	r.subsystemLoggers[subsystem] = logger
	return logger
}

// RegisterSubLogger records a subsystem's logger so that SetLogLevel can
// find it later.
func (r *RotatingLogWriter) RegisterSubLogger(subsystem string, logger slog.Logger) {
	r.Lock()
	defer r.Unlock()
	r.subsystemLoggers[subsystem] = logger
}

// SetLogLevel sets the logging level for the named subsystem. The special
// subsystem name "all" applies the level to every registered subsystem.
func (r *RotatingLogWriter) SetLogLevel(subsystem, levelStr string) {
	level, ok := slog.LevelFromString(levelStr)
	if !ok {
		return
	}

	r.Lock()
	defer r.Unlock()

	if subsystem == "all" {
		for _, logger := range r.subsystemLoggers {
			logger.SetLevel(level)
		}
		return
	}

	if logger, ok := r.subsystemLoggers[subsystem]; ok {
		logger.SetLevel(level)
	}
}

// Close closes the underlying log rotator, if one has been initialized.
func (r *RotatingLogWriter) Close() error {
	r.Lock()
	defer r.Unlock()
	if r.logRotator == nil {
		return nil
	}
	return r.logRotator.Close()
}

// NewSubLogger creates a new subsystem logger, deferring to genLogger once
// a root rotating writer is ready, and to a disabled logger until then, so
// package-level loggers can be declared safely at init time.
func NewSubLogger(subsystem string, genLogger func(string) slog.Logger) slog.Logger {
	if genLogger == nil {
		return slog.Disabled
	}
	return genLogger(subsystem)
}
