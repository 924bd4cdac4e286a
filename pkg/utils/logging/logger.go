package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures InitLogger
type Options struct {
	// Env tags every entry and prefixes the log file name
	Env string
	// Dir receives one JSON log file per process start
	Dir string
	// ConsoleLevel is the minimum level printed to stdout; the file always gets Debug
	ConsoleLevel zapcore.Level
}

// InitLogger builds a zap logger that writes human-readable logs to stdout and
// JSON logs to <Dir>/<Env>_<timestamp>.log. The returned func flushes the
// logger and closes the file.
func InitLogger(opts Options) (*zap.Logger, func() error, error) {
	logFile, err := openLogFile(opts.Dir, opts.Env, time.Now())
	if err != nil {
		return nil, nil, err
	}

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stdout), opts.ConsoleLevel),
		zapcore.NewCore(fileEncoder(), zapcore.AddSync(logFile), zapcore.DebugLevel),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("env", opts.Env))

	closeFn := func() error {
		// Syncing a terminal or pipe stdout fails with EINVAL on most platforms; only the file matters
		_ = logger.Sync()
		if err := logFile.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		return nil
	}

	return logger, closeFn, nil
}

func openLogFile(dir, env string, started time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	name := filepath.Join(dir, fmt.Sprintf("%s_%s.log", env, started.Format("2006-01-02_15-04-05")))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func fileEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}
