package telemetry

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fmlint/fmlint/pkg/constants"
)

// CorrelationContext groups the structured log records of one invocation.
// It never influences finding content or exit codes.
type CorrelationContext struct {
	ID    string
	Start time.Time
}

// NewCorrelationContext creates a context with a fresh identifier and the
// current time as start timestamp.
func NewCorrelationContext() CorrelationContext {
	return CorrelationContext{
		ID:    uuid.NewString(),
		Start: time.Now(),
	}
}

// Enabled reports whether structured log output is switched on. Any non-empty
// value of FMLINT_STRUCTURED_LOGS enables it.
func Enabled() bool {
	return os.Getenv(constants.EnvStructuredLogs) != ""
}

var (
	loggerOnce sync.Once
	logger     *zap.Logger
)

// Logger returns the shared JSON logger writing to stderr, building it on
// first use. Human-readable output on stdout is unaffected.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		encoderConfig := zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			MessageKey:     "event",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
		}

		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(os.Stderr),
			zap.NewAtomicLevelAt(zapcore.InfoLevel),
		)

		logger = zap.New(core)
	})

	return logger
}

// Sync flushes any buffered log entries. Safe to call when the logger was
// never built.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
