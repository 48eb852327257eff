package logger

import (
	"fmt"
	"os"
	"strings"

	"questa-search/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop()

// Initialize replaces the process logger. Output goes to stderr because the
// questa CLI writes results to stdout.
func Initialize(cfg config.LoggerConfig) error {
	l, err := build(cfg, zapcore.Lock(os.Stderr))
	if err != nil {
		return err
	}
	log = l
	return nil
}

func build(cfg config.LoggerConfig, out zapcore.WriteSyncer) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	var enc zapcore.Encoder
	if cfg.Env == "production" {
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "timestamp"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(ec)
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		enc = zapcore.NewConsoleEncoder(ec)
	}

	core := zapcore.NewCore(enc, out, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("service", "questa-search")), nil
}

// Get returns the process logger, a no-op until Initialize succeeds.
func Get() *zap.Logger {
	return log
}

func Sync() error {
	return log.Sync()
}
