// Package log creates the logr.Logger used throughout the application, backed
// by a zap console encoder.
package log

import (
	"io"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger named for the service that writes to sink, along with a
// flush function that should be invoked before the program exits. With debug
// enabled, V(1) messages are also written.
func New(service string, sink io.Writer, debug bool) (logr.Logger, func() error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		// zapr maps V(n) to zap level -n
		level.SetLevel(zapcore.Level(-1))
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.Lock(zapcore.AddSync(sink)),
		level)

	logger := zap.New(core)

	return zapr.NewLogger(logger).WithName(service), logger.Sync
}

func encoderConfig() zapcore.EncoderConfig {
	conf := zap.NewProductionEncoderConfig()

	conf.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	conf.EncodeLevel = func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		if level < zapcore.InfoLevel {
			enc.AppendString("DEBUG")
		} else {
			zapcore.CapitalLevelEncoder(level, enc)
		}
	}

	return conf
}
