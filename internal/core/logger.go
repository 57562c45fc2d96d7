package core

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init initializes zap's global logger
// After calling this, we use zap.L() directly.
func Init(pretty bool, verbose bool) error {
	var config zap.Config

	if pretty {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	zap.ReplaceGlobals(logger)
	return nil
}

// LogAPIRequest logs a Testmo API request using zap's global logger
func LogAPIRequest(endpoint string, duration float64, err error) {
	fields := []zap.Field{
		zap.String("endpoint", endpoint),
		zap.Float64("duration_seconds", duration),
	}

	if err != nil {
		fields = append(fields, zap.Error(err))
		zap.L().Error("Request failed", fields...)
		return
	}

	zap.L().Debug("Request completed successfully", fields...)
}

// LogDeferredError runs fn and logs the error it returns, if any.
// Intended for deferred Close calls whose errors would otherwise be dropped.
func LogDeferredError(fn func() error) {
	if err := fn(); err != nil {
		zap.L().Error("Deferred error", zap.Error(err), zap.String("stack", string(debug.Stack())))
	}
}

// LogPanicRecovery logs a recovered panic with its stack trace
func LogPanicRecovery(component string, panicValue any) {
	zap.L().Error("Panic recovered",
		zap.String("component", component),
		zap.Any("panic_value", panicValue),
		zap.String("stack", string(debug.Stack())))
}
