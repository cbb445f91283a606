// Package logger provides a global, Sugared Zap logger with optional
// OpenTelemetry integration. It supports configuring log level via functional
// options, emits JSON logs to stdout, and automatically adds an OTEL bridge
// core when a telemetry provider is available.
//
// Key/value pairs attached to a context with WithFields are appended to every
// record logged with that context, which is how session and wallet
// identifiers reach the logs without being threaded through every call.
package logger

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/gabapcia/zkwallet/internal/pkg/telemetry"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// logger is the global SugaredLogger instance. It is a no-op logger until
	// Init is called so packages can log safely in tests.
	logger = zap.NewNop().Sugar()

	// initOnce ensures the logger is only configured a single time.
	initOnce sync.Once
)

// config holds configuration options for the logger.
type config struct {
	level  string    // the minimum log level (debug, info, warn, error, panic, fatal)
	output io.Writer // destination of the JSON records
}

// Option configures the logger before initialization.
type Option func(*config)

// WithLevel sets the minimum log level for the global logger.
// Example levels: "debug", "info", "warn", "error", "panic", "fatal".
func WithLevel(l string) Option {
	return func(c *config) {
		c.level = l
	}
}

// WithOutput redirects the JSON records to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		c.output = w
	}
}

// Init configures the global logger. It accepts zero or more Option values to
// customize behavior (e.g. WithLevel). By default, it logs JSON to stdout at
// the "info" level. If an OpenTelemetry LoggerProvider is registered via
// telemetry.LoggerProvider(), this adds an OTEL bridge core to forward logs to
// the telemetry backend. Calling Init multiple times has no effect after the
// first successful initialization.
//
// Returns an error if parsing the log level fails.
func Init(opts ...Option) error {
	cfg := config{level: "info", output: os.Stdout}
	for _, opt := range opts {
		opt(&cfg)
	}

	level, err := zapcore.ParseLevel(cfg.level)
	if err != nil {
		return err
	}

	initOnce.Do(func() {
		cores := []zapcore.Core{
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(cfg.output),
				level,
			),
		}

		if lp := telemetry.LoggerProvider(); lp != nil {
			cores = append(cores, otelzap.NewCore("github.com/gabapcia/zkwallet", otelzap.WithLoggerProvider(lp)))
		}

		logger = zap.New(zapcore.NewTee(cores...)).Sugar()
	})

	return nil
}

// Sync flushes any buffered log entries. It should be called on application
// shutdown to ensure all logs are written out.
func Sync() error {
	return logger.Sync()
}

// fieldsKey is the context key under which WithFields stores key/value pairs.
type fieldsKey struct{}

// WithFields returns a copy of ctx carrying the given key/value pairs in
// addition to any pairs already attached to ctx.
func WithFields(ctx context.Context, keysAndValues ...any) context.Context {
	current := fieldsFromCtx(ctx)

	merged := make([]any, 0, len(current)+len(keysAndValues))
	merged = append(merged, current...)
	merged = append(merged, keysAndValues...)

	return context.WithValue(ctx, fieldsKey{}, merged)
}

func fieldsFromCtx(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}

	fields, _ := ctx.Value(fieldsKey{}).([]any)
	return fields
}

// withCtxFields appends the context fields after the call-site pairs.
func withCtxFields(ctx context.Context, keysAndValues []any) []any {
	fields := fieldsFromCtx(ctx)
	if len(fields) == 0 {
		return keysAndValues
	}

	return append(append(make([]any, 0, len(keysAndValues)+len(fields)), keysAndValues...), fields...)
}

// Debug logs a debug-level message with optional key/value context.
func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Debugw(msg, withCtxFields(ctx, keysAndValues)...)
}

// Info logs an info-level message with optional key/value context.
func Info(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Infow(msg, withCtxFields(ctx, keysAndValues)...)
}

// Warn logs a warn-level message with optional key/value context.
func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Warnw(msg, withCtxFields(ctx, keysAndValues)...)
}

// Error logs an error-level message with optional key/value context.
func Error(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Errorw(msg, withCtxFields(ctx, keysAndValues)...)
}

// Fatal logs a fatal-level message (and then exits) with optional key/value context.
func Fatal(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Fatalw(msg, withCtxFields(ctx, keysAndValues)...)
}
