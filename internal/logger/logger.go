package logger

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"signal-engine/internal/trace"
)

var (
	mu sync.RWMutex
	// Global logger instance, a no-op until Init is called
	globalLogger = zap.NewNop()
	// Whether detailed logging is enabled
	detailedLogging bool
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level           string // DEBUG, INFO, WARN, ERROR
	Format          string // json or console
	DetailedLogging bool   // Enable debug logs and caller info
	Output          string // stderr, stdout or a file path
}

// Init initializes the global logger based on environment variables
func Init() error {
	return InitWithConfig(LoadConfigFromEnv())
}

// LoadConfigFromEnv loads logging configuration from environment variables
func LoadConfigFromEnv() LogConfig {
	return LogConfig{
		Level:           getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format:          getEnvOrDefault("LOG_FORMAT", "json"),
		DetailedLogging: getEnvOrDefault("LOG_DETAILED", "false") == "true",
		Output:          getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}
}

// InitWithConfig builds the zap logger. Logs default to stderr so stdout
// stays free for command output.
func InitWithConfig(config LogConfig) error {
	level, err := zapcore.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		level = zapcore.InfoLevel
	}
	if config.DetailedLogging && level > zapcore.DebugLevel {
		level = zapcore.DebugLevel
	}

	zc := zap.NewProductionConfig()
	if config.Format == "console" || config.Format == "text" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableCaller = !config.DetailedLogging
	zc.DisableStacktrace = true
	zc.Sampling = nil
	out := config.Output
	if out == "" {
		out = "stderr"
	}
	zc.OutputPaths = []string{out}
	zc.ErrorOutputPaths = []string{"stderr"}

	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	Use(l, config.DetailedLogging)
	return nil
}

// Use installs l as the global logger. Tests pass zaptest or observer loggers.
func Use(l *zap.Logger, detailed bool) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger = l
	detailedLogging = detailed
}

// Sync flushes buffered entries
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger.Sync()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Debug logs a debug message
func Debug(ctx context.Context, msg string, args ...any) {
	if !IsDebugEnabled() {
		return
	}
	write(ctx, zapcore.DebugLevel, 2, msg, args)
}

func DebugSkip(ctx context.Context, skip int, msg string, args ...any) {
	if !IsDebugEnabled() {
		return
	}
	write(ctx, zapcore.DebugLevel, 2+skip, msg, args)
}

// Info logs an info message
func Info(ctx context.Context, msg string, args ...any) {
	write(ctx, zapcore.InfoLevel, 2, msg, args)
}

func InfoSkip(ctx context.Context, skip int, msg string, args ...any) {
	write(ctx, zapcore.InfoLevel, 2+skip, msg, args)
}

// Warn logs a warning message
func Warn(ctx context.Context, msg string, args ...any) {
	write(ctx, zapcore.WarnLevel, 2, msg, args)
}

// Error logs an error message
func Error(ctx context.Context, msg string, args ...any) {
	write(ctx, zapcore.ErrorLevel, 2, msg, args)
}

// ErrorWithErr logs an error message with an error object and marks the span failed
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	recordSpanError(ctx, err)
	write(ctx, zapcore.ErrorLevel, 2, msg, append([]any{"error", err}, args...))
}

func ErrorWithErrSkip(ctx context.Context, skip int, msg string, err error, args ...any) {
	recordSpanError(ctx, err)
	write(ctx, zapcore.ErrorLevel, 2+skip, msg, append([]any{"error", err}, args...))
}

func recordSpanError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := oteltrace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// write emits msg with trace ids and key/value pairs. skip counts frames
// between the caller of interest and write.
func write(ctx context.Context, level zapcore.Level, skip int, msg string, args []any) {
	mu.RLock()
	l := globalLogger
	mu.RUnlock()

	ce := l.WithOptions(zap.AddCallerSkip(skip)).Check(level, msg)
	if ce == nil {
		return
	}
	ce.Write(fields(ctx, args)...)
}

func fields(ctx context.Context, args []any) []zap.Field {
	out := make([]zap.Field, 0, len(args)/2+2)
	if traceID, spanID, ok := trace.GetTraceFields(ctx); ok {
		out = append(out, zap.String("trace_id", traceID), zap.String("span_id", spanID))
	}
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 >= len(args) {
			out = append(out, zap.Any("!BADKEY", args[i]))
			break
		}
		if err, isErr := args[i+1].(error); isErr {
			out = append(out, zap.NamedError(key, err))
			continue
		}
		out = append(out, zap.Any(key, args[i+1]))
	}
	return out
}

// OperationTimer measures an operation inside its own span
type OperationTimer struct {
	ctx    context.Context
	span   oteltrace.Span
	start  time.Time
	fields []any
}

// StartOperation starts timing an operation with an OpenTelemetry span
func StartOperation(ctx context.Context, operation string, fields ...any) *OperationTimer {
	ctx, span := trace.StartSpan(ctx, operation)
	span.SetAttributes(attrs(fields)...)
	Debug(ctx, "Operation started", append([]any{"operation", operation}, fields...)...)
	return &OperationTimer{ctx: ctx, span: span, start: time.Now(), fields: fields}
}

// End completes the operation timer and logs the duration
func (ot *OperationTimer) End(additionalFields ...any) {
	d := time.Since(ot.start)
	ot.span.SetAttributes(attribute.Int64("duration_ms", d.Milliseconds()))
	ot.span.SetAttributes(attrs(additionalFields)...)
	ot.span.SetStatus(codes.Ok, "completed")
	ot.span.End()

	f := append(append([]any{}, ot.fields...), "duration_ms", d.Milliseconds())
	Debug(ot.ctx, "Operation completed", append(f, additionalFields...)...)
}

// EndWithError completes the operation timer with an error
func (ot *OperationTimer) EndWithError(err error, additionalFields ...any) {
	d := time.Since(ot.start)
	ot.span.SetAttributes(attribute.Int64("duration_ms", d.Milliseconds()))
	recordSpanError(ot.ctx, err)
	ot.span.End()

	f := append(append([]any{}, ot.fields...), "duration_ms", d.Milliseconds(), "error", err)
	write(ot.ctx, zapcore.ErrorLevel, 2, "Operation failed", append(f, additionalFields...))
}

// Context returns the context carrying the operation span
func (ot *OperationTimer) Context() context.Context {
	return ot.ctx
}

func attrs(fields []any) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case string:
			out = append(out, attribute.String(key, v))
		case int:
			out = append(out, attribute.Int(key, v))
		case int64:
			out = append(out, attribute.Int64(key, v))
		case float64:
			out = append(out, attribute.Float64(key, v))
		case bool:
			out = append(out, attribute.Bool(key, v))
		}
	}
	return out
}

// Decision logs a trading signal (always logged at info)
func Decision(ctx context.Context, symbol, action string, confidence float64, reason string, fields ...any) {
	span := oteltrace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.AddEvent("trading_decision", oteltrace.WithAttributes(
			attribute.String("symbol", symbol),
			attribute.String("action", action),
			attribute.Float64("confidence", confidence),
			attribute.String("reason", reason),
		))
	}
	f := append([]any{
		"type", "DECISION",
		"symbol", symbol,
		"action", action,
		"confidence", confidence,
		"reason", reason,
	}, fields...)
	write(ctx, zapcore.InfoLevel, 2, "Trading decision made", f)
}

// Risk logs a risk management event
func Risk(ctx context.Context, symbol, eventType string, fields ...any) {
	span := oteltrace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.AddEvent("risk_event", oteltrace.WithAttributes(
			attribute.String("symbol", symbol),
			attribute.String("event_type", eventType),
		))
	}
	f := append([]any{
		"type", "RISK",
		"symbol", symbol,
		"event_type", eventType,
	}, fields...)
	write(ctx, zapcore.WarnLevel, 2, "Risk event", f)
}

// IsDebugEnabled returns whether detailed logging is enabled
func IsDebugEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return detailedLogging
}
