// Package logger provides the global structured logger and the
// OpenTelemetry tracer used across the simulator.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	globalLogger   *slog.Logger
	logLevel       slog.Level
	tracingEnabled bool
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
)

// Config holds logging configuration.
type Config struct {
	Level          string // DEBUG, INFO, WARN, ERROR
	Format         string // json or text
	TracingEnabled bool
}

// FromEnv reads logging configuration from environment variables.
func FromEnv() Config {
	return Config{
		Level:          envOr("LOG_LEVEL", "INFO"),
		Format:         envOr("LOG_FORMAT", "json"),
		TracingEnabled: envOr("LOG_TRACING_ENABLED", "false") == "true",
	}
}

// Init initializes the global logger and tracer from the environment.
func Init() error {
	return InitWithConfig(FromEnv())
}

// InitWithConfig initializes the global logger and, if enabled, the
// OpenTelemetry stdout tracer.
func InitWithConfig(cfg Config) error {
	logLevel = parseLevel(cfg.Level)
	tracingEnabled = cfg.TracingEnabled

	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)

	if tracingEnabled {
		if err := initTracer(); err != nil {
			globalLogger.Warn("failed to initialize tracer, tracing disabled", "error", err)
			tracingEnabled = false
		}
	}
	return nil
}

func initTracer() error {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return err
	}
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName("quantsim"),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return err
	}
	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	tracer = otel.Tracer("quantsim")
	return nil
}

// Shutdown flushes the tracer provider.
func Shutdown(ctx context.Context) error {
	if tracerProvider != nil {
		return tracerProvider.Shutdown(ctx)
	}
	return nil
}

// StartSpan starts a span when tracing is enabled, otherwise it is a no-op.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !tracingEnabled || tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func traceAttrs(ctx context.Context) []any {
	if !tracingEnabled {
		return nil
	}
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}
	return []any{
		"trace_id", span.SpanContext().TraceID().String(),
		"span_id", span.SpanContext().SpanID().String(),
	}
}

func log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if globalLogger == nil {
		globalLogger = slog.Default()
	}
	if ta := traceAttrs(ctx); ta != nil {
		args = append(ta, args...)
	}
	globalLogger.Log(ctx, level, msg, args...)
}

// Debug logs a debug message.
func Debug(ctx context.Context, msg string, args ...any) { log(ctx, slog.LevelDebug, msg, args...) }

// Info logs an info message.
func Info(ctx context.Context, msg string, args ...any) { log(ctx, slog.LevelInfo, msg, args...) }

// Warn logs a warning message.
func Warn(ctx context.Context, msg string, args ...any) { log(ctx, slog.LevelWarn, msg, args...) }

// Error logs an error message.
func Error(ctx context.Context, msg string, args ...any) { log(ctx, slog.LevelError, msg, args...) }

// ErrorWithErr logs an error message with an error object and records it on
// the active span.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	if tracingEnabled {
		span := trace.SpanFromContext(ctx)
		if span.SpanContext().IsValid() {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
	log(ctx, slog.LevelError, msg, append([]any{"error", err}, args...)...)
}

// Signal logs an emitted trading signal.
func Signal(ctx context.Context, symbol string, direction int, strength float64, rule, reason string, args ...any) {
	if tracingEnabled {
		span := trace.SpanFromContext(ctx)
		if span.SpanContext().IsValid() {
			span.AddEvent("signal", trace.WithAttributes(
				attribute.String("symbol", symbol),
				attribute.Int("direction", direction),
				attribute.Float64("strength", strength),
				attribute.String("rule", rule),
			))
		}
	}
	all := append([]any{
		"type", "SIGNAL",
		"symbol", symbol,
		"direction", direction,
		"strength", strength,
		"rule", rule,
		"reason", reason,
	}, args...)
	log(ctx, slog.LevelInfo, "signal emitted", all...)
}

// Trade logs an executed simulated trade.
func Trade(ctx context.Context, symbol, action string, shares int, price, cost float64, args ...any) {
	if tracingEnabled {
		span := trace.SpanFromContext(ctx)
		if span.SpanContext().IsValid() {
			span.AddEvent("trade", trace.WithAttributes(
				attribute.String("symbol", symbol),
				attribute.String("action", action),
				attribute.Int("shares", shares),
				attribute.Float64("price", price),
				attribute.Float64("cost", cost),
			))
		}
	}
	all := append([]any{
		"type", "TRADE",
		"symbol", symbol,
		"action", action,
		"shares", shares,
		"price", price,
		"cost", cost,
	}, args...)
	log(ctx, slog.LevelInfo, "trade executed", all...)
}

// Skip logs a trade that could not be executed. Skipped trades are not
// errors; the simulation continues.
func Skip(ctx context.Context, symbol, reason string, args ...any) {
	all := append([]any{
		"type", "SKIP",
		"symbol", symbol,
		"reason", reason,
	}, args...)
	log(ctx, slog.LevelWarn, "trade skipped", all...)
}
