package tracing

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	oteltrace "go.opentelemetry.io/otel/trace"

	"recruitdesk/internal/models"
)

const instrumentationName = "recruitdesk"

// DefaultTracingConfig returns the settings used when the config file omits tracing
func DefaultTracingConfig() models.TracingConfig {
	return models.TracingConfig{
		ServiceName:    "recruitdesk",
		ServiceVersion: "dev",
		Environment:    "development",
		OTLPEndpoint:   "localhost:4318",
		SampleRate:     0.1,
		Enabled:        false,
		UseStdout:      true,
	}
}

// Manager owns the tracer provider lifecycle
type Manager struct {
	config   models.TracingConfig
	logger   *logrus.Logger
	provider *sdktrace.TracerProvider
}

func NewManager(config models.TracingConfig, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return &Manager{config: config, logger: logger}
}

// Initialize installs the global tracer provider. Disabled tracing leaves the no-op provider in place.
func (m *Manager) Initialize(ctx context.Context) error {
	if !m.config.Enabled {
		m.logger.Info("OpenTelemetry tracing is disabled")
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(m.config.ServiceName),
			semconv.ServiceVersionKey.String(m.config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(m.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdktrace.SpanExporter
	if m.config.UseStdout {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
	} else {
		exporter, err = otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(m.config.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
		}
	}

	m.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(m.config.SampleRate))),
	)
	otel.SetTracerProvider(m.provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	m.logger.WithFields(logrus.Fields{
		"service":     m.config.ServiceName,
		"sample_rate": m.config.SampleRate,
		"stdout":      m.config.UseStdout,
	}).Info("OpenTelemetry tracing initialized")
	return nil
}

func (m *Manager) Shutdown(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := m.provider.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	return nil
}

// StartSpan starts a span on the global recruitdesk tracer
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, oteltrace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, oteltrace.WithAttributes(attrs...))
}

func AddSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := oteltrace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attrs...)
	}
}

// RecordError marks the span in ctx as failed
func RecordError(ctx context.Context, err error, attrs ...attribute.KeyValue) {
	span := oteltrace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err, oteltrace.WithAttributes(attrs...))
		span.SetStatus(codes.Error, err.Error())
	}
}

// GetOtelTraceID returns the active trace id, or "" when no valid span is in ctx
func GetOtelTraceID(ctx context.Context) string {
	sc := oteltrace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
