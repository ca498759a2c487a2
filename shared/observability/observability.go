package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"intelligent-chatbot/backend/pkg/logger"
)

// SetupTracing initializes OpenTelemetry tracing with a stdout exporter
// (replace with OTLP in production). Returns a shutdown function.
func SetupTracing(serviceName string, log *logger.Logger) func() {
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		log.LogError(err, "failed to initialize trace exporter")
		return func() {}
	}
	res, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	provider := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return func() { _ = provider.Shutdown(context.Background()) }
}

// SetupPrometheusMetrics initializes the Prometheus metrics exporter and
// serves /metrics on the given address.
func SetupPrometheusMetrics(addr string, log *logger.Logger) *metric.MeterProvider {
	exp, err := prometheus.New()
	if err != nil {
		log.LogError(err, "failed to initialize prometheus exporter")
		return metric.NewMeterProvider()
	}
	mp := metric.NewMeterProvider(metric.WithReader(exp))
	otel.SetMeterProvider(mp)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.LogError(err, "metrics endpoint stopped")
		}
	}()
	return mp
}

// ChatMetrics holds the counters emitted by the chat pipeline.
type ChatMetrics struct {
	requests   otelmetric.Int64Counter
	fallbacks  otelmetric.Int64Counter
	rejections otelmetric.Int64Counter
}

// NewChatMetrics registers the chat pipeline instruments on the global
// meter provider.
func NewChatMetrics() (*ChatMetrics, error) {
	meter := otel.Meter("chatbot/pipeline")

	requests, err := meter.Int64Counter("chat_requests_total",
		otelmetric.WithDescription("Inbound chat messages processed"))
	if err != nil {
		return nil, err
	}
	fallbacks, err := meter.Int64Counter("chat_fallbacks_total",
		otelmetric.WithDescription("Replies served by the fallback responder"))
	if err != nil {
		return nil, err
	}
	rejections, err := meter.Int64Counter("chat_moderation_rejections_total",
		otelmetric.WithDescription("Messages rejected by content moderation"))
	if err != nil {
		return nil, err
	}

	return &ChatMetrics{
		requests:   requests,
		fallbacks:  fallbacks,
		rejections: rejections,
	}, nil
}

// RecordRequest counts a processed chat message.
func (m *ChatMetrics) RecordRequest(ctx context.Context, authenticated bool) {
	if m == nil {
		return
	}
	m.requests.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.Bool("authenticated", authenticated),
	))
}

// RecordFallback counts a reply served by the fallback responder.
func (m *ChatMetrics) RecordFallback(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.fallbacks.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordRejection counts a message rejected by moderation.
func (m *ChatMetrics) RecordRejection(ctx context.Context) {
	if m == nil {
		return
	}
	m.rejections.Add(ctx, 1)
}
