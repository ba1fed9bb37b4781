package observability

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "bizrwanda-api"

// Tracer is the process tracer. It is a no-op until InitTracing installs a provider.
var Tracer trace.Tracer = otel.Tracer(tracerName)

// TracingConfig mirrors the TRACING_* configuration keys.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	Exporter       string // stdout | otlp
	OTLPEndpoint   string
	SamplerRatio   float64
}

// Span attribute keys for listing operations.
const (
	AttrListingID       = attribute.Key("listing.id")
	AttrListingPostType = attribute.Key("listing.post_type")
	AttrListingStatus   = attribute.Key("listing.status")
)

// InitTracing installs a tracer provider for cfg and returns its shutdown func.
// A disabled config leaves the global no-op provider in place.
func InitTracing(cfg TracingConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, err
	}
	return InitTracingWithExporter(cfg, exporter)
}

// InitTracingWithExporter is InitTracing with a caller supplied exporter.
func InitTracingWithExporter(cfg TracingConfig, exporter sdktrace.SpanExporter) (func(context.Context) error, error) {
	name := cfg.ServiceName
	if name == "" {
		name = tracerName
	}
	res := resource.NewSchemaless(
		semconv.ServiceName(name),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.SamplerRatio)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	Tracer = tp.Tracer(name)

	return tp.Shutdown, nil
}

func newExporter(cfg TracingConfig) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Exporter)) {
	case "", "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "otlp":
		if cfg.OTLPEndpoint == "" {
			return nil, fmt.Errorf("TRACING_EXPORTER=otlp needs OTLP_ENDPOINT")
		}
		return otlptracehttp.New(context.Background(),
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unknown TRACING_EXPORTER %q", cfg.Exporter)
	}
}

// samplerFor keeps parent decisions and samples new roots at ratio.
func samplerFor(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// StartRepositorySpan starts a span for a repository method call.
func StartRepositorySpan(ctx context.Context, method, table string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, "repository."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("db.operation", method),
			attribute.String("db.table", table),
		),
	)
}

// StartJobSpan starts a root span for a scheduled job run.
func StartJobSpan(ctx context.Context, job string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, "job."+job,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithNewRoot(),
	)
}

// AnnotateListing tags the span in ctx with the listing a request acted on.
func AnnotateListing(ctx context.Context, id uint, postType, status string) {
	trace.SpanFromContext(ctx).SetAttributes(
		AttrListingID.Int64(int64(id)),
		AttrListingPostType.String(postType),
		AttrListingStatus.String(status),
	)
}

// RecordModeration counts an admin status decision and adds it as an event
// on the span in ctx.
func RecordModeration(ctx context.Context, id uint, status string) {
	ModerationDecisions.WithLabelValues(status).Inc()
	trace.SpanFromContext(ctx).AddEvent("listing.moderated", trace.WithAttributes(
		AttrListingID.Int64(int64(id)),
		AttrListingStatus.String(status),
	))
}

// EndSpan records err (if any) and ends the span.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
