package observability

import (
	"context"
	"fmt"

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

// Tracer is used for every span the service starts.
var Tracer trace.Tracer = otel.Tracer("kumatter-api")

// Span attribute keys shared by the timeline and the stores.
const (
	AttrStore     = attribute.Key("kumatter.store")
	AttrStoreOp   = attribute.Key("kumatter.store.op")
	AttrViewerID  = attribute.Key("kumatter.viewer_id")
	AttrToggle    = attribute.Key("kumatter.toggle")
	AttrChanged   = attribute.Key("kumatter.toggle.changed")
	AttrRowsCount = attribute.Key("kumatter.rows")
)

// TracingConfig holds configuration for initializing the tracer.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	Exporter       string // "stdout" or "otlp"
	OTLPEndpoint   string
	SamplerRatio   float64
}

// InitTracing installs the global tracer provider and returns its shutdown
// function. With tracing disabled spans are no-ops and shutdown does nothing.
func InitTracing(cfg TracingConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		Tracer = otel.Tracer(cfg.ServiceName)
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracing exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SamplerRatio)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	Tracer = tp.Tracer(cfg.ServiceName)

	return tp.Shutdown, nil
}

func newExporter(cfg TracingConfig) (sdktrace.SpanExporter, error) {
	if cfg.Exporter == "otlp" {
		return otlptracehttp.New(context.Background(),
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
	}
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

// newSampler keeps remote sampling decisions and samples root spans at ratio.
func newSampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// Span wraps an OpenTelemetry span.
type Span struct {
	span trace.Span
}

// NewSpan starts a new span and returns the wrapper and updated context.
func NewSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (*Span, context.Context) {
	ctx, span := Tracer.Start(ctx, name, opts...)
	return &Span{span: span}, ctx
}

// SpanFromContext wraps the span already active in ctx, which may be a no-op span.
func SpanFromContext(ctx context.Context) *Span {
	return &Span{span: trace.SpanFromContext(ctx)}
}

// AddAttributes sets attributes on the span.
func (s *Span) AddAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

// SetError records err and marks the span failed. A nil err is ignored.
func (s *Span) SetError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// End ends the span.
func (s *Span) End() {
	s.span.End()
}

// Finish records err, ends the span and returns err unchanged.
func (s *Span) Finish(err error) error {
	s.SetError(err)
	s.span.End()
	return err
}

// StartStoreSpan starts a client span named "<store>.<op>" around one store call.
func StartStoreSpan(ctx context.Context, store, op string) (*Span, context.Context) {
	return NewSpan(ctx, store+"."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(AttrStore.String(store), AttrStoreOp.String(op)),
	)
}

// TraceStoreRead runs read inside a store span. Store errors are recorded
// on the span and returned as they are.
func TraceStoreRead[T any](ctx context.Context, store, op string, read func(context.Context) (T, error)) (T, error) {
	span, ctx := StartStoreSpan(ctx, store, op)
	v, err := read(ctx)
	return v, span.Finish(err)
}

// AnnotateToggle marks the request span with the outcome of a like or follow
// toggle and counts it.
func AnnotateToggle(ctx context.Context, kind string, changed bool) {
	SpanFromContext(ctx).AddAttributes(AttrToggle.String(kind), AttrChanged.Bool(changed))
	RecordToggle(kind, changed)
}
