package observability

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Tracer starts spans around units of work. The returned function ends the
// span and records err when it is non-nil.
type Tracer interface {
	Start(ctx context.Context, name string, attrs map[string]string) (context.Context, func(err error))
}

// TracingConfig selects and configures the tracing backend
type TracingConfig struct {
	Provider    string // otel, xray or none
	ServiceName string
	Endpoint    string
	SampleRate  float64
	Insecure    bool
}

// NewTracer builds the tracer for cfg. The shutdown function flushes pending
// spans and is safe to call for every provider.
func NewTracer(ctx context.Context, cfg TracingConfig) (Tracer, func(context.Context) error, error) {
	switch cfg.Provider {
	case "otel":
		tp, err := newTracerProvider(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		otel.SetTracerProvider(tp)
		return &OTelTracer{tracer: tp.Tracer(cfg.ServiceName)}, tp.Shutdown, nil
	case "xray":
		return &XRayTracer{serviceName: cfg.ServiceName}, func(context.Context) error { return nil }, nil
	default:
		return NewNoopTracer(), func(context.Context) error { return nil }, nil
	}
}

func newTracerProvider(ctx context.Context, cfg TracingConfig) (*sdktrace.TracerProvider, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
	), nil
}

// OTelTracer creates OpenTelemetry spans
type OTelTracer struct {
	tracer trace.Tracer
}

// NewOTelTracer wraps an existing OpenTelemetry tracer
func NewOTelTracer(t trace.Tracer) *OTelTracer {
	return &OTelTracer{tracer: t}
}

// NewNoopTracer returns a tracer that records nothing
func NewNoopTracer() *OTelTracer {
	return &OTelTracer{tracer: noop.NewTracerProvider().Tracer("noop")}
}

func (t *OTelTracer) Start(ctx context.Context, name string, attrs map[string]string) (context.Context, func(error)) {
	kv := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kv = append(kv, attribute.String(k, v))
	}
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(kv...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// XRayTracer creates X-Ray subsegments. Under Lambda the runtime opens the
// parent segment; elsewhere a segment is started per call.
type XRayTracer struct {
	serviceName string
}

func (t *XRayTracer) Start(ctx context.Context, name string, attrs map[string]string) (context.Context, func(error)) {
	var seg *xray.Segment
	if xray.GetSegment(ctx) != nil {
		ctx, seg = xray.BeginSubsegment(ctx, name)
	} else {
		ctx, seg = xray.BeginSegment(ctx, fmt.Sprintf("%s.%s", t.serviceName, name))
	}
	for k, v := range attrs {
		_ = seg.AddAnnotation(k, v)
	}
	return ctx, func(err error) {
		seg.Close(err)
	}
}
