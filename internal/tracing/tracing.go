// Package tracing provides OpenTelemetry initialization for the approver Lambda.
//
// The exporter is configurable via OTEL_EXPORTER:
//   - "xrayudp": Export directly to Lambda's built-in X-Ray daemon (default)
//   - "stdout": Print traces to stdout (for local development)
//   - "none": Tracing disabled
package tracing

import (
	"context"
	"os"

	"acm-approver/internal/config"
	"github.com/aws-observability/aws-otel-go/exporters/xrayudp"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/detectors/aws/lambda"
	"go.opentelemetry.io/contrib/propagators/aws/xray"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"
)

// traceHeader is the context key under which the Lambda runtime stores the
// X-Ray trace header of the current invocation.
const traceHeader = "x-amzn-trace-id"

// New builds a tracer provider for cfg. The returned shutdown func flushes and
// stops the provider; it is a no-op when tracing is disabled.
func New(ctx context.Context, cfg config.Config) (trace.TracerProvider, func(context.Context) error, error) {
	if cfg.OtelExporter == "none" || os.Getenv("OTEL_SDK_DISABLED") == "true" {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }, nil
	}

	exporter, err := newExporter(ctx, cfg.OtelExporter)
	if err != nil {
		return nil, nil, err
	}

	res, err := newResource(ctx, cfg.OtelExporter, cfg.ServiceName)
	if err != nil {
		return nil, nil, err
	}

	// Lambda may freeze the sandbox right after the handler returns, so spans
	// are exported synchronously instead of batched.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
		sdktrace.WithIDGenerator(xray.NewIDGenerator()),
	)
	return tp, tp.Shutdown, nil
}

// NewTracerProvider is the fx provider for New; shutdown runs on app stop.
func NewTracerProvider(lc fx.Lifecycle, cfg config.Config) (trace.TracerProvider, error) {
	tp, shutdown, err := New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: shutdown})
	return tp, nil
}

// NewPropagator returns the X-Ray propagator combined with W3C trace context.
func NewPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(xray.Propagator{}, propagation.TraceContext{})
}

// FromLambda continues the trace started by the Lambda service for the
// current invocation, if there is one.
func FromLambda(ctx context.Context, prop propagation.TextMapPropagator) context.Context {
	header, _ := ctx.Value(traceHeader).(string) //nolint:staticcheck // key type is set by aws-lambda-go
	if header == "" {
		header = os.Getenv("_X_AMZN_TRACE_ID")
	}
	if header == "" {
		return ctx
	}
	return prop.Extract(ctx, propagation.MapCarrier{"X-Amzn-Trace-Id": header})
}

func newExporter(ctx context.Context, exporterType string) (sdktrace.SpanExporter, error) {
	switch exporterType {
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "xrayudp", "":
		return xrayudp.NewSpanExporter(ctx)
	default:
		return nil, errors.Newf("unsupported OTEL_EXPORTER: %q (supported: xrayudp, stdout, none)", exporterType)
	}
}

func newResource(ctx context.Context, exporterType, serviceName string) (*resource.Resource, error) {
	base := resource.NewSchemaless(attribute.String("service.name", serviceName))
	if exporterType != "xrayudp" && exporterType != "" {
		return base, nil
	}

	detected, err := lambda.NewResourceDetector().Detect(ctx)
	if err != nil {
		return base, nil //nolint:nilerr // not running on Lambda
	}
	return resource.Merge(detected, base)
}
