// Package logging builds the zap logger and adds per-invocation fields to it.
package logging

import (
	"context"

	"acm-approver/internal/config"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// New creates the process logger. Production config (JSON to stderr) unless
// LOG_DEVELOPMENT is set.
func New(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.LogDevelopment {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	zcfg.Sampling = nil

	logger, err := zcfg.Build(zap.Fields(zap.String("service", cfg.ServiceName)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}
	return logger, nil
}

// ForInvocation returns logger annotated with the Lambda request id and the
// active trace, when the context carries them.
func ForInvocation(ctx context.Context, logger *zap.Logger) *zap.Logger {
	var fields []zap.Field
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		fields = append(fields, zap.String("aws_request_id", lc.AwsRequestID))
	}
	fields = append(fields, TraceFields(ctx)...)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// TraceFields extracts trace_id and span_id from the context for log correlation.
func TraceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}

