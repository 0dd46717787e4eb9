package main

import (
	"context"
	"log"
	"time"

	"acm-approver/internal/approval"
	"acm-approver/internal/config"
	"acm-approver/internal/logging"
	"acm-approver/internal/tracing"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const awsConfigTimeout = 10 * time.Second

// newAWSConfig loads the default AWS SDK configuration and instruments it
// for tracing.
func newAWSConfig(tp trace.TracerProvider, prop propagation.TextMapPropagator) (aws.Config, error) {
	ctx, cancel := context.WithTimeout(context.Background(), awsConfigTimeout)
	defer cancel()

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return cfg, err
	}
	otelaws.AppendMiddlewares(&cfg.APIOptions,
		otelaws.WithTracerProvider(tp),
		otelaws.WithTextMapPropagator(prop),
	)
	return cfg, nil
}

// newACMClient creates the ACM client. Each DescribeCertificate call is
// scoped to the region named on the approval page.
func newACMClient(cfg aws.Config) *acm.Client {
	return acm.NewFromConfig(cfg)
}

func newApprover(cfg config.Config, certs *acm.Client, tp trace.TracerProvider, logger *zap.Logger) (*approval.Approver, error) {
	return approval.FromConfig(cfg, certs, tp, logger)
}

func main() {
	var h *handler
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Provide(
			config.Parse,
			logging.New,
			tracing.NewTracerProvider,
			tracing.NewPropagator,
			newAWSConfig,
			newACMClient,
			newApprover,
			newHandler,
		),
		fx.Populate(&h),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("unable to start: %v", err)
	}

	lambda.StartWithOptions(h.Handle, lambda.WithEnableSIGTERM(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = app.Stop(ctx)
	}))
}
