package main

import (
	"context"

	"acm-approver/internal/approval"
	"acm-approver/internal/logging"
	"acm-approver/internal/notification"
	"acm-approver/internal/tracing"
	"github.com/aws/aws-lambda-go/events"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

// emailApprover is what the handler needs from approval.Approver.
type emailApprover interface {
	Approve(ctx context.Context, email string) (approval.Result, error)
}

type handler struct {
	approver emailApprover
	logger   *zap.Logger
	prop     propagation.TextMapPropagator
}

func newHandler(approver *approval.Approver, logger *zap.Logger, prop propagation.TextMapPropagator) *handler {
	return &handler{approver: approver, logger: logger, prop: prop}
}

// Handle processes one SES email delivered through SNS. A returned error marks
// the invocation as failed.
func (h *handler) Handle(ctx context.Context, event events.SNSEvent) error {
	ctx = tracing.FromLambda(ctx, h.prop)
	log := logging.ForInvocation(ctx, h.logger)

	if len(event.Records) > 0 {
		log.Debug("received sns message", zap.String("message", event.Records[0].SNS.Message))
	}

	msg, err := notification.Unwrap(event)
	if err != nil {
		log.Error("failed to unwrap notification", zap.Error(err))
		return err
	}
	log.Info("received email",
		zap.String("source", msg.Mail.Source),
		zap.String("subject", msg.Subject()),
		zap.String("message_id", msg.Mail.MessageID),
	)

	res, err := h.approver.Approve(ctx, msg.Content)
	if err != nil {
		log.Error("approval failed", zap.Error(err))
		return err
	}

	log.Debug("approval finished", zap.String("outcome", string(res.Outcome)))
	return nil
}
