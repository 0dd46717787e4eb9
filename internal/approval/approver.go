// Package approval approves ACM domain-validation requests from the approval
// emails ACM sends.
//
// The pipeline is linear: find the confirmation link in the email, fetch the
// approval page, scrape the certificate details from it, check with ACM that
// the certificate is pending validation, then submit the approval form and
// look for the approval phrase in the response.
package approval

import (
	"context"
	"strings"

	"acm-approver/internal/config"
	"acm-approver/internal/logging"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const tracerName = "acm-approver/internal/approval"

// DefaultApprovalPhrase appears on the page returned after a successful approval.
const DefaultApprovalPhrase = "You have approved"

// Outcome tells how an Approve call ended.
type Outcome string

const (
	// OutcomeIgnored means the email carried no confirmation link.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeApproved means the approval was submitted and confirmed.
	OutcomeApproved Outcome = "approved"
	// OutcomeDryRun means every check passed but the form was not submitted.
	OutcomeDryRun Outcome = "dry-run"
)

// Result describes a finished Approve call. Fields past the failing stage are
// left empty.
type Result struct {
	Outcome        Outcome
	URL            string
	Fields         Fields
	CertificateARN string
	Form           *Form
}

// Approver runs the approval pipeline for one email at a time.
type Approver struct {
	browser    *Browser
	certs      CertificateDescriber
	extractor  FieldExtractor
	formAction string
	phrase     string
	dryRun     bool
	logger     *zap.Logger
	tracer     trace.Tracer
}

// Option configures an Approver.
type Option func(*Approver)

// WithExtractor sets how fields are scraped from the approval page.
func WithExtractor(ex FieldExtractor) Option {
	return func(a *Approver) { a.extractor = ex }
}

// WithFormAction only considers forms whose action path ends with path.
func WithFormAction(path string) Option {
	return func(a *Approver) { a.formAction = path }
}

// WithApprovalPhrase sets the text expected after submitting the form.
func WithApprovalPhrase(phrase string) Option {
	return func(a *Approver) { a.phrase = phrase }
}

// WithDryRun stops the pipeline right before the form submission.
func WithDryRun(dryRun bool) Option {
	return func(a *Approver) { a.dryRun = dryRun }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Approver) { a.logger = logger }
}

// WithTracerProvider sets the tracer provider for pipeline spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *Approver) { a.tracer = tp.Tracer(tracerName) }
}

// New creates an Approver. The regex extractor, the first form on the page and
// DefaultApprovalPhrase are used unless overridden.
func New(browser *Browser, certs CertificateDescriber, opts ...Option) *Approver {
	a := &Approver{
		browser:   browser,
		certs:     certs,
		extractor: RegexExtractor{},
		phrase:    DefaultApprovalPhrase,
		logger:    zap.NewNop(),
		tracer:    noop.NewTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FromConfig creates an Approver and its Browser from the environment
// configuration. opts are applied after the configured ones.
func FromConfig(cfg config.Config, certs CertificateDescriber, tp trace.TracerProvider, logger *zap.Logger, opts ...Option) (*Approver, error) {
	ex, err := NewFieldExtractor(cfg.FieldExtractor)
	if err != nil {
		return nil, err
	}

	browser := NewBrowser(
		WithUserAgent(cfg.UserAgent),
		WithRequestTimeout(cfg.HTTPTimeout),
		WithHTTPTracing(tp),
	)
	return New(browser, certs, append([]Option{
		WithExtractor(ex),
		WithFormAction(cfg.ApprovalFormAction),
		WithApprovalPhrase(cfg.ApprovalPhrase),
		WithLogger(logger),
		WithTracerProvider(tp),
	}, opts...)...), nil
}

// Approve approves the certificate request behind the confirmation link in
// email. An email without a confirmation link is not an error.
func (a *Approver) Approve(ctx context.Context, email string) (res Result, err error) {
	ctx, span := a.tracer.Start(ctx, "approval.Approve")
	defer func() {
		span.SetAttributes(attribute.String("approval.outcome", string(res.Outcome)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	log := logging.ForInvocation(ctx, a.logger)

	u, ok := FindConfirmationURL(email)
	if !ok {
		log.Error("confirmation url did not match")
		return Result{Outcome: OutcomeIgnored}, nil
	}
	res.URL = u
	log.Info("confirmation url", zap.String("url", u))

	sess, err := a.browser.NewSession()
	if err != nil {
		return res, err
	}
	defer sess.Close()

	log.Debug("opening confirmation url")
	page, err := sess.Open(ctx, u)
	if err != nil {
		return res, errors.Wrap(err, "failed to open confirmation url")
	}
	log.Debug("opened confirmation url", zap.Stringer("page", page.URL), zap.Int("forms", len(page.Forms)))
	span.AddEvent("page fetched")

	fields, err := ExtractFields(a.extractor, page.Body)
	if err != nil {
		log.Error("couldn't parse confirmation page", zap.Error(err))
		return res, err
	}
	res.Fields = fields
	res.CertificateARN = fields.CertificateARN()
	log.Info("parsed confirmation page",
		zap.String("domain", fields.Domain),
		zap.String("account_id", fields.AccountID),
		zap.String("region", fields.Region),
		zap.String("certificate_id", fields.CertificateID),
	)
	for _, anomaly := range fields.Anomalies() {
		log.Warn("unusual confirmation page field", zap.String("anomaly", anomaly))
	}
	span.SetAttributes(
		attribute.String("acm.domain", fields.Domain),
		attribute.String("acm.certificate_arn", res.CertificateARN),
	)

	status, err := checkPendingValidation(ctx, a.certs, fields)
	log.Debug("described certificate", zap.String("arn", res.CertificateARN), zap.String("status", string(status)))
	if err != nil {
		log.Error("certificate check failed", zap.Error(err))
		return res, err
	}

	form, err := selectForm(page.Forms, a.formAction)
	if err != nil {
		log.Error("no approval form", zap.Error(err))
		return res, err
	}
	res.Form = form

	if a.dryRun {
		log.Info("dry run, confirmation form not submitted",
			zap.String("method", form.Method),
			zap.Stringer("action", form.Action),
		)
		res.Outcome = OutcomeDryRun
		return res, nil
	}

	log.Debug("submitting confirmation form", zap.String("method", form.Method), zap.Stringer("action", form.Action))
	resp, err := sess.Submit(ctx, form)
	if err != nil {
		return res, errors.Wrap(err, "failed to submit confirmation form")
	}
	log.Debug("submitted confirmation form", zap.Int("status", resp.StatusCode))
	span.AddEvent("form submitted")

	if !strings.Contains(resp.Body, a.phrase) {
		log.Error("no confirmation of certificate approval", zap.String("body", resp.Body))
		return res, errors.Wrapf(ErrNotApproved, "domain %s", fields.Domain)
	}

	log.Info("certificate approved", zap.String("domain", fields.Domain))
	res.Outcome = OutcomeApproved
	return res, nil
}
