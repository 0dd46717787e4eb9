// Package config reads the approver's settings from the Lambda environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap/zapcore"
)

// Config holds every setting of the approver. All variables are optional.
type Config struct {
	ServiceName    string        `env:"SERVICE_NAME" envDefault:"acm-approver" validate:"required"`
	LogLevel       zapcore.Level `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool          `env:"LOG_DEVELOPMENT" envDefault:"false"`
	OtelExporter   string        `env:"OTEL_EXPORTER" envDefault:"xrayudp" validate:"oneof=xrayudp stdout none"`

	// FieldExtractor selects how the approval page is scraped: "regex" or "html".
	FieldExtractor string `env:"FIELD_EXTRACTOR" envDefault:"regex" validate:"oneof=regex html"`
	// ApprovalFormAction, when set, restricts form selection to forms whose
	// action path ends with this value. Empty means the first form on the page.
	ApprovalFormAction string `env:"APPROVAL_FORM_ACTION"`
	ApprovalPhrase     string `env:"APPROVAL_PHRASE" envDefault:"You have approved" validate:"required"`

	// HTTPTimeout bounds each request of the browsing session. Zero leaves
	// requests bounded only by the invocation deadline.
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"0s" validate:"gte=0"`
	UserAgent   string        `env:"USER_AGENT" envDefault:"Mozilla/5.0 (compatible; acm-approver)"`
}

// Parse reads the configuration from the process environment.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to parse environment")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}
