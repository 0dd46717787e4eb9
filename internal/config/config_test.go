package config_test

import (
	"testing"
	"time"

	"acm-approver/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, "acm-approver", cfg.ServiceName)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "xrayudp", cfg.OtelExporter)
	assert.Equal(t, "regex", cfg.FieldExtractor)
	assert.Equal(t, "You have approved", cfg.ApprovalPhrase)
	assert.Empty(t, cfg.ApprovalFormAction)
	assert.Zero(t, cfg.HTTPTimeout)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OTEL_EXPORTER", "none")
	t.Setenv("FIELD_EXTRACTOR", "html")
	t.Setenv("APPROVAL_FORM_ACTION", "/approvals")
	t.Setenv("HTTP_TIMEOUT", "15s")

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "none", cfg.OtelExporter)
	assert.Equal(t, "html", cfg.FieldExtractor)
	assert.Equal(t, "/approvals", cfg.ApprovalFormAction)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
}

func TestParseRejectsInvalid(t *testing.T) {
	t.Run("unknown exporter", func(t *testing.T) {
		t.Setenv("OTEL_EXPORTER", "jaeger")
		_, err := config.Parse()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("unknown extractor", func(t *testing.T) {
		t.Setenv("FIELD_EXTRACTOR", "xpath")
		_, err := config.Parse()
		require.Error(t, err)
	})

	t.Run("bad log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "loud")
		_, err := config.Parse()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse environment")
	})
}
