package events_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/reposeed/internal/config"
	"github.com/TheMichaelB/reposeed/internal/events"
)

func TestNewLogger(t *testing.T) {
	cfg := &config.LogConfig{
		Level:  "debug",
		Format: "json",
	}

	logger, err := events.NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLoggerWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reposeed.log")
	cfg := &config.LogConfig{Level: "info", Format: "text", File: path}

	logger, err := events.NewLogger(cfg)
	require.NoError(t, err)

	logger.Info("written to file")
	assert.FileExists(t, path)
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.InfoLevel, "json", &buf)

	logger.WithFields(map[string]interface{}{
		"template": "service-layout",
		"files":    3,
	}).Info("multi-field test")

	output := buf.String()
	assert.Contains(t, output, `"template":"service-layout"`)
	assert.Contains(t, output, `"files":3`)
	assert.Contains(t, output, `"msg":"multi-field test"`)
	assert.Contains(t, output, `"level":"info"`)
}

func TestLoggerWithFieldDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := events.NewTestLogger(events.InfoLevel, "json", &buf)

	_ = base.WithField("component", "scanner")
	base.Info("plain")

	assert.NotContains(t, buf.String(), "scanner")
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  events.LogLevel
		msgLevel  events.LogLevel
		shouldLog bool
	}{
		{"debug logger, debug message", events.DebugLevel, events.DebugLevel, true},
		{"debug logger, info message", events.DebugLevel, events.InfoLevel, true},
		{"info logger, debug message", events.InfoLevel, events.DebugLevel, false},
		{"info logger, info message", events.InfoLevel, events.InfoLevel, true},
		{"error logger, warn message", events.ErrorLevel, events.WarnLevel, false},
		{"error logger, error message", events.ErrorLevel, events.ErrorLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := events.NewTestLogger(tt.logLevel, "text", &buf)

			switch tt.msgLevel {
			case events.DebugLevel:
				logger.Debug("test debug")
			case events.InfoLevel:
				logger.Info("test info")
			case events.WarnLevel:
				logger.Warn("test warn")
			case events.ErrorLevel:
				logger.Error("test error")
			}

			if tt.shouldLog {
				assert.NotEmpty(t, buf.String())
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.InfoLevel, "text", &buf)

	logger.WithField("path", "docs/readme.md").Warn("skipping file")

	output := buf.String()
	assert.Contains(t, output, "[WARN]")
	assert.Contains(t, output, "skipping file")
	assert.Contains(t, output, "path=docs/readme.md")
	assert.True(t, strings.HasSuffix(output, "\n"))
}

func TestLoggerWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.InfoLevel, "json", &buf)

	logger.WithError(assert.AnError).Error("operation failed")

	output := buf.String()
	assert.Contains(t, output, `"error":"assert.AnError general error for testing"`)
	assert.Contains(t, output, `"msg":"operation failed"`)
	assert.Contains(t, output, `"level":"error"`)
}

func TestLoggerEscapesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.InfoLevel, "json", &buf)

	logger.WithField("content", "line1\n\"quoted\"").Info("escape")

	assert.Contains(t, buf.String(), `"content":"line1\n\"quoted\""`)
}

func TestDiscard(t *testing.T) {
	logger := events.Discard()
	assert.NotPanics(t, func() {
		logger.WithField("k", "v").Error("dropped")
	})
}
