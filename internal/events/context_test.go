package events_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TheMichaelB/reposeed/internal/events"
)

func TestFromContext(t *testing.T) {
	// Should return default logger when none in context
	logger := events.FromContext(context.Background())
	assert.NotNil(t, logger)
}

func TestWithLogger(t *testing.T) {
	logger := events.Discard()

	ctx := events.WithLogger(context.Background(), logger)

	assert.Same(t, logger, events.FromContext(ctx))
}

func TestWithTemplate(t *testing.T) {
	var buf bytes.Buffer
	ctx := events.WithLogger(context.Background(), events.NewTestLogger(events.InfoLevel, "json", &buf))

	ctx = events.WithTemplate(ctx, "go-service")

	assert.Equal(t, "go-service", events.GetTemplate(ctx))

	events.FromContext(ctx).Info("tagged")
	assert.Contains(t, buf.String(), `"template":"go-service"`)
}

func TestGetTemplateMissing(t *testing.T) {
	assert.Empty(t, events.GetTemplate(context.Background()))
}
