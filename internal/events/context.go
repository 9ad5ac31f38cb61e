package events

import (
	"context"
	"os"
	"sync"
)

type contextKey int

const (
	loggerKey contextKey = iota
	templateKey
)

// FromContext extracts logger from context.
func FromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*Logger); ok {
			return l
		}
	}
	return defaultLogger
}

// WithLogger adds logger to context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithTemplate adds a template name to context and tags the logger with it.
func WithTemplate(ctx context.Context, name string) context.Context {
	logger := FromContext(ctx).WithField("template", name)
	ctx = context.WithValue(ctx, templateKey, name)
	return WithLogger(ctx, logger)
}

// GetTemplate retrieves the template name from context.
func GetTemplate(ctx context.Context) string {
	if name, ok := ctx.Value(templateKey).(string); ok {
		return name
	}
	return ""
}

var defaultLogger = &Logger{
	mu:     &sync.Mutex{},
	level:  InfoLevel,
	format: "text",
	output: os.Stderr,
	fields: make(map[string]interface{}),
}

// SetDefault sets the default logger.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
