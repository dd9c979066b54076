package component

import (
	"context"
	"log/slog"

	"github.com/c360/semdecode/metric"
	"github.com/c360/semdecode/natsclient"
)

// Transport is the publish/subscribe surface components use.
// *natsclient.Client satisfies it; tests substitute testutil.MockNATSClient.
type Transport interface {
	Subscribe(ctx context.Context, subject string, handler natsclient.Handler) error
	Publish(ctx context.Context, subject string, data []byte) error
}

// Dependencies provides all external dependencies needed by components.
type Dependencies struct {
	NATSClient      Transport               // Message transport (can be nil for creation-only use)
	MetricsRegistry *metric.MetricsRegistry // Metrics registry for Prometheus (can be nil)
	Logger          *slog.Logger            // Structured logger (can be nil, defaults to slog.Default())
	Schemas         *SchemaRegistry         // Shared schema registry (can be nil)
}

// GetLogger returns the configured logger or a default logger if none is provided
func (d *Dependencies) GetLogger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// GetLoggerWithComponent returns a logger configured with component context
func (d *Dependencies) GetLoggerWithComponent(componentName string) *slog.Logger {
	return d.GetLogger().With("component", componentName)
}
