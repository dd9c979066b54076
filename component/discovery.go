package component

import (
	"time"
)

// Discoverable is implemented by every component the CLI can run. It exposes
// what the component is, where it reads and writes, and how it is doing.
type Discoverable interface {
	Meta() Metadata
	InputPorts() []Port
	OutputPorts() []Port
	ConfigSchema() ConfigSchema
	Health() HealthStatus
	DataFlow() FlowMetrics
}

// Metadata identifies a component. Type is "processor" for decoders.
type Metadata struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// ConfigSchema lists the options a component accepts. It is descriptive
// only; each component's own config parsing does the validation.
type ConfigSchema struct {
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required"`
}

// PropertySchema documents one option. Type is one of string, int, bool,
// enum, array, object or ports; Category is basic or advanced.
type PropertySchema struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Category    string   `json:"category,omitempty"`
}

// HealthStatus is a point-in-time view of a component. ErrorCount covers
// every failure since creation, decode and publish alike.
type HealthStatus struct {
	Healthy    bool          `json:"healthy"`
	LastCheck  time.Time     `json:"last_check"`
	ErrorCount int           `json:"error_count"`
	LastError  string        `json:"last_error,omitempty"`
	Uptime     time.Duration `json:"uptime"`
}

// FlowMetrics are averages since the last Start. ErrorRate is the share of
// received payloads that failed to decode.
type FlowMetrics struct {
	MessagesPerSecond float64   `json:"messages_per_second"`
	EventsPerSecond   float64   `json:"events_per_second"`
	BytesPerSecond    float64   `json:"bytes_per_second"`
	ErrorRate         float64   `json:"error_rate"`
	LastActivity      time.Time `json:"last_activity"`
}
