package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric exported by this module.
const Namespace = "semdecode"

// Metrics holds the series every component reports into, labelled by
// component name. Codec-level series live in DecodeMetrics.
type Metrics struct {
	ComponentRunning   *prometheus.GaugeVec
	MessagesReceived   *prometheus.CounterVec
	MessagesPublished  *prometheus.CounterVec
	ProcessingDuration *prometheus.HistogramVec
	ErrorsTotal        *prometheus.CounterVec

	NATSConnected  prometheus.Gauge
	NATSReconnects prometheus.Counter
}

func counterVec(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

// NewMetrics creates the core metrics. They are not registered.
func NewMetrics() *Metrics {
	return &Metrics{
		ComponentRunning: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "component",
			Name:      "running",
			Help:      "1 while the component is started, 0 otherwise",
		}, []string{"component"}),

		MessagesReceived: counterVec("messages", "received_total",
			"Raw payloads received per input subject", "component", "subject"),
		MessagesPublished: counterVec("messages", "published_total",
			"Decoded events published per output subject", "component", "subject"),
		ErrorsTotal: counterVec("errors", "total",
			"Errors by class (transient, invalid, fatal)", "component", "class"),

		ProcessingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "processing",
			Name:      "duration_seconds",
			Help:      "Time spent per processing step",
			Buckets:   prometheus.DefBuckets,
		}, []string{"component", "operation"}),

		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "nats",
			Name:      "connected",
			Help:      "1 while the NATS connection is up",
		}),
		NATSReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "nats",
			Name:      "reconnects_total",
			Help:      "Reconnections after a lost NATS connection",
		}),
	}
}

func (c *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.ComponentRunning,
		c.MessagesReceived,
		c.MessagesPublished,
		c.ProcessingDuration,
		c.ErrorsTotal,
		c.NATSConnected,
		c.NATSReconnects,
	}
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

func (c *Metrics) RecordComponentRunning(component string, running bool) {
	c.ComponentRunning.WithLabelValues(component).Set(boolGauge(running))
}

func (c *Metrics) RecordMessageReceived(component, subject string) {
	c.MessagesReceived.WithLabelValues(component, subject).Inc()
}

func (c *Metrics) RecordMessagePublished(component, subject string) {
	c.MessagesPublished.WithLabelValues(component, subject).Inc()
}

func (c *Metrics) RecordProcessingDuration(component, operation string, d time.Duration) {
	c.ProcessingDuration.WithLabelValues(component, operation).Observe(d.Seconds())
}

// RecordError counts an error under its class as reported by errors.Classify.
func (c *Metrics) RecordError(component, class string) {
	c.ErrorsTotal.WithLabelValues(component, class).Inc()
}

func (c *Metrics) RecordNATSStatus(connected bool) {
	c.NATSConnected.Set(boolGauge(connected))
}

func (c *Metrics) RecordNATSReconnect() {
	c.NATSReconnects.Inc()
}
