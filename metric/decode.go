package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DecodeMetrics tracks payload decoding per component and codec.
type DecodeMetrics struct {
	Payloads *prometheus.CounterVec
	Events   *prometheus.CounterVec
	Failures *prometheus.CounterVec
	Bytes    *prometheus.CounterVec
	Empty    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewDecodeMetrics creates and registers decode metrics for a component.
// Registering twice for the same component fails with a duplicate error.
func NewDecodeMetrics(registrar MetricsRegistrar, component string) (*DecodeMetrics, error) {
	m := &DecodeMetrics{
		Payloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Subsystem:   "decode",
			Name:        "payloads_total",
			Help:        "Payloads handed to the decoder",
			ConstLabels: prometheus.Labels{"component": component},
		}, []string{"codec"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Subsystem:   "decode",
			Name:        "events_total",
			Help:        "Events produced by the decoder",
			ConstLabels: prometheus.Labels{"component": component},
		}, []string{"codec"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Subsystem:   "decode",
			Name:        "failures_total",
			Help:        "Payloads the decoder rejected",
			ConstLabels: prometheus.Labels{"component": component},
		}, []string{"codec"}),
		Bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Subsystem:   "decode",
			Name:        "bytes_total",
			Help:        "Payload bytes handed to the decoder",
			ConstLabels: prometheus.Labels{"component": component},
		}, []string{"codec"}),
		Empty: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Subsystem:   "decode",
			Name:        "empty_total",
			Help:        "Payloads that decoded to zero events",
			ConstLabels: prometheus.Labels{"component": component},
		}, []string{"codec"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   Namespace,
			Subsystem:   "decode",
			Name:        "duration_seconds",
			Help:        "Time spent decoding one payload",
			Buckets:     []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			ConstLabels: prometheus.Labels{"component": component},
		}, []string{"codec"}),
	}

	vecs := map[string]*prometheus.CounterVec{
		"decode_payloads_total": m.Payloads,
		"decode_events_total":   m.Events,
		"decode_failures_total": m.Failures,
		"decode_bytes_total":    m.Bytes,
		"decode_empty_total":    m.Empty,
	}
	for name, vec := range vecs {
		if err := registrar.RegisterCounterVec(component, name, vec); err != nil {
			return nil, err
		}
	}
	if err := registrar.RegisterHistogramVec(component, "decode_duration_seconds", m.Duration); err != nil {
		return nil, err
	}
	return m, nil
}

// Observe records one Parse call. events is ignored when failed is true.
func (m *DecodeMetrics) Observe(codec string, size, events int, failed bool, duration time.Duration) {
	m.Payloads.WithLabelValues(codec).Inc()
	m.Bytes.WithLabelValues(codec).Add(float64(size))
	m.Duration.WithLabelValues(codec).Observe(duration.Seconds())

	switch {
	case failed:
		m.Failures.WithLabelValues(codec).Inc()
	case events == 0:
		m.Empty.WithLabelValues(codec).Inc()
	default:
		m.Events.WithLabelValues(codec).Add(float64(events))
	}
}
