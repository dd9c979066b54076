package metric

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semdecode/errors"
)

func findFamily(t *testing.T, registry *MetricsRegistry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	require.NotNil(t, registry)
	assert.NotNil(t, registry.PrometheusRegistry())
	assert.Same(t, registry.Metrics, registry.CoreMetrics())

	registry.CoreMetrics().RecordNATSStatus(true)
	mf := findFamily(t, registry, "semdecode_nats_connected")
	require.NotNil(t, mf)
	assert.Equal(t, 1.0, mf.GetMetric()[0].GetGauge().GetValue())

	assert.NotNil(t, findFamily(t, registry, "go_goroutines"), "runtime collectors must be registered")
}

func TestMetricsRegistry_Register(t *testing.T) {
	tests := []struct {
		name     string
		register func(r *MetricsRegistry) error
		family   string
	}{
		{
			name: "counter",
			register: func(r *MetricsRegistry) error {
				c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter", Help: "A test counter"})
				c.Inc()
				return r.RegisterCounter("test-service", "test_counter", c)
			},
			family: "test_counter",
		},
		{
			name: "gauge",
			register: func(r *MetricsRegistry) error {
				g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_gauge", Help: "A test gauge"})
				g.Set(42)
				return r.RegisterGauge("test-service", "test_gauge", g)
			},
			family: "test_gauge",
		},
		{
			name: "counter vec",
			register: func(r *MetricsRegistry) error {
				v := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_counter_vec", Help: "A vec"}, []string{"l"})
				v.WithLabelValues("a").Inc()
				return r.RegisterCounterVec("test-service", "test_counter_vec", v)
			},
			family: "test_counter_vec",
		},
		{
			name: "histogram vec",
			register: func(r *MetricsRegistry) error {
				v := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_hist_vec", Help: "A vec"}, []string{"l"})
				v.WithLabelValues("a").Observe(0.5)
				return r.RegisterHistogramVec("test-service", "test_hist_vec", v)
			},
			family: "test_hist_vec",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewMetricsRegistry()
			require.NoError(t, tt.register(registry))
			assert.NotNil(t, findFamily(t, registry, tt.family))
		})
	}
}

func TestMetricsRegistry_PreventDuplicateRegistration(t *testing.T) {
	registry := NewMetricsRegistry()

	counter1 := prometheus.NewCounter(prometheus.CounterOpts{Name: "duplicate_counter", Help: "Counter"})
	counter2 := prometheus.NewCounter(prometheus.CounterOpts{Name: "duplicate_counter", Help: "Counter"})

	require.NoError(t, registry.RegisterCounter("service1", "duplicate_counter", counter1))

	err := registry.RegisterCounter("service1", "duplicate_counter", counter2)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.Contains(t, err.Error(), "already registered")

	// Same prometheus name under another service collides in prometheus itself.
	err = registry.RegisterCounter("service2", "duplicate_counter", counter2)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestMetricsRegistry_Unregister(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "unregister_counter", Help: "Counter"})
	require.NoError(t, registry.RegisterCounter("svc", "unregister_counter", counter))

	assert.True(t, registry.Unregister("svc", "unregister_counter"))
	assert.False(t, registry.Unregister("svc", "unregister_counter"))
	assert.Nil(t, findFamily(t, registry, "unregister_counter"))

	// The name is free again.
	assert.NoError(t, registry.RegisterCounter("svc", "unregister_counter", counter))
}

func TestMetricsRegistry_UnregisterService(t *testing.T) {
	registry := NewMetricsRegistry()

	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("svc_counter_%d", i)
		c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: "Counter"})
		require.NoError(t, registry.RegisterCounter("svc", name, c))
	}
	other := prometheus.NewCounter(prometheus.CounterOpts{Name: "svc2_counter", Help: "Counter"})
	require.NoError(t, registry.RegisterCounter("svc2", "svc2_counter", other))

	assert.Equal(t, 3, registry.UnregisterService("svc"))
	assert.Equal(t, 0, registry.UnregisterService("svc"))
	assert.True(t, registry.Unregister("svc2", "svc2_counter"))
}

func TestMetricsRegistry_ConcurrentRegistration(t *testing.T) {
	registry := NewMetricsRegistry()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("concurrent_counter_%d", i)
			c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: "Counter"})
			errs <- registry.RegisterCounter("svc", name, c)
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestMetrics_Record(t *testing.T) {
	registry := NewMetricsRegistry()
	m := registry.CoreMetrics()

	m.RecordComponentRunning("decoder", true)
	m.RecordMessageReceived("decoder", "logs.raw")
	m.RecordMessageReceived("decoder", "logs.raw")
	m.RecordMessagePublished("decoder", "logs.decoded")
	m.RecordProcessingDuration("decoder", "decode", 10*time.Millisecond)
	m.RecordError("decoder", "invalid")
	m.RecordNATSReconnect()

	received := findFamily(t, registry, "semdecode_messages_received_total")
	require.NotNil(t, received)
	assert.Equal(t, 2.0, received.GetMetric()[0].GetCounter().GetValue())

	running := findFamily(t, registry, "semdecode_component_running")
	require.NotNil(t, running)
	assert.Equal(t, 1.0, running.GetMetric()[0].GetGauge().GetValue())

	errs := findFamily(t, registry, "semdecode_errors_total")
	require.NotNil(t, errs)
	assert.Equal(t, "class", errs.GetMetric()[0].GetLabel()[0].GetName())

	duration := findFamily(t, registry, "semdecode_processing_duration_seconds")
	require.NotNil(t, duration)
	assert.Equal(t, uint64(1), duration.GetMetric()[0].GetHistogram().GetSampleCount())

	reconnects := findFamily(t, registry, "semdecode_nats_reconnects_total")
	require.NotNil(t, reconnects)
	assert.Equal(t, 1.0, reconnects.GetMetric()[0].GetCounter().GetValue())
}
