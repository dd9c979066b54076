// Package metric provides Prometheus metrics for semdecode processes and an
// HTTP server that exposes them.
//
// A MetricsRegistry owns a private prometheus.Registry holding the core
// metrics (component running state, message counters, processing duration,
// errors by class, NATS connection state) plus the Go runtime collectors. Components
// register their own series through the MetricsRegistrar interface, keyed by
// component name so that a component can drop everything it registered with
// UnregisterService when it stops.
//
// DecodeMetrics is the per-component set used by the decode processor:
//
//	registry := metric.NewMetricsRegistry()
//	dm, err := metric.NewDecodeMetrics(registry, "decoder")
//	...
//	start := time.Now()
//	events, err := d.Parse(payload, ns)
//	dm.Observe("json", len(payload), len(events), err != nil, time.Since(start))
//
// Series are labelled by codec and carry the component as a constant label.
// Payloads that decode to zero events are counted separately from failures.
//
// # Serving
//
//	server := metric.NewServer(9090, "/metrics", registry)
//	if err := server.Start(); err != nil {
//	    return err
//	}
//	defer server.Stop(context.Background())
//
// Start binds synchronously and serves in the background. The server also
// answers /health with 200 OK.
package metric
