// Package health aggregates the health of the components in a semdecode
// process.
//
// A Monitor holds one Check per component. Checks are evaluated when the
// aggregate is requested, and the aggregate follows three states:
//
//   - any unhealthy component makes the process unhealthy
//   - otherwise any degraded component makes it degraded
//   - otherwise it is healthy
//
// Serve mode registers a check for the NATS connection and one for the decode
// processor, and mounts Monitor.Handler at /health on the metrics server:
//
//	monitor := health.NewMonitor("semdecode")
//	monitor.Register("decoder", func() health.Status {
//	    return health.FromComponent("decoder", proc.Health(), proc.DataFlow(), 0.5)
//	})
//	server.SetHealthHandler(monitor.Handler())
//
// FromComponent sanitizes the component's last error before it is exposed:
// credentials, URLs, file paths, IP addresses and ports are replaced with
// placeholders.
package health
