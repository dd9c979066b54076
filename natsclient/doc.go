// Package natsclient wraps a core NATS connection with a circuit breaker,
// reconnect handling and context-aware publish/subscribe.
//
// The decode processor is the only consumer: it subscribes to raw payload
// subjects and publishes encoded events. JetStream is not used.
//
// # Usage
//
//	client, err := natsclient.NewClient(cfg.NATS.URLs, natsclient.FromConfig(cfg.NATS)...)
//	if err != nil {
//	    return err
//	}
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	err = client.Subscribe(ctx, "logs.raw", func(msgCtx context.Context, data []byte) {
//	    // one message at a time, in publish order
//	})
//	err = client.Publish(ctx, "logs.decoded", payload)
//
// # Circuit breaker
//
// Every failed Connect counts towards a threshold (default 5). Reaching it
// opens the circuit: Connect fails fast with ErrCircuitOpen until the backoff
// (starting at one second, doubling per round, capped by WithMaxBackoff)
// elapses and the circuit half-opens. A successful connect or reconnect resets
// the breaker.
//
// # Observability
//
// The client logs through log/slog (WithLogger) and, when given
// WithMetrics, records connection state and reconnects in the core metrics.
// WithStatusListener observes every status transition, including the circuit
// opening.
//
// # Testing
//
// NewTestClient starts a NATS server in a container with testcontainers-go
// and returns a connected client. Tests using it carry the integration build
// tag.
package natsclient
