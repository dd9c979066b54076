// Package component provides the infrastructure the decode processor is built
// on: discovery metadata, lifecycle, ports, a factory registry and a schema
// registry.
//
// # Registration
//
// Component packages export a Register(*Registry) error function and the
// binary calls it explicitly. There is no init() self-registration.
//
//	registry := component.NewRegistry()
//	if err := decoder.Register(registry); err != nil {
//		return err
//	}
//	comp, err := registry.CreateComponent("decoder", "decoder", rawConfig, component.Dependencies{
//		NATSClient:      client,
//		MetricsRegistry: metrics,
//		Logger:          logger,
//	})
//
// Factories parse configuration only. Subscriptions and other I/O happen in
// Start.
//
// # Lifecycle
//
// LifecycleComponent adds Initialize, Start(ctx) and Stop(timeout) to
// Discoverable. Start honours a done context, a second Start fails with
// errors.ErrAlreadyStarted and Stop is idempotent. StandardLifecycleTests
// checks these rules for any implementation.
//
// # Schemas
//
// SchemaRegistry maps an output subject to the schema.Definition of the events
// published on it. Re-registering an identical definition is a no-op, so a
// restarted component registers exactly once; a different definition on the
// same subject is rejected with errors.ErrSchemaMismatch.
package component
