// Package semdecode is a pluggable format-decoding layer: it turns raw byte
// payloads into structured log events.
//
// # Layout
//
//   - codec: the Deserializer and DeserializerConfig contracts, the bytes
//     pass-through codec, the JSON codec and the codec tagged union
//   - event: log events, their value model and standard source metadata
//   - schema: schema definitions, JSON Schema rendering and validation
//   - lookup: value and target paths into events
//   - config: application configuration, log schema and log namespaces
//   - errors: classified errors, DecodeError and BuildError
//   - processor/decoder: NATS component that decodes payloads and publishes
//     CloudEvents
//   - component, natsclient, metric, health: component lifecycle, transport,
//     Prometheus metrics and health aggregation
//   - cmd/semdecode: the command-line tool
//
// # Namespaces
//
// Every decode call names a LogNamespace. Legacy events are objects with the
// payload under the configured message key. Modern events hold the decoded
// value at the root and keep source information in metadata.
//
//	dc, err := codec.Config{Codec: codec.JSONCodec}.Resolve(config.DefaultLogSchema())
//	if err != nil {
//	    return err
//	}
//	d, err := dc.Build()
//	if err != nil {
//	    return err
//	}
//	events, err := d.Parse(payload, config.NamespaceModern)
//
// The schema a codec declares for a namespace, dc.SchemaDefinition(ns),
// describes every event its deserializer produces for that namespace.
package semdecode
