// Package schema declares the shape of decoded events.
//
// A Definition pairs a Kind for the event value with a Kind for the event
// metadata, and tags well-known locations with semantic meanings such as
// "message" or "timestamp". Components return a Definition once, when a
// pipeline is built, so downstream stages can check type compatibility without
// inspecting payloads.
//
// # Kinds
//
// A Kind is a union of primitive types (bytes, integer, float, boolean,
// timestamp, regex, null, undefined) plus optional object and array
// collections:
//
//	schema.Bytes()                         // a byte string
//	schema.Bytes().Or(schema.Null())       // a byte string or null
//	schema.Object(map[string]schema.Kind{  // a closed object
//	    "message": schema.Bytes(),
//	})
//	schema.JSON()                          // any JSON value
//
// Undefined in a field's kind marks the field optional.
//
// # Namespaces
//
// Definitions are built per log namespace:
//
//	// Legacy: an object with a message field
//	def := schema.EmptyLegacyNamespace().
//	    WithEventField(messageKey, schema.Bytes(), schema.MeaningMessage)
//
//	// Modern: the event value itself is the message
//	def := schema.NewWithDefaultMetadata(schema.Bytes(), config.NamespaceModern).
//	    WithMeaning(lookup.EventRoot(), schema.MeaningMessage)
//
// # Checking Events
//
// Definition.Conforms checks a decoded event in-process. Definition.JSONSchema
// renders a draft-07 JSON Schema of the encoded event, and Validator checks
// encoded events against it with gojsonschema.
package schema
