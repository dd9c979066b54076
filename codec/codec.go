package codec

import (
	"github.com/c360/semdecode/config"
	"github.com/c360/semdecode/event"
	"github.com/c360/semdecode/lookup"
	"github.com/c360/semdecode/schema"
)

// Deserializer turns one raw payload into an ordered sequence of events.
//
// Implementations hold no per-call state and may be shared by any number of
// goroutines. Parse must not modify payload or retain it after returning.
type Deserializer interface {
	// Parse decodes payload, laying events out for ns. A malformed payload
	// yields a *errors.DecodeError; the returned events are in source order.
	Parse(payload []byte, ns config.LogNamespace) ([]event.Event, error)
}

// DeserializerConfig is the declarative, immutable description of a
// Deserializer. It is resolved once at pipeline construction.
type DeserializerConfig interface {
	// Build creates the live Deserializer. It does not fail for a config that
	// passed Validate; failures are *errors.BuildError.
	Build() (Deserializer, error)

	// OutputType reports the event category the Deserializer produces.
	OutputType() config.DataType

	// SchemaDefinition declares the shape of every event Parse produces for ns.
	// Callers must pass the same namespace they later pass to Parse.
	SchemaDefinition(ns config.LogNamespace) *schema.Definition

	// Validate checks the configuration at load time.
	Validate() error
}

// resolveLogSchema fills empty keys so a zero LogSchema behaves as the default.
func resolveLogSchema(ls config.LogSchema) config.LogSchema {
	return ls.WithDefaults()
}

// messageKeyOrDefault resolves the message key for schema declaration. An
// invalid key falls back to the default; Validate and Build report it.
func messageKeyOrDefault(ls config.LogSchema) lookup.ValuePath {
	path, err := resolveLogSchema(ls).MessageKeyPath()
	if err != nil {
		return lookup.ValuePath{lookup.FieldSegment(config.DefaultMessageKey)}
	}
	return path
}
