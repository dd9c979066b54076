package codec

import (
	"github.com/c360/semdecode/config"
	"github.com/c360/semdecode/errors"
	"github.com/c360/semdecode/event"
	"github.com/c360/semdecode/lookup"
	"github.com/c360/semdecode/schema"
)

// BytesCodec is the configuration name of the pass-through codec.
const BytesCodec = "bytes"

// BytesDeserializerConfig builds a BytesDeserializer. It has no options; the
// log schema is injected from the application configuration.
type BytesDeserializerConfig struct {
	LogSchema config.LogSchema `json:"-" yaml:"-"`
}

// NewBytesDeserializerConfig creates a config using the given log schema.
func NewBytesDeserializerConfig(ls config.LogSchema) BytesDeserializerConfig {
	return BytesDeserializerConfig{LogSchema: ls}
}

// Build implements DeserializerConfig
func (c BytesDeserializerConfig) Build() (Deserializer, error) {
	key, err := resolveLogSchema(c.LogSchema).MessageKeyPath()
	if err != nil {
		return nil, &errors.BuildError{Codec: BytesCodec, Reason: "invalid message key", Err: err}
	}
	return NewBytesDeserializer(key), nil
}

// OutputType implements DeserializerConfig
func (c BytesDeserializerConfig) OutputType() config.DataType {
	return config.DataTypeLog
}

// SchemaDefinition implements DeserializerConfig
func (c BytesDeserializerConfig) SchemaDefinition(ns config.LogNamespace) *schema.Definition {
	if ns == config.NamespaceModern {
		return schema.NewWithDefaultMetadata(schema.Bytes(), ns).
			WithMeaning(lookup.EventRoot(), schema.MeaningMessage)
	}
	return schema.EmptyLegacyNamespace().
		WithEventField(messageKeyOrDefault(c.LogSchema), schema.Bytes(), schema.MeaningMessage)
}

// Validate implements DeserializerConfig
func (c BytesDeserializerConfig) Validate() error {
	if _, err := resolveLogSchema(c.LogSchema).MessageKeyPath(); err != nil {
		return errors.WrapInvalid(err, "BytesDeserializerConfig", "Validate", "resolve message key")
	}
	return nil
}

// BytesDeserializer passes payloads through untouched: each payload becomes
// one event holding the payload as a byte string. It never fails.
type BytesDeserializer struct {
	messageKey lookup.ValuePath
}

// NewBytesDeserializer creates a deserializer that stores Legacy payloads at
// messageKey. The key is fixed for the lifetime of the deserializer; an empty
// key selects the default message key.
func NewBytesDeserializer(messageKey lookup.ValuePath) *BytesDeserializer {
	if messageKey.IsRoot() {
		messageKey = lookup.ValuePath{lookup.FieldSegment(config.DefaultMessageKey)}
	}
	return &BytesDeserializer{messageKey: append(lookup.ValuePath{}, messageKey...)}
}

// MessageKey returns the Legacy message key.
func (d *BytesDeserializer) MessageKey() lookup.ValuePath {
	return append(lookup.ValuePath{}, d.messageKey...)
}

// Parse implements Deserializer. It always returns exactly one event.
func (d *BytesDeserializer) Parse(payload []byte, ns config.LogNamespace) ([]event.Event, error) {
	return []event.Event{d.ParseSingle(payload, ns)}, nil
}

// ParseSingle decodes payload into its single event. The event owns a copy of
// payload.
func (d *BytesDeserializer) ParseSingle(payload []byte, ns config.LogNamespace) *event.LogEvent {
	data := append([]byte{}, payload...)
	if ns == config.NamespaceModern {
		return event.NewLogFromData(data)
	}
	log := event.NewLog()
	log.Insert(d.messageKey, data)
	return log
}
