package config

import (
	"fmt"

	"github.com/c360/semdecode/lookup"
)

// Default well-known field names for Legacy namespace events.
const (
	DefaultMessageKey    = "message"
	DefaultTimestampKey  = "timestamp"
	DefaultHostKey       = "host"
	DefaultSourceTypeKey = "source_type"
)

// LogSchema names the well-known fields of Legacy namespace log events.
// It is resolved once from configuration and injected into codecs; codecs never
// look it up while decoding.
type LogSchema struct {
	MessageKey    string `json:"message_key,omitempty"`
	TimestampKey  string `json:"timestamp_key,omitempty"`
	HostKey       string `json:"host_key,omitempty"`
	SourceTypeKey string `json:"source_type_key,omitempty"`
}

// DefaultLogSchema returns the stock field names.
func DefaultLogSchema() LogSchema {
	return LogSchema{
		MessageKey:    DefaultMessageKey,
		TimestampKey:  DefaultTimestampKey,
		HostKey:       DefaultHostKey,
		SourceTypeKey: DefaultSourceTypeKey,
	}
}

// WithDefaults returns a copy with every empty key replaced by its default.
func (ls LogSchema) WithDefaults() LogSchema {
	def := DefaultLogSchema()
	if ls.MessageKey == "" {
		ls.MessageKey = def.MessageKey
	}
	if ls.TimestampKey == "" {
		ls.TimestampKey = def.TimestampKey
	}
	if ls.HostKey == "" {
		ls.HostKey = def.HostKey
	}
	if ls.SourceTypeKey == "" {
		ls.SourceTypeKey = def.SourceTypeKey
	}
	return ls
}

// Validate checks that every key parses as a non-root value path.
func (ls LogSchema) Validate() error {
	keys := []struct {
		name  string
		value string
	}{
		{"message_key", ls.MessageKey},
		{"timestamp_key", ls.TimestampKey},
		{"host_key", ls.HostKey},
		{"source_type_key", ls.SourceTypeKey},
	}
	for _, key := range keys {
		if _, err := parseKey(key.name, key.value); err != nil {
			return err
		}
	}
	return nil
}

// MessageKeyPath returns the parsed message key.
func (ls LogSchema) MessageKeyPath() (lookup.ValuePath, error) {
	return parseKey("message_key", ls.MessageKey)
}

// TimestampKeyPath returns the parsed timestamp key.
func (ls LogSchema) TimestampKeyPath() (lookup.ValuePath, error) {
	return parseKey("timestamp_key", ls.TimestampKey)
}

// HostKeyPath returns the parsed host key.
func (ls LogSchema) HostKeyPath() (lookup.ValuePath, error) {
	return parseKey("host_key", ls.HostKey)
}

// SourceTypeKeyPath returns the parsed source type key.
func (ls LogSchema) SourceTypeKeyPath() (lookup.ValuePath, error) {
	return parseKey("source_type_key", ls.SourceTypeKey)
}

func parseKey(name, value string) (lookup.ValuePath, error) {
	if value == "" {
		return nil, fmt.Errorf("log_schema.%s is required", name)
	}
	path, err := lookup.ParseValuePath(value)
	if err != nil {
		return nil, fmt.Errorf("log_schema.%s: %w", name, err)
	}
	if path.IsRoot() {
		return nil, fmt.Errorf("log_schema.%s must not address the event root", name)
	}
	return path, nil
}
