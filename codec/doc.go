// Package codec decodes raw payloads into log events.
//
// Every format implements Deserializer, and every format's declarative
// configuration implements DeserializerConfig. A pipeline resolves its codec
// section once, builds the Deserializer, registers the schema, and then calls
// Parse for every payload:
//
//	cfg, err := codec.ParseConfig(raw)
//	dc, err := cfg.Resolve(logSchema)
//	d, err := dc.Build()
//	def := dc.SchemaDefinition(ns)
//
//	events, err := d.Parse(payload, ns) // same ns as the schema
//
// # Codecs
//
// bytes passes payloads through: each payload becomes exactly one event
// holding the payload as a byte string, including the empty payload. Under
// the Legacy namespace the payload is stored at the log schema's message key;
// under Modern it is the event value itself. bytes never fails.
//
// json decodes one JSON document per payload. A top-level array yields one
// event per element in order. Empty payloads and empty arrays yield no
// events, which callers should treat as "nothing to emit".
//
// # Errors
//
// Malformed payloads produce *errors.DecodeError carrying the format, the
// byte offset when known, and a reason. Configuration problems surface from
// Validate or Build as classified or *errors.BuildError values. Decoding is
// deterministic, so decode errors are never worth retrying.
package codec
