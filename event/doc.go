// Package event provides the log event model produced by decoders.
//
// A LogEvent holds two independent values: the event value (the data being
// shipped downstream) and the event metadata (information about where and how
// the data was received). Both are trees of plain Go values addressed with
// lookup paths.
//
// # Values
//
// Event values use a small closed set of Go types:
//
//	[]byte          byte string (text is stored as bytes, never as string)
//	int64           integer
//	float64         floating point number
//	bool            boolean
//	time.Time       timestamp
//	nil             null
//	map[string]any  object
//	[]any           array
//
// NewLogFromData and Insert normalize other Go scalars (string, int, float32,
// uint and friends) into this set, so callers may pass convenient literals.
//
// # Construction by Namespace
//
// The two log namespaces build events differently:
//
//	// Legacy: empty object, decoded value stored at the message key
//	log := event.NewLog()
//	log.Insert(messageKey, payload)
//
//	// Modern: decoded value is the event root
//	log := event.NewLogFromData(payload)
//
// Neither constructor adds fields to the event value. Source metadata is
// added separately with InsertStandardSourceMetadata.
//
// # Encoding
//
// MarshalJSON renders the event value only. Byte strings become JSON strings
// (invalid UTF-8 is replaced with U+FFFD) and timestamps use RFC 3339 with
// nanoseconds. MetadataJSON renders the metadata the same way.
//
// # Concurrency
//
// A LogEvent is not safe for concurrent mutation. Decoders hand each event to
// exactly one consumer.
package event
