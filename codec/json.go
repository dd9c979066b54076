package codec

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/c360/semdecode/config"
	"github.com/c360/semdecode/errors"
	"github.com/c360/semdecode/event"
	"github.com/c360/semdecode/lookup"
	"github.com/c360/semdecode/schema"
)

// JSONCodec is the configuration name of the JSON codec.
const JSONCodec = "json"

// JSONDeserializerOptions are the user-facing options of the JSON codec.
type JSONDeserializerOptions struct {
	// Lossy replaces invalid UTF-8 with U+FFFD instead of rejecting the payload.
	Lossy bool `json:"lossy" yaml:"lossy"`
}

// DefaultJSONDeserializerOptions returns the options used when none are given.
func DefaultJSONDeserializerOptions() JSONDeserializerOptions {
	return JSONDeserializerOptions{Lossy: true}
}

// JSONDeserializerConfig builds a JSONDeserializer.
type JSONDeserializerConfig struct {
	Options   JSONDeserializerOptions `json:"json" yaml:"json"`
	LogSchema config.LogSchema        `json:"-" yaml:"-"`
	// Clock supplies the Legacy timestamp for objects without one. Defaults to time.Now.
	Clock func() time.Time `json:"-" yaml:"-"`
}

// NewJSONDeserializerConfig creates a config with the given options and log schema.
func NewJSONDeserializerConfig(opts JSONDeserializerOptions, ls config.LogSchema) JSONDeserializerConfig {
	return JSONDeserializerConfig{Options: opts, LogSchema: ls}
}

// Build implements DeserializerConfig
func (c JSONDeserializerConfig) Build() (Deserializer, error) {
	ls := resolveLogSchema(c.LogSchema)
	timestampKey, err := ls.TimestampKeyPath()
	if err != nil {
		return nil, &errors.BuildError{Codec: JSONCodec, Reason: "invalid timestamp key", Err: err}
	}
	clock := c.Clock
	if clock == nil {
		clock = time.Now
	}
	return &JSONDeserializer{
		lossy:        c.Options.Lossy,
		timestampKey: timestampKey,
		clock:        clock,
	}, nil
}

// OutputType implements DeserializerConfig
func (c JSONDeserializerConfig) OutputType() config.DataType {
	return config.DataTypeLog
}

// SchemaDefinition implements DeserializerConfig
func (c JSONDeserializerConfig) SchemaDefinition(ns config.LogNamespace) *schema.Definition {
	if ns == config.NamespaceModern {
		return schema.NewWithDefaultMetadata(schema.JSON(), ns)
	}
	timestampKey, err := resolveLogSchema(c.LogSchema).TimestampKeyPath()
	if err != nil {
		timestampKey = lookup.ValuePath{lookup.FieldSegment(config.DefaultTimestampKey)}
	}
	def := schema.EmptyLegacyNamespace().UnknownFields(schema.JSON())
	if len(timestampKey) == 1 {
		return def.WithEventField(timestampKey, schema.JSON().Or(schema.Timestamp()), schema.MeaningTimestamp)
	}
	// The payload may hold a scalar where the nested key begins, in which
	// case no timestamp is inserted, so only the top-level field is constrained.
	return def.
		WithEventField(timestampKey[:1], schema.JSON().Or(schema.Timestamp()), "").
		WithMeaning(lookup.EventPath(timestampKey), schema.MeaningTimestamp)
}

// Validate implements DeserializerConfig
func (c JSONDeserializerConfig) Validate() error {
	if _, err := resolveLogSchema(c.LogSchema).TimestampKeyPath(); err != nil {
		return errors.WrapInvalid(err, "JSONDeserializerConfig", "Validate", "resolve timestamp key")
	}
	return nil
}

// JSONDeserializer decodes JSON documents.
//
// A top-level array yields one event per element, in order. An empty or
// whitespace-only payload, or an empty array, yields no events. Under the
// Legacy namespace every element must be an object; objects without a value
// at the timestamp key receive the decode time.
type JSONDeserializer struct {
	lossy        bool
	timestampKey lookup.ValuePath
	clock        func() time.Time
}

// Parse implements Deserializer
func (d *JSONDeserializer) Parse(payload []byte, ns config.LogNamespace) ([]event.Event, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, nil
	}

	if !utf8.Valid(payload) {
		if !d.lossy {
			return nil, &errors.DecodeError{
				Format: JSONCodec,
				Offset: int64(invalidUTF8Offset(payload)),
				Reason: "invalid utf-8",
			}
		}
		payload = bytes.ToValidUTF8(payload, []byte("\uFFFD"))
	}

	if !gjson.ValidBytes(payload) {
		return nil, syntaxError(payload)
	}

	doc := gjson.ParseBytes(payload)
	if !doc.IsArray() {
		ev, err := d.buildEvent(doc, ns)
		if err != nil {
			return nil, err
		}
		return []event.Event{ev}, nil
	}

	var (
		events []event.Event
		err    error
	)
	doc.ForEach(func(_, element gjson.Result) bool {
		var ev *event.LogEvent
		ev, err = d.buildEvent(element, ns)
		if err != nil {
			return false
		}
		events = append(events, ev)
		return true
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *JSONDeserializer) buildEvent(doc gjson.Result, ns config.LogNamespace) (*event.LogEvent, error) {
	value, err := jsonValue(doc)
	if err != nil {
		return nil, err
	}
	if ns == config.NamespaceModern {
		return event.NewLogFromData(value), nil
	}

	fields, ok := value.(map[string]any)
	if !ok {
		de := errors.NewDecodeError(JSONCodec, "legacy namespace requires a JSON object, found "+jsonTypeName(doc), nil)
		if doc.Index > 0 {
			de.Offset = int64(doc.Index)
		}
		return nil, de
	}

	log := event.NewLog()
	for name, field := range fields {
		log.Insert(lookup.ValuePath{lookup.FieldSegment(name)}, field)
	}
	log.InsertIfAbsent(d.timestampKey, d.clock())
	return log, nil
}

// jsonValue converts a parsed document into event values. Integers that fit
// in int64 stay integers; every other number is a float. Numbers outside the
// float64 range are decode errors, since events cannot carry them.
func jsonValue(r gjson.Result) (any, error) {
	switch r.Type {
	case gjson.Null:
		return nil, nil
	case gjson.True:
		return true, nil
	case gjson.False:
		return false, nil
	case gjson.String:
		return []byte(r.Str), nil
	case gjson.Number:
		if !strings.ContainsAny(r.Raw, ".eE") {
			if n, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
				return n, nil
			}
		}
		if math.IsInf(r.Num, 0) || math.IsNaN(r.Num) {
			de := errors.NewDecodeError(JSONCodec, "number out of range: "+r.Raw, nil)
			if r.Index > 0 {
				de.Offset = int64(r.Index)
			}
			return nil, de
		}
		return r.Num, nil
	default:
		var err error
		if r.IsArray() {
			out := []any{}
			r.ForEach(func(_, element gjson.Result) bool {
				var v any
				if v, err = jsonValue(element); err != nil {
					return false
				}
				out = append(out, v)
				return true
			})
			return out, err
		}
		out := map[string]any{}
		r.ForEach(func(key, element gjson.Result) bool {
			var v any
			if v, err = jsonValue(element); err != nil {
				return false
			}
			out[key.Str] = v
			return true
		})
		return out, err
	}
}

func jsonTypeName(r gjson.Result) string {
	switch r.Type {
	case gjson.Null:
		return "null"
	case gjson.True, gjson.False:
		return "boolean"
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	default:
		if r.IsArray() {
			return "array"
		}
		return "object"
	}
}

// syntaxError locates the failure with encoding/json, which reports offsets.
func syntaxError(payload []byte) *errors.DecodeError {
	var discard any
	err := json.Unmarshal(payload, &discard)

	de := errors.NewDecodeError(JSONCodec, "invalid json", err)
	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		de.Offset = syntaxErr.Offset
	}
	return de
}

func invalidUTF8Offset(payload []byte) int {
	for i := 0; i < len(payload); {
		r, size := utf8.DecodeRune(payload[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
