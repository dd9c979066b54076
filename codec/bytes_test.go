package codec

import (
	"bytes"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semdecode/config"
	"github.com/c360/semdecode/errors"
	"github.com/c360/semdecode/event"
	"github.com/c360/semdecode/lookup"
	"github.com/c360/semdecode/schema"
	"github.com/c360/semdecode/testutil"
)

var namespaces = []config.LogNamespace{config.NamespaceLegacy, config.NamespaceModern}

// samplePayloads covers the byte sequences the pass-through codec must accept.
func samplePayloads() map[string][]byte {
	rng := rand.New(rand.NewSource(42))
	random := make([]byte, 4096)
	rng.Read(random)

	payloads := map[string][]byte{
		"empty":        {},
		"nil":          nil,
		"ascii":        []byte("foo"),
		"utf8":         []byte("héllo wörld ✓"),
		"invalid utf8": {0xff, 0xfe, 'a'},
		"nul bytes":    {0, 0, 0},
		"newlines":     []byte("line one\nline two\r\n"),
		"json text":    []byte(`{"message":"not parsed"}`),
		"random":       random,
	}
	for i, line := range testutil.TestLogLines {
		payloads[fmt.Sprintf("log line %d", i)] = []byte(line)
	}
	for i, data := range testutil.TestBinaryData {
		payloads[fmt.Sprintf("binary %d", i)] = data
	}
	for name, data := range testutil.TestBufferData {
		payloads["buffer "+name] = data
	}
	return payloads
}

func buildBytes(t *testing.T, ls config.LogSchema) *BytesDeserializer {
	t.Helper()
	d, err := NewBytesDeserializerConfig(ls).Build()
	require.NoError(t, err)
	bd, ok := d.(*BytesDeserializer)
	require.True(t, ok)
	return bd
}

func singleLog(t *testing.T, events []event.Event) *event.LogEvent {
	t.Helper()
	require.Len(t, events, 1)
	log, ok := events[0].AsLog()
	require.True(t, ok)
	return log
}

func TestBytesDeserializer_Scenarios(t *testing.T) {
	d := buildBytes(t, config.DefaultLogSchema())
	messageKey := lookup.MustParseValuePath("message")

	t.Run("foo legacy", func(t *testing.T) {
		events, err := d.Parse([]byte("foo"), config.NamespaceLegacy)
		require.NoError(t, err)
		log := singleLog(t, events)

		got, ok := log.Get(messageKey)
		require.True(t, ok)
		assert.Equal(t, []byte("foo"), got)
	})

	t.Run("foo modern", func(t *testing.T) {
		events, err := d.Parse([]byte("foo"), config.NamespaceModern)
		require.NoError(t, err)
		log := singleLog(t, events)

		assert.Equal(t, []byte("foo"), log.Value())
	})

	t.Run("empty legacy", func(t *testing.T) {
		events, err := d.Parse([]byte{}, config.NamespaceLegacy)
		require.NoError(t, err)
		log := singleLog(t, events)

		got, ok := log.Get(messageKey)
		require.True(t, ok, "message field must be present for an empty payload")
		assert.Equal(t, []byte{}, got)
	})

	t.Run("output type", func(t *testing.T) {
		cfg := NewBytesDeserializerConfig(config.DefaultLogSchema())
		for _, ns := range namespaces {
			assert.Equal(t, config.DataTypeLog, cfg.OutputType(), ns.String())
		}
	})

	t.Run("schema definitions", func(t *testing.T) {
		cfg := NewBytesDeserializerConfig(config.DefaultLogSchema())

		legacy := cfg.SchemaDefinition(config.NamespaceLegacy)
		assert.Equal(t, schema.Object(map[string]schema.Kind{"message": schema.Bytes()}), legacy.EventKind())
		target, ok := legacy.Meaning(schema.MeaningMessage)
		require.True(t, ok)
		assert.True(t, target.Equal(lookup.EventPath(messageKey)))

		modern := cfg.SchemaDefinition(config.NamespaceModern)
		assert.True(t, modern.EventKind().IsBytes())
		target, ok = modern.Meaning(schema.MeaningMessage)
		require.True(t, ok)
		assert.True(t, target.Equal(lookup.EventRoot()))
		assert.True(t, modern.HasNamespace(config.NamespaceModern))
	})
}

func TestBytesDeserializer_Totality(t *testing.T) {
	d := buildBytes(t, config.DefaultLogSchema())
	for name, payload := range samplePayloads() {
		for _, ns := range namespaces {
			t.Run(name+"/"+ns.String(), func(t *testing.T) {
				events, err := d.Parse(payload, ns)
				require.NoError(t, err)
				assert.Len(t, events, 1)
				assert.Equal(t, config.DataTypeLog, events[0].DataType())
			})
		}
	}
}

func TestBytesDeserializer_LegacyPlacement(t *testing.T) {
	d := buildBytes(t, config.DefaultLogSchema())
	for name, payload := range samplePayloads() {
		t.Run(name, func(t *testing.T) {
			log := singleLog(t, mustParse(t, d, payload, config.NamespaceLegacy))

			assert.Equal(t, []string{"message"}, log.Keys())
			got, ok := log.Get(lookup.MustParseValuePath("message"))
			require.True(t, ok)
			assert.True(t, bytes.Equal(payload, got.([]byte)))
			assert.Equal(t, map[string]any{}, log.Metadata())
		})
	}
}

func TestBytesDeserializer_ModernPlacement(t *testing.T) {
	d := buildBytes(t, config.DefaultLogSchema())
	for name, payload := range samplePayloads() {
		t.Run(name, func(t *testing.T) {
			log := singleLog(t, mustParse(t, d, payload, config.NamespaceModern))

			root, ok := log.Value().([]byte)
			require.True(t, ok)
			assert.True(t, bytes.Equal(payload, root))
		})
	}
}

func TestBytesDeserializer_SchemaAgreement(t *testing.T) {
	schemas := []config.LogSchema{
		config.DefaultLogSchema(),
		{MessageKey: "payload.text"},
		{MessageKey: `"dotted.name"`},
		{MessageKey: "items[2]"},
	}

	for _, ls := range schemas {
		cfg := NewBytesDeserializerConfig(ls)
		d := buildBytes(t, ls)

		for _, ns := range namespaces {
			def := cfg.SchemaDefinition(ns)
			validator, err := schema.NewValidator(def)
			require.NoError(t, err)

			for name, payload := range samplePayloads() {
				t.Run(ls.MessageKey+"/"+ns.String()+"/"+name, func(t *testing.T) {
					log := singleLog(t, mustParse(t, d, payload, ns))
					assert.NoError(t, def.Conforms(log))
					assert.NoError(t, validator.ValidateLog(log))
				})
			}
		}
	}
}

func TestBytesDeserializer_SchemaMismatchAcrossNamespaces(t *testing.T) {
	cfg := NewBytesDeserializerConfig(config.DefaultLogSchema())
	d := buildBytes(t, config.DefaultLogSchema())

	legacyLog := singleLog(t, mustParse(t, d, []byte("foo"), config.NamespaceLegacy))
	err := cfg.SchemaDefinition(config.NamespaceModern).Conforms(legacyLog)
	assert.ErrorIs(t, err, errors.ErrSchemaMismatch)

	modernLog := singleLog(t, mustParse(t, d, []byte("foo"), config.NamespaceModern))
	err = cfg.SchemaDefinition(config.NamespaceLegacy).Conforms(modernLog)
	assert.ErrorIs(t, err, errors.ErrSchemaMismatch)
}

func TestBytesDeserializer_InputUntouched(t *testing.T) {
	d := buildBytes(t, config.DefaultLogSchema())
	payload := []byte("immutable payload")
	original := append([]byte{}, payload...)

	for _, ns := range namespaces {
		first := singleLog(t, mustParse(t, d, payload, ns))
		second := singleLog(t, mustParse(t, d, payload, ns))

		assert.Equal(t, original, payload)
		assert.True(t, event.Equal(first.Value(), second.Value()))
	}

	log := singleLog(t, mustParse(t, d, payload, config.NamespaceModern))
	payload[0] = 'X'
	assert.Equal(t, original, log.Value(), "events must not alias the input buffer")
}

func TestBytesDeserializer_IndependentMessageKeys(t *testing.T) {
	a := buildBytes(t, config.LogSchema{MessageKey: "msg"})
	b := buildBytes(t, config.LogSchema{MessageKey: "body.raw"})

	logA := singleLog(t, mustParse(t, a, []byte("x"), config.NamespaceLegacy))
	logB := singleLog(t, mustParse(t, b, []byte("x"), config.NamespaceLegacy))

	assert.Equal(t, []string{"msg"}, logA.Keys())
	assert.Equal(t, []string{"body"}, logB.Keys())
	assert.True(t, logB.Contains(lookup.MustParseValuePath("body.raw")))
	assert.True(t, a.MessageKey().Equal(lookup.MustParseValuePath("msg")))
}

func TestBytesDeserializer_Concurrent(t *testing.T) {
	d := buildBytes(t, config.DefaultLogSchema())

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ns := namespaces[i%2]
			payload := []byte{byte(i), 'p'}
			events, err := d.Parse(payload, ns)
			if err != nil {
				errs <- err
				return
			}
			log, _ := events[0].AsLog()
			var got any
			if ns == config.NamespaceModern {
				got = log.Value()
			} else {
				got, _ = log.Get(lookup.MustParseValuePath("message"))
			}
			if !event.Equal(payload, got) {
				errs <- assert.AnError
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestNewBytesDeserializer_EmptyKey(t *testing.T) {
	d := NewBytesDeserializer(nil)
	log := d.ParseSingle([]byte("x"), config.NamespaceLegacy)
	assert.Equal(t, []string{config.DefaultMessageKey}, log.Keys())
}

func TestBytesDeserializerConfig_Invalid(t *testing.T) {
	cfg := NewBytesDeserializerConfig(config.LogSchema{MessageKey: "a..b"})

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	_, err = cfg.Build()
	require.Error(t, err)
	var be *errors.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, BytesCodec, be.Codec)
	assert.True(t, errors.IsFatal(err))
}

func mustParse(t *testing.T, d Deserializer, payload []byte, ns config.LogNamespace) []event.Event {
	t.Helper()
	events, err := d.Parse(payload, ns)
	require.NoError(t, err)
	return events
}

func BenchmarkBytesDeserializer_Parse(b *testing.B) {
	d := NewBytesDeserializer(lookup.MustParseValuePath("message"))
	payload := bytes.Repeat([]byte("x"), 512)

	for _, ns := range namespaces {
		b.Run(ns.String(), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = d.Parse(payload, ns)
			}
		})
	}
}
