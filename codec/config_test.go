package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/c360/semdecode/config"
	"github.com/c360/semdecode/errors"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantCodec string
		wantLossy *bool
		wantErr   error
	}{
		{name: "empty", raw: "", wantCodec: BytesCodec},
		{name: "null", raw: "null", wantCodec: BytesCodec},
		{name: "empty object", raw: "{}", wantCodec: BytesCodec},
		{name: "bytes", raw: `{"codec":"bytes"}`, wantCodec: BytesCodec},
		{name: "json", raw: `{"codec":"json"}`, wantCodec: JSONCodec},
		{name: "json strict", raw: `{"codec":"json","json":{"lossy":false}}`, wantCodec: JSONCodec, wantLossy: boolPtr(false)},
		{name: "unknown codec", raw: `{"codec":"avro"}`, wantErr: errors.ErrUnknownCodec},
		{name: "options on bytes", raw: `{"codec":"bytes","json":{"lossy":true}}`, wantErr: errors.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseConfig(json.RawMessage(tt.raw))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, errors.IsFatal(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCodec, c.Codec)
			if tt.wantLossy != nil {
				require.NotNil(t, c.JSON)
				assert.Equal(t, *tt.wantLossy, c.JSON.Lossy)
			}
		})
	}
}

func TestParseConfig_Malformed(t *testing.T) {
	_, err := ParseConfig(json.RawMessage(`{"codec":`))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestConfig_YAML(t *testing.T) {
	var doc struct {
		Decoding Config `yaml:"decoding"`
	}
	err := yaml.Unmarshal([]byte("decoding:\n  codec: json\n  json:\n    lossy: false\n"), &doc)
	require.NoError(t, err)
	assert.Equal(t, JSONCodec, doc.Decoding.Codec)
	require.NotNil(t, doc.Decoding.JSON)
	assert.False(t, doc.Decoding.JSON.Lossy)

	var c Config
	require.NoError(t, yaml.Unmarshal([]byte("{}"), &c))
	assert.Equal(t, BytesCodec, c.Codec)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{BytesCodec, JSONCodec}, Names())
}

func TestConfig_Resolve(t *testing.T) {
	t.Run("bytes", func(t *testing.T) {
		dc, err := Config{Codec: BytesCodec}.Resolve(config.LogSchema{MessageKey: "msg"})
		require.NoError(t, err)
		bc, ok := dc.(BytesDeserializerConfig)
		require.True(t, ok)
		assert.Equal(t, "msg", bc.LogSchema.MessageKey)
	})

	t.Run("zero value selects bytes", func(t *testing.T) {
		dc, err := Config{}.Resolve(config.DefaultLogSchema())
		require.NoError(t, err)
		assert.IsType(t, BytesDeserializerConfig{}, dc)
	})

	t.Run("json defaults to lossy", func(t *testing.T) {
		dc, err := Config{Codec: JSONCodec}.Resolve(config.DefaultLogSchema())
		require.NoError(t, err)
		jc, ok := dc.(JSONDeserializerConfig)
		require.True(t, ok)
		assert.True(t, jc.Options.Lossy)
	})

	t.Run("json options", func(t *testing.T) {
		dc, err := Config{Codec: JSONCodec, JSON: &JSONDeserializerOptions{}}.Resolve(config.DefaultLogSchema())
		require.NoError(t, err)
		assert.False(t, dc.(JSONDeserializerConfig).Options.Lossy)
	})

	t.Run("unknown codec", func(t *testing.T) {
		_, err := Config{Codec: "protobuf"}.Resolve(config.DefaultLogSchema())
		assert.ErrorIs(t, err, errors.ErrUnknownCodec)
	})

	t.Run("bad log schema", func(t *testing.T) {
		_, err := Config{Codec: BytesCodec}.Resolve(config.LogSchema{MessageKey: "[x"})
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err))
	})
}

func TestResolvedConfigsBuild(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			dc, err := Config{Codec: name}.Resolve(config.DefaultLogSchema())
			require.NoError(t, err)

			d, err := dc.Build()
			require.NoError(t, err)
			assert.Equal(t, config.DataTypeLog, dc.OutputType())

			for _, ns := range namespaces {
				def := dc.SchemaDefinition(ns)
				require.NotNil(t, def)
				assert.True(t, def.HasNamespace(ns))
			}

			events, err := d.Parse([]byte(`{"message":"x"}`), config.NamespaceLegacy)
			require.NoError(t, err)
			assert.Len(t, events, 1)
		})
	}
}

func boolPtr(b bool) *bool { return &b }
