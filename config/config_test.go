package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semdecode/lookup"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseLogNamespace(t *testing.T) {
	tests := []struct {
		input   string
		want    LogNamespace
		wantErr bool
	}{
		{"legacy", NamespaceLegacy, false},
		{"", NamespaceLegacy, false},
		{"Modern", NamespaceModern, false},
		{" modern ", NamespaceModern, false},
		{"vector", NamespaceModern, false},
		{"flat", NamespaceLegacy, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogNamespace(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogNamespace_Text(t *testing.T) {
	data, err := json.Marshal(struct {
		NS LogNamespace `json:"ns"`
	}{NamespaceModern})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ns":"modern"}`, string(data))

	var decoded struct {
		NS LogNamespace `json:"ns"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"ns":"legacy"}`), &decoded))
	assert.Equal(t, NamespaceLegacy, decoded.NS)

	assert.Error(t, json.Unmarshal([]byte(`{"ns":"other"}`), &decoded))

	_, err = LogNamespace(7).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "LogNamespace(7)", LogNamespace(7).String())
}

func TestDataType(t *testing.T) {
	assert.Equal(t, "log", DataTypeLog.String())
	assert.Equal(t, "log|metric", (DataTypeLog | DataTypeMetric).String())
	assert.Equal(t, "all", DataTypeAll.String())
	assert.Equal(t, "none", DataType(0).String())

	assert.True(t, DataTypeAll.Contains(DataTypeLog))
	assert.False(t, DataTypeMetric.Contains(DataTypeLog))
	assert.False(t, DataTypeLog.Contains(0))
	assert.True(t, (DataTypeLog | DataTypeTrace).Intersects(DataTypeTrace))
	assert.False(t, DataTypeLog.Intersects(DataTypeMetric))

	var dt DataType
	require.NoError(t, dt.UnmarshalText([]byte("log|trace")))
	assert.Equal(t, DataTypeLog|DataTypeTrace, dt)
	assert.Error(t, dt.UnmarshalText([]byte("log|span")))
}

func TestLogSchema(t *testing.T) {
	ls := LogSchema{MessageKey: "msg"}.WithDefaults()
	assert.Equal(t, "msg", ls.MessageKey)
	assert.Equal(t, DefaultTimestampKey, ls.TimestampKey)
	assert.Equal(t, DefaultHostKey, ls.HostKey)
	assert.Equal(t, DefaultSourceTypeKey, ls.SourceTypeKey)
	require.NoError(t, ls.Validate())

	path, err := ls.MessageKeyPath()
	require.NoError(t, err)
	assert.True(t, path.Equal(lookup.ValuePath{lookup.FieldSegment("msg")}))

	nested := LogSchema{MessageKey: "payload.text"}.WithDefaults()
	path, err = nested.MessageKeyPath()
	require.NoError(t, err)
	assert.Len(t, path, 2)

	tests := []struct {
		name   string
		schema LogSchema
	}{
		{"empty message key", LogSchema{TimestampKey: "ts", HostKey: "h", SourceTypeKey: "s"}},
		{"root message key", LogSchema{MessageKey: ".", TimestampKey: "ts", HostKey: "h", SourceTypeKey: "s"}},
		{"malformed timestamp key", DefaultLogSchema().withTimestampKey("a..b")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.schema.Validate())
		})
	}
}

func (ls LogSchema) withTimestampKey(key string) LogSchema {
	ls.TimestampKey = key
	return ls
}

func TestLoader_LoadJSON(t *testing.T) {
	path := writeConfig(t, "semdecode.json", `{
		"log_namespace": "modern",
		"log_schema": {"message_key": "msg"},
		"decoding": {"codec": "json", "json": {"lossy": false}},
		"nats": {
			"urls": ["nats://localhost:4222", "nats://localhost:4223"],
			"max_reconnects": 10,
			"reconnect_wait": "5s"
		},
		"metrics": {"port": 9090}
	}`)

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, NamespaceModern, cfg.LogNamespace)
	assert.Equal(t, "msg", cfg.LogSchema.MessageKey)
	assert.Equal(t, DefaultTimestampKey, cfg.LogSchema.TimestampKey)
	assert.JSONEq(t, `{"codec":"json","json":{"lossy":false}}`, string(cfg.Decoding))
	assert.Len(t, cfg.NATS.URLs, 2)
	assert.Equal(t, 10, cfg.NATS.MaxReconnects)
	assert.Equal(t, 5*time.Second, cfg.NATS.ReconnectWait)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoader_LoadYAML(t *testing.T) {
	path := writeConfig(t, "semdecode.yaml", `
log_namespace: legacy
log_schema:
  message_key: line
decoding:
  codec: bytes
nats:
  urls:
    - nats://broker:4222
  reconnect_wait: 250ms
`)

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, NamespaceLegacy, cfg.LogNamespace)
	assert.Equal(t, "line", cfg.LogSchema.MessageKey)
	assert.JSONEq(t, `{"codec":"bytes"}`, string(cfg.Decoding))
	assert.Equal(t, []string{"nats://broker:4222"}, cfg.NATS.URLs)
	assert.Equal(t, 250*time.Millisecond, cfg.NATS.ReconnectWait)
	assert.Equal(t, -1, cfg.NATS.MaxReconnects)
}

func TestLoader_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, NamespaceLegacy, cfg.LogNamespace)
	assert.Equal(t, DefaultLogSchema(), cfg.LogSchema)
	assert.JSONEq(t, `{"codec":"bytes"}`, string(cfg.Decoding))
	assert.Equal(t, []string{"nats://localhost:4222"}, cfg.NATS.URLs)
	assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectWait)
}

func TestLoader_LayersReplaceComponentSections(t *testing.T) {
	base := writeConfig(t, "base.json", `{
		"decoding": {"codec": "json", "json": {"lossy": false}},
		"nats": {"urls": ["nats://base:4222"], "name": "base"}
	}`)
	override := writeConfig(t, "override.yaml", `
decoding:
  codec: bytes
nats:
  urls: ["nats://override:4222"]
`)

	loader := NewLoader()
	loader.AddLayer(base)
	loader.AddLayer(override)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.JSONEq(t, `{"codec":"bytes"}`, string(cfg.Decoding))
	assert.Equal(t, []string{"nats://override:4222"}, cfg.NATS.URLs)
	assert.Equal(t, "base", cfg.NATS.Name)
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv("SEMDECODE_LOG_NAMESPACE", "modern")
	t.Setenv("SEMDECODE_MESSAGE_KEY", "body")
	t.Setenv("SEMDECODE_NATS_URLS", "nats://a:4222,nats://b:4222")
	t.Setenv("SEMDECODE_NATS_PASSWORD", "secret")
	t.Setenv("SEMDECODE_METRICS_PORT", "9191")

	path := writeConfig(t, "semdecode.json", `{"log_namespace": "legacy"}`)
	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, NamespaceModern, cfg.LogNamespace)
	assert.Equal(t, "body", cfg.LogSchema.MessageKey)
	assert.Equal(t, []string{"nats://a:4222", "nats://b:4222"}, cfg.NATS.URLs)
	assert.Equal(t, "secret", cfg.NATS.Password)
	assert.Equal(t, 9191, cfg.Metrics.Port)
}

func TestLoader_EnvOverrideInvalid(t *testing.T) {
	t.Setenv("SEMDECODE_LOG_NAMESPACE", "sideways")

	_, err := NewLoader().Load()
	assert.Error(t, err)
}

func TestLoader_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader().LoadFile(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeConfig(t, "bad.json", `{"log_namespace": `)
		_, err := NewLoader().LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "bad.yaml", "log_schema: [unclosed")
		_, err := NewLoader().LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("validation failure", func(t *testing.T) {
		path := writeConfig(t, "invalid.json", `{"metrics": {"port": 70000}}`)
		_, err := NewLoader().LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("validation disabled", func(t *testing.T) {
		path := writeConfig(t, "invalid.json", `{"metrics": {"port": 70000}}`)
		loader := NewLoader()
		loader.EnableValidation(false)
		cfg, err := loader.LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 70000, cfg.Metrics.Port)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := NewLoader().LoadFile(t.TempDir())
		assert.Error(t, err)
	})
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte("log_namespace: modern\n"), "yaml")
	require.NoError(t, err)
	assert.Equal(t, NamespaceModern, cfg.LogNamespace)
	assert.Equal(t, DefaultMessageKey, cfg.LogSchema.MessageKey)

	_, err = Parse([]byte("{}"), "toml")
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	bad := DefaultConfig()
	bad.LogNamespace = LogNamespace(5)
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Decoding = json.RawMessage(`{"codec":`)
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.NATS.URLs = []string{""}
	assert.Error(t, bad.Validate())
}

func TestConfig_CloneAndString(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NATS.Password = "hunter2"
	cfg.NATS.Token = "tok"

	clone := cfg.Clone()
	clone.NATS.URLs[0] = "nats://changed:4222"
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URLs[0])

	rendered := cfg.String()
	assert.NotContains(t, rendered, "hunter2")
	assert.NotContains(t, rendered, `"tok"`)
	assert.Contains(t, rendered, "***")
	assert.Equal(t, "hunter2", cfg.NATS.Password)
}

func TestIsValidSubject(t *testing.T) {
	tests := []struct {
		subject string
		valid   bool
	}{
		{"raw.logs", true},
		{"raw.*.logs", true},
		{"raw.>", true},
		{"semdecode", true},
		{"", false},
		{"raw..logs", false},
		{"raw.logs.", false},
		{"raw.>.logs", false},
		{"raw logs", false},
		{"raw.lo*gs", false},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidSubject(tt.subject))
		})
	}
}
