package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// maxConfigSize bounds configuration files read from disk.
const maxConfigSize = 1 << 20

// EnvOverrides lists the environment variables that override file configuration.
// Unset variables leave the file value untouched.
type EnvOverrides struct {
	LogNamespace string   `env:"SEMDECODE_LOG_NAMESPACE"`
	MessageKey   string   `env:"SEMDECODE_MESSAGE_KEY"`
	TimestampKey string   `env:"SEMDECODE_TIMESTAMP_KEY"`
	NATSURLs     []string `env:"SEMDECODE_NATS_URLS" envSeparator:","`
	NATSUsername string   `env:"SEMDECODE_NATS_USERNAME"`
	NATSPassword string   `env:"SEMDECODE_NATS_PASSWORD"`
	NATSToken    string   `env:"SEMDECODE_NATS_TOKEN"`
	MetricsPort  int      `env:"SEMDECODE_METRICS_PORT"`
	MetricsPath  string   `env:"SEMDECODE_METRICS_PATH"`
}

// Loader handles configuration loading with layers and overrides.
// Layers are JSON or YAML files, chosen by extension, merged in order.
type Loader struct {
	layers     []string
	validation bool
	lookupEnv  func(string) (string, bool)
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		layers:     []string{},
		validation: true,
		lookupEnv:  os.LookupEnv,
	}
}

// AddLayer adds a configuration file layer
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single file
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load loads and merges all configuration layers
func (l *Loader) Load() (*Config, error) {
	merged, err := l.defaultsMap()
	if err != nil {
		return nil, err
	}

	for _, path := range l.layers {
		raw, err := l.loadRawFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		merged = deepMergeMaps(merged, raw)
	}

	cfg, err := fromMap(merged)
	if err != nil {
		return nil, err
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.LogSchema = cfg.LogSchema.WithDefaults()

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}

	return cfg, nil
}

// Parse decodes a single in-memory document. format is "json" or "yaml".
func Parse(data []byte, format string) (*Config, error) {
	raw, err := decodeRaw(data, format)
	if err != nil {
		return nil, err
	}
	cfg, err := fromMap(raw)
	if err != nil {
		return nil, err
	}
	cfg.LogSchema = cfg.LogSchema.WithDefaults()
	return cfg, nil
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() *Config {
	return &Config{
		LogSchema:    DefaultLogSchema(),
		LogNamespace: NamespaceLegacy,
		Decoding:     json.RawMessage(`{"codec":"bytes"}`),
		NATS: NATSConfig{
			URLs:          []string{"nats://localhost:4222"},
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
	}
}

func (l *Loader) defaultsMap() (map[string]any, error) {
	data, err := json.Marshal(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("marshal defaults: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal defaults: %w", err)
	}
	return out, nil
}

func (l *Loader) loadRawFile(path string) (map[string]any, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes", info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return decodeRaw(data, formatFromPath(path))
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func decodeRaw(data []byte, format string) (map[string]any, error) {
	var raw map[string]any
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	parseDurations(raw)
	return raw, nil
}

// fromMap converts a merged raw document into a Config. Going through JSON keeps
// json.RawMessage sections intact for the components that parse them.
func fromMap(raw map[string]any) (*Config, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// parseDurations converts human-readable duration strings ("2s") to nanoseconds.
func parseDurations(raw map[string]any) {
	nats, ok := raw["nats"].(map[string]any)
	if !ok {
		return
	}
	if s, ok := nats["reconnect_wait"].(string); ok {
		if d, err := time.ParseDuration(s); err == nil {
			nats["reconnect_wait"] = int64(d)
		}
	}
}

// deepMergeMaps merges override into base; nested maps merge, everything else replaces.
func deepMergeMaps(base, override map[string]any) map[string]any {
	if base == nil {
		base = map[string]any{}
	}
	for k, v := range override {
		if v == nil {
			continue
		}
		if overrideMap, ok := v.(map[string]any); ok {
			if baseMap, ok := base[k].(map[string]any); ok && !isOpaqueSection(k) {
				base[k] = deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}
		base[k] = v
	}
	return base
}

// Component sections are replaced wholesale so a layer can switch codecs
// without inheriting options of the previous one.
func isOpaqueSection(key string) bool {
	return key == "decoding" || key == "processor"
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	var overrides EnvOverrides
	opts := env.Options{}
	if l.lookupEnv != nil {
		environ := map[string]string{}
		for _, key := range envKeys() {
			if v, ok := l.lookupEnv(key); ok {
				environ[key] = v
			}
		}
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&overrides, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if overrides.LogNamespace != "" {
		ns, err := ParseLogNamespace(overrides.LogNamespace)
		if err != nil {
			return fmt.Errorf("SEMDECODE_LOG_NAMESPACE: %w", err)
		}
		cfg.LogNamespace = ns
	}
	if overrides.MessageKey != "" {
		cfg.LogSchema.MessageKey = overrides.MessageKey
	}
	if overrides.TimestampKey != "" {
		cfg.LogSchema.TimestampKey = overrides.TimestampKey
	}
	if len(overrides.NATSURLs) > 0 {
		cfg.NATS.URLs = overrides.NATSURLs
	}
	if overrides.NATSUsername != "" {
		cfg.NATS.Username = overrides.NATSUsername
	}
	if overrides.NATSPassword != "" {
		cfg.NATS.Password = overrides.NATSPassword
	}
	if overrides.NATSToken != "" {
		cfg.NATS.Token = overrides.NATSToken
	}
	if overrides.MetricsPort != 0 {
		cfg.Metrics.Port = overrides.MetricsPort
	}
	if overrides.MetricsPath != "" {
		cfg.Metrics.Path = overrides.MetricsPath
	}
	return nil
}

func envKeys() []string {
	return []string{
		"SEMDECODE_LOG_NAMESPACE",
		"SEMDECODE_MESSAGE_KEY",
		"SEMDECODE_TIMESTAMP_KEY",
		"SEMDECODE_NATS_URLS",
		"SEMDECODE_NATS_USERNAME",
		"SEMDECODE_NATS_PASSWORD",
		"SEMDECODE_NATS_TOKEN",
		"SEMDECODE_METRICS_PORT",
		"SEMDECODE_METRICS_PATH",
	}
}
