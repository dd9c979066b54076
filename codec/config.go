package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/c360/semdecode/config"
	"github.com/c360/semdecode/errors"
)

// Config selects a codec and carries its options. It is the serialized form
// of a DeserializerConfig:
//
//	{"codec": "bytes"}
//	{"codec": "json", "json": {"lossy": false}}
//
// An empty codec name selects bytes.
type Config struct {
	Codec string                   `json:"codec" yaml:"codec"`
	JSON  *JSONDeserializerOptions `json:"json,omitempty" yaml:"json,omitempty"`
}

type resolver func(c Config, ls config.LogSchema) DeserializerConfig

// registry maps codec names to their config constructors. Selection happens
// once, here; decoding dispatches through the Deserializer interface.
var registry = map[string]resolver{
	BytesCodec: func(_ Config, ls config.LogSchema) DeserializerConfig {
		return NewBytesDeserializerConfig(ls)
	},
	JSONCodec: func(c Config, ls config.LogSchema) DeserializerConfig {
		opts := DefaultJSONDeserializerOptions()
		if c.JSON != nil {
			opts = *c.JSON
		}
		return NewJSONDeserializerConfig(opts, ls)
	},
}

// Names lists the supported codec names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseConfig decodes a JSON codec section. Empty input selects bytes.
func ParseConfig(raw json.RawMessage) (Config, error) {
	var c Config
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		c.Codec = BytesCodec
		return c, nil
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return Config{}, errors.WrapInvalid(err, "codec", "ParseConfig", "decode codec config")
	}
	if c.Codec == "" {
		c.Codec = BytesCodec
	}
	return c, c.Validate()
}

// UnmarshalYAML implements yaml.Unmarshaler so codec sections can be embedded
// directly in YAML documents.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type plain Config
	var out plain
	if err := node.Decode(&out); err != nil {
		return err
	}
	*c = Config(out)
	if c.Codec == "" {
		c.Codec = BytesCodec
	}
	return nil
}

// Validate checks the codec name and that options match the codec.
func (c Config) Validate() error {
	name := c.name()
	if _, ok := registry[name]; !ok {
		return fmt.Errorf("%w: %q (supported: %v)", errors.ErrUnknownCodec, c.Codec, Names())
	}
	if c.JSON != nil && name != JSONCodec {
		return fmt.Errorf("%w: json options require codec %q, got %q", errors.ErrInvalidConfig, JSONCodec, name)
	}
	return nil
}

// Resolve returns the DeserializerConfig for c, injecting the log schema.
func (c Config) Resolve(ls config.LogSchema) (DeserializerConfig, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	dc := registry[c.name()](c, ls)
	if err := dc.Validate(); err != nil {
		return nil, err
	}
	return dc, nil
}

func (c Config) name() string {
	if c.Codec == "" {
		return BytesCodec
	}
	return c.Codec
}
