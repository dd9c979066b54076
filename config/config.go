package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode"
)

// Config represents the complete application configuration
type Config struct {
	Version      string          `json:"version,omitempty"`
	LogSchema    LogSchema       `json:"log_schema"`
	LogNamespace LogNamespace    `json:"log_namespace"`
	Decoding     json.RawMessage `json:"decoding,omitempty"`  // Codec selection, parsed by the codec package
	Processor    json.RawMessage `json:"processor,omitempty"` // Decode processor settings, parsed by its factory
	NATS         NATSConfig      `json:"nats"`
	Metrics      MetricsConfig   `json:"metrics"`
}

// NATSConfig defines NATS connection settings
type NATSConfig struct {
	URLs          []string      `json:"urls,omitempty"`
	Name          string        `json:"name,omitempty"`
	MaxReconnects int           `json:"max_reconnects,omitempty"`
	ReconnectWait time.Duration `json:"reconnect_wait,omitempty"`
	Username      string        `json:"username,omitempty"`
	Password      string        `json:"password,omitempty"`
	Token         string        `json:"token,omitempty"`
}

// MetricsConfig defines the Prometheus endpoint. Port 0 disables the server.
type MetricsConfig struct {
	Port int    `json:"port,omitempty"`
	Path string `json:"path,omitempty"`
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if !c.LogNamespace.IsValid() {
		return fmt.Errorf("log_namespace: invalid value %d", int(c.LogNamespace))
	}

	if err := c.LogSchema.Validate(); err != nil {
		return err
	}

	if c.Decoding != nil && !json.Valid(c.Decoding) {
		return errors.New("decoding: not valid JSON")
	}
	if c.Processor != nil && !json.Valid(c.Processor) {
		return errors.New("processor: not valid JSON")
	}

	for i, url := range c.NATS.URLs {
		if url == "" {
			return fmt.Errorf("nats.urls[%d] cannot be empty", i)
		}
	}

	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port out of range: %d", c.Metrics.Port)
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}

	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}

	return &clone
}

// String returns a JSON rendering of the configuration with secrets masked.
func (c *Config) String() string {
	masked := c.Clone()
	if masked.NATS.Password != "" {
		masked.NATS.Password = "***"
	}
	if masked.NATS.Token != "" {
		masked.NATS.Token = "***"
	}
	data, err := json.MarshalIndent(masked, "", "  ")
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}

// IsValidSubject checks if a string is usable as a NATS subject.
// Tokens are dot separated; "*" and a trailing ">" are wildcards.
func IsValidSubject(s string) bool {
	if s == "" {
		return false
	}

	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != '.' {
			continue
		}
		token := s[start:i]
		start = i + 1
		switch {
		case token == "":
			return false
		case token == "*":
		case token == ">":
			if i != len(s) {
				return false
			}
		default:
			for _, r := range token {
				if unicode.IsSpace(r) || r == '*' || r == '>' {
					return false
				}
			}
		}
	}
	return true
}
