package decoder

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/c360/semdecode/codec"
	"github.com/c360/semdecode/component"
	"github.com/c360/semdecode/config"
	"github.com/c360/semdecode/errors"
)

// EventType is the CloudEvents type of every published event.
const EventType = "semdecode.log.v1"

// Config holds configuration for the decode processor
type Config struct {
	Name       string                `json:"name,omitempty"        yaml:"name,omitempty"`
	Ports      *component.PortConfig `json:"ports,omitempty"       yaml:"ports,omitempty"`
	Codec      codec.Config          `json:"codec"                 yaml:"codec"`
	Namespace  config.LogNamespace   `json:"namespace"             yaml:"namespace"`
	LogSchema  config.LogSchema      `json:"log_schema"            yaml:"log_schema"`
	SourceType string                `json:"source_type,omitempty" yaml:"source_type,omitempty"`
	// Enrich adds source type and ingest time to every event.
	Enrich bool `json:"enrich" yaml:"enrich"`
	// Conform checks every event against the declared schema before publishing.
	Conform   bool   `json:"conform,omitempty"    yaml:"conform,omitempty"`
	EventType string `json:"event_type,omitempty" yaml:"event_type,omitempty"`
}

// DefaultConfig returns the default configuration for the decode processor
func DefaultConfig() Config {
	return Config{
		Name: "decoder",
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "nats_input",
					Type:        "nats",
					Subject:     "logs.raw",
					Required:    true,
					Description: "NATS subject carrying raw payloads",
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "nats_output",
					Type:        "nats",
					Subject:     "logs.decoded",
					Interface:   EventType,
					Required:    true,
					Description: "NATS subject for decoded events as CloudEvents",
				},
			},
		},
		Codec:      codec.Config{Codec: codec.BytesCodec},
		Namespace:  config.NamespaceLegacy,
		LogSchema:  config.DefaultLogSchema(),
		SourceType: "nats",
		Enrich:     true,
		EventType:  EventType,
	}
}

// ParseConfig overlays raw on DefaultConfig. Empty input yields the defaults.
func ParseConfig(raw json.RawMessage) (Config, error) {
	cfg := DefaultConfig()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return Config{}, errors.WrapInvalid(err, "DecodeProcessor", "ParseConfig", "config unmarshal")
		}
	}
	if cfg.Ports == nil {
		cfg.Ports = DefaultConfig().Ports
	}
	if cfg.Name == "" {
		cfg.Name = "decoder"
	}
	if cfg.EventType == "" {
		cfg.EventType = EventType
	}
	cfg.LogSchema = cfg.LogSchema.WithDefaults()
	return cfg, nil
}

// Validate checks ports, namespace, log schema and codec selection.
func (c Config) Validate() error {
	if err := component.ValidateComponentName(c.Name); err != nil {
		return err
	}
	if c.Ports == nil {
		return errors.WrapInvalid(errors.ErrMissingConfig, "DecodeProcessor", "Validate", "ports")
	}

	inputs := component.Subjects(c.Ports.Inputs)
	if len(inputs) == 0 {
		return errors.WrapInvalid(errors.ErrMissingConfig, "DecodeProcessor", "Validate", "no input subjects configured")
	}
	for _, subject := range inputs {
		if !config.IsValidSubject(subject) {
			return errors.WrapInvalid(fmt.Errorf("%w: input subject %q", errors.ErrInvalidConfig, subject),
				"DecodeProcessor", "Validate", "input subject")
		}
	}

	output := c.OutputSubject()
	if output == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "DecodeProcessor", "Validate", "no output subject configured")
	}
	if !config.IsValidSubject(output) || strings.ContainsAny(output, "*>") {
		return errors.WrapInvalid(fmt.Errorf("%w: output subject %q", errors.ErrInvalidConfig, output),
			"DecodeProcessor", "Validate", "output subject")
	}

	if !c.Namespace.IsValid() {
		return errors.WrapInvalid(fmt.Errorf("%w: namespace %d", errors.ErrInvalidConfig, int(c.Namespace)),
			"DecodeProcessor", "Validate", "namespace")
	}
	if err := c.LogSchema.Validate(); err != nil {
		return errors.WrapInvalid(err, "DecodeProcessor", "Validate", "log schema")
	}
	if err := c.Codec.Validate(); err != nil {
		return errors.WrapFatal(err, "DecodeProcessor", "Validate", "codec selection")
	}
	return nil
}

// InputSubjects returns the NATS subjects the processor subscribes to.
func (c Config) InputSubjects() []string {
	if c.Ports == nil {
		return nil
	}
	return component.Subjects(c.Ports.Inputs)
}

// OutputSubject returns the first NATS output subject.
func (c Config) OutputSubject() string {
	if c.Ports == nil {
		return ""
	}
	if subjects := component.Subjects(c.Ports.Outputs); len(subjects) > 0 {
		return subjects[0]
	}
	return ""
}

var decoderSchema = component.ConfigSchema{
	Properties: map[string]component.PropertySchema{
		"name": {
			Type:        "string",
			Description: "Component instance name, used as CloudEvents source",
			Default:     "decoder",
			Category:    "basic",
		},
		"ports": {
			Type:        "ports",
			Description: "Input subjects and the output subject",
			Category:    "basic",
		},
		"codec": {
			Type:        "object",
			Description: "Codec selection: {\"codec\": \"bytes\"} or {\"codec\": \"json\", \"json\": {\"lossy\": true}}",
			Default:     map[string]any{"codec": codec.BytesCodec},
			Category:    "basic",
		},
		"namespace": {
			Type:        "enum",
			Description: "Event layout",
			Default:     "legacy",
			Enum:        []string{"legacy", "modern"},
			Category:    "basic",
		},
		"log_schema": {
			Type:        "object",
			Description: "Message, timestamp, host and source type keys",
			Category:    "advanced",
		},
		"source_type": {
			Type:        "string",
			Description: "Source type recorded when enrich is set",
			Default:     "nats",
			Category:    "advanced",
		},
		"enrich": {
			Type:        "bool",
			Description: "Add source type and ingest time to every event",
			Default:     true,
			Category:    "advanced",
		},
		"conform": {
			Type:        "bool",
			Description: "Check every event against the declared schema before publishing",
			Default:     false,
			Category:    "advanced",
		},
		"event_type": {
			Type:        "string",
			Description: "CloudEvents type of published events",
			Default:     EventType,
			Category:    "advanced",
		},
	},
	Required: []string{"ports"},
}
