package component

import (
	"encoding/json"
	"fmt"

	"github.com/c360/semdecode/errors"
)

// Direction says whether a port carries data into or out of a component.
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// Port is one named input or output of a component.
type Port struct {
	Name        string    `json:"name"`
	Direction   Direction `json:"direction"`
	Required    bool      `json:"required"`
	Description string    `json:"description"`
	Config      Portable  `json:"config"`
}

// Portable is the transport-specific half of a Port. ResourceID identifies
// what the port binds to; exclusive resources may not be shared between
// components.
type Portable interface {
	ResourceID() string
	IsExclusive() bool
	Type() string
}

// InterfaceContract names the message shape carried on a port
type InterfaceContract struct {
	Type       string   `json:"type"`              // e.g. "semdecode.log.v1"
	Version    string   `json:"version,omitempty"` // e.g. "v1"
	Compatible []string `json:"compatible,omitempty"`
}

// taggedConfig is the wire form of Port.Config.
type taggedConfig struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// portConfigDecoders rebuilds a Portable from its tagged data.
var portConfigDecoders = map[string]func(json.RawMessage) (Portable, error){
	"nats": func(data json.RawMessage) (Portable, error) {
		var cfg NATSPort
		err := json.Unmarshal(data, &cfg)
		return cfg, err
	},
	"stdio": func(data json.RawMessage) (Portable, error) {
		var cfg StdioPort
		err := json.Unmarshal(data, &cfg)
		return cfg, err
	},
}

// MarshalJSON writes Config as {"type": ..., "data": ...} so UnmarshalJSON
// can pick the concrete type back.
func (p Port) MarshalJSON() ([]byte, error) {
	type plain Port
	out := struct {
		plain
		Config *taggedConfig `json:"config"`
	}{plain: plain(p)}

	if p.Config != nil {
		data, err := json.Marshal(p.Config)
		if err != nil {
			return nil, errors.Wrap(err, "Port", "MarshalJSON", "encode "+p.Config.Type()+" config")
		}
		out.Config = &taggedConfig{Type: p.Config.Type(), Data: data}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON. Unknown config types are invalid.
func (p *Port) UnmarshalJSON(data []byte) error {
	type plain Port
	in := struct {
		*plain
		Config *taggedConfig `json:"config"`
	}{plain: (*plain)(p)}

	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	p.Config = nil
	if in.Config == nil {
		return nil
	}

	decode, ok := portConfigDecoders[in.Config.Type]
	if !ok {
		return errors.WrapInvalid(fmt.Errorf("unknown config type: %s", in.Config.Type),
			"Port", "UnmarshalJSON", "config type validation")
	}
	cfg, err := decode(in.Config.Data)
	if err != nil {
		return errors.Wrap(err, "Port", "UnmarshalJSON", "decode "+in.Config.Type+" config")
	}
	p.Config = cfg
	return nil
}
