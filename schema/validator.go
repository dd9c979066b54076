package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/semdecode/errors"
	"github.com/c360/semdecode/event"
)

// Validator checks encoded events against a definition's JSON Schema. It is
// meant for tooling and tests at the edges of a pipeline; decoders never call
// it on the hot path.
type Validator struct {
	event    *gojsonschema.Schema
	metadata *gojsonschema.Schema
}

// NewValidator compiles the event and metadata schemas of def.
func NewValidator(def *Definition) (*Validator, error) {
	eventSchema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def.JSONSchema()))
	if err != nil {
		return nil, errors.WrapFatal(err, "Validator", "NewValidator", "compile event schema")
	}
	metadataSchema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def.MetadataJSONSchema()))
	if err != nil {
		return nil, errors.WrapFatal(err, "Validator", "NewValidator", "compile metadata schema")
	}
	return &Validator{event: eventSchema, metadata: metadataSchema}, nil
}

// Validate checks a JSON-encoded event value.
func (v *Validator) Validate(document []byte) error {
	return validate(v.event, gojsonschema.NewBytesLoader(document), "event")
}

// ValidateLog encodes log and checks both its value and its metadata.
func (v *Validator) ValidateLog(log *event.LogEvent) error {
	value, err := log.MarshalJSON()
	if err != nil {
		return errors.WrapInvalid(err, "Validator", "ValidateLog", "encode event")
	}
	if err := validate(v.event, gojsonschema.NewBytesLoader(value), "event"); err != nil {
		return err
	}
	metadata, err := log.MetadataJSON()
	if err != nil {
		return errors.WrapInvalid(err, "Validator", "ValidateLog", "encode metadata")
	}
	return validate(v.metadata, gojsonschema.NewBytesLoader(metadata), "metadata")
}

func validate(schema *gojsonschema.Schema, document gojsonschema.JSONLoader, what string) error {
	result, err := schema.Validate(document)
	if err != nil {
		return errors.WrapInvalid(err, "Validator", "Validate", "load "+what)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return fmt.Errorf("%w: %s %s", errors.ErrSchemaMismatch, what, strings.Join(problems, "; "))
}
