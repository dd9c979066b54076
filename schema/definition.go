package schema

import (
	"fmt"
	"sort"

	"github.com/c360/semdecode/config"
	"github.com/c360/semdecode/errors"
	"github.com/c360/semdecode/event"
	"github.com/c360/semdecode/lookup"
)

// Well-known semantic meanings.
const (
	MeaningMessage    = "message"
	MeaningTimestamp  = "timestamp"
	MeaningHost       = "host"
	MeaningSourceType = "source_type"
)

// Definition declares the shape of the events a component produces: the kind
// of the event value, the kind of the metadata, and semantic meanings that
// name well-known locations independently of their path.
//
// Definitions are immutable; the With* methods return modified copies.
type Definition struct {
	eventKind     Kind
	metadataKind  Kind
	meanings      map[string]lookup.TargetPath
	logNamespaces map[config.LogNamespace]struct{}
}

// EmptyLegacyNamespace returns the baseline Legacy definition: an object with
// no fields. Decoders add their own fields with WithEventField.
func EmptyLegacyNamespace() *Definition {
	return &Definition{
		eventKind:     EmptyObject(),
		metadataKind:  EmptyObject().WithUnknownFields(Any()),
		meanings:      map[string]lookup.TargetPath{},
		logNamespaces: map[config.LogNamespace]struct{}{config.NamespaceLegacy: {}},
	}
}

// NewWithDefaultMetadata returns a definition whose event value has kind
// eventKind and whose metadata is the default for the given namespaces.
func NewWithDefaultMetadata(eventKind Kind, namespaces ...config.LogNamespace) *Definition {
	d := &Definition{
		eventKind:     eventKind,
		metadataKind:  EmptyObject().WithUnknownFields(Any()),
		meanings:      map[string]lookup.TargetPath{},
		logNamespaces: map[config.LogNamespace]struct{}{},
	}
	for _, ns := range namespaces {
		d.logNamespaces[ns] = struct{}{}
		if ns == config.NamespaceModern {
			d.metadataKind = d.metadataKind.InsertAtPath(lookup.ValuePath{lookup.FieldSegment(event.MetadataNamespace)},
				sourceMetadataKind())
		}
	}
	return d
}

// ForNamespace returns the baseline definition of a namespace: an empty Legacy
// object, or a Modern definition whose value is eventKind.
func ForNamespace(ns config.LogNamespace, eventKind Kind) *Definition {
	if ns == config.NamespaceModern {
		return NewWithDefaultMetadata(eventKind, ns)
	}
	return EmptyLegacyNamespace()
}

// sourceMetadataKind is the optional source information every Modern event may
// carry in its metadata.
func sourceMetadataKind() Kind {
	return Object(map[string]Kind{
		"source_type":      Bytes().Or(Undefined()),
		"ingest_timestamp": Timestamp().Or(Undefined()),
	}).Or(Undefined())
}

// WithEventField declares kind at path within the event value. A non-empty
// meaning tags the location.
func (d *Definition) WithEventField(path lookup.ValuePath, kind Kind, meaning string) *Definition {
	out := d.clone()
	out.eventKind = out.eventKind.InsertAtPath(path, kind)
	if meaning != "" {
		out.meanings[meaning] = lookup.EventPath(path)
	}
	return out
}

// OptionalEventField declares a field that may be absent.
func (d *Definition) OptionalEventField(path lookup.ValuePath, kind Kind, meaning string) *Definition {
	return d.WithEventField(path, kind.Or(Undefined()), meaning)
}

// WithMetadataField declares kind at path within the metadata.
func (d *Definition) WithMetadataField(path lookup.ValuePath, kind Kind, meaning string) *Definition {
	out := d.clone()
	out.metadataKind = out.metadataKind.InsertAtPath(path, kind)
	if meaning != "" {
		out.meanings[meaning] = lookup.MetadataPath(path)
	}
	return out
}

// WithMeaning tags an existing location.
func (d *Definition) WithMeaning(target lookup.TargetPath, meaning string) *Definition {
	out := d.clone()
	out.meanings[meaning] = target
	return out
}

// UnknownFields allows undeclared event fields of kind u.
func (d *Definition) UnknownFields(u Kind) *Definition {
	out := d.clone()
	out.eventKind = out.eventKind.WithUnknownFields(u)
	return out
}

// WithStandardSourceMetadata declares what event.InsertStandardSourceMetadata
// adds. Legacy fields are optional so existing values from the payload keep
// their declared kind.
func (d *Definition) WithStandardSourceMetadata(ls config.LogSchema) (*Definition, error) {
	out := d
	if _, ok := d.logNamespaces[config.NamespaceLegacy]; ok {
		ls = ls.WithDefaults()
		sourceKey, err := ls.SourceTypeKeyPath()
		if err != nil {
			return nil, errors.WrapInvalid(err, "Definition", "WithStandardSourceMetadata", "resolve source type key")
		}
		timestampKey, err := ls.TimestampKeyPath()
		if err != nil {
			return nil, errors.WrapInvalid(err, "Definition", "WithStandardSourceMetadata", "resolve timestamp key")
		}
		out = out.withMergedEventField(sourceKey, Bytes(), MeaningSourceType)
		out = out.withMergedEventField(timestampKey, Timestamp(), MeaningTimestamp)
	}
	if _, ok := d.logNamespaces[config.NamespaceModern]; ok {
		out = out.WithMetadataField(event.SourceTypeMetadataPath, Bytes(), MeaningSourceType)
		out = out.WithMetadataField(event.IngestTimestampMetadataPath, Timestamp(), MeaningTimestamp)
	}
	return out, nil
}

// withMergedEventField widens an existing declaration instead of replacing it.
func (d *Definition) withMergedEventField(path lookup.ValuePath, kind Kind, meaning string) *Definition {
	if existing, ok := d.eventKind.AtPath(path); ok {
		kind = existing.Or(kind)
	}
	out := d.WithEventField(path, kind, "")
	if _, taken := out.meanings[meaning]; !taken {
		out.meanings[meaning] = lookup.EventPath(path)
	}
	return out
}

// EventKind returns the kind of the event value.
func (d *Definition) EventKind() Kind { return d.eventKind }

// MetadataKind returns the kind of the metadata.
func (d *Definition) MetadataKind() Kind { return d.metadataKind }

// Meaning returns the location tagged with meaning.
func (d *Definition) Meaning(meaning string) (lookup.TargetPath, bool) {
	target, ok := d.meanings[meaning]
	return target, ok
}

// Meanings returns the tagged meanings in sorted order.
func (d *Definition) Meanings() []string {
	out := make([]string, 0, len(d.meanings))
	for m := range d.meanings {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// LogNamespaces returns the namespaces this definition applies to, sorted.
func (d *Definition) LogNamespaces() []config.LogNamespace {
	out := make([]config.LogNamespace, 0, len(d.logNamespaces))
	for ns := range d.logNamespaces {
		out = append(out, ns)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HasNamespace reports whether the definition applies to ns.
func (d *Definition) HasNamespace(ns config.LogNamespace) bool {
	_, ok := d.logNamespaces[ns]
	return ok
}

// Conforms checks a decoded log against the definition. Meanings must resolve
// to a location the log either holds or declares optional.
func (d *Definition) Conforms(log *event.LogEvent) error {
	if err := d.eventKind.Check(log.Value()); err != nil {
		return fmt.Errorf("%w: event %v", errors.ErrSchemaMismatch, err)
	}
	if err := d.metadataKind.Check(log.Metadata()); err != nil {
		return fmt.Errorf("%w: metadata %v", errors.ErrSchemaMismatch, err)
	}
	for _, meaning := range d.Meanings() {
		target := d.meanings[meaning]
		if _, ok := log.GetTarget(target); ok {
			continue
		}
		kind, declared := d.kindAt(target)
		if !declared || !kind.ContainsUndefined() {
			return fmt.Errorf("%w: meaning %q at %s missing", errors.ErrSchemaMismatch, meaning, target)
		}
	}
	return nil
}

func (d *Definition) kindAt(target lookup.TargetPath) (Kind, bool) {
	if target.Prefix == lookup.PrefixMetadata {
		return d.metadataKind.AtPath(target.Path)
	}
	return d.eventKind.AtPath(target.Path)
}

// String renders the definition for diagnostics.
func (d *Definition) String() string {
	meanings := ""
	for _, m := range d.Meanings() {
		meanings += fmt.Sprintf(" %s=%s", m, d.meanings[m])
	}
	return fmt.Sprintf("event: %s; metadata: %s; meanings:%s; namespaces: %v",
		d.eventKind, d.metadataKind, meanings, d.LogNamespaces())
}

func (d *Definition) clone() *Definition {
	out := &Definition{
		eventKind:     d.eventKind,
		metadataKind:  d.metadataKind,
		meanings:      make(map[string]lookup.TargetPath, len(d.meanings)),
		logNamespaces: make(map[config.LogNamespace]struct{}, len(d.logNamespaces)),
	}
	for k, v := range d.meanings {
		out.meanings[k] = v
	}
	for k := range d.logNamespaces {
		out.logNamespaces[k] = struct{}{}
	}
	return out
}
