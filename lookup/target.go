package lookup

import (
	"fmt"
	"strings"

	"github.com/c360/semdecode/errors"
)

// PathPrefix selects which part of an event a TargetPath addresses.
type PathPrefix int

const (
	// PrefixEvent addresses the event value.
	PrefixEvent PathPrefix = iota
	// PrefixMetadata addresses the event metadata.
	PrefixMetadata
)

// String returns the string representation of PathPrefix
func (p PathPrefix) String() string {
	switch p {
	case PrefixEvent:
		return "event"
	case PrefixMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

// TargetPath is a ValuePath anchored at either the event value or its metadata.
type TargetPath struct {
	Prefix PathPrefix
	Path   ValuePath
}

// EventRoot addresses the whole event value.
func EventRoot() TargetPath {
	return TargetPath{Prefix: PrefixEvent, Path: ValuePath{}}
}

// MetadataRoot addresses the whole metadata value.
func MetadataRoot() TargetPath {
	return TargetPath{Prefix: PrefixMetadata, Path: ValuePath{}}
}

// EventPath anchors path at the event value.
func EventPath(path ValuePath) TargetPath {
	return TargetPath{Prefix: PrefixEvent, Path: path}
}

// MetadataPath anchors path at the event metadata.
func MetadataPath(path ValuePath) TargetPath {
	return TargetPath{Prefix: PrefixMetadata, Path: path}
}

// Equal reports whether both target paths address the same location.
func (t TargetPath) Equal(other TargetPath) bool {
	return t.Prefix == other.Prefix && t.Path.Equal(other.Path)
}

// String renders the target path; metadata paths are prefixed with "%".
func (t TargetPath) String() string {
	if t.Prefix == PrefixMetadata {
		if t.Path.IsRoot() {
			return "%"
		}
		return "%" + t.Path.String()
	}
	return t.Path.String()
}

// ParseTargetPath parses a target path. A leading "%" selects metadata.
func ParseTargetPath(s string) (TargetPath, error) {
	trimmed := strings.TrimSpace(s)
	prefix := PrefixEvent
	if strings.HasPrefix(trimmed, "%") {
		prefix = PrefixMetadata
		trimmed = trimmed[1:]
	}
	path, err := ParseValuePath(trimmed)
	if err != nil {
		return TargetPath{}, errors.Wrap(err, "lookup", "ParseTargetPath", fmt.Sprintf("parse %s path", prefix))
	}
	return TargetPath{Prefix: prefix, Path: path}, nil
}
