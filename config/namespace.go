package config

import (
	"fmt"
	"strings"
)

// LogNamespace selects how decoded data is laid out inside a log event and how
// the matching schema is declared.
//
// Legacy places the decoded payload at the configured message key and keeps
// event metadata out of the event value. Modern places the decoded payload at
// the event root and keeps source metadata in the event metadata.
//
// A pipeline must use the same namespace for schema declaration and for decoding.
type LogNamespace int

const (
	// NamespaceLegacy is the flat, message-key based layout.
	NamespaceLegacy LogNamespace = iota
	// NamespaceModern is the root-value layout with separate metadata.
	NamespaceModern
)

// String returns the string representation of LogNamespace
func (ns LogNamespace) String() string {
	switch ns {
	case NamespaceLegacy:
		return "legacy"
	case NamespaceModern:
		return "modern"
	default:
		return fmt.Sprintf("LogNamespace(%d)", int(ns))
	}
}

// IsValid reports whether ns is one of the defined namespaces.
func (ns LogNamespace) IsValid() bool {
	return ns == NamespaceLegacy || ns == NamespaceModern
}

// ParseLogNamespace parses "legacy" or "modern". "vector" is accepted as an
// alias of "modern" for configurations written against older tooling.
func ParseLogNamespace(s string) (LogNamespace, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy":
		return NamespaceLegacy, nil
	case "modern", "vector":
		return NamespaceModern, nil
	default:
		return NamespaceLegacy, fmt.Errorf("unknown log namespace %q (must be \"legacy\" or \"modern\")", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (ns LogNamespace) MarshalText() ([]byte, error) {
	if !ns.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid log namespace %d", int(ns))
	}
	return []byte(ns.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (ns *LogNamespace) UnmarshalText(text []byte) error {
	parsed, err := ParseLogNamespace(string(text))
	if err != nil {
		return err
	}
	*ns = parsed
	return nil
}
