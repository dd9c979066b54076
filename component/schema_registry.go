package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/c360/semdecode/config"
	"github.com/c360/semdecode/errors"
	"github.com/c360/semdecode/schema"
)

// SchemaRegistration records the event shape a component publishes on a subject.
type SchemaRegistration struct {
	Subject    string              `json:"subject"`
	Component  string              `json:"component"`
	DataType   config.DataType     `json:"data_type"`
	Namespace  config.LogNamespace `json:"namespace"`
	Definition *schema.Definition  `json:"-"`
}

// SchemaRegistry tracks the schema definition behind each output subject so
// consumers can look up what a subject carries. Registering the same
// definition twice is a no-op; a conflicting definition is rejected.
type SchemaRegistry struct {
	registrations map[string]SchemaRegistration
	mu            sync.RWMutex
}

// NewSchemaRegistry creates a new empty schema registry.
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{
		registrations: make(map[string]SchemaRegistration),
	}
}

// Register stores reg. It reports whether the registration was new.
func (sr *SchemaRegistry) Register(reg SchemaRegistration) (bool, error) {
	if reg.Subject == "" {
		return false, errors.WrapInvalid(errors.ErrInvalidConfig, "SchemaRegistry", "Register", "subject validation")
	}
	if reg.Definition == nil {
		return false, errors.WrapInvalid(errors.ErrInvalidConfig, "SchemaRegistry", "Register", "definition validation")
	}

	sr.mu.Lock()
	defer sr.mu.Unlock()

	if existing, exists := sr.registrations[reg.Subject]; exists {
		if existing.Definition.String() == reg.Definition.String() && existing.DataType == reg.DataType {
			return false, nil
		}
		return false, errors.WrapInvalid(
			fmt.Errorf("%w: subject %q already carries a schema registered by %q",
				errors.ErrSchemaMismatch, reg.Subject, existing.Component),
			"SchemaRegistry", "Register", "duplicate schema check")
	}

	sr.registrations[reg.Subject] = reg
	return true, nil
}

// Lookup returns the registration for subject.
func (sr *SchemaRegistry) Lookup(subject string) (SchemaRegistration, bool) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	reg, ok := sr.registrations[subject]
	return reg, ok
}

// Unregister removes every registration owned by componentName and returns how many were removed.
func (sr *SchemaRegistry) Unregister(componentName string) int {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	removed := 0
	for subject, reg := range sr.registrations {
		if reg.Component == componentName {
			delete(sr.registrations, subject)
			removed++
		}
	}
	return removed
}

// List returns all registrations ordered by subject.
func (sr *SchemaRegistry) List() []SchemaRegistration {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	result := make([]SchemaRegistration, 0, len(sr.registrations))
	for _, reg := range sr.registrations {
		result = append(result, reg)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Subject < result[j].Subject
	})
	return result
}
