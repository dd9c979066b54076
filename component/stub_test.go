package component

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/c360/semdecode/errors"
)

// stubComponent is a minimal LifecycleComponent used by the registry and
// lifecycle suite tests.
type stubComponent struct {
	name    string
	mu      sync.Mutex
	running bool
}

func newStubFactory(rawConfig json.RawMessage, _ Dependencies) (Discoverable, error) {
	cfg := struct {
		Name string `json:"name"`
	}{Name: "stub"}
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return nil, err
		}
	}
	return &stubComponent{name: cfg.Name}, nil
}

func (s *stubComponent) Meta() Metadata {
	return Metadata{Name: s.name, Type: "processor", Version: "0.0.0"}
}

func (s *stubComponent) InputPorts() []Port  { return nil }
func (s *stubComponent) OutputPorts() []Port { return nil }

func (s *stubComponent) ConfigSchema() ConfigSchema {
	return ConfigSchema{
		Properties: map[string]PropertySchema{
			"name": {Type: "string", Description: "Component name"},
		},
	}
}

func (s *stubComponent) Health() HealthStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return HealthStatus{Healthy: s.running, LastCheck: time.Now()}
}

func (s *stubComponent) DataFlow() FlowMetrics { return FlowMetrics{} }

func (s *stubComponent) Initialize() error { return nil }

func (s *stubComponent) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.ErrAlreadyStarted
	}
	s.running = true
	return nil
}

func (s *stubComponent) Stop(time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}
