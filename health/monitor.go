package health

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
)

// Check reports the current health of one component.
type Check func() Status

// Monitor aggregates component checks. Checks are evaluated on every
// AggregateHealth call, so results are never stale.
type Monitor struct {
	name   string
	mu     sync.RWMutex
	checks map[string]Check
}

// NewMonitor creates a monitor reporting under the given system name.
func NewMonitor(name string) *Monitor {
	return &Monitor{
		name:   name,
		checks: make(map[string]Check),
	}
}

// Register adds or replaces the check for name.
func (m *Monitor) Register(name string, check Check) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[name] = check
}

// Remove stops monitoring name.
func (m *Monitor) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.checks, name)
}

// Count returns the number of registered checks
func (m *Monitor) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.checks)
}

// Get evaluates the check for name.
func (m *Monitor) Get(name string) (Status, bool) {
	m.mu.RLock()
	check, ok := m.checks[name]
	m.mu.RUnlock()
	if !ok {
		return Status{}, false
	}
	return m.evaluate(name, check), true
}

// AggregateHealth evaluates every check, sorted by name, and aggregates them.
func (m *Monitor) AggregateHealth() Status {
	m.mu.RLock()
	names := make([]string, 0, len(m.checks))
	for name := range m.checks {
		names = append(names, name)
	}
	checks := make(map[string]Check, len(m.checks))
	for name, check := range m.checks {
		checks[name] = check
	}
	m.mu.RUnlock()

	sort.Strings(names)
	subStatuses := make([]Status, 0, len(names))
	for _, name := range names {
		subStatuses = append(subStatuses, m.evaluate(name, checks[name]))
	}
	return Aggregate(m.name, subStatuses)
}

func (m *Monitor) evaluate(name string, check Check) Status {
	status := check()
	status.Component = name
	return status
}

// Handler serves the aggregate status as JSON. Unhealthy yields 503;
// degraded still answers 200 so load balancers keep routing.
func (m *Monitor) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := m.AggregateHealth()

		code := http.StatusOK
		if status.IsUnhealthy() {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	})
}
