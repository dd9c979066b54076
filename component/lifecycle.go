package component

import (
	"context"
	"time"
)

// State is where a component sits in its lifecycle. Processors move
// created -> initialized -> started -> stopped, and may be started again
// after a stop.
type State int

const (
	StateCreated State = iota
	StateInitialized
	StateStarted
	StateStopped
	StateFailed
)

var stateNames = [...]string{
	StateCreated:     "created",
	StateInitialized: "initialized",
	StateStarted:     "started",
	StateStopped:     "stopped",
	StateFailed:      "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// LifecycleComponent is a Discoverable the CLI can run.
//
// Initialize validates and prepares without touching the network. Start
// subscribes to the input subjects; Stop stops accepting payloads and waits
// up to timeout for in-flight work.
type LifecycleComponent interface {
	Discoverable
	Initialize() error
	Start(ctx context.Context) error
	Stop(timeout time.Duration) error
}

// AsLifecycleComponent reports whether comp can be started and stopped.
func AsLifecycleComponent(comp Discoverable) (LifecycleComponent, bool) {
	lc, ok := comp.(LifecycleComponent)
	return lc, ok
}
