package component

import "fmt"

// NATSPort - NATS pub/sub
type NATSPort struct {
	Subject   string             `json:"subject"`
	Queue     string             `json:"queue,omitempty"`
	Interface *InterfaceContract `json:"interface,omitempty"`
}

// ResourceID returns unique identifier for NATS ports
func (n NATSPort) ResourceID() string {
	return fmt.Sprintf("nats:%s", n.Subject)
}

// IsExclusive returns false as multiple components can subscribe
func (n NATSPort) IsExclusive() bool {
	return false
}

// Type returns the port type identifier
func (n NATSPort) Type() string {
	return "nats"
}

// StdioPort - newline-framed payloads on a file or the process's standard streams
type StdioPort struct {
	Path      string             `json:"path,omitempty"` // empty means stdin/stdout
	Interface *InterfaceContract `json:"interface,omitempty"`
}

// ResourceID returns unique identifier for stdio ports
func (s StdioPort) ResourceID() string {
	if s.Path == "" {
		return "stdio:-"
	}
	return fmt.Sprintf("stdio:%s", s.Path)
}

// IsExclusive returns true: a stream has a single reader
func (s StdioPort) IsExclusive() bool {
	return true
}

// Type returns the port type identifier
func (s StdioPort) Type() string {
	return "stdio"
}
