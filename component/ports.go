package component

// PortDefinition represents a port configuration from JSON or YAML
type PortDefinition struct {
	Name        string `json:"name"                  yaml:"name"`
	Type        string `json:"type,omitempty"        yaml:"type,omitempty"`
	Subject     string `json:"subject,omitempty"     yaml:"subject,omitempty"`
	Queue       string `json:"queue,omitempty"       yaml:"queue,omitempty"`
	Interface   string `json:"interface,omitempty"   yaml:"interface,omitempty"`
	Required    bool   `json:"required,omitempty"    yaml:"required,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// PortConfig represents port configuration in component config
type PortConfig struct {
	Inputs  []PortDefinition `json:"inputs,omitempty"  yaml:"inputs,omitempty"`
	Outputs []PortDefinition `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// Subjects returns the subjects of all NATS definitions in defs, in order.
func Subjects(defs []PortDefinition) []string {
	var subjects []string
	for _, def := range defs {
		if def.Type == "" || def.Type == "nats" {
			if def.Subject != "" {
				subjects = append(subjects, def.Subject)
			}
		}
	}
	return subjects
}

// BuildPortFromDefinition creates a Port from a PortDefinition
func BuildPortFromDefinition(def PortDefinition, direction Direction) Port {
	port := Port{
		Name:        def.Name,
		Direction:   direction,
		Required:    def.Required,
		Description: def.Description,
	}

	var iface *InterfaceContract
	if def.Interface != "" {
		iface = &InterfaceContract{
			Type:    def.Interface,
			Version: "v1",
		}
	}

	switch def.Type {
	case "stdio", "file":
		port.Config = StdioPort{
			Path:      def.Subject, // Subject holds the file path
			Interface: iface,
		}
	default: // Default to NATS pub/sub
		port.Config = NATSPort{
			Subject:   def.Subject,
			Queue:     def.Queue,
			Interface: iface,
		}
	}

	return port
}
