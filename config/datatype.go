package config

import (
	"fmt"
	"strings"
)

// DataType is the high-level category of events a component produces or accepts.
// Values are bit flags so a consumer can declare it accepts several categories.
type DataType uint8

const (
	// DataTypeLog is a log event.
	DataTypeLog DataType = 1 << iota
	// DataTypeMetric is a metric event.
	DataTypeMetric
	// DataTypeTrace is a trace event.
	DataTypeTrace

	// DataTypeAll accepts every category.
	DataTypeAll = DataTypeLog | DataTypeMetric | DataTypeTrace
)

// Contains reports whether every category in other is also in dt.
func (dt DataType) Contains(other DataType) bool {
	return other != 0 && dt&other == other
}

// Intersects reports whether dt and other share at least one category.
func (dt DataType) Intersects(other DataType) bool {
	return dt&other != 0
}

// String renders the categories joined by "|", e.g. "log|metric".
func (dt DataType) String() string {
	if dt == 0 {
		return "none"
	}
	if dt == DataTypeAll {
		return "all"
	}
	var parts []string
	if dt&DataTypeLog != 0 {
		parts = append(parts, "log")
	}
	if dt&DataTypeMetric != 0 {
		parts = append(parts, "metric")
	}
	if dt&DataTypeTrace != 0 {
		parts = append(parts, "trace")
	}
	return strings.Join(parts, "|")
}

// MarshalText implements encoding.TextMarshaler
func (dt DataType) MarshalText() ([]byte, error) {
	return []byte(dt.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (dt *DataType) UnmarshalText(text []byte) error {
	var out DataType
	for _, part := range strings.Split(string(text), "|") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "log":
			out |= DataTypeLog
		case "metric":
			out |= DataTypeMetric
		case "trace":
			out |= DataTypeTrace
		case "all":
			out |= DataTypeAll
		case "none", "":
		default:
			return fmt.Errorf("unknown data type %q", part)
		}
	}
	*dt = out
	return nil
}
