package event

import (
	"bytes"
	"fmt"
	"math"
	"time"
)

// Normalize converts v into the closed set of event value types.
// Containers are converted recursively; unsupported types are rendered with
// fmt and stored as byte strings.
func Normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return val
	case string:
		return []byte(val)
	case bool:
		return val
	case int64:
		return val
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint:
		return unsignedValue(uint64(val))
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return unsignedValue(val)
	case float64:
		return val
	case float32:
		return float64(val)
	case time.Time:
		return val
	case map[string]any:
		for k, child := range val {
			val[k] = Normalize(child)
		}
		return val
	case []any:
		for i, child := range val {
			val[i] = Normalize(child)
		}
		return val
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = []byte(child)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = []byte(child)
		}
		return out
	default:
		return []byte(fmt.Sprint(val))
	}
}

// unsignedValue keeps n as an integer when it fits in int64 and falls back to
// a float otherwise.
func unsignedValue(n uint64) any {
	if n > math.MaxInt64 {
		return float64(n)
	}
	return int64(n)
}

// Equal reports whether two event values are equal. Byte strings compare by
// content; timestamps compare by instant.
func Equal(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, child := range av {
			other, exists := bv[k]
			if !exists || !Equal(child, other) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// Clone returns a deep copy of an event value.
func Clone(v any) any {
	switch val := v.(type) {
	case []byte:
		return append([]byte{}, val...)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = Clone(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = Clone(child)
		}
		return out
	default:
		return val
	}
}

// toJSONValue rewrites byte strings into strings so encoding/json emits text
// rather than base64.
func toJSONValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = toJSONValue(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = toJSONValue(child)
		}
		return out
	default:
		return val
	}
}
