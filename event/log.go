package event

import (
	"encoding/json"
	"sort"

	"github.com/c360/semdecode/config"
	"github.com/c360/semdecode/lookup"
)

// Event is a decoded record flowing downstream. Only logs are produced by this
// module; the interface leaves room for other data types at the pipeline level.
type Event interface {
	DataType() config.DataType
	AsLog() (*LogEvent, bool)
}

// LogEvent is a log record: an event value plus event metadata.
type LogEvent struct {
	value    any
	metadata any
}

// NewLog creates an event whose value is an empty object.
func NewLog() *LogEvent {
	return &LogEvent{
		value:    map[string]any{},
		metadata: map[string]any{},
	}
}

// NewLogFromData creates an event whose value is data. The metadata starts
// empty; the Modern namespace fills it through InsertStandardSourceMetadata.
func NewLogFromData(data any) *LogEvent {
	return &LogEvent{
		value:    Normalize(data),
		metadata: map[string]any{},
	}
}

// DataType implements Event
func (l *LogEvent) DataType() config.DataType {
	return config.DataTypeLog
}

// AsLog implements Event
func (l *LogEvent) AsLog() (*LogEvent, bool) {
	return l, true
}

// Value returns the event value.
func (l *LogEvent) Value() any {
	return l.value
}

// Metadata returns the event metadata.
func (l *LogEvent) Metadata() any {
	return l.metadata
}

// Insert stores v at path inside the event value, creating intermediate
// objects and arrays as needed. An empty path replaces the whole value.
// Existing non-container values along the path are overwritten.
func (l *LogEvent) Insert(path lookup.ValuePath, v any) {
	insertAt(&l.value, path, Normalize(v))
}

// InsertIfAbsent stores v at path only when nothing is there yet and no value
// along the way would have to be replaced, such as a string where path
// expects an object. It reports whether v was stored.
func (l *LogEvent) InsertIfAbsent(path lookup.ValuePath, v any) bool {
	if l.Contains(path) {
		return false
	}
	for i := 1; i < len(path); i++ {
		prefix, ok := l.Get(path[:i])
		if !ok {
			break
		}
		switch prefix.(type) {
		case map[string]any:
			if path[i].IsIndex {
				return false
			}
		case []any:
			if !path[i].IsIndex {
				return false
			}
		default:
			return false
		}
	}
	l.Insert(path, v)
	return true
}

// InsertRoot replaces the event value.
func (l *LogEvent) InsertRoot(v any) {
	l.value = Normalize(v)
}

// Get returns the value at path inside the event value.
func (l *LogEvent) Get(path lookup.ValuePath) (any, bool) {
	return getAt(l.value, path)
}

// Contains reports whether path exists inside the event value.
func (l *LogEvent) Contains(path lookup.ValuePath) bool {
	_, ok := l.Get(path)
	return ok
}

// Remove deletes the value at path and returns it. Array elements are
// nulled rather than shifted.
func (l *LogEvent) Remove(path lookup.ValuePath) (any, bool) {
	return removeAt(&l.value, path)
}

// MetadataInsert stores v at path inside the metadata.
func (l *LogEvent) MetadataInsert(path lookup.ValuePath, v any) {
	insertAt(&l.metadata, path, Normalize(v))
}

// MetadataGet returns the value at path inside the metadata.
func (l *LogEvent) MetadataGet(path lookup.ValuePath) (any, bool) {
	return getAt(l.metadata, path)
}

// InsertTarget stores v at an event or metadata path.
func (l *LogEvent) InsertTarget(target lookup.TargetPath, v any) {
	if target.Prefix == lookup.PrefixMetadata {
		l.MetadataInsert(target.Path, v)
		return
	}
	l.Insert(target.Path, v)
}

// GetTarget reads an event or metadata path.
func (l *LogEvent) GetTarget(target lookup.TargetPath) (any, bool) {
	if target.Prefix == lookup.PrefixMetadata {
		return l.MetadataGet(target.Path)
	}
	return l.Get(target.Path)
}

// Keys returns the sorted top-level field names when the value is an object.
func (l *LogEvent) Keys() []string {
	obj, ok := l.value.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the event.
func (l *LogEvent) Clone() *LogEvent {
	return &LogEvent{
		value:    Clone(l.value),
		metadata: Clone(l.metadata),
	}
}

// MarshalJSON renders the event value.
func (l *LogEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSONValue(l.value))
}

// MetadataJSON renders the event metadata.
func (l *LogEvent) MetadataJSON() ([]byte, error) {
	return json.Marshal(toJSONValue(l.metadata))
}

func insertAt(root *any, path lookup.ValuePath, v any) {
	if len(path) == 0 {
		*root = v
		return
	}

	seg := path[0]
	if seg.IsIndex {
		arr, _ := (*root).([]any)
		for len(arr) <= seg.Index {
			arr = append(arr, nil)
		}
		child := arr[seg.Index]
		insertAt(&child, path[1:], v)
		arr[seg.Index] = child
		*root = arr
		return
	}

	obj, ok := (*root).(map[string]any)
	if !ok {
		obj = map[string]any{}
	}
	child := obj[seg.Field]
	insertAt(&child, path[1:], v)
	obj[seg.Field] = child
	*root = obj
}

func getAt(root any, path lookup.ValuePath) (any, bool) {
	current := root
	for _, seg := range path {
		if seg.IsIndex {
			arr, ok := current.([]any)
			if !ok || seg.Index >= len(arr) {
				return nil, false
			}
			current = arr[seg.Index]
			continue
		}
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[seg.Field]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func removeAt(root *any, path lookup.ValuePath) (any, bool) {
	if len(path) == 0 {
		old := *root
		*root = nil
		return old, true
	}

	parent, ok := getAt(*root, path[:len(path)-1])
	if !ok {
		return nil, false
	}
	last := path[len(path)-1]
	if last.IsIndex {
		arr, ok := parent.([]any)
		if !ok || last.Index >= len(arr) {
			return nil, false
		}
		old := arr[last.Index]
		arr[last.Index] = nil
		return old, true
	}
	obj, ok := parent.(map[string]any)
	if !ok {
		return nil, false
	}
	old, ok := obj[last.Field]
	if ok {
		delete(obj, last.Field)
	}
	return old, ok
}
