package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/c360/semdecode/lookup"
)

type primitive uint16

const (
	primBytes primitive = 1 << iota
	primInteger
	primFloat
	primBoolean
	primTimestamp
	primRegex
	primNull
	primUndefined

	primJSON = primBytes | primInteger | primFloat | primBoolean | primNull
	primAll  = primJSON | primTimestamp | primRegex | primUndefined
)

var primitiveNames = []struct {
	bit  primitive
	name string
}{
	{primBytes, "bytes"},
	{primInteger, "integer"},
	{primFloat, "float"},
	{primBoolean, "boolean"},
	{primTimestamp, "timestamp"},
	{primRegex, "regex"},
	{primNull, "null"},
	{primUndefined, "undefined"},
}

// Kind is the set of value types a location in an event may hold. A Kind is a
// union: a location typed Bytes|Null may hold either. Undefined means the
// location may be absent.
//
// Kinds are immutable values; every method returns a new Kind.
type Kind struct {
	prims  primitive
	object *Collection[string]
	array  *Collection[int]
}

// Collection describes the members of an object (keyed by field name) or an
// array (keyed by index). Members not listed are governed by the unknown kind;
// a collection without one is closed.
type Collection[K comparable] struct {
	known   map[K]Kind
	unknown *Kind
	// recursive collections use their owning kind for unknown members, which is
	// how JSON and Any describe arbitrarily nested values.
	recursive bool
}

// Never is the empty kind; no value conforms to it.
func Never() Kind { return Kind{} }

// Bytes is a byte string.
func Bytes() Kind { return Kind{prims: primBytes} }

// Integer is a 64-bit signed integer.
func Integer() Kind { return Kind{prims: primInteger} }

// Float is a 64-bit float.
func Float() Kind { return Kind{prims: primFloat} }

// Boolean is true or false.
func Boolean() Kind { return Kind{prims: primBoolean} }

// Timestamp is a point in time.
func Timestamp() Kind { return Kind{prims: primTimestamp} }

// Regex is a compiled regular expression.
func Regex() Kind { return Kind{prims: primRegex} }

// Null is the null value.
func Null() Kind { return Kind{prims: primNull} }

// Undefined marks a location that may be absent.
func Undefined() Kind { return Kind{prims: primUndefined} }

// JSON is any value representable in JSON, nested to any depth.
func JSON() Kind {
	return Kind{
		prims:  primJSON,
		object: &Collection[string]{recursive: true},
		array:  &Collection[int]{recursive: true},
	}
}

// Any is every value, nested to any depth.
func Any() Kind {
	return Kind{
		prims:  primAll,
		object: &Collection[string]{recursive: true},
		array:  &Collection[int]{recursive: true},
	}
}

// EmptyObject is a closed object with no fields.
func EmptyObject() Kind {
	return Kind{object: &Collection[string]{}}
}

// Object is a closed object with exactly the given fields.
func Object(fields map[string]Kind) Kind {
	known := make(map[string]Kind, len(fields))
	for k, v := range fields {
		known[k] = v
	}
	return Kind{object: &Collection[string]{known: known}}
}

// EmptyArray is a closed array with no elements.
func EmptyArray() Kind {
	return Kind{array: &Collection[int]{}}
}

// Array is a closed array with exactly the given elements.
func Array(elements map[int]Kind) Kind {
	known := make(map[int]Kind, len(elements))
	for k, v := range elements {
		known[k] = v
	}
	return Kind{array: &Collection[int]{known: known}}
}

// Or returns the union of k and other.
//
// Object fields known on only one side become optional unless the other side's
// unknown kind already covers them.
func (k Kind) Or(other Kind) Kind {
	return Kind{
		prims:  k.prims | other.prims,
		object: mergeCollections(k.object, other.object),
		array:  mergeCollections(k.array, other.array),
	}
}

// WithUnknownFields returns k as an object whose unlisted fields have kind u.
func (k Kind) WithUnknownFields(u Kind) Kind {
	out := k.clone()
	if out.object == nil {
		out.object = &Collection[string]{}
	}
	out.object.unknown = &u
	out.object.recursive = false
	return out
}

// IsNever reports whether no value conforms to k.
func (k Kind) IsNever() bool {
	return k.prims == 0 && k.object == nil && k.array == nil
}

// IsBytes reports whether k is exactly Bytes.
func (k Kind) IsBytes() bool { return k.prims == primBytes && k.object == nil && k.array == nil }

// IsObject reports whether k is exactly an object.
func (k Kind) IsObject() bool { return k.prims == 0 && k.object != nil && k.array == nil }

// IsJSON reports whether k is exactly JSON.
func (k Kind) IsJSON() bool {
	return k.prims == primJSON && k.object != nil && k.object.recursive && len(k.object.known) == 0 &&
		k.array != nil && k.array.recursive && len(k.array.known) == 0
}

// ContainsBytes reports whether k admits byte strings.
func (k Kind) ContainsBytes() bool { return k.prims&primBytes != 0 }

// ContainsTimestamp reports whether k admits timestamps.
func (k Kind) ContainsTimestamp() bool { return k.prims&primTimestamp != 0 }

// ContainsNull reports whether k admits null.
func (k Kind) ContainsNull() bool { return k.prims&primNull != 0 }

// ContainsUndefined reports whether k admits absence.
func (k Kind) ContainsUndefined() bool { return k.prims&primUndefined != 0 }

// ContainsObject reports whether k admits objects.
func (k Kind) ContainsObject() bool { return k.object != nil }

// ContainsArray reports whether k admits arrays.
func (k Kind) ContainsArray() bool { return k.array != nil }

// KnownFields returns a copy of the object fields declared on k.
func (k Kind) KnownFields() map[string]Kind {
	if k.object == nil {
		return nil
	}
	out := make(map[string]Kind, len(k.object.known))
	for name, kind := range k.object.known {
		out[name] = kind
	}
	return out
}

// UnknownFields returns the kind of undeclared object fields. ok is false for
// closed objects and for non-object kinds.
func (k Kind) UnknownFields() (Kind, bool) {
	if k.object == nil {
		return Never(), false
	}
	if k.object.recursive {
		return k, true
	}
	if k.object.unknown == nil {
		return Never(), false
	}
	return *k.object.unknown, true
}

// FieldKind returns the kind of field name on an object kind.
func (k Kind) FieldKind(name string) (Kind, bool) {
	if k.object == nil {
		return Never(), false
	}
	if kind, ok := k.object.known[name]; ok {
		return kind, true
	}
	return k.UnknownFields()
}

// ElementKind returns the kind of element i on an array kind.
func (k Kind) ElementKind(i int) (Kind, bool) {
	if k.array == nil {
		return Never(), false
	}
	if kind, ok := k.array.known[i]; ok {
		return kind, true
	}
	if k.array.recursive {
		return k, true
	}
	if k.array.unknown == nil {
		return Never(), false
	}
	return *k.array.unknown, true
}

// AtPath returns the kind stored at path. An empty path returns k.
func (k Kind) AtPath(path lookup.ValuePath) (Kind, bool) {
	current := k
	for _, seg := range path {
		var ok bool
		if seg.IsIndex {
			current, ok = current.ElementKind(seg.Index)
		} else {
			current, ok = current.FieldKind(seg.Field)
		}
		if !ok {
			return Never(), false
		}
	}
	return current, true
}

// InsertAtPath returns k with kind placed at path. Locations along the path
// become objects (or arrays for index segments); other kinds they held are
// dropped. Lower indexes missing from an array may be null. An empty path
// replaces k entirely.
func (k Kind) InsertAtPath(path lookup.ValuePath, kind Kind) Kind {
	if len(path) == 0 {
		return kind
	}
	seg := path[0]
	if seg.IsIndex {
		coll := &Collection[int]{known: map[int]Kind{}}
		if k.array != nil {
			coll = k.array.clone()
			if coll.recursive {
				self := k
				coll.unknown = &self
				coll.recursive = false
			}
		}
		// Inserting past the end pads the array with nulls.
		for i := 0; i < seg.Index; i++ {
			if _, ok := coll.known[i]; ok {
				continue
			}
			if existing, ok := k.ElementKind(i); ok {
				coll.known[i] = existing.Or(Null())
			} else {
				coll.known[i] = Null()
			}
		}
		child, _ := k.ElementKind(seg.Index)
		coll.known[seg.Index] = child.InsertAtPath(path[1:], kind)
		return Kind{array: coll}
	}
	coll := &Collection[string]{known: map[string]Kind{}}
	if k.object != nil {
		coll = k.object.clone()
		if coll.recursive {
			self := k
			coll.unknown = &self
			coll.recursive = false
		}
	}
	child, _ := k.FieldKind(seg.Field)
	coll.known[seg.Field] = child.InsertAtPath(path[1:], kind)
	return Kind{object: coll}
}

// Check reports whether v conforms to k. The error names the first offending
// location.
func (k Kind) Check(v any) error {
	return k.check(v, ".")
}

// Contains reports whether v conforms to k.
func (k Kind) Contains(v any) bool {
	return k.Check(v) == nil
}

func (k Kind) check(v any, at string) error {
	switch val := v.(type) {
	case nil:
		return k.requirePrim(primNull, at, "null")
	case []byte:
		return k.requirePrim(primBytes, at, "bytes")
	case int64:
		return k.requirePrim(primInteger, at, "integer")
	case float64:
		return k.requirePrim(primFloat, at, "float")
	case bool:
		return k.requirePrim(primBoolean, at, "boolean")
	case time.Time:
		return k.requirePrim(primTimestamp, at, "timestamp")
	case *regexp.Regexp:
		return k.requirePrim(primRegex, at, "regex")
	case map[string]any:
		if k.object == nil {
			return fmt.Errorf("%s: object not allowed by %s", at, k)
		}
		for name, fieldKind := range k.object.known {
			if _, ok := val[name]; !ok && !fieldKind.ContainsUndefined() {
				return fmt.Errorf("%s: required field %q missing", at, name)
			}
		}
		for name, child := range val {
			fieldKind, ok := k.FieldKind(name)
			if !ok {
				return fmt.Errorf("%s: unexpected field %q", at, name)
			}
			if err := fieldKind.check(child, joinField(at, name)); err != nil {
				return err
			}
		}
		return nil
	case []any:
		if k.array == nil {
			return fmt.Errorf("%s: array not allowed by %s", at, k)
		}
		for i, kind := range k.array.known {
			if i >= len(val) && !kind.ContainsUndefined() {
				return fmt.Errorf("%s: required element %d missing", at, i)
			}
		}
		for i, child := range val {
			elemKind, ok := k.ElementKind(i)
			if !ok {
				return fmt.Errorf("%s: unexpected element %d", at, i)
			}
			if err := elemKind.check(child, at+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%s: unsupported value type %T", at, v)
	}
}

func (k Kind) requirePrim(bit primitive, at, name string) error {
	if k.prims&bit == 0 {
		return fmt.Errorf("%s: %s not allowed by %s", at, name, k)
	}
	return nil
}

func joinField(at, name string) string {
	seg := lookup.FieldSegment(name).String()
	if at == "." {
		return seg
	}
	return at + "." + seg
}

// String renders k, e.g. "bytes | null" or "{ message: bytes }".
func (k Kind) String() string {
	if k.IsNever() {
		return "never"
	}
	if k.IsJSON() {
		return "json"
	}
	if k.prims == primAll && k.object != nil && k.object.recursive && k.array != nil && k.array.recursive {
		return "any"
	}

	var parts []string
	for _, p := range primitiveNames {
		if k.prims&p.bit != 0 {
			parts = append(parts, p.name)
		}
	}
	if k.object != nil {
		parts = append(parts, k.object.render(func(name string) string {
			return lookup.FieldSegment(name).String()
		}, "{", "}"))
	}
	if k.array != nil {
		parts = append(parts, k.array.render(strconv.Itoa, "[", "]"))
	}
	return strings.Join(parts, " | ")
}

func (k Kind) clone() Kind {
	out := k
	if k.object != nil {
		out.object = k.object.clone()
	}
	if k.array != nil {
		out.array = k.array.clone()
	}
	return out
}

func (c *Collection[K]) clone() *Collection[K] {
	out := &Collection[K]{
		known:     make(map[K]Kind, len(c.known)),
		unknown:   c.unknown,
		recursive: c.recursive,
	}
	for key, kind := range c.known {
		out.known[key] = kind
	}
	return out
}

func (c *Collection[K]) render(key func(K) string, open, close string) string {
	entries := make([]string, 0, len(c.known)+1)
	for k, kind := range c.known {
		entries = append(entries, key(k)+": "+kind.String())
	}
	sort.Strings(entries)
	switch {
	case c.recursive:
		entries = append(entries, "*: ...")
	case c.unknown != nil:
		entries = append(entries, "*: "+c.unknown.String())
	}
	if len(entries) == 0 {
		return open + close
	}
	return open + " " + strings.Join(entries, ", ") + " " + close
}

func mergeCollections[K comparable](a, b *Collection[K]) *Collection[K] {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return b.clone()
	case b == nil:
		return a.clone()
	}

	out := &Collection[K]{
		known:     map[K]Kind{},
		recursive: a.recursive || b.recursive,
	}
	if !out.recursive {
		switch {
		case a.unknown != nil && b.unknown != nil:
			u := a.unknown.Or(*b.unknown)
			out.unknown = &u
		case a.unknown != nil:
			out.unknown = a.unknown
		case b.unknown != nil:
			out.unknown = b.unknown
		}
	}

	for key, kind := range a.known {
		if other, ok := b.known[key]; ok {
			out.known[key] = kind.Or(other)
			continue
		}
		out.known[key] = kind.Or(b.missing())
	}
	for key, kind := range b.known {
		if _, ok := a.known[key]; ok {
			continue
		}
		out.known[key] = kind.Or(a.missing())
	}
	return out
}

// missing is the kind a member absent from the collection's known set may have.
func (c *Collection[K]) missing() Kind {
	if c.recursive {
		return Any()
	}
	if c.unknown != nil {
		return c.unknown.Or(Undefined())
	}
	return Undefined()
}

// KindOf returns the exact kind of a normalized event value.
func KindOf(v any) Kind {
	switch val := v.(type) {
	case nil:
		return Null()
	case []byte:
		return Bytes()
	case int64:
		return Integer()
	case float64:
		return Float()
	case bool:
		return Boolean()
	case time.Time:
		return Timestamp()
	case *regexp.Regexp:
		return Regex()
	case map[string]any:
		fields := make(map[string]Kind, len(val))
		for name, child := range val {
			fields[name] = KindOf(child)
		}
		return Object(fields)
	case []any:
		elems := make(map[int]Kind, len(val))
		for i, child := range val {
			elems[i] = KindOf(child)
		}
		return Array(elems)
	default:
		return Never()
	}
}
