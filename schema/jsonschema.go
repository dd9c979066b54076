package schema

import (
	"sort"

	"github.com/c360/semdecode/lookup"
)

// Draft07 is the JSON Schema dialect emitted by JSONSchema.
const Draft07 = "http://json-schema.org/draft-07/schema#"

// MeaningKeyword annotates schema nodes with their semantic meaning.
const MeaningKeyword = "x-meaning"

// JSONSchema renders the event value kind as a draft-07 JSON Schema describing
// the JSON encoding of events (byte strings as strings, timestamps as RFC 3339
// strings). Event meanings are attached with the x-meaning keyword.
func (d *Definition) JSONSchema() map[string]any {
	root := kindSchema(d.eventKind)
	root["$schema"] = Draft07
	for _, meaning := range d.Meanings() {
		target := d.meanings[meaning]
		if target.Prefix != lookup.PrefixEvent {
			continue
		}
		if node := schemaAt(root, target.Path); node != nil {
			node[MeaningKeyword] = meaning
		}
	}
	return root
}

// MetadataJSONSchema renders the metadata kind the same way.
func (d *Definition) MetadataJSONSchema() map[string]any {
	root := kindSchema(d.metadataKind)
	root["$schema"] = Draft07
	for _, meaning := range d.Meanings() {
		target := d.meanings[meaning]
		if target.Prefix != lookup.PrefixMetadata {
			continue
		}
		if node := schemaAt(root, target.Path); node != nil {
			node[MeaningKeyword] = meaning
		}
	}
	return root
}

func kindSchema(k Kind) map[string]any {
	if k.IsNever() || (k.prims == primUndefined && k.object == nil && k.array == nil) {
		return map[string]any{"not": map[string]any{}}
	}

	var types []string
	add := func(t string) {
		for _, existing := range types {
			if existing == t {
				return
			}
		}
		types = append(types, t)
	}

	stringLike := k.prims & (primBytes | primTimestamp | primRegex)
	if stringLike != 0 {
		add("string")
	}
	if k.prims&primInteger != 0 {
		add("integer")
	}
	if k.prims&primFloat != 0 {
		add("number")
	}
	if k.prims&primBoolean != 0 {
		add("boolean")
	}
	if k.prims&primNull != 0 {
		add("null")
	}
	if k.object != nil {
		add("object")
	}
	if k.array != nil {
		add("array")
	}

	out := map[string]any{}
	if len(types) == 1 {
		out["type"] = types[0]
	} else {
		out["type"] = types
	}
	if stringLike == primTimestamp {
		out["format"] = "date-time"
	}

	if k.object != nil && !k.object.recursive {
		properties := map[string]any{}
		var required []string
		for name, fieldKind := range k.object.known {
			properties[name] = kindSchema(fieldKind)
			if !fieldKind.ContainsUndefined() {
				required = append(required, name)
			}
		}
		out["properties"] = properties
		if len(required) > 0 {
			sort.Strings(required)
			out["required"] = required
		}
		if k.object.unknown != nil {
			out["additionalProperties"] = kindSchema(*k.object.unknown)
		} else {
			out["additionalProperties"] = false
		}
	}

	if k.array != nil && !k.array.recursive {
		indexes := make([]int, 0, len(k.array.known))
		for i := range k.array.known {
			indexes = append(indexes, i)
		}
		sort.Ints(indexes)
		var items []any
		minItems := 0
		for pos := 0; len(indexes) > 0 && pos <= indexes[len(indexes)-1]; pos++ {
			elem, ok := k.array.known[pos]
			if !ok {
				elem, _ = k.ElementKind(pos)
				elem = elem.Or(Undefined())
			}
			items = append(items, kindSchema(elem))
			if !elem.ContainsUndefined() {
				minItems = pos + 1
			}
		}
		if len(items) > 0 {
			out["items"] = items
		}
		if k.array.unknown != nil {
			out["additionalItems"] = kindSchema(*k.array.unknown)
		} else {
			out["additionalItems"] = false
		}
		if minItems > 0 {
			out["minItems"] = minItems
		}
	}

	return out
}

// schemaAt follows properties/items to the node describing path.
func schemaAt(root map[string]any, path lookup.ValuePath) map[string]any {
	node := root
	for _, seg := range path {
		if seg.IsIndex {
			items, ok := node["items"].([]any)
			if !ok || seg.Index >= len(items) {
				return nil
			}
			node, ok = items[seg.Index].(map[string]any)
			if !ok {
				return nil
			}
			continue
		}
		properties, ok := node["properties"].(map[string]any)
		if !ok {
			return nil
		}
		node, ok = properties[seg.Field].(map[string]any)
		if !ok {
			return nil
		}
	}
	return node
}
