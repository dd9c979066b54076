// Package lookup parses and renders the paths used to address values inside events.
//
// A value path is a dotted sequence of field names and array indexes, for example
// `message`, `.http.status`, `tags[0]` or `"dotted.name".value`. An empty path (or
// a single ".") addresses the root value. Target paths add a prefix that selects
// between the event value and the event metadata; metadata paths start with "%".
package lookup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/c360/semdecode/errors"
)

// Segment is one step of a ValuePath: either a field name or an array index.
type Segment struct {
	Field   string
	Index   int
	IsIndex bool
}

// FieldSegment returns a field segment.
func FieldSegment(name string) Segment {
	return Segment{Field: name}
}

// IndexSegment returns an array index segment.
func IndexSegment(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

// String renders the segment the way it appears inside a path.
func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	if needsQuoting(s.Field) {
		return quoteField(s.Field)
	}
	return s.Field
}

// ValuePath addresses a value relative to some root.
type ValuePath []Segment

// IsRoot reports whether the path addresses the root value.
func (p ValuePath) IsRoot() bool {
	return len(p) == 0
}

// String renders the path in the syntax accepted by ParseValuePath.
func (p ValuePath) String() string {
	if p.IsRoot() {
		return "."
	}
	var b strings.Builder
	for i, seg := range p {
		if !seg.IsIndex && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// Equal reports whether both paths have identical segments.
func (p ValuePath) Equal(other ValuePath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Concat returns a new path with the given segments appended.
func (p ValuePath) Concat(segments ...Segment) ValuePath {
	out := make(ValuePath, 0, len(p)+len(segments))
	out = append(out, p...)
	return append(out, segments...)
}

// ParseValuePath parses a value path.
func ParseValuePath(s string) (ValuePath, error) {
	p := &pathParser{input: s}
	path, err := p.parse()
	if err != nil {
		return nil, errors.WrapInvalid(err, "lookup", "ParseValuePath", fmt.Sprintf("parse path %q", s))
	}
	return path, nil
}

// MustParseValuePath is like ParseValuePath but panics on error.
// Intended for package-level constants and tests.
func MustParseValuePath(s string) ValuePath {
	path, err := ParseValuePath(s)
	if err != nil {
		panic(err)
	}
	return path
}

type pathParser struct {
	input string
	pos   int
}

func (p *pathParser) parse() (ValuePath, error) {
	in := strings.TrimSpace(p.input)
	p.input = in
	if in == "" || in == "." {
		return ValuePath{}, nil
	}
	if in[0] == '.' {
		p.pos = 1
	}

	path := ValuePath{}
	expectField := true
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case c == '[':
			seg, err := p.parseIndex()
			if err != nil {
				return nil, err
			}
			path = append(path, seg)
			expectField = false
		case c == '.':
			if expectField {
				return nil, fmt.Errorf("empty segment at offset %d", p.pos)
			}
			p.pos++
			expectField = true
			if p.pos == len(p.input) {
				return nil, fmt.Errorf("trailing '.' at offset %d", p.pos-1)
			}
		case c == '"':
			if !expectField {
				return nil, fmt.Errorf("unexpected quote at offset %d", p.pos)
			}
			name, err := p.parseQuoted()
			if err != nil {
				return nil, err
			}
			path = append(path, FieldSegment(name))
			expectField = false
		default:
			if !expectField {
				return nil, fmt.Errorf("unexpected character %q at offset %d", c, p.pos)
			}
			name := p.parseBare()
			if name == "" {
				return nil, fmt.Errorf("unexpected character %q at offset %d", c, p.pos)
			}
			path = append(path, FieldSegment(name))
			expectField = false
		}
	}
	return path, nil
}

func (p *pathParser) parseBare() string {
	start := p.pos
	for p.pos < len(p.input) && isFieldChar(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *pathParser) parseQuoted() (string, error) {
	start := p.pos
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case '\\':
			if p.pos+1 >= len(p.input) {
				return "", fmt.Errorf("dangling escape at offset %d", p.pos)
			}
			b.WriteByte(p.input[p.pos+1])
			p.pos += 2
		case '"':
			p.pos++
			if b.Len() == 0 {
				return "", fmt.Errorf("empty quoted field at offset %d", start)
			}
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated quote starting at offset %d", start)
}

func (p *pathParser) parseIndex() (Segment, error) {
	start := p.pos
	end := strings.IndexByte(p.input[start:], ']')
	if end < 0 {
		return Segment{}, fmt.Errorf("unterminated index starting at offset %d", start)
	}
	raw := p.input[start+1 : start+end]
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return Segment{}, fmt.Errorf("invalid index %q at offset %d", raw, start)
	}
	if idx < 0 {
		return Segment{}, fmt.Errorf("negative index %d at offset %d", idx, start)
	}
	p.pos = start + end + 1
	return IndexSegment(idx), nil
}

func isFieldChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '@', c == '-', c == '$':
		return true
	default:
		return false
	}
}

func needsQuoting(field string) bool {
	if field == "" {
		return true
	}
	for i := 0; i < len(field); i++ {
		if !isFieldChar(field[i]) {
			return true
		}
	}
	return false
}

func quoteField(field string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(field); i++ {
		if field[i] == '"' || field[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(field[i])
	}
	b.WriteByte('"')
	return b.String()
}
