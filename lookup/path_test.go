package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semdecode/errors"
)

func TestParseValuePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ValuePath
	}{
		{"empty is root", "", ValuePath{}},
		{"dot is root", ".", ValuePath{}},
		{"single field", "message", ValuePath{FieldSegment("message")}},
		{"leading dot", ".message", ValuePath{FieldSegment("message")}},
		{"nested", "http.request.status", ValuePath{
			FieldSegment("http"), FieldSegment("request"), FieldSegment("status"),
		}},
		{"index", "tags[2]", ValuePath{FieldSegment("tags"), IndexSegment(2)}},
		{"index then field", "items[0].name", ValuePath{
			FieldSegment("items"), IndexSegment(0), FieldSegment("name"),
		}},
		{"quoted field", `"dotted.name".value`, ValuePath{
			FieldSegment("dotted.name"), FieldSegment("value"),
		}},
		{"escaped quote", `"say \"hi\""`, ValuePath{FieldSegment(`say "hi"`)}},
		{"special chars", "@timestamp", ValuePath{FieldSegment("@timestamp")}},
		{"surrounding space", "  message ", ValuePath{FieldSegment("message")}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path, err := ParseValuePath(test.input)
			require.NoError(t, err)
			assert.Equal(t, test.expected, path)
		})
	}
}

func TestParseValuePath_Errors(t *testing.T) {
	inputs := []string{
		"a..b",
		"..a",
		"a.",
		"tags[",
		"tags[x]",
		"tags[-1]",
		`"unterminated`,
		`""`,
		"a b",
		"a]",
		`a"b"`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseValuePath(input)
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err), "path errors are classified invalid")
		})
	}
}

func TestValuePath_StringRoundTrip(t *testing.T) {
	inputs := []string{
		".",
		"message",
		"http.request.status",
		"tags[2]",
		"items[0].name",
		`"dotted.name".value`,
		`"say \"hi\""`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			path := MustParseValuePath(input)
			reparsed, err := ParseValuePath(path.String())
			require.NoError(t, err)
			assert.True(t, path.Equal(reparsed), "%q re-rendered as %q", input, path.String())
		})
	}
}

func TestValuePath_Concat(t *testing.T) {
	base := MustParseValuePath("a")
	extended := base.Concat(FieldSegment("b"), IndexSegment(1))

	assert.Equal(t, "a.b[1]", extended.String())
	assert.Equal(t, "a", base.String(), "concat must not alter the receiver")
}

func TestParseTargetPath(t *testing.T) {
	tests := []struct {
		input    string
		expected TargetPath
		rendered string
	}{
		{".", EventRoot(), "."},
		{"message", EventPath(ValuePath{FieldSegment("message")}), "message"},
		{"%", MetadataRoot(), "%"},
		{"%semdecode.source_type", MetadataPath(ValuePath{
			FieldSegment("semdecode"), FieldSegment("source_type"),
		}), "%semdecode.source_type"},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			target, err := ParseTargetPath(test.input)
			require.NoError(t, err)
			assert.True(t, test.expected.Equal(target))
			assert.Equal(t, test.rendered, target.String())
		})
	}

	_, err := ParseTargetPath("%a..b")
	assert.Error(t, err)
}
