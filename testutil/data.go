package testutil

// Payload fixtures shared by decoder tests. None of them carry meaning beyond
// their byte shape.

// TestLogLines are newline-free plain text payloads.
var TestLogLines = []string{
	"This is a test message",
	"GET /api/v1/users 200 12ms",
	"level=info msg=\"connection accepted\" peer=10.0.0.7",
	"héllo wörld",
	"",
}

// TestJSONDocuments are single-object JSON payloads.
var TestJSONDocuments = []string{
	`{"id": 1, "value": "foo", "timestamp": 1234567890, "count": 42}`,
	`{"message": "disk almost full", "host": "edge-1", "level": "warn"}`,
	`{"nested": {"a": [1, 2, {"b": null}]}, "ok": true, "ratio": 0.25}`,
}

// TestJSONArray is a payload that decodes to one event per element.
const TestJSONArray = `[{"seq": 1}, {"seq": 2}, {"seq": 3}]`

// TestBinaryData contains payloads that are not valid UTF-8.
var TestBinaryData = [][]byte{
	{0x01, 0x02, 0x03, 0x04, 0x05},
	{0xFF, 0xFE, 0xFD, 0xFC, 0xFB},
	{0x00, 0x00, 0xC3, 0x28},
}

// TestMalformedJSON are payloads the JSON codec must reject.
var TestMalformedJSON = []string{
	`{"a":`,
	`{"a": x}`,
	`[1, 2`,
	`{"a" 1}`,
}

// TestBufferData contains payloads of various sizes.
var TestBufferData = map[string][]byte{
	"empty":  {},
	"small":  []byte("small data"),
	"medium": make([]byte, 1024),
	"large":  make([]byte, 10240),
}
