package event

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semdecode/config"
	"github.com/c360/semdecode/lookup"
)

func TestNewLog(t *testing.T) {
	log := NewLog()
	assert.Equal(t, config.DataTypeLog, log.DataType())
	assert.Equal(t, map[string]any{}, log.Value())
	assert.Empty(t, log.Keys())

	asLog, ok := log.AsLog()
	require.True(t, ok)
	assert.Same(t, log, asLog)
}

func TestNewLogFromData(t *testing.T) {
	log := NewLogFromData("foo")
	assert.Equal(t, []byte("foo"), log.Value())
	assert.Nil(t, log.Keys())
	assert.Equal(t, map[string]any{}, log.Metadata())

	log = NewLogFromData(map[string]any{"n": 3, "tags": []any{"a", 1.5}})
	assert.True(t, Equal(map[string]any{
		"n":    int64(3),
		"tags": []any{[]byte("a"), 1.5},
	}, log.Value()))
}

func TestLogEvent_InsertAndGet(t *testing.T) {
	tests := []struct {
		name string
		path string
		want any
	}{
		{"top level", "message", []byte("hello")},
		{"nested", "payload.text", []byte("hello")},
		{"quoted", `"a.b".c`, []byte("hello")},
		{"array index", "items[2]", []byte("hello")},
		{"nested through array", "items[0].name", []byte("hello")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := NewLog()
			path := lookup.MustParseValuePath(tt.path)
			log.Insert(path, "hello")

			got, ok := log.Get(path)
			require.True(t, ok)
			assert.True(t, Equal(tt.want, got))
			assert.True(t, log.Contains(path))
		})
	}
}

func TestLogEvent_InsertPadsArrays(t *testing.T) {
	log := NewLog()
	log.Insert(lookup.MustParseValuePath("items[2]"), 7)

	items, ok := log.Get(lookup.MustParseValuePath("items"))
	require.True(t, ok)
	assert.Equal(t, []any{nil, nil, int64(7)}, items)
}

func TestLogEvent_InsertOverwritesScalars(t *testing.T) {
	log := NewLog()
	log.Insert(lookup.MustParseValuePath("a"), "scalar")
	log.Insert(lookup.MustParseValuePath("a.b"), true)

	got, ok := log.Get(lookup.MustParseValuePath("a.b"))
	require.True(t, ok)
	assert.Equal(t, true, got)
}

func TestLogEvent_InsertIfAbsent(t *testing.T) {
	tests := []struct {
		name     string
		existing map[string]any
		path     string
		inserted bool
	}{
		{"empty event", map[string]any{}, "ts.at", true},
		{"object prefix", map[string]any{"ts": map[string]any{"zone": "utc"}}, "ts.at", true},
		{"already present", map[string]any{"ts": map[string]any{"at": "x"}}, "ts.at", false},
		{"scalar prefix", map[string]any{"ts": "yesterday"}, "ts.at", false},
		{"array where object expected", map[string]any{"ts": []any{int64(1)}}, "ts.at", false},
		{"object where array expected", map[string]any{"ts": map[string]any{}}, "ts[0]", false},
		{"array prefix", map[string]any{"ts": []any{}}, "ts[1]", true},
		{"top level present", map[string]any{"ts": int64(1)}, "ts", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := NewLogFromData(tt.existing)
			before, err := log.Clone().MarshalJSON()
			require.NoError(t, err)

			path := lookup.MustParseValuePath(tt.path)
			assert.Equal(t, tt.inserted, log.InsertIfAbsent(path, int64(42)))

			if tt.inserted {
				got, ok := log.Get(path)
				require.True(t, ok)
				assert.Equal(t, int64(42), got)
				return
			}
			after, err := log.MarshalJSON()
			require.NoError(t, err)
			assert.JSONEq(t, string(before), string(after), "event is unchanged")
		})
	}
}

func TestLogEvent_InsertRoot(t *testing.T) {
	log := NewLog()
	log.Insert(lookup.ValuePath{}, "root")
	assert.Equal(t, []byte("root"), log.Value())

	log.InsertRoot(int32(4))
	assert.Equal(t, int64(4), log.Value())
}

func TestLogEvent_GetMissing(t *testing.T) {
	log := NewLog()
	log.Insert(lookup.MustParseValuePath("a.b"), 1)

	for _, path := range []string{"x", "a.c", "a.b.c", "a[0]", "a.b[1]"} {
		_, ok := log.Get(lookup.MustParseValuePath(path))
		assert.False(t, ok, path)
	}
}

func TestLogEvent_Remove(t *testing.T) {
	log := NewLog()
	log.Insert(lookup.MustParseValuePath("a.b"), 1)
	log.Insert(lookup.MustParseValuePath("list[1]"), "x")

	old, ok := log.Remove(lookup.MustParseValuePath("a.b"))
	require.True(t, ok)
	assert.Equal(t, int64(1), old)
	assert.False(t, log.Contains(lookup.MustParseValuePath("a.b")))

	old, ok = log.Remove(lookup.MustParseValuePath("list[1]"))
	require.True(t, ok)
	assert.Equal(t, []byte("x"), old)

	_, ok = log.Remove(lookup.MustParseValuePath("missing.field"))
	assert.False(t, ok)
}

func TestLogEvent_Targets(t *testing.T) {
	log := NewLogFromData("body")
	meta := lookup.MetadataPath(lookup.MustParseValuePath("origin.host"))
	log.InsertTarget(meta, "edge-1")
	log.InsertTarget(lookup.EventRoot(), "replaced")

	got, ok := log.GetTarget(meta)
	require.True(t, ok)
	assert.Equal(t, []byte("edge-1"), got)

	got, ok = log.GetTarget(lookup.EventRoot())
	require.True(t, ok)
	assert.Equal(t, []byte("replaced"), got)
}

func TestLogEvent_Keys(t *testing.T) {
	log := NewLog()
	log.Insert(lookup.MustParseValuePath("b"), 1)
	log.Insert(lookup.MustParseValuePath("a"), 2)
	assert.Equal(t, []string{"a", "b"}, log.Keys())
}

func TestLogEvent_Clone(t *testing.T) {
	log := NewLog()
	log.Insert(lookup.MustParseValuePath("message"), []byte("abc"))

	clone := log.Clone()
	clone.Insert(lookup.MustParseValuePath("extra"), 1)
	v, _ := clone.Get(lookup.MustParseValuePath("message"))
	v.([]byte)[0] = 'z'

	assert.Equal(t, []string{"message"}, log.Keys())
	orig, _ := log.Get(lookup.MustParseValuePath("message"))
	assert.Equal(t, []byte("abc"), orig)
}

func TestLogEvent_MarshalJSON(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 500, time.UTC)
	log := NewLog()
	log.Insert(lookup.MustParseValuePath("message"), []byte("hi"))
	log.Insert(lookup.MustParseValuePath("timestamp"), ts)
	log.Insert(lookup.MustParseValuePath("count"), 2)
	log.Insert(lookup.MustParseValuePath("ok"), true)
	log.Insert(lookup.MustParseValuePath("none"), nil)

	data, err := log.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"message": "hi",
		"timestamp": "2024-05-01T12:00:00.0000005Z",
		"count": 2,
		"ok": true,
		"none": null
	}`, string(data))

	data, err = NewLogFromData([]byte{0xff, 'a'}).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"\ufffda"`, string(data))

	log.MetadataInsert(lookup.MustParseValuePath("k"), "v")
	data, err = log.MetadataJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"k":"v"}`, string(data))
}

func TestEqual(t *testing.T) {
	ts := time.Unix(100, 0)
	assert.True(t, Equal([]byte("a"), []byte("a")))
	assert.True(t, Equal([]byte{}, []byte(nil)))
	assert.False(t, Equal([]byte("a"), "a"))
	assert.True(t, Equal(ts, ts.In(time.FixedZone("x", 3600))))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, int64(0)))
	assert.False(t, Equal(map[string]any{"a": int64(1)}, map[string]any{"b": int64(1)}))
	assert.False(t, Equal([]any{int64(1)}, []any{int64(1), int64(2)}))
	assert.False(t, Equal(int64(1), map[string]any{}))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, int64(5), Normalize(uint16(5)))
	assert.Equal(t, float64(1.5), Normalize(float32(1.5)))
	assert.Equal(t, map[string]any{"k": []byte("v")}, Normalize(map[string]string{"k": "v"}))
	assert.Equal(t, []any{[]byte("a")}, Normalize([]string{"a"}))
	assert.Equal(t, []byte("{1}"), Normalize(struct{ N int }{1}))
}

func TestNormalize_Unsigned(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"uint64 fits", uint64(math.MaxInt64), int64(math.MaxInt64)},
		{"uint64 overflows", uint64(math.MaxUint64), float64(math.MaxUint64)},
		{"uint64 just past int64", uint64(math.MaxInt64) + 1, float64(uint64(math.MaxInt64) + 1)},
		{"uint small", uint(7), int64(7)},
		{"uint max", ^uint(0), Normalize(uint64(^uint(0)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			if f, ok := got.(float64); ok {
				assert.Positive(t, f)
			}
		})
	}
}
