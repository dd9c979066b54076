package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semdecode/config"
	"github.com/c360/semdecode/errors"
	"github.com/c360/semdecode/event"
	"github.com/c360/semdecode/lookup"
)

var messagePath = lookup.MustParseValuePath("message")

func legacyBytesDefinition() *Definition {
	return EmptyLegacyNamespace().WithEventField(messagePath, Bytes(), MeaningMessage)
}

func modernBytesDefinition() *Definition {
	return NewWithDefaultMetadata(Bytes(), config.NamespaceModern).
		WithMeaning(lookup.EventRoot(), MeaningMessage)
}

func TestEmptyLegacyNamespace(t *testing.T) {
	def := EmptyLegacyNamespace()
	assert.True(t, def.EventKind().IsObject())
	assert.Empty(t, def.EventKind().KnownFields())
	assert.Equal(t, []config.LogNamespace{config.NamespaceLegacy}, def.LogNamespaces())
	assert.Empty(t, def.Meanings())

	require.NoError(t, def.Conforms(event.NewLog()))
}

func TestDefinition_WithEventField(t *testing.T) {
	base := EmptyLegacyNamespace()
	def := base.WithEventField(messagePath, Bytes(), MeaningMessage)

	kind, ok := def.EventKind().AtPath(messagePath)
	require.True(t, ok)
	assert.True(t, kind.IsBytes())

	target, ok := def.Meaning(MeaningMessage)
	require.True(t, ok)
	assert.True(t, target.Equal(lookup.EventPath(messagePath)))

	assert.Empty(t, base.EventKind().KnownFields(), "With* must not modify the receiver")
	_, ok = base.Meaning(MeaningMessage)
	assert.False(t, ok)
}

func TestNewWithDefaultMetadata(t *testing.T) {
	def := modernBytesDefinition()
	assert.True(t, def.EventKind().IsBytes())
	assert.True(t, def.HasNamespace(config.NamespaceModern))
	assert.False(t, def.HasNamespace(config.NamespaceLegacy))

	target, ok := def.Meaning(MeaningMessage)
	require.True(t, ok)
	assert.True(t, target.Equal(lookup.EventRoot()))

	sourceType, ok := def.MetadataKind().AtPath(event.SourceTypeMetadataPath)
	require.True(t, ok)
	assert.True(t, sourceType.ContainsBytes())
	assert.True(t, sourceType.ContainsUndefined())
}

func TestForNamespace(t *testing.T) {
	assert.True(t, ForNamespace(config.NamespaceLegacy, Bytes()).EventKind().IsObject())
	assert.True(t, ForNamespace(config.NamespaceModern, Bytes()).EventKind().IsBytes())
}

func TestDefinition_Conforms(t *testing.T) {
	legacy := event.NewLog()
	legacy.Insert(messagePath, []byte("foo"))

	modern := event.NewLogFromData([]byte("foo"))

	extra := legacy.Clone()
	extra.Insert(lookup.MustParseValuePath("host"), []byte("h"))

	wrongType := event.NewLog()
	wrongType.Insert(messagePath, int64(1))

	tests := []struct {
		name    string
		def     *Definition
		log     *event.LogEvent
		wantErr bool
	}{
		{"legacy event", legacyBytesDefinition(), legacy, false},
		{"modern event", modernBytesDefinition(), modern, false},
		{"legacy extra field", legacyBytesDefinition(), extra, true},
		{"legacy wrong type", legacyBytesDefinition(), wrongType, true},
		{"legacy missing message", legacyBytesDefinition(), event.NewLog(), true},
		{"modern given legacy event", modernBytesDefinition(), legacy, true},
		{"legacy given modern event", legacyBytesDefinition(), modern, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Conforms(tt.log)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrSchemaMismatch)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDefinition_ConformsMetadata(t *testing.T) {
	def := modernBytesDefinition()
	log := event.NewLogFromData([]byte("foo"))
	log.MetadataInsert(event.SourceTypeMetadataPath, int64(3))

	err := def.Conforms(log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metadata")
}

func TestDefinition_WithStandardSourceMetadata(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ls := config.DefaultLogSchema()

	t.Run("legacy", func(t *testing.T) {
		def, err := legacyBytesDefinition().WithStandardSourceMetadata(ls)
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"message", "source_type", "timestamp"}, keys(def.EventKind().KnownFields()))
		target, ok := def.Meaning(MeaningTimestamp)
		require.True(t, ok)
		assert.True(t, target.Equal(lookup.EventPath(lookup.MustParseValuePath("timestamp"))))

		log := event.NewLog()
		log.Insert(messagePath, []byte("foo"))
		require.NoError(t, event.InsertStandardSourceMetadata(log, config.NamespaceLegacy, ls, "stdin", now))
		assert.NoError(t, def.Conforms(log))
	})

	t.Run("modern", func(t *testing.T) {
		def, err := modernBytesDefinition().WithStandardSourceMetadata(ls)
		require.NoError(t, err)

		target, ok := def.Meaning(MeaningSourceType)
		require.True(t, ok)
		assert.True(t, target.Equal(lookup.MetadataPath(event.SourceTypeMetadataPath)))

		log := event.NewLogFromData([]byte("foo"))
		require.NoError(t, event.InsertStandardSourceMetadata(log, config.NamespaceModern, ls, "stdin", now))
		assert.NoError(t, def.Conforms(log))

		assert.Error(t, def.Conforms(event.NewLogFromData([]byte("foo"))), "metadata fields become required")
	})

	t.Run("invalid key", func(t *testing.T) {
		bad := ls
		bad.TimestampKey = "a..b"
		_, err := legacyBytesDefinition().WithStandardSourceMetadata(bad)
		assert.Error(t, err)
	})
}

func TestDefinition_String(t *testing.T) {
	s := legacyBytesDefinition().String()
	assert.Contains(t, s, "event: { message: bytes }")
	assert.Contains(t, s, "message=message")
}

func keys(m map[string]Kind) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
