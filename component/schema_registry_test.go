package component

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semdecode/config"
	"github.com/c360/semdecode/errors"
	"github.com/c360/semdecode/schema"
)

func TestSchemaRegistry_RegisterOnce(t *testing.T) {
	sr := NewSchemaRegistry()
	reg := SchemaRegistration{
		Subject:    "logs.decoded",
		Component:  "decoder",
		DataType:   config.DataTypeLog,
		Namespace:  config.NamespaceModern,
		Definition: schema.NewWithDefaultMetadata(schema.Bytes(), config.NamespaceModern),
	}

	added, err := sr.Register(reg)
	require.NoError(t, err)
	assert.True(t, added)

	// Same shape again is accepted without a second entry
	again := reg
	again.Definition = schema.NewWithDefaultMetadata(schema.Bytes(), config.NamespaceModern)
	added, err = sr.Register(again)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, sr.List(), 1)

	got, ok := sr.Lookup("logs.decoded")
	require.True(t, ok)
	assert.Equal(t, "decoder", got.Component)
}

func TestSchemaRegistry_Conflict(t *testing.T) {
	sr := NewSchemaRegistry()
	_, err := sr.Register(SchemaRegistration{
		Subject:    "logs.decoded",
		Component:  "bytes-decoder",
		DataType:   config.DataTypeLog,
		Definition: schema.NewWithDefaultMetadata(schema.Bytes(), config.NamespaceModern),
	})
	require.NoError(t, err)

	_, err = sr.Register(SchemaRegistration{
		Subject:    "logs.decoded",
		Component:  "json-decoder",
		DataType:   config.DataTypeLog,
		Definition: schema.NewWithDefaultMetadata(schema.JSON(), config.NamespaceModern),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSchemaMismatch)
	assert.True(t, errors.IsInvalid(err))
	assert.Contains(t, err.Error(), "bytes-decoder")
}

func TestSchemaRegistry_Validation(t *testing.T) {
	sr := NewSchemaRegistry()

	_, err := sr.Register(SchemaRegistration{Definition: schema.EmptyLegacyNamespace()})
	assert.Error(t, err, "subject is required")

	_, err = sr.Register(SchemaRegistration{Subject: "logs.decoded"})
	assert.Error(t, err, "definition is required")
}

func TestSchemaRegistry_ListAndUnregister(t *testing.T) {
	sr := NewSchemaRegistry()
	for _, subject := range []string{"c.out", "a.out", "b.out"} {
		owner := "first"
		if subject == "b.out" {
			owner = "second"
		}
		_, err := sr.Register(SchemaRegistration{
			Subject:    subject,
			Component:  owner,
			Definition: schema.EmptyLegacyNamespace(),
		})
		require.NoError(t, err)
	}

	list := sr.List()
	require.Len(t, list, 3)
	assert.Equal(t, "a.out", list[0].Subject)
	assert.Equal(t, "c.out", list[2].Subject)

	assert.Equal(t, 2, sr.Unregister("first"))
	assert.Len(t, sr.List(), 1)
	assert.Equal(t, 0, sr.Unregister("first"))
}

func TestSchemaRegistry_Concurrent(t *testing.T) {
	sr := NewSchemaRegistry()
	def := schema.EmptyLegacyNamespace()

	var wg sync.WaitGroup
	var mu sync.Mutex
	added := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := sr.Register(SchemaRegistration{Subject: "logs.decoded", Component: "decoder", Definition: def})
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				added++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, added, "exactly one registration wins")
}
