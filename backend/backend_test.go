package backend

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harfangapps/respd/resp"
)

func TestGetSetRoundTrip(t *testing.T) {
	b := New()

	_, ok := b.Get("hello")
	assert.False(t, ok)

	b.Set("hello", resp.BulkString("world"))
	v, ok := b.Get("hello")
	require.True(t, ok)
	assert.Equal(t, resp.BulkString("world"), v)
}

func TestAbsenceDistinctFromStoredNull(t *testing.T) {
	b := New()
	b.Set("k", resp.Null{})

	v, ok := b.Get("k")
	require.True(t, ok)
	assert.Equal(t, resp.Null{}, v)

	_, ok = b.Get("missing")
	assert.False(t, ok)
}

func TestHGetHSetRoundTrip(t *testing.T) {
	b := New()

	_, ok := b.HGet("map", "field")
	assert.False(t, ok)

	b.HSet("map", "field", resp.Integer(42))
	v, ok := b.HGet("map", "field")
	require.True(t, ok)
	assert.Equal(t, resp.Integer(42), v)
}

func TestHSetImplicitlyCreatesInnerMap(t *testing.T) {
	b := New()
	b.HSet("new-key", "a", resp.BulkString("1"))
	b.HSet("new-key", "b", resp.BulkString("2"))

	got := b.HGetAll("new-key")
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Field)
	assert.Equal(t, "b", got[1].Field)
}

func TestHGetAllSortsByField(t *testing.T) {
	b := New()
	b.HSet("map", "hello1", resp.BulkString("world1"))
	b.HSet("map", "hello", resp.BulkString("world"))

	got := b.HGetAll("map")
	require.Len(t, got, 2)
	assert.Equal(t, []FieldValue{
		{Field: "hello", Value: resp.BulkString("world")},
		{Field: "hello1", Value: resp.BulkString("world1")},
	}, got)
}

func TestHGetAllAbsentKey(t *testing.T) {
	b := New()
	assert.Nil(t, b.HGetAll("nope"))
}

func TestConcurrentSetsDoNotTearEntries(t *testing.T) {
	b := New()
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.HSet("shared", fmt.Sprintf("field-%d", i), resp.Integer(int64(i)))
		}(i)
	}
	wg.Wait()

	got := b.HGetAll("shared")
	assert.Len(t, got, n)
	for _, fv := range got {
		assert.IsType(t, resp.Integer(0), fv.Value)
	}
}
