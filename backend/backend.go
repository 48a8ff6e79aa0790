// Package backend implements the concurrent in-memory store shared by every
// connection: a flat string-to-Frame mapping and a nested
// string-to-(string-to-Frame) mapping.
package backend

import (
	"sort"

	"github.com/cornelk/hashmap"

	"github.com/harfangapps/respd/resp"
)

// Backend is the process-wide key/value store. It is created once at
// process start and shared by reference across every connection; the zero
// value is not usable, use New.
//
// Both maps are lock-free concurrent hash maps: single-key operations
// (Get, Set, HGet, HSet) are atomic with respect to each other, but there
// are no cross-key transactions.
type Backend struct {
	flat   *hashmap.HashMap
	nested *hashmap.HashMap // key -> *hashmap.HashMap (field -> resp.Frame)
}

// New returns an empty Backend.
func New() *Backend {
	return &Backend{
		flat:   &hashmap.HashMap{},
		nested: &hashmap.HashMap{},
	}
}

// Get returns the Frame stored under key. The second return value reports
// whether key was present; absence is distinct from a stored Null Frame.
func (b *Backend) Get(key string) (resp.Frame, bool) {
	v, ok := b.flat.Get(key)
	if !ok {
		return nil, false
	}
	return v.(resp.Frame), true
}

// Set stores value under key, replacing whatever was there.
func (b *Backend) Set(key string, value resp.Frame) {
	b.flat.Set(key, value)
}

// HGet returns the Frame stored under (key, field). The second return
// value reports whether both the outer key and the inner field were
// present.
func (b *Backend) HGet(key, field string) (resp.Frame, bool) {
	inner, ok := b.inner(key, false)
	if !ok {
		return nil, false
	}
	v, ok := inner.Get(field)
	if !ok {
		return nil, false
	}
	return v.(resp.Frame), true
}

// HSet stores value under (key, field), creating the inner mapping for key
// if it does not already exist.
func (b *Backend) HSet(key, field string, value resp.Frame) {
	inner, _ := b.inner(key, true)
	inner.Set(field, value)
}

// FieldValue is one (field, value) pair of a HGetAll snapshot.
type FieldValue struct {
	Field string
	Value resp.Frame
}

// HGetAll returns every field/value pair stored under key, sorted by field
// ascending. It is a point-in-time snapshot: it never observes a torn
// single entry, but may or may not include entries added by a HSet racing
// concurrently with the call. An absent key returns nil.
func (b *Backend) HGetAll(key string) []FieldValue {
	inner, ok := b.inner(key, false)
	if !ok {
		return nil
	}

	out := make([]FieldValue, 0, inner.Len())
	for kv := range inner.Iter() {
		out = append(out, FieldValue{
			Field: kv.Key.(string),
			Value: kv.Value.(resp.Frame),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// inner returns the per-key field map for key. If createIfAbsent is true
// and no map exists yet, one is created atomically: a concurrent HSet
// racing on the same absent key never loses its write to a second,
// discarded map.
func (b *Backend) inner(key string, createIfAbsent bool) (*hashmap.HashMap, bool) {
	if v, ok := b.nested.Get(key); ok {
		return v.(*hashmap.HashMap), true
	}
	if !createIfAbsent {
		return nil, false
	}
	actual, _ := b.nested.GetOrInsert(key, &hashmap.HashMap{})
	return actual.(*hashmap.HashMap), true
}
