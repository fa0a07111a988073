package org

import "strings"

// Map is a map with case-insensitive string keys that remembers the
// canonical (most recently set) casing of each key. It exists so
// "Google", "GOOGLE", and "google" dedupe to one entry while a
// presentable casing survives for display.
type Map[V any] struct {
	values map[string]V
	canon  map[string]string
}

// NewMap creates an empty case-insensitive map.
func NewMap[V any]() *Map[V] {
	return &Map[V]{
		values: make(map[string]V),
		canon:  make(map[string]string),
	}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Get looks up a value by case-insensitive key.
func (m *Map[V]) Get(key string) (V, bool) {
	v, ok := m.values[normalizeKey(key)]
	return v, ok
}

// Set stores a value; the given key's casing becomes canonical.
func (m *Map[V]) Set(key string, value V) {
	normalized := normalizeKey(key)
	m.canon[normalized] = key
	m.values[normalized] = value
}

// Has reports whether the key is present, case-insensitively.
func (m *Map[V]) Has(key string) bool {
	_, ok := m.values[normalizeKey(key)]
	return ok
}

// Delete removes a key, reporting whether it was present.
func (m *Map[V]) Delete(key string) bool {
	normalized := normalizeKey(key)
	_, ok := m.values[normalized]
	delete(m.values, normalized)
	delete(m.canon, normalized)
	return ok
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	return len(m.values)
}

// Canonical returns the stored canonical casing for a key.
func (m *Map[V]) Canonical(key string) (string, bool) {
	c, ok := m.canon[normalizeKey(key)]
	return c, ok
}

// Each calls fn for every entry with its canonical key. Iteration
// order is unspecified.
func (m *Map[V]) Each(fn func(key string, value V)) {
	for normalized, value := range m.values {
		key := m.canon[normalized]
		if key == "" {
			key = normalized
		}
		fn(key, value)
	}
}
