package org

import "testing"

func TestMapCaseInsensitive(t *testing.T) {
	m := NewMap[int]()

	m.Set("Google", 1)
	if v, ok := m.Get("GOOGLE"); !ok || v != 1 {
		t.Errorf("expected Get(GOOGLE) = (1, true), got (%d, %v)", v, ok)
	}
	if !m.Has("google") {
		t.Error("expected Has(google) to be true")
	}
	if m.Len() != 1 {
		t.Errorf("expected length 1, got %d", m.Len())
	}
}

func TestMapCanonicalCasing(t *testing.T) {
	m := NewMap[int]()

	m.Set("google", 1)
	m.Set("Google", 2)

	if m.Len() != 1 {
		t.Fatalf("expected one entry after overwrite, got %d", m.Len())
	}
	if c, _ := m.Canonical("GOOGLE"); c != "Google" {
		t.Errorf("latest casing should be canonical, got %q", c)
	}
	if v, _ := m.Get("google"); v != 2 {
		t.Errorf("expected overwritten value 2, got %d", v)
	}
}

func TestMapDelete(t *testing.T) {
	m := NewMap[string]()

	m.Set("Acme", "x")
	if !m.Delete("ACME") {
		t.Error("expected Delete to report the key was present")
	}
	if m.Has("acme") || m.Len() != 0 {
		t.Error("expected empty map after delete")
	}
	if m.Delete("acme") {
		t.Error("expected Delete of missing key to report false")
	}
}

func TestMapEach(t *testing.T) {
	m := NewMap[int]()
	m.Set("Alpha", 1)
	m.Set("Beta", 2)

	seen := map[string]int{}
	m.Each(func(key string, value int) {
		seen[key] = value
	})

	if len(seen) != 2 || seen["Alpha"] != 1 || seen["Beta"] != 2 {
		t.Errorf("expected canonical keys with values, got %v", seen)
	}
}
