package api

import (
	"testing"
	"time"
)

func TestRegistryReplaceAndExpire(t *testing.T) {
	var replaced []string
	r := newRegistry(time.Minute, func(v string) { replaced = append(replaced, v) })
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.Put("a", "first")
	r.Put("a", "second")
	if len(replaced) != 1 || replaced[0] != "first" {
		t.Fatalf("replaced = %v", replaced)
	}
	if v, ok := r.Get("a"); !ok || v != "second" {
		t.Fatalf("Get = %q, %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := r.Get("a"); ok {
		t.Fatal("idle entry should have expired")
	}

	r.Put("b", "other")
	if r.Len() != 1 {
		t.Fatalf("Len = %d after sweep, want 1", r.Len())
	}
	if v, ok := r.Remove("b"); !ok || v != "other" {
		t.Fatalf("Remove = %q, %v", v, ok)
	}
	if _, ok := r.Remove("b"); ok {
		t.Fatal("second Remove should miss")
	}
}
