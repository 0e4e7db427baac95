package cache

import (
	"testing"
	"time"
)

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a to be cached")
	}
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if got, ok := c.Get("a"); !ok || got != "1" {
		t.Fatalf("expected a=1, got %q (%v)", got, ok)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
}

func TestLRUCacheExpiresEntries(t *testing.T) {
	c := NewLRUCache(4, time.Second)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	c.Set("k", "v")

	c.now = func() time.Time { return base.Add(2 * time.Second) }
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected entry to expire")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be removed on access")
	}
}

func TestLRUCacheDumpRestore(t *testing.T) {
	src := NewLRUCache(4, time.Minute)
	src.Set("x", "one")
	src.Set("y", "two")

	dst := NewLRUCache(4, time.Minute)
	dst.Restore(src.Dump())

	for key, want := range map[string]string{"x": "one", "y": "two"} {
		if got, ok := dst.Get(key); !ok || got != want {
			t.Fatalf("restore %s: got %q (%v), want %q", key, got, ok, want)
		}
	}
}

func TestRestoreEnforcesCapacity(t *testing.T) {
	dump := map[string]Entry{}
	exp := time.Now().Add(time.Hour)
	for _, k := range []string{"a", "b", "c", "d"} {
		dump[k] = Entry{Text: k, ExpiresAt: exp}
	}
	c := NewLRUCache(2, time.Hour)
	c.Restore(dump)
	if c.Len() != 2 {
		t.Fatalf("expected capacity to be enforced, got %d", c.Len())
	}
}

func TestKeyIsBoundaryAware(t *testing.T) {
	if Key("ab", "c") == Key("a", "bc") {
		t.Fatalf("keys must differ when part boundaries differ")
	}
	if Key("sys", "prompt") != Key("sys", "prompt") {
		t.Fatalf("keys must be deterministic")
	}
}

func BenchmarkLRUCacheSet(b *testing.B) {
	c := NewLRUCache(1000, 5*time.Minute)
	for i := 0; i < b.N; i++ {
		c.Set(Key(string(rune(i))), "value")
	}
}
