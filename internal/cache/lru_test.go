package cache

import "testing"

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string, int64](2)
	c.Set("Dining", 1)
	c.Set("Rent", 2)

	if _, ok := c.Get("Dining"); !ok {
		t.Fatalf("expected Dining to be cached")
	}
	c.Set("Fuel", 3) // evicts Rent, Dining was used more recently

	if _, ok := c.Get("Rent"); ok {
		t.Fatalf("expected Rent to be evicted")
	}
	if v, ok := c.Get("Dining"); !ok || v != 1 {
		t.Fatalf("unexpected Dining entry: %d %v", v, ok)
	}
	if v, ok := c.Get("Fuel"); !ok || v != 3 {
		t.Fatalf("unexpected Fuel entry: %d %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}

	hits, misses := c.Stats()
	if hits != 3 || misses != 1 {
		t.Fatalf("unexpected stats hits=%d misses=%d", hits, misses)
	}
}

func TestLRUCacheUpdateAndDelete(t *testing.T) {
	c := NewLRUCache[string, int64](0) // clamped to 1
	c.Set("a", 1)
	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Fatalf("expected updated value 2, got %d", v)
	}
	c.Delete("a")
	c.Delete("missing")
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Size())
	}
}
