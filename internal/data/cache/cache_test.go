package cache

import (
	"context"
	"testing"
)

func TestNopCatalogCacheNeverHits(t *testing.T) {
	c := NewNop()
	ctx := context.Background()
	if err := c.Set(ctx, "programs:Telugu", map[string]int{"a": 1}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var dst map[string]int
	hit, err := c.Get(ctx, "programs:Telugu", &dst)
	if err != nil || hit {
		t.Fatalf("expected miss, got hit=%v err=%v", hit, err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
}
