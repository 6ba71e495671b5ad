package mutate

import (
	"fmt"
	"testing"
)

func TestPlanCacheExactHit(t *testing.T) {
	c := newPlanCache(4)
	plan := &Plan{}

	if _, ok := c.get(1, "k"); ok {
		t.Fatal("empty cache returned a plan")
	}
	c.put(1, "k", plan, normalizeTokens("a b"))
	got, ok := c.get(1, "k")
	if !ok || got != plan {
		t.Fatal("exact hit missed")
	}
	if _, ok := c.get(2, "k"); ok {
		t.Fatal("key leaked across partitions")
	}
}

func TestPlanCacheSimilar(t *testing.T) {
	c := newPlanCache(4)
	plan := &Plan{}
	c.put(1, "k", plan, normalizeTokens("a b c d e f g h i j"))

	got, ok := c.similar(1, normalizeTokens("a b c d e f g h i x"), 0.85)
	if !ok || got != plan {
		t.Fatal("near-duplicate should hit above threshold")
	}
	if _, ok := c.similar(1, normalizeTokens("q r s t"), 0.85); ok {
		t.Fatal("dissimilar tokens should miss")
	}
	if _, ok := c.similar(2, normalizeTokens("a b c d e f g h i j"), 0.85); ok {
		t.Fatal("similarity must not cross partitions")
	}
}

func TestPlanCacheEviction(t *testing.T) {
	const max = 3
	c := newPlanCache(max)
	for i := 0; i < max+2; i++ {
		c.put(0, fmt.Sprintf("k%d", i), &Plan{}, nil)
	}
	if got := c.size(0); got != max {
		t.Fatalf("size = %d, want %d", got, max)
	}
	if _, ok := c.get(0, "k0"); ok {
		t.Error("oldest entry should be evicted")
	}
	if _, ok := c.get(0, fmt.Sprintf("k%d", max+1)); !ok {
		t.Error("newest entry should remain")
	}
}

func TestPlanCacheOverwriteDoesNotGrow(t *testing.T) {
	c := newPlanCache(4)
	c.put(0, "k", &Plan{}, nil)
	c.put(0, "k", &Plan{}, nil)
	if got := c.size(0); got != 1 {
		t.Fatalf("size = %d, want 1", got)
	}
}
