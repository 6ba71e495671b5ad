package mutate

import "sync"

// planCache stores rendered plans per (seed_bucket) partition, keyed by
// URL. Lookup order is exact key, then similarity against every cached
// entry's normalized HTML within the partition. The similarity scan is
// linear in partition size per miss, which is fine at the configured cache
// sizes; revisit with shingled hashing if partitions grow.
//
// Safe for concurrent use. Races between two first-time requests for the
// same key are benign: generation is deterministic, last write wins.
type planCache struct {
	mu         sync.Mutex
	maxEntries int
	partitions map[int]*cachePartition
}

type cachePartition struct {
	order   []string // insertion order, oldest first
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	plan   *Plan
	tokens []string // normalized HTML tokens at insertion time
}

func newPlanCache(maxEntries int) *planCache {
	return &planCache{
		maxEntries: maxEntries,
		partitions: make(map[int]*cachePartition),
	}
}

// get returns the plan cached under exactly this key.
func (c *planCache) get(bucket int, key string) (*Plan, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.partitions[bucket]
	if !ok {
		return nil, false
	}
	e, ok := p.entries[key]
	if !ok {
		return nil, false
	}
	return e.plan, true
}

// similar scans the partition for an entry whose normalized HTML matches
// tokens at or above threshold, returning its plan.
func (c *planCache) similar(bucket int, tokens []string, threshold float64) (*Plan, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.partitions[bucket]
	if !ok {
		return nil, false
	}
	for _, key := range p.order {
		e := p.entries[key]
		if similarityRatio(tokens, e.tokens) >= threshold {
			return e.plan, true
		}
	}
	return nil, false
}

// put stores a plan, evicting the oldest entry once the partition exceeds
// the configured bound.
func (c *planCache) put(bucket int, key string, plan *Plan, tokens []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.partitions[bucket]
	if !ok {
		p = &cachePartition{entries: make(map[string]*cacheEntry)}
		c.partitions[bucket] = p
	}
	if _, exists := p.entries[key]; !exists {
		p.order = append(p.order, key)
	}
	p.entries[key] = &cacheEntry{plan: plan, tokens: tokens}
	for len(p.order) > c.maxEntries {
		oldest := p.order[0]
		p.order = p.order[1:]
		delete(p.entries, oldest)
	}
}

// size returns the number of entries resident in a partition.
func (c *planCache) size(bucket int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.partitions[bucket]; ok {
		return len(p.entries)
	}
	return 0
}
