// Package cache memoizes the two pure functions the scheduler leans on
// hardest: which authority produced a given block, and which authorities
// are eligible to produce the block after it. Both are content-addressed
// by block hash, additive, and safe to evict under any policy — a miss
// only costs a recomputation, never correctness.
package cache

import (
	lru "github.com/hashicorp/golang-lru"

	"poaengine/types"
)

// Default capacities. Sized generously relative to the recent-exclusion
// window (bounded by roster size / 2): the working set the scheduler
// actually revisits is small, but a deep reorg can walk back further, so
// the cache should comfortably outlive a single window's worth of tips.
const (
	DefaultBlockMinerCapacity = 8192
	DefaultNextMinersCapacity = 2048
)

// MinerCache is the two-namespace, content-addressed cache described by
// the design: block_miner maps a block's hash to its producer, and
// next_miners maps a tip's hash to the ordered list eligible to produce
// the block that follows it. Both namespaces are backed by an
// hashicorp/golang-lru Cache, which serializes Get/Add internally, so
// concurrent readers during a write see either the old state or the
// complete new entry, never a torn one.
type MinerCache struct {
	blockMiner *lru.Cache
	nextMiners *lru.Cache
}

// New builds a MinerCache with the given per-namespace capacities. A
// non-positive capacity falls back to the package default for that
// namespace.
func New(blockMinerCapacity, nextMinersCapacity int) (*MinerCache, error) {
	if blockMinerCapacity <= 0 {
		blockMinerCapacity = DefaultBlockMinerCapacity
	}
	if nextMinersCapacity <= 0 {
		nextMinersCapacity = DefaultNextMinersCapacity
	}
	bm, err := lru.New(blockMinerCapacity)
	if err != nil {
		return nil, err
	}
	nm, err := lru.New(nextMinersCapacity)
	if err != nil {
		return nil, err
	}
	return &MinerCache{blockMiner: bm, nextMiners: nm}, nil
}

// GetBlockMiner returns the cached producer of the block hashed h, if
// any signature recovery has been memoized for it.
func (c *MinerCache) GetBlockMiner(h types.BlockHash) (types.KeyId, bool) {
	v, ok := c.blockMiner.Get(h)
	if !ok {
		return types.KeyId{}, false
	}
	return v.(types.KeyId), true
}

// PutBlockMiner records that h's producer is id. Writes are idempotent:
// the mapping is a pure function of h's signature, so a second write for
// the same h is expected to agree with the first and is not checked.
func (c *MinerCache) PutBlockMiner(h types.BlockHash, id types.KeyId) {
	c.blockMiner.Add(h, id)
}

// GetNextMiners returns the cached ordered eligible-miner list for the
// block following the one hashed h. It hands back a defensive copy of
// the cache's own slice, so a caller mutating the returned list cannot
// corrupt what every other reader sees.
func (c *MinerCache) GetNextMiners(h types.BlockHash) ([]types.KeyId, bool) {
	v, ok := c.nextMiners.Get(h)
	if !ok {
		return nil, false
	}
	stored := v.([]types.KeyId)
	cp := make([]types.KeyId, len(stored))
	copy(cp, stored)
	return cp, true
}

// PutNextMiners records list as the ordered eligible-miner list for the
// block following the one hashed h. It stores a defensive copy of list
// so a caller mutating its own slice afterward cannot corrupt the cache.
func (c *MinerCache) PutNextMiners(h types.BlockHash, list []types.KeyId) {
	cp := make([]types.KeyId, len(list))
	copy(cp, list)
	c.nextMiners.Add(h, cp)
}

// Len reports the current occupancy of each namespace, for metrics.
func (c *MinerCache) Len() (blockMiner, nextMiners int) {
	return c.blockMiner.Len(), c.nextMiners.Len()
}
