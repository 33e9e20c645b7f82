// Package alloc provides a generic, lock-free slab allocator for reducing
// allocation overhead on the two hot paths that otherwise allocate on every
// parse: the input buffer's backing byte window and the trie's per-edge
// content buffers.
package alloc

import "sync"

// SlabAllocator buckets allocations into fixed-capacity tiers backed by
// sync.Pool, so repeated parses (batch mode, watch mode) reuse backing
// arrays instead of allocating fresh ones each time.
type SlabAllocator[T any] struct {
	pools []*poolTier[T]
}

type poolTier[T any] struct {
	capacity int
	pool     sync.Pool
}

// TierConfig defines a single size tier.
type TierConfig struct {
	Capacity int
}

// BufferTierConfigs covers the read-buffer sizes flatintern actually
// constructs: the configured minimum (4096) up through a few doublings.
var BufferTierConfigs = []TierConfig{
	{Capacity: 4096},
	{Capacity: 8192},
	{Capacity: 16384},
	{Capacity: 65536},
}

// ContentTierConfigs covers typical distinct-cell sizes; the per-cell
// length cap from spec.md §4.3 (4096 bytes) is the largest tier so a
// capped cell never falls through to a direct allocation.
var ContentTierConfigs = []TierConfig{
	{Capacity: 16},
	{Capacity: 64},
	{Capacity: 256},
	{Capacity: 4096},
}

// New creates a slab allocator with the given tier configuration. Tiers
// must be supplied in increasing capacity order.
func New[T any](configs []TierConfig) *SlabAllocator[T] {
	sa := &SlabAllocator[T]{pools: make([]*poolTier[T], len(configs))}
	for i, cfg := range configs {
		capacity := cfg.Capacity
		sa.pools[i] = &poolTier[T]{
			capacity: capacity,
			pool: sync.Pool{
				New: func() any { return make([]T, 0, capacity) },
			},
		}
	}
	return sa
}

// Get returns a slice with at least the requested capacity and length 0.
func (sa *SlabAllocator[T]) Get(capacity int) []T {
	if capacity <= 0 {
		return make([]T, 0)
	}
	for _, tier := range sa.pools {
		if tier.capacity >= capacity {
			if v := tier.pool.Get(); v != nil {
				return v.([]T)
			}
			return make([]T, 0, tier.capacity)
		}
	}
	return make([]T, 0, capacity)
}

// Put returns a slice to its tier's pool for reuse. Slices whose capacity
// does not match a tier exactly are discarded rather than forced to fit.
func (sa *SlabAllocator[T]) Put(slice []T) {
	if slice == nil || cap(slice) == 0 {
		return
	}
	capacity := cap(slice)
	for _, tier := range sa.pools {
		if tier.capacity == capacity {
			tier.pool.Put(slice[:0])
			return
		}
	}
}
