package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlabAllocator_GetRoundsUpToTier(t *testing.T) {
	sa := New[byte](ContentTierConfigs)

	s := sa.Get(10)
	assert.Equal(t, 0, len(s))
	assert.GreaterOrEqual(t, cap(s), 10)
	assert.Equal(t, 16, cap(s))
}

func TestSlabAllocator_GetBeyondLargestTierAllocatesExact(t *testing.T) {
	sa := New[byte](ContentTierConfigs)

	s := sa.Get(10000)
	assert.Equal(t, 10000, cap(s))
}

func TestSlabAllocator_PutGetReuses(t *testing.T) {
	sa := New[byte](ContentTierConfigs)

	s := sa.Get(64)
	s = append(s, 1, 2, 3)
	sa.Put(s)

	s2 := sa.Get(64)
	assert.Equal(t, 0, len(s2))
	assert.Equal(t, 64, cap(s2))
}

func TestSlabAllocator_PutDiscardsNonTierCapacity(t *testing.T) {
	sa := New[byte](ContentTierConfigs)
	odd := make([]byte, 0, 100)
	sa.Put(odd) // should not panic, and should not be returned by Get(64)

	s := sa.Get(64)
	assert.Equal(t, 64, cap(s))
}

func TestSlabAllocator_GetZeroOrNegative(t *testing.T) {
	sa := New[byte](ContentTierConfigs)
	assert.Empty(t, sa.Get(0))
	assert.Empty(t, sa.Get(-1))
}
