package idcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/flatintern/internal/types"
)

func TestEncodeID_SingleDigits(t *testing.T) {
	tests := []struct {
		value    uint64
		expected string
	}{
		{0, "A"}, {1, "B"}, {25, "Z"}, {26, "a"}, {51, "z"},
		{52, "0"}, {61, "9"}, {62, "_"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, encodeID(tc.value), "value=%d", tc.value)
	}
}

func TestEncodeID_MultiDigit(t *testing.T) {
	// 63 wraps to the second digit: "BA" is 1*63 + 0.
	assert.Equal(t, "BA", encodeID(63))
}

func TestCellTag(t *testing.T) {
	assert.Equal(t, "L3C2#B", CellTag(3, 2, types.ContentID(1)))
}

func TestCellTag_ZeroID(t *testing.T) {
	assert.Equal(t, "L1C0#A", CellTag(1, 0, types.ContentID(0)))
}
