package wire

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarint_RoundTrip_P9(t *testing.T) {
	values := []uint32{0, 127, 128, 16383, 16384, 2097151, 268435455, 1<<31 - 1}
	for _, v := range values {
		buf := PutVarint(nil, v)
		got, err := ReadVarint(bufio.NewReader(bytes.NewReader(buf)))
		require.NoError(t, err)
		assert.Equal(t, v, got, "value=%d", v)
	}
}

func TestVarint_Lengths(t *testing.T) {
	tests := []struct {
		v    uint32
		want int
	}{
		{0, 1}, {127, 1}, {128, 2}, {16383, 2}, {16384, 3},
		{2097151, 3}, {268435455, 4}, {1<<31 - 1, 5},
	}
	for _, tc := range tests {
		buf := PutVarint(nil, tc.v)
		assert.Len(t, buf, tc.want, "value=%d", tc.v)
	}
}
