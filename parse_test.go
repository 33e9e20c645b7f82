package flatintern

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/flatintern/internal/wire"
)

func TestParse_EndToEndWireRoundTrip(t *testing.T) {
	m, err := Parse(strings.NewReader("a,b,c\n1,2,3\n4,5,6\n"), DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, m.Check())

	var buf bytes.Buffer
	require.NoError(t, wire.Marshal(&buf, m))

	decoded, err := wire.Unmarshal(&buf)
	require.NoError(t, err)
	require.NoError(t, decoded.Check())

	assert.Equal(t, m.Cells, decoded.Cells)
	assert.Equal(t, m.Content, decoded.Content)
}
