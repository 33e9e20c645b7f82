package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/flatintern/internal/errors"
	"github.com/standardbeagle/flatintern/internal/matrix"
	"github.com/standardbeagle/flatintern/internal/types"
)

func TestMarshalUnmarshal_RoundTrip_P4(t *testing.T) {
	m := &matrix.Matrix{
		Columns: 3,
		Cells: []types.ContentID{
			1, 2, 3,
			4, 5, 4,
		},
		Content: [][]byte{{}, []byte("a"), []byte("b"), []byte("c"), []byte("1"), []byte("2")},
	}
	require.NoError(t, m.Check())

	var buf bytes.Buffer
	require.NoError(t, Marshal(&buf, m))

	got, err := Unmarshal(&buf)
	require.NoError(t, err)
	require.NoError(t, got.Check())

	assert.Equal(t, m.Columns, got.Columns)
	assert.Equal(t, m.Cells, got.Cells)
	assert.Equal(t, m.Content, got.Content)
}

func TestMarshalUnmarshal_BytesIdentical_P4(t *testing.T) {
	m := &matrix.Matrix{
		Columns: 2,
		Cells:   []types.ContentID{1, 0, 0, 2},
		Content: [][]byte{{}, []byte("x"), []byte("yy")},
	}

	var first bytes.Buffer
	require.NoError(t, Marshal(&first, m))

	decoded, err := Unmarshal(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)

	var second bytes.Buffer
	require.NoError(t, Marshal(&second, decoded))

	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestUnmarshal_UnknownVersion(t *testing.T) {
	_, err := Unmarshal(bytes.NewReader([]byte{0x02, 0, 0, 0, 0, 0, 0, 0, 0}))
	require.Error(t, err)

	var fe *errors.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, errors.UnknownVersion, fe.Kind)
}

func TestUnmarshal_EmptyMatrix(t *testing.T) {
	m := &matrix.Matrix{Columns: 0, Content: [][]byte{{}}}
	var buf bytes.Buffer
	require.NoError(t, Marshal(&buf, m))

	got, err := Unmarshal(&buf)
	require.NoError(t, err)
	require.NoError(t, got.Check())
	assert.Equal(t, 0, got.Lines())
}
