package buffer

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flatintern_errors "github.com/standardbeagle/flatintern/internal/errors"
	"github.com/standardbeagle/flatintern/internal/types"
)

func TestNew_TooSmallCapacity(t *testing.T) {
	_, _, err := New(bytes.NewReader(nil), 10)
	require.Error(t, err)

	var fe *flatintern_errors.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, flatintern_errors.BufferTooSmall, fe.Kind)
}

func TestNew_NoBOM(t *testing.T) {
	b, enc, err := New(bytes.NewReader([]byte("a\tb\n")), MinCapacity)
	require.NoError(t, err)
	assert.Equal(t, types.EncodingUnknown, enc)
	assert.Equal(t, "a\tb\n", string(b.Bytes()))
}

func TestNew_UTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\tb\n")...)
	b, enc, err := New(bytes.NewReader(data), MinCapacity)
	require.NoError(t, err)
	assert.Equal(t, types.EncodingUTF8, enc)
	assert.Equal(t, "a\tb\n", string(b.Bytes()))
}

func utf16leBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 0, len(units)*2)
	for _, u := range units {
		buf = append(buf, byte(u), byte(u>>8))
	}
	return buf
}

func TestNew_UTF16LEBOM(t *testing.T) {
	data := append([]byte{0xFF, 0xFE}, utf16leBytes("a\tb\n")...)
	b, enc, err := New(bytes.NewReader(data), MinCapacity)
	require.NoError(t, err)
	assert.Equal(t, types.EncodingUTF16LE, enc)
	assert.Equal(t, "a\tb\n", string(b.Bytes()))
}

func TestBuffer_AdvanceAndRefillCompacts(t *testing.T) {
	r := io.MultiReader(bytes.NewReader([]byte("abc")), bytes.NewReader([]byte("def")))
	b, _, err := New(r, MinCapacity)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(b.Bytes()))

	b.Advance(2)
	assert.Equal(t, "cdef", string(b.Bytes()))

	require.NoError(t, b.Refill())
	assert.Equal(t, 0, b.Start())
	assert.True(t, b.IsFull())
}

type errReader struct{}

func (errReader) Read(p []byte) (int, error) { return 0, errors.New("boom") }

func TestBuffer_RefillPropagatesSourceFailure(t *testing.T) {
	b := &Buffer{capacity: MinCapacity, data: make([]byte, MinCapacity), src: errReader{}}
	err := b.Refill()
	require.Error(t, err)

	var fe *flatintern_errors.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, flatintern_errors.SourceFailure, fe.Kind)
}

func TestBuffer_ZeroLengthReadSetsEOF(t *testing.T) {
	b := &Buffer{capacity: MinCapacity, data: make([]byte, MinCapacity), src: bytes.NewReader(nil)}
	require.NoError(t, b.Refill())
	assert.True(t, b.AtEOF())
	assert.True(t, b.IsFull())
}
