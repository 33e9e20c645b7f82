package tokenizer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/flatintern/internal/matrix"
)

func contentStrings(content [][]byte) []string {
	out := make([]string, len(content))
	for i, c := range content {
		out[i] = string(c)
	}
	return out
}

func idsOf(m *matrix.Matrix) []uint32 {
	out := make([]uint32, len(m.Cells))
	for i, c := range m.Cells {
		out[i] = uint32(c)
	}
	return out
}

func TestParse_BasicTSV_Scenario1(t *testing.T) {
	m, err := Parse(strings.NewReader("a\tb\tc\n1\t2\t1\n"), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 3, m.Columns)
	assert.Equal(t, []string{"", "a", "b", "c", "1", "2"}, contentStrings(m.Content))
	assert.Equal(t, []uint32{1, 2, 3, 4, 5, 4}, idsOf(m))
	assert.Equal(t, byte(0x09), m.Diagnostics.Separator)
	assert.False(t, m.Diagnostics.SpaceSeparatedHeaders)
}

func TestParse_QuotedWithEscapes_Scenario2(t *testing.T) {
	input := "name,value\n\"Smith, J.\",\"He said \"\"hi\"\"\"\n"
	m, err := Parse(strings.NewReader(input), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 2, m.Columns)
	assert.Equal(t, []string{"", "name", "value", "Smith, J.", "He said \"hi\""}, contentStrings(m.Content))
	assert.Equal(t, []uint32{1, 2, 3, 4}, idsOf(m))
}

func TestParse_SpaceSeparatedHeadersTabBody_Scenario3(t *testing.T) {
	m, err := Parse(strings.NewReader("h1 h2 h3\n1\t2\t3\n"), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 3, m.Columns)
	assert.Equal(t, byte(0x09), m.Diagnostics.Separator)
	assert.True(t, m.Diagnostics.SpaceSeparatedHeaders)
	assert.Equal(t, []string{"", "h1", "h2", "h3", "1", "2", "3"}, contentStrings(m.Content))
}

func TestParse_TrailingEmptyColumnsPreserved_Scenario4(t *testing.T) {
	m, err := Parse(strings.NewReader("a,b,c\n1,,\n,,2\n"), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 3, m.Columns)
	assert.Equal(t, []string{"", "a", "b", "c", "1", "2"}, contentStrings(m.Content))
	assert.Equal(t, []uint32{1, 2, 3, 4, 0, 0, 0, 0, 5}, idsOf(m))
}

func TestParse_FullyEmptyLineDropped_Scenario5(t *testing.T) {
	m, err := Parse(strings.NewReader("a\tb\n\n1\t2\n"), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 2, m.Lines())
	assert.Equal(t, []uint32{1, 2, 3, 4}, idsOf(m))
}

func TestParse_OverflowRow_Scenario6(t *testing.T) {
	m, err := Parse(strings.NewReader("x\ty\nx\ty\tz\n"), DefaultConfig())
	require.NoError(t, err)

	require.Len(t, m.Diagnostics.UnexpectedCells, 1)
	u := m.Diagnostics.UnexpectedCells[0]
	assert.Equal(t, 1, u.Line)
	assert.Equal(t, 2, u.Column)
	assert.Equal(t, "z", string(u.Bytes))
	assert.Equal(t, m.Content[u.ID], u.Bytes, "ID must name the content already interned for this cell")
}

func TestParse_Truncation_Scenario8(t *testing.T) {
	cfg := Config{MaxLineCount: 1, MaxCellCount: 2, ReadBufferSize: 4096}
	m, err := Parse(strings.NewReader("a,b,c\n1,2,3\n"), cfg)
	require.NoError(t, err)

	assert.True(t, m.Diagnostics.Truncated)
	assert.LessOrEqual(t, len(m.Cells), effectiveCellCap(cfg, m.Columns))
}

func TestParse_Determinism_P6(t *testing.T) {
	input := "a,b,c\n1,2,3\n4,5,6\n"
	m1, err := Parse(strings.NewReader(input), DefaultConfig())
	require.NoError(t, err)
	m2, err := Parse(strings.NewReader(input), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, m1.Cells, m2.Cells)
	assert.Equal(t, contentStrings(m1.Content), contentStrings(m2.Content))
}

func TestParse_UTF16LEBOM_Scenario7(t *testing.T) {
	units := []rune("a\tb\n")
	buf := []byte{0xFF, 0xFE}
	for _, r := range units {
		buf = append(buf, byte(r), 0)
	}
	m, err := Parse(bytes.NewReader(buf), DefaultConfig())
	require.NoError(t, err)

	plain, err := Parse(strings.NewReader("a\tb\n"), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, idsOf(plain), idsOf(m))
	assert.Equal(t, contentStrings(plain.Content), contentStrings(m.Content))
	assert.Equal(t, 2, int(m.Diagnostics.FileEncoding))
}

func TestParse_EmptyInput(t *testing.T) {
	m, err := Parse(strings.NewReader(""), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, m.Columns)
	assert.Empty(t, m.Cells)
}
