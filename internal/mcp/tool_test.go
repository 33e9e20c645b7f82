package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/flatintern/internal/config"
)

func callParseFlatfile(t *testing.T, s *Server, params parseFlatfileParams) parseFlatfileResult {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      "parse_flatfile",
			Arguments: raw,
		},
	}

	res, err := s.handleParseFlatfile(context.Background(), req)
	require.NoError(t, err)
	require.False(t, res.IsError, "unexpected tool error response")

	text := res.Content[0].(*mcp.TextContent).Text
	var out parseFlatfileResult
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	return out
}

func TestHandleParseFlatfile_Basic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.tsv")
	require.NoError(t, os.WriteFile(path, []byte("a\tb\tc\n1\t2\t3\n"), 0o644))

	s := NewServer(config.Default())
	defer s.Close()

	out := callParseFlatfile(t, s, parseFlatfileParams{Path: path})
	require.Equal(t, 3, out.Columns)
	require.Equal(t, 2, out.Lines)
	require.Equal(t, 1, out.ContentLines)
	require.Equal(t, "tab", out.Separator)
	require.False(t, out.CachedResult)
}

func TestHandleParseFlatfile_CacheHitOnSecondCall(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.tsv")
	require.NoError(t, os.WriteFile(path, []byte("a\tb\n1\t2\n"), 0o644))

	s := NewServer(config.Default())
	defer s.Close()

	first := callParseFlatfile(t, s, parseFlatfileParams{Path: path})
	require.False(t, first.CachedResult)

	second := callParseFlatfile(t, s, parseFlatfileParams{Path: path})
	require.True(t, second.CachedResult)
}

func TestHandleParseFlatfile_MissingPath(t *testing.T) {
	s := NewServer(config.Default())
	defer s.Close()

	out, err := s.handleParseFlatfile(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Name: "parse_flatfile", Arguments: json.RawMessage(`{}`)},
	})
	require.NoError(t, err)
	require.True(t, out.IsError)
}

func TestHandleParseFlatfile_UnexpectedCellTags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.tsv")
	require.NoError(t, os.WriteFile(path, []byte("x\ty\nx\ty\tz\n"), 0o644))

	s := NewServer(config.Default())
	defer s.Close()

	out := callParseFlatfile(t, s, parseFlatfileParams{Path: path})
	require.Equal(t, 1, out.UnexpectedCellCount)
	require.Len(t, out.UnexpectedCellTags, 1)
	require.Equal(t, "L1C2#D", out.UnexpectedCellTags[0])
}

func TestHandleParseFlatfile_UnreadableFile(t *testing.T) {
	s := NewServer(config.Default())
	defer s.Close()

	out := mustCall(t, s, parseFlatfileParams{Path: filepath.Join(t.TempDir(), "missing.tsv")})
	require.True(t, out.IsError)
}

func mustCall(t *testing.T, s *Server, params parseFlatfileParams) *mcp.CallToolResult {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	out, err := s.handleParseFlatfile(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Name: "parse_flatfile", Arguments: raw},
	})
	require.NoError(t, err)
	return out
}
