package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/flatintern/internal/cache"
	"github.com/standardbeagle/flatintern/internal/idcodec"
	"github.com/standardbeagle/flatintern/internal/matrix"
	"github.com/standardbeagle/flatintern/internal/metrics"
	"github.com/standardbeagle/flatintern/internal/tokenizer"
)

// parseFlatfileParams is the parse_flatfile tool's input.
type parseFlatfileParams struct {
	Path            string `json:"path"`
	MaxLineCount    int    `json:"max_line_count"`
	MaxCellCount    int    `json:"max_cell_count"`
	SkipCache       bool   `json:"skip_cache"`
}

// parseFlatfileResult is the tool's reported output: the shape a caller
// needs to decide whether to fetch cells directly, without shipping the
// whole matrix over the wire.
type parseFlatfileResult struct {
	Path                  string   `json:"path"`
	Columns               int      `json:"columns"`
	Lines                 int      `json:"lines"`
	ContentLines          int      `json:"content_lines"`
	CellCount             int      `json:"cell_count"`
	DistinctContentCount  int      `json:"distinct_content_count"`
	CompressionRatio      float64  `json:"compression_ratio"`
	Separator             string   `json:"separator"`
	SpaceSeparatedHeaders bool     `json:"space_separated_headers"`
	FileEncoding          string   `json:"file_encoding"`
	Truncated             bool     `json:"truncated"`
	UnexpectedCellCount   int      `json:"unexpected_cell_count"`
	UnexpectedCellTags    []string `json:"unexpected_cell_tags,omitempty"`
	CachedResult          bool     `json:"cached_result"`
}

// handleParseFlatfile parses a file and reports its shape, reusing the
// content-hash cache across repeated calls on an unchanged file.
func (s *Server) handleParseFlatfile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params parseFlatfileParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("parse_flatfile", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.Path == "" {
		return createErrorResponse("parse_flatfile", fmt.Errorf("path is required"))
	}

	content, err := os.ReadFile(params.Path)
	if err != nil {
		return createErrorResponse("parse_flatfile", fmt.Errorf("reading %s: %w", params.Path, err))
	}

	cfg := s.cfg.Tokenizer()
	if params.MaxLineCount > 0 {
		cfg.MaxLineCount = params.MaxLineCount
	}
	if params.MaxCellCount > 0 {
		cfg.MaxCellCount = params.MaxCellCount
	}

	hash := cache.HashContent(content)

	var nodeCount, arenaWords int
	parseOnce := func() (*matrix.Matrix, error) {
		mx, shape, err := tokenizer.ParseWithShape(bytes.NewReader(content), cfg)
		if err != nil {
			return nil, err
		}
		nodeCount, arenaWords = shape.NodeCount, shape.ArenaWords
		return mx, nil
	}

	var mx *matrix.Matrix
	var cached bool
	if params.SkipCache {
		mx, err = parseOnce()
	} else {
		mx, cached, err = s.cache.GetOrParse(params.Path, hash, parseOnce)
	}
	if err != nil {
		return createErrorResponse("parse_flatfile", fmt.Errorf("parsing %s: %w", params.Path, err))
	}

	stats := metrics.FromMatrix(mx).WithTrieShape(nodeCount, arenaWords)

	var unexpectedTags []string
	for _, uc := range mx.Diagnostics.UnexpectedCells {
		unexpectedTags = append(unexpectedTags, idcodec.CellTag(uc.Line, uc.Column, uc.ID))
	}

	return createJSONResponse(parseFlatfileResult{
		Path:                  params.Path,
		Columns:               stats.Columns,
		Lines:                 stats.Lines,
		ContentLines:          stats.ContentLines,
		CellCount:             stats.CellCount,
		DistinctContentCount:  stats.DistinctContentCount,
		CompressionRatio:      stats.CompressionRatio,
		Separator:             separatorLabel(mx.Diagnostics.Separator),
		SpaceSeparatedHeaders: mx.Diagnostics.SpaceSeparatedHeaders,
		FileEncoding:          mx.Diagnostics.FileEncoding.String(),
		Truncated:             mx.Diagnostics.Truncated,
		UnexpectedCellCount:   len(mx.Diagnostics.UnexpectedCells),
		UnexpectedCellTags:    unexpectedTags,
		CachedResult:          cached,
	})
}

func separatorLabel(b byte) string {
	switch b {
	case '\t':
		return "tab"
	case ';':
		return "semicolon"
	case ',':
		return "comma"
	case '|':
		return "pipe"
	case ' ':
		return "space"
	default:
		return fmt.Sprintf("0x%02x", b)
	}
}

// registerParseFlatfile wires the parse_flatfile tool into s.server.
func (s *Server) registerParseFlatfile() {
	s.server.AddTool(&mcp.Tool{
		Name: "parse_flatfile",
		Description: "Parse a flat TSV/CSV file through the interning tokenizer and " +
			"report its shape: columns, lines, distinct-content ratio, detected " +
			"separator and encoding, and any truncation or overflow diagnostics.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "Path to the flat file to parse",
				},
				"max_line_count": {
					Type:        "integer",
					Description: "Override the configured line cap for this parse",
				},
				"max_cell_count": {
					Type:        "integer",
					Description: "Override the configured cell cap for this parse",
				},
				"skip_cache": {
					Type:        "boolean",
					Description: "Bypass the content-hash cache and force a fresh parse",
				},
			},
			Required: []string{"path"},
		},
	}, s.handleParseFlatfile)
}
