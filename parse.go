// Package flatintern ingests a byte stream representing a delimited flat
// data file (TSV, CSV, and relatives) and converts it into a compact
// in-memory matrix of interned cell identifiers plus the distinct-content
// table that backs them. See internal/trie and internal/tokenizer for the
// two subsystems that do the actual work; this file is the thin public
// entry point spec.md §6 describes as "external interfaces".
package flatintern

import (
	"io"

	"github.com/standardbeagle/flatintern/internal/matrix"
	"github.com/standardbeagle/flatintern/internal/tokenizer"
)

// Config controls parsing limits and buffering. The zero value is not
// directly usable for production inputs (caps of zero reject everything
// past the header); use DefaultConfig and override what matters.
type Config = tokenizer.Config

// DefaultConfig returns a Config with generous line/cell caps and the
// minimum read buffer size.
func DefaultConfig() Config { return tokenizer.DefaultConfig() }

// Matrix is the result of a parse: see internal/matrix for its shape and
// consistency invariants.
type Matrix = matrix.Matrix

// Parse reads src to completion and returns the resulting matrix. src is
// never seeked; it may be plain UTF-8 (or any 8-bit ASCII superset), with
// or without a byte-order mark, or UTF-16LE/UTF-16BE. UTF-16 is recognized
// only by its byte-order mark; without one the bytes are passed through
// unchanged.
func Parse(src io.Reader, cfg Config) (*Matrix, error) {
	return tokenizer.Parse(src, cfg)
}
