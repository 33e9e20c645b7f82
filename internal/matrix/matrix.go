// Package matrix implements the cell matrix container from spec.md §4.5:
// a dense sequence of content identifiers plus the distinct-content table
// and diagnostics that together describe a completed parse.
package matrix

import (
	"github.com/standardbeagle/flatintern/internal/errors"
	"github.com/standardbeagle/flatintern/internal/types"
)

// Matrix holds the full result of a parse. Once constructed it is
// immutable and safe to share for concurrent reads (spec.md §5).
type Matrix struct {
	Columns     int
	Cells       []types.ContentID
	Content     [][]byte
	Diagnostics types.Diagnostics
}

// Lines is the number of complete rows in the matrix, zero when Columns
// is zero.
func (m *Matrix) Lines() int {
	if m.Columns == 0 {
		return 0
	}
	return len(m.Cells) / m.Columns
}

// ContentLines is Lines minus the header row, floored at zero.
func (m *Matrix) ContentLines() int {
	l := m.Lines() - 1
	if l < 0 {
		return 0
	}
	return l
}

// At returns the byte content at (line, column).
func (m *Matrix) At(line, column int) []byte {
	id := m.Cells[line*m.Columns+column]
	return m.Content[id]
}

// Check verifies the structural invariants of spec.md §3 and is the
// gatekeeper for matrices constructed by external importers rather than
// by the tokenizer itself.
func (m *Matrix) Check() error {
	if len(m.Content) == 0 || len(m.Content[0]) != 0 {
		return errors.New(errors.Inconsistent, "matrix.Check: content[0] must be the empty sequence")
	}

	for _, id := range m.Cells {
		if int(id) >= len(m.Content) {
			return errors.New(errors.Inconsistent, "matrix.Check: cell identifier out of range")
		}
	}

	if m.Columns == 0 {
		if len(m.Cells) != 0 {
			return errors.New(errors.Inconsistent, "matrix.Check: columns is zero but cells is not empty")
		}
		if len(m.Content) > 1 {
			return errors.New(errors.Inconsistent, "matrix.Check: columns is zero but content has non-empty entries")
		}
	} else if len(m.Cells)%m.Columns != 0 {
		return errors.New(errors.Inconsistent, "matrix.Check: cell count is not a multiple of columns")
	}

	if err := m.checkDenseOrdering(); err != nil {
		return err
	}
	return nil
}

// checkDenseOrdering verifies P1: for every identifier k >= 2 that occurs,
// its first occurrence must come after identifier k-1's first occurrence,
// and the non-empty identifiers that occur must form a prefix {1,...,M}.
// Identifier 0 (the empty cell) may appear anywhere, or not at all.
func (m *Matrix) checkDenseOrdering() error {
	firstPos := make(map[types.ContentID]int, len(m.Content))
	for pos, id := range m.Cells {
		if _, seen := firstPos[id]; !seen {
			firstPos[id] = pos
		}
	}

	var maxSeen types.ContentID
	for id := range firstPos {
		if id > maxSeen {
			maxSeen = id
		}
	}

	for k := types.ContentID(2); k <= maxSeen; k++ {
		posK, kSeen := firstPos[k]
		posPrev, prevSeen := firstPos[k-1]
		if kSeen && !prevSeen {
			return errors.New(errors.Inconsistent, "matrix.Check: identifier used without its predecessor appearing first")
		}
		if kSeen && prevSeen && posPrev >= posK {
			return errors.New(errors.Inconsistent, "matrix.Check: dense first-seen ordering violated")
		}
	}
	return nil
}
