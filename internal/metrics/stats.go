// Package metrics derives summary statistics from a completed parse, in
// the spirit of the teacher's codebase-stats calculator but scaled down to
// this domain: distinct-content counts, cell counts, and trie shape.
package metrics

import (
	"github.com/standardbeagle/flatintern/internal/matrix"
)

// ParseStats summarizes one parse for logging and tuning read-buffer and
// cap settings.
type ParseStats struct {
	Lines              int
	ContentLines        int
	Columns             int
	CellCount           int
	DistinctContentCount int
	UnexpectedCellCount  int
	Truncated            bool

	// TrieNodeCount and TrieArenaWords are filled in by WithTrieShape when
	// the caller captured the trie's shape (it is normally discarded by the
	// time the matrix exists, per spec.md §5's lifecycle).
	TrieNodeCount  int
	TrieArenaWords int

	// CompressionRatio is CellCount / DistinctContentCount, a rough
	// measure of how much interning is buying the caller; zero content
	// means zero ratio rather than a division by zero.
	CompressionRatio float64
}

// FromMatrix computes the matrix-derived half of ParseStats.
func FromMatrix(m *matrix.Matrix) ParseStats {
	s := ParseStats{
		Lines:                m.Lines(),
		ContentLines:         m.ContentLines(),
		Columns:              m.Columns,
		CellCount:            len(m.Cells),
		DistinctContentCount: len(m.Content),
		UnexpectedCellCount:  len(m.Diagnostics.UnexpectedCells),
		Truncated:            m.Diagnostics.Truncated,
	}
	if s.DistinctContentCount > 0 {
		s.CompressionRatio = float64(s.CellCount) / float64(s.DistinctContentCount)
	}
	return s
}

// WithTrieShape fills in node/arena counts gathered before the trie's
// content table transferred to the matrix.
func (s ParseStats) WithTrieShape(nodeCount, arenaWords int) ParseStats {
	s.TrieNodeCount = nodeCount
	s.TrieArenaWords = arenaWords
	return s
}
