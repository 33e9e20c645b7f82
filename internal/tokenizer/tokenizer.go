// Package tokenizer implements the streaming scanner and matrix builder
// from spec.md §4.4: separator auto-detection, quote handling, trimming,
// line assembly, truncation and overflow capture, driving the interning
// trie to produce a cell/content matrix.
package tokenizer

import (
	"io"

	"github.com/standardbeagle/flatintern/internal/buffer"
	"github.com/standardbeagle/flatintern/internal/matrix"
	"github.com/standardbeagle/flatintern/internal/trie"
	"github.com/standardbeagle/flatintern/internal/types"
)

const (
	tab   = 0x09
	space = 0x20
	cr    = 0x0D
	lf    = 0x0A
)

// candidateSeparators lists the separator guesses in priority order.
var candidateSeparators = []byte{tab, ';', ',', '|', space}

type tokenizer struct {
	buf *buffer.Buffer
	tr  *trie.Trie
	err error

	window    []byte
	pos       int
	cellStart int

	separator             byte
	columns               int
	spaceSeparatedHeaders bool
	headerDone            bool

	cells           []types.ContentID
	unexpectedCells []types.UnexpectedCell

	lineSize                 int
	emptyCellsSinceLineStart int

	cellCap   int
	truncated bool
	stop      bool
}

// TrieShape reports the interning trie's footprint right before its
// content table transfers to the matrix and the arena is discarded
// (spec.md §5's lifecycle) — useful for internal/metrics, otherwise
// unobtainable once Parse returns.
type TrieShape struct {
	NodeCount  int
	ArenaWords int
}

// Parse drives src through separator detection, the main scan, and matrix
// assembly, returning the completed matrix.
func Parse(src io.Reader, cfg Config) (*matrix.Matrix, error) {
	m, _, err := ParseWithShape(src, cfg)
	return m, err
}

// ParseWithShape is Parse plus the trie's shape at hand-off, for callers
// that want internal/metrics.ParseStats.WithTrieShape.
func ParseWithShape(src io.Reader, cfg Config) (*matrix.Matrix, TrieShape, error) {
	if err := cfg.Validate(); err != nil {
		return nil, TrieShape{}, err
	}

	buf, enc, err := buffer.New(src, cfg.bufferSize())
	if err != nil {
		return nil, TrieShape{}, err
	}
	defer buf.Close()

	tk := &tokenizer{
		buf:       buf,
		tr:        trie.New(),
		window:    buf.Bytes(),
		separator: tab,
		columns:   1,
	}

	tk.detectSeparator()
	if tk.err != nil {
		return nil, TrieShape{}, tk.err
	}
	tk.cellCap = effectiveCellCap(cfg, tk.columns)

	tk.scan()
	if tk.err != nil {
		return nil, TrieShape{}, tk.err
	}

	if len(tk.cells) == 0 {
		tk.columns = 0
	}

	shape := TrieShape{NodeCount: tk.tr.NodeCount(), ArenaWords: tk.tr.ArenaWords()}

	m := &matrix.Matrix{
		Columns: tk.columns,
		Cells:   tk.cells,
		Content: tk.tr.TakeContent(),
		Diagnostics: types.Diagnostics{
			Separator:             tk.separator,
			SpaceSeparatedHeaders: tk.spaceSeparatedHeaders,
			FileEncoding:          enc,
			EncodingDetected:      enc != types.EncodingUnknown,
			Truncated:             tk.truncated,
			UnexpectedCells:       tk.unexpectedCells,
		},
	}

	return m, shape, nil
}

// effectiveCellCap computes spec.md §4.4's cap, including room for the
// header row.
func effectiveCellCap(cfg Config, columns int) int {
	byLines := cfg.MaxLineCount * columns
	cap := cfg.MaxCellCount
	if byLines < cap {
		cap = byLines
	}
	return cap + columns
}

// byteAt ensures window has at least i+1 bytes, refilling (preserving
// everything from cellStart onward) as needed. It reports false when no
// more bytes will ever arrive at that position right now: either the
// source is exhausted, or the window is saturated and freeing space would
// require consuming bytes the caller hasn't committed to yet.
func (tk *tokenizer) byteAt(i int) (byte, bool) {
	for i >= len(tk.window) {
		if tk.buf.IsFull() {
			return 0, false
		}
		if err := tk.refill(); err != nil {
			tk.err = err
			return 0, false
		}
	}
	return tk.window[i], true
}

func (tk *tokenizer) refill() error {
	tk.buf.Advance(tk.cellStart)
	if err := tk.buf.Refill(); err != nil {
		return err
	}
	tk.window = tk.buf.Bytes()
	tk.pos -= tk.cellStart
	tk.cellStart = 0
	return nil
}

// detectSeparator implements spec.md §4.4's one-shot separator guess over
// the first line: skip leading whitespace/newlines, count each candidate
// up to the first line terminator, and take the first with a nonzero
// count.
func (tk *tokenizer) detectSeparator() {
	i := 0
	for {
		b, ok := tk.byteAt(i)
		if !ok || !(b == space || b == lf || b == cr) {
			break
		}
		i++
	}
	if tk.err != nil {
		return
	}

	counts := make(map[byte]int, len(candidateSeparators))
	j := i
	for {
		b, ok := tk.byteAt(j)
		if !ok || b == lf || b == cr {
			break
		}
		for _, c := range candidateSeparators {
			if b == c {
				counts[c]++
				break
			}
		}
		j++
	}
	if tk.err != nil {
		return
	}

	sep := byte(tab)
	winCount := 0
	found := false
	for _, c := range candidateSeparators {
		if counts[c] > 0 {
			sep = c
			winCount = counts[c]
			found = true
			break
		}
	}

	tk.columns = 1
	if found {
		tk.columns = winCount + 1
	}
	tk.separator = sep
	tk.spaceSeparatedHeaders = found && sep == space
	if tk.spaceSeparatedHeaders {
		// The header line tokenizes on space, but the recorded/body
		// separator from the second line on is always TAB (spec.md §4.4).
		tk.separator = tab
	}

	tk.pos = i
	tk.cellStart = i
}

// effectiveSeparator is the separator used for the line currently being
// scanned: space for the header line when SpaceSeparatedHeaders, TAB for
// every line after it (spec.md §4.4; the per-line switch point is resolved
// in DESIGN.md's Open Questions section in favor of the cleaner rule over
// the source's mid-line inconsistency).
func (tk *tokenizer) effectiveSeparator() byte {
	if tk.spaceSeparatedHeaders && !tk.headerDone {
		return space
	}
	return tk.separator
}

func (tk *tokenizer) scan() {
	inQuote := false
	nQuotes := 0

	for !tk.stop {
		if tk.pos >= len(tk.window) {
			if tk.buf.AtEOF() && tk.buf.IsFull() {
				tk.finishAtEOF(nQuotes)
				return
			}
			if !tk.buf.IsFull() {
				if err := tk.refill(); err != nil {
					tk.err = err
					return
				}
				continue
			}
			// Buffer saturated, no terminator found yet: force-extract the
			// partial span and continue as a fresh cell on the same line
			// (spec.md §9 open question, resolved to preserve this
			// behavior verbatim).
			tk.emit(tk.window[tk.cellStart:tk.pos], nQuotes, false)
			if tk.stop {
				return
			}
			tk.cellStart = tk.pos
			if err := tk.refill(); err != nil {
				tk.err = err
				return
			}
			nQuotes = 0
			inQuote = false
			continue
		}

		b := tk.window[tk.pos]

		if inQuote {
			if b == '"' {
				next, ok := tk.byteAt(tk.pos + 1)
				if tk.err != nil {
					return
				}
				if !ok {
					if tk.buf.AtEOF() {
						// The quote is the last byte of input: close it.
						inQuote = false
						tk.pos++
						continue
					}
					// Saturated without enough lookahead: force-extract
					// through this quote byte and resume as a fresh cell.
					tk.pos++
					tk.emit(tk.window[tk.cellStart:tk.pos], nQuotes, false)
					if tk.stop {
						return
					}
					tk.cellStart = tk.pos
					if err := tk.refill(); err != nil {
						tk.err = err
						return
					}
					nQuotes = 0
					inQuote = false
					continue
				}
				if next == '"' {
					nQuotes++
					tk.pos += 2
					continue
				}
				inQuote = false
				tk.pos++
				continue
			}
			tk.pos++
			continue
		}

		if tk.pos == tk.cellStart && b == '"' {
			inQuote = true
			nQuotes = 1
			tk.pos++
			continue
		}

		if b == tk.effectiveSeparator() {
			tk.emit(tk.window[tk.cellStart:tk.pos], nQuotes, false)
			nQuotes = 0
			tk.pos++
			tk.cellStart = tk.pos
			continue
		}

		if b == cr || b == lf {
			tk.emit(tk.window[tk.cellStart:tk.pos], nQuotes, true)
			nQuotes = 0
			tk.pos++
			tk.cellStart = tk.pos
			tk.headerDone = true
			continue
		}

		tk.pos++
	}
}

// finishAtEOF handles the final, unterminated span at true end of input.
func (tk *tokenizer) finishAtEOF(nQuotes int) {
	if tk.cellStart < tk.pos || tk.lineSize > 0 || tk.emptyCellsSinceLineStart > 0 {
		tk.emit(tk.window[tk.cellStart:tk.pos], nQuotes, true)
	}
}

// emit runs one extracted span through cell extraction and line assembly.
func (tk *tokenizer) emit(raw []byte, nQuotes int, newline bool) {
	span := extractCell(raw, nQuotes)
	id := tk.tr.Intern(span)

	if id == 0 {
		if tk.lineSize == 0 {
			tk.emptyCellsSinceLineStart++
		} else {
			tk.appendCell(0)
			tk.lineSize++
		}
	} else {
		tk.flushEmpties()
		if tk.stop {
			return
		}
		if tk.lineSize < tk.columns {
			tk.appendCell(id)
		} else {
			tk.unexpectedCells = append(tk.unexpectedCells, types.UnexpectedCell{
				Line:   tk.currentLine(),
				Column: tk.lineSize,
				Bytes:  append([]byte(nil), span...),
				ID:     id,
			})
		}
		tk.lineSize++
	}

	if newline {
		tk.endLine()
	}
}

// currentLine is the zero-based line index of the row under assembly.
func (tk *tokenizer) currentLine() int {
	if tk.columns == 0 {
		return 0
	}
	return len(tk.cells)/tk.columns - 1
}

func (tk *tokenizer) flushEmpties() {
	for tk.emptyCellsSinceLineStart > 0 {
		if tk.lineSize < tk.columns {
			if !tk.appendCell(0) {
				return
			}
		}
		tk.lineSize++
		tk.emptyCellsSinceLineStart--
	}
}

func (tk *tokenizer) endLine() {
	if tk.lineSize > 0 {
		for tk.lineSize < tk.columns {
			if !tk.appendCell(0) {
				break
			}
			tk.lineSize++
		}
	}
	tk.lineSize = 0
	tk.emptyCellsSinceLineStart = 0
}

// appendCell appends id to the cell vector unless the effective cap has
// been reached, in which case it sets the truncation flag and halts
// scanning (spec.md P7).
func (tk *tokenizer) appendCell(id types.ContentID) bool {
	if len(tk.cells) >= tk.cellCap {
		tk.truncated = true
		tk.stop = true
		return false
	}
	tk.cells = append(tk.cells, id)
	return true
}
