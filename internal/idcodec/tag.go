// Package idcodec renders ContentIDs and line/column positions as short,
// human-readable tags for diagnostics and logs. It is not part of the wire
// format (internal/wire) — that stays binary and version-checked.
package idcodec

import (
	"fmt"

	"github.com/standardbeagle/flatintern/internal/types"
)

// idAlphabet assigns 63 single-byte glyphs to a ContentID's digits: A-Z,
// a-z, 0-9, then '_'. Dense ContentIDs stay short (a few characters) for
// a long while before growing, which is the only property a log tag needs.
const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_"

// CellTag renders a diagnostic-friendly token for a cell's position and
// content identifier, e.g. "L3C2#B" — human-scannable in log output, not
// meant to be parsed back into (line, column, id).
func CellTag(line, column int, id types.ContentID) string {
	return fmt.Sprintf("L%dC%d#%s", line, column, encodeID(uint64(id)))
}

// encodeID renders value in idAlphabet. CellTag only ever goes one way —
// these tags are read by a human scanning logs, never decoded back into a
// ContentID — so unlike a general-purpose base-63 codec this has no
// decoder, no overflow checks on the way back, and no exported alphabet.
func encodeID(value uint64) string {
	if value == 0 {
		return idAlphabet[0:1]
	}
	var digits []byte
	for value > 0 {
		digits = append(digits, idAlphabet[value%uint64(len(idAlphabet))])
		value /= uint64(len(idAlphabet))
	}
	reverse(digits)
	return string(digits)
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
