// Package types holds the small value types shared across flatintern's
// core packages, so none of buffer/trie/tokenizer/matrix need to import
// each other just to agree on an identifier's shape.
package types

// ContentID is the dense identifier assigned to a distinct cell content.
// 0 always names the empty sequence.
type ContentID uint32

// Encoding is a detected source file encoding.
type Encoding int

const (
	// EncodingUnknown means no BOM was detected; the source is treated as
	// an 8-bit superset of ASCII and passed through unchanged.
	EncodingUnknown Encoding = iota
	EncodingUTF8
	EncodingUTF16LE
	EncodingUTF16BE
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingUTF16LE:
		return "utf-16le"
	case EncodingUTF16BE:
		return "utf-16be"
	default:
		return "unknown"
	}
}

// UnexpectedCell is a diagnostic record for a non-empty cell that appeared
// beyond the detected column count on its line. ID is the ContentID the
// cell was already interned under, carried along so diagnostic output can
// render a tag without re-hashing the bytes.
type UnexpectedCell struct {
	Line   int
	Column int
	Bytes  []byte
	ID     ContentID
}

// Diagnostics summarizes facts gathered during a parse that do not affect
// the cell matrix's shape but matter to callers.
type Diagnostics struct {
	Separator             byte
	SpaceSeparatedHeaders  bool
	FileEncoding           Encoding
	EncodingDetected       bool
	Truncated              bool
	UnexpectedCells        []UnexpectedCell
}
