package wire

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/standardbeagle/flatintern/internal/errors"
	"github.com/standardbeagle/flatintern/internal/matrix"
	"github.com/standardbeagle/flatintern/internal/types"
)

// Version is the only wire format version this package understands.
const Version = 1

// Marshal writes m to w in the layout documented in spec.md §6.
func Marshal(w io.Writer, m *matrix.Matrix) error {
	bw := bufio.NewWriter(w)

	if err := bw.WriteByte(Version); err != nil {
		return errors.Wrap(errors.SourceFailure, "wire.Marshal", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint16(m.Columns)); err != nil {
		return errors.Wrap(errors.SourceFailure, "wire.Marshal", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(m.Cells))); err != nil {
		return errors.Wrap(errors.SourceFailure, "wire.Marshal", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(m.Content))); err != nil {
		return errors.Wrap(errors.SourceFailure, "wire.Marshal", err)
	}

	var scratch []byte
	for _, id := range m.Cells {
		scratch = PutVarint(scratch[:0], uint32(id))
		if _, err := bw.Write(scratch); err != nil {
			return errors.Wrap(errors.SourceFailure, "wire.Marshal", err)
		}
	}
	for _, c := range m.Content {
		scratch = PutVarint(scratch[:0], uint32(len(c)))
		if _, err := bw.Write(scratch); err != nil {
			return errors.Wrap(errors.SourceFailure, "wire.Marshal", err)
		}
		if _, err := bw.Write(c); err != nil {
			return errors.Wrap(errors.SourceFailure, "wire.Marshal", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return errors.Wrap(errors.SourceFailure, "wire.Marshal", err)
	}
	return nil
}

// Unmarshal reads a matrix from r in the layout documented in spec.md §6.
// The returned matrix carries no diagnostics: those are not part of the
// wire format.
func Unmarshal(r io.Reader) (*matrix.Matrix, error) {
	br := bufio.NewReader(r)

	version, err := br.ReadByte()
	if err != nil {
		return nil, errors.Wrap(errors.SourceFailure, "wire.Unmarshal", err)
	}
	if version != Version {
		return nil, errors.New(errors.UnknownVersion, "wire.Unmarshal")
	}

	var columns uint16
	if err := binary.Read(br, binary.LittleEndian, &columns); err != nil {
		return nil, errors.Wrap(errors.SourceFailure, "wire.Unmarshal", err)
	}
	var cellCount, contentCount uint32
	if err := binary.Read(br, binary.LittleEndian, &cellCount); err != nil {
		return nil, errors.Wrap(errors.SourceFailure, "wire.Unmarshal", err)
	}
	if err := binary.Read(br, binary.LittleEndian, &contentCount); err != nil {
		return nil, errors.Wrap(errors.SourceFailure, "wire.Unmarshal", err)
	}

	cells := make([]types.ContentID, cellCount)
	for i := range cells {
		v, err := ReadVarint(br)
		if err != nil {
			return nil, errors.Wrap(errors.SourceFailure, "wire.Unmarshal", err)
		}
		cells[i] = types.ContentID(v)
	}

	content := make([][]byte, contentCount)
	for i := range content {
		length, err := ReadVarint(br)
		if err != nil {
			return nil, errors.Wrap(errors.SourceFailure, "wire.Unmarshal", err)
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, errors.Wrap(errors.SourceFailure, "wire.Unmarshal", err)
		}
		content[i] = buf
	}

	return &matrix.Matrix{
		Columns: int(columns),
		Cells:   cells,
		Content: content,
	}, nil
}
