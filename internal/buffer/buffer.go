// Package buffer implements the fixed-capacity input window described in
// spec.md §4.1: a single backing byte array with a live region [start,end),
// BOM-based encoding detection at construction, and a refill operation
// that compacts the unread tail before reading more.
package buffer

import (
	"bytes"
	"io"

	"github.com/standardbeagle/flatintern/internal/alloc"
	"github.com/standardbeagle/flatintern/internal/errors"
	"github.com/standardbeagle/flatintern/internal/transcode"
	"github.com/standardbeagle/flatintern/internal/types"
)

// MinCapacity is the smallest read-buffer size the parser accepts.
const MinCapacity = 4096

var pool = alloc.New[byte](alloc.BufferTierConfigs)

// Buffer is a fixed-capacity window over an arbitrary byte source.
type Buffer struct {
	src      io.Reader
	data     []byte
	start    int
	end      int
	capacity int
	eof      bool
}

// New constructs a Buffer over src with the given capacity, detecting and
// consuming a byte-order mark if present. It returns the detected encoding
// (EncodingUnknown if none), replacing src with a transcoding adapter when
// a UTF-16 BOM is found.
func New(src io.Reader, capacity int) (*Buffer, types.Encoding, error) {
	if capacity < MinCapacity {
		return nil, types.EncodingUnknown, errors.New(errors.BufferTooSmall, "buffer.New")
	}

	probe := make([]byte, 3)
	n, err := io.ReadFull(src, probe)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, types.EncodingUnknown, errors.Wrap(errors.SourceFailure, "buffer.New", err)
	}
	probe = probe[:n]

	b := &Buffer{capacity: capacity, data: pool.Get(capacity)[:capacity]}
	enc := types.EncodingUnknown

	switch {
	case n >= 2 && probe[0] == 0xFF && probe[1] == 0xFE:
		enc = types.EncodingUTF16LE
		b.src = transcode.NewReader(prepend(probe[2:], src), false)
	case n >= 2 && probe[0] == 0xFE && probe[1] == 0xFF:
		enc = types.EncodingUTF16BE
		b.src = transcode.NewReader(prepend(probe[2:], src), true)
	case n >= 3 && probe[0] == 0xEF && probe[1] == 0xBB && probe[2] == 0xBF:
		enc = types.EncodingUTF8
		b.src = src
	default:
		b.src = src
		copy(b.data, probe)
		b.end = n
	}

	if err := b.Refill(); err != nil {
		return nil, enc, err
	}
	return b, enc, nil
}

func prepend(prefix []byte, r io.Reader) io.Reader {
	if len(prefix) == 0 {
		return r
	}
	return io.MultiReader(bytes.NewReader(append([]byte(nil), prefix...)), r)
}

// Bytes returns the live region of the window.
func (b *Buffer) Bytes() []byte { return b.data[b.start:b.end] }

// Start is the offset of the first unconsumed byte.
func (b *Buffer) Start() int { return b.start }

// End is the offset one past the last available byte.
func (b *Buffer) End() int { return b.end }

// Advance moves start forward by n bytes; the tokenizer calls this as it
// consumes bytes from the window.
func (b *Buffer) Advance(n int) {
	b.start += n
	if b.start > b.end {
		b.start = b.end
	}
}

// IsFull reports whether the window is saturated or the source is
// exhausted.
func (b *Buffer) IsFull() bool {
	return b.end == b.capacity || b.eof
}

// AtEOF reports whether the underlying source has signaled end-of-stream.
func (b *Buffer) AtEOF() bool { return b.eof }

// Refill compacts the live region to offset 0, then reads repeatedly into
// the tail until the window is full or the source yields zero bytes.
func (b *Buffer) Refill() error {
	if b.start > 0 {
		n := copy(b.data, b.data[b.start:b.end])
		b.end = n
		b.start = 0
	}
	for b.end < b.capacity && !b.eof {
		n, err := b.src.Read(b.data[b.end:b.capacity])
		if n > 0 {
			b.end += n
		}
		if err != nil {
			if err == io.EOF {
				b.eof = true
				break
			}
			return errors.Wrap(errors.SourceFailure, "buffer.Refill", err)
		}
		if n == 0 {
			b.eof = true
			break
		}
	}
	return nil
}

// Close releases the backing array back to the shared pool. The Buffer
// must not be used afterward.
func (b *Buffer) Close() {
	pool.Put(b.data)
	b.data = nil
}
