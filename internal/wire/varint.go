// Package wire implements the serialized matrix layout from spec.md §6: a
// little-endian, byte-packed encoding of a cell matrix, built on a
// self-delimiting varint codec, for external consumers that interoperate
// with the same layout.
package wire

import "io"

// PutVarint appends the base-128 varint encoding of v to dst and returns
// the extended slice.
func PutVarint(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// ReadVarint decodes a single varint from r.
func ReadVarint(r io.ByteReader) (uint32, error) {
	var v uint32
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
}
