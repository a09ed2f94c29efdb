package lib

import (
	"encoding/binary"
	"math"
)

/*
	Compact size integers used to length-prefix variable fields in signed payloads:
	n < 253          -> 1 literal byte
	n <= 0xFFFF      -> 0xFD + 2 byte little endian
	n <= 0xFFFFFFFF  -> 0xFE + 4 byte little endian
*/

const (
	varint16Marker = 0xFD
	varint32Marker = 0xFE
)

// EncodeVarint() encodes n as a compact size integer
func EncodeVarint(n uint64) ([]byte, ErrorI) {
	switch {
	case n < varint16Marker:
		return []byte{byte(n)}, nil
	case n <= math.MaxUint16:
		out := make([]byte, 3)
		out[0] = varint16Marker
		binary.LittleEndian.PutUint16(out[1:], uint16(n))
		return out, nil
	case n <= math.MaxUint32:
		out := make([]byte, 5)
		out[0] = varint32Marker
		binary.LittleEndian.PutUint32(out[1:], uint32(n))
		return out, nil
	default:
		return nil, ErrVarintOutOfRange(n)
	}
}

// DecodeVarint() decodes a compact size integer from the start of b and returns the value and its encoded size
func DecodeVarint(b []byte) (n uint64, size int, err ErrorI) {
	if len(b) == 0 {
		return 0, 0, ErrVarintTruncated()
	}
	switch b[0] {
	case varint16Marker:
		if len(b) < 3 {
			return 0, 0, ErrVarintTruncated()
		}
		return uint64(binary.LittleEndian.Uint16(b[1:3])), 3, nil
	case varint32Marker:
		if len(b) < 5 {
			return 0, 0, ErrVarintTruncated()
		}
		return uint64(binary.LittleEndian.Uint32(b[1:5])), 5, nil
	case 0xFF:
		// the 8 byte form is never produced
		return 0, 0, ErrVarintOutOfRange(math.MaxUint64)
	default:
		return uint64(b[0]), 1, nil
	}
}

// WriteWithLength() returns varint(len(val)) || val
func WriteWithLength(val []byte) ([]byte, ErrorI) {
	prefix, err := EncodeVarint(uint64(len(val)))
	if err != nil {
		return nil, err
	}
	return append(prefix, val...), nil
}
