package tensor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeRow encodes float32 values as a little-endian IEEE 754 sequence
// without a length prefix; the length is derived from the BLOB size on decode.
func EncodeRow(vec []float32) []byte {
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// DecodeRow decodes a BLOB produced by EncodeRow.
func DecodeRow(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("tensor: invalid row blob length %d (not multiple of 4)", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}
