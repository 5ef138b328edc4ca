package verifier

import (
	"encoding/binary"
	"errors"
	"math"
)

// Codec errors
var (
	ErrMalformedUints  = errors.New("not a big-endian uint64 sequence")
	ErrMalformedPairs  = errors.New("not a float64 pair sequence")
	ErrMalformedScalar = errors.New("not a single float64")
)

// EncodeUints encodes a sequence of unsigned integers as concatenated
// big-endian uint64 words. This is the wire form both the sort verifier
// and the falsification engine speak.
func EncodeUints(a []uint64) []byte {
	buf := make([]byte, 8*len(a))
	for i, v := range a {
		binary.BigEndian.PutUint64(buf[8*i:], v)
	}
	return buf
}

// DecodeUints decodes a big-endian uint64 sequence. The empty slice
// decodes to an empty sequence.
func DecodeUints(data []byte) ([]uint64, error) {
	if len(data)%8 != 0 {
		return nil, ErrMalformedUints
	}
	a := make([]uint64, len(data)/8)
	for i := range a {
		a[i] = binary.BigEndian.Uint64(data[8*i:])
	}
	return a, nil
}

// EncodeFloatPairs encodes interleaved (x, y) float64 pairs as
// big-endian IEEE-754 words.
func EncodeFloatPairs(x, y []float64) []byte {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	buf := make([]byte, 16*n)
	for i := 0; i < n; i++ {
		binary.BigEndian.PutUint64(buf[16*i:], math.Float64bits(x[i]))
		binary.BigEndian.PutUint64(buf[16*i+8:], math.Float64bits(y[i]))
	}
	return buf
}

// DecodeFloatPairs decodes interleaved (x, y) float64 pairs
func DecodeFloatPairs(data []byte) (x, y []float64, err error) {
	if len(data)%16 != 0 {
		return nil, nil, ErrMalformedPairs
	}
	n := len(data) / 16
	x = make([]float64, n)
	y = make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = math.Float64frombits(binary.BigEndian.Uint64(data[16*i:]))
		y[i] = math.Float64frombits(binary.BigEndian.Uint64(data[16*i+8:]))
	}
	return x, y, nil
}

// EncodeFloat encodes a single float64 as 8 big-endian bytes
func EncodeFloat(v float64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(v))
	return buf
}

// DecodeFloat decodes a single float64
func DecodeFloat(data []byte) (float64, error) {
	if len(data) != 8 {
		return 0, ErrMalformedScalar
	}
	return math.Float64frombits(binary.BigEndian.Uint64(data)), nil
}
