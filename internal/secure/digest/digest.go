// Package digest implements the SHA-256 digest function from first
// principles: message padding, the 64-word message schedule, and the
// 64-round compression function, using the initial-state and round
// constants published in FIPS 180-4.
//
// The implementation is deliberately self-contained. The rest of the
// credential protection engine (password hashing, field encryption)
// derives all of its key material through Sum256, so this package must
// match the standard bit-for-bit.
package digest

import (
	"encoding/binary"
	"math/bits"
)

const (
	// Size is the length of a digest in bytes.
	Size = 32
	// BlockSize is the compression function's block length in bytes.
	BlockSize = 64
)

// initState holds the eight initial hash values: the first 32 bits of
// the fractional parts of the square roots of the first eight primes.
var initState = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

// roundConstants holds the 64 per-round constants: the first 32 bits of
// the fractional parts of the cube roots of the first 64 primes.
var roundConstants = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5,
	0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3,
	0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc,
	0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7,
	0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13,
	0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3,
	0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5,
	0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208,
	0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// Sum256 returns the SHA-256 digest of data. It is a pure function:
// deterministic, stateless, and safe for concurrent use. Any byte
// sequence is a valid input, including the empty one.
func Sum256(data []byte) [Size]byte {
	h := initState

	// Pad to a multiple of the block size: a single 1 bit, zero bits,
	// then the original length in bits as a 64-bit big-endian suffix.
	padded := make([]byte, 0, ((len(data)+8)/BlockSize+1)*BlockSize)
	padded = append(padded, data...)
	padded = append(padded, 0x80)
	for len(padded)%BlockSize != BlockSize-8 {
		padded = append(padded, 0x00)
	}
	padded = binary.BigEndian.AppendUint64(padded, uint64(len(data))*8)

	for i := 0; i < len(padded); i += BlockSize {
		compress(&h, padded[i:i+BlockSize])
	}

	var out [Size]byte
	for i, word := range h {
		binary.BigEndian.PutUint32(out[i*4:], word)
	}
	return out
}

// compress runs the 64-round compression function over one 64-byte block
// and adds the result back into the running state.
func compress(state *[8]uint32, block []byte) {
	var w [64]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(block[i*4:])
	}
	for i := 16; i < 64; i++ {
		w[i] = smallSigma1(w[i-2]) + w[i-7] + smallSigma0(w[i-15]) + w[i-16]
	}

	a, b, c, d := state[0], state[1], state[2], state[3]
	e, f, g, hh := state[4], state[5], state[6], state[7]

	for i := 0; i < 64; i++ {
		t1 := hh + bigSigma1(e) + choose(e, f, g) + roundConstants[i] + w[i]
		t2 := bigSigma0(a) + majority(a, b, c)
		hh = g
		g = f
		f = e
		e = d + t1
		d = c
		c = b
		b = a
		a = t1 + t2
	}

	state[0] += a
	state[1] += b
	state[2] += c
	state[3] += d
	state[4] += e
	state[5] += f
	state[6] += g
	state[7] += hh
}

func rotr(x uint32, n int) uint32 { return bits.RotateLeft32(x, -n) }

func bigSigma0(x uint32) uint32 { return rotr(x, 2) ^ rotr(x, 13) ^ rotr(x, 22) }

func bigSigma1(x uint32) uint32 { return rotr(x, 6) ^ rotr(x, 11) ^ rotr(x, 25) }

func smallSigma0(x uint32) uint32 { return rotr(x, 7) ^ rotr(x, 18) ^ (x >> 3) }

func smallSigma1(x uint32) uint32 { return rotr(x, 17) ^ rotr(x, 19) ^ (x >> 10) }

// choose picks bits from f where e is set and from g where it is not.
func choose(e, f, g uint32) uint32 { return (e & f) ^ (^e & g) }

// majority returns the bitwise majority vote of a, b and c.
func majority(a, b, c uint32) uint32 { return (a & b) ^ (a & c) ^ (b & c) }
