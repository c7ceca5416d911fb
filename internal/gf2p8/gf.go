// Package gf2p8 implements arithmetic over GF(2^8) with the reduction
// polynomial p(x) = x^8 + x^7 + x^6 + x + 1 and the 16-byte linear
// transformation built on it, as defined by GOST R 34.12-2018.
//
// Vectors are kept in wire order: index 0 holds the standard's most
// significant position (a15) and index 15 holds a0. With this layout
// the published test vectors apply to byte strings exactly as written.
package gf2p8

// poly is the reduction polynomial with the x^8 term dropped.
const poly = 0xC3

// lVec holds the coefficients of the linear transformation, one per
// vector position.
var lVec = [16]byte{
	0x94, 0x20, 0x85, 0x10, 0xC2, 0xC0, 0x01, 0xFB,
	0x01, 0xC0, 0xC2, 0x10, 0x85, 0x20, 0x94, 0x01,
}

// Mul multiplies a and b in GF(2^8), reducing by poly. Eight rounds of
// shift-and-conditional-XOR; total, no error cases.
func Mul(a, b byte) byte {
	var z byte
	for b != 0 {
		if b&1 == 1 {
			z ^= a
		}
		if a&0x80 != 0 {
			a = a<<1 ^ poly
		} else {
			a <<= 1
		}
		b >>= 1
	}
	return z
}

// Linear folds a 16-byte vector into one byte: the XOR of every
// element multiplied by its lVec coefficient.
func Linear(v [16]byte) byte {
	var x byte
	for i := range v {
		x ^= Mul(v[i], lVec[i])
	}
	return x
}

// R performs one step of the standard's shift register: every byte
// moves one position toward a0 and the vacated a15 slot takes the
// linear fold of the previous state.
func R(v [16]byte) [16]byte {
	var out [16]byte
	copy(out[1:], v[:15])
	out[0] = Linear(v)
	return out
}

// RInv is the inverse shift-register step: bytes move back toward a15
// and the a0 slot takes the linear fold of the rotated vector.
func RInv(v [16]byte) [16]byte {
	var out [16]byte
	copy(out[:15], v[1:])
	out[15] = v[0]
	out[15] = Linear(out)
	return out
}

// L applies R sixteen times, yielding the cipher's full diffusion
// layer. The count is fixed by the standard.
func L(v [16]byte) [16]byte {
	for i := 0; i < 16; i++ {
		v = R(v)
	}
	return v
}

// LInv applies RInv sixteen times.
func LInv(v [16]byte) [16]byte {
	for i := 0; i < 16; i++ {
		v = RInv(v)
	}
	return v
}
