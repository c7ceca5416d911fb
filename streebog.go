package docvault

import (
	"encoding/binary"
	"hash"
)

const (
	// Streebog512Size is the digest length in bytes.
	Streebog512Size = 64
	// StreebogBlockSize is the message block length in bytes (512 bits).
	StreebogBlockSize = 64
)

// The hash state keeps 512-bit vectors in stream order: byte 0 is the
// least significant position. Published digests are quoted in this
// order, so Sum output needs no reversal.

// streebogLPS applies the substitution, byte transposition and
// per-lane linear transform to a 64-byte vector in place.
func streebogLPS(v *[64]byte) {
	var t [64]byte
	for i := range t {
		t[i] = gostPi[v[streebogTau[i]]]
	}
	for lane := 0; lane < 8; lane++ {
		x := binary.LittleEndian.Uint64(t[lane*8:])
		var acc uint64
		for g := 0; x != 0; g++ {
			if x&1 != 0 {
				acc ^= streebogA[63-g]
			}
			x >>= 1
		}
		binary.LittleEndian.PutUint64(v[lane*8:], acc)
	}
}

// streebogXor sets dst = a XOR b.
func streebogXor(dst, a, b *[64]byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

// streebogAdd adds src into dst modulo 2^512 with carry propagation.
func streebogAdd(dst, src *[64]byte) {
	var carry uint16
	for i := range dst {
		sum := uint16(dst[i]) + uint16(src[i]) + carry
		dst[i] = byte(sum)
		carry = sum >> 8
	}
}

// streebogAddUint adds a small integer into dst modulo 2^512.
func streebogAddUint(dst *[64]byte, v uint64) {
	var t [64]byte
	binary.LittleEndian.PutUint64(t[:8], v)
	streebogAdd(dst, &t)
}

// streebogG is the compression function g_N(h, m): twelve rounds of an
// LPS-based key schedule folded with the message block.
func streebogG(h *[64]byte, m, n *[64]byte) {
	var k, x [64]byte
	streebogXor(&k, h, n)
	streebogLPS(&k)

	x = *m
	for r := 0; r < 12; r++ {
		streebogXor(&x, &k, &x)
		streebogLPS(&x)
		streebogXor(&k, &k, &streebogC[r])
		streebogLPS(&k)
	}

	for i := range h {
		h[i] ^= k[i] ^ x[i] ^ m[i]
	}
}

// streebogDigest is the streaming state: the running hash h, the
// processed-bit counter n and the block checksum sigma, all modulo
// 2^512. A digest is owned by a single computation and never shared.
type streebogDigest struct {
	h     [64]byte
	n     [64]byte
	sigma [64]byte
	buf   [64]byte
	nx    int
}

// NewStreebog512 returns a hash.Hash computing the Streebog-512
// digest. It plugs into crypto/hmac, pbkdf2 and io streaming.
func NewStreebog512() hash.Hash {
	return &streebogDigest{}
}

func (d *streebogDigest) Size() int      { return Streebog512Size }
func (d *streebogDigest) BlockSize() int { return StreebogBlockSize }

func (d *streebogDigest) Reset() { *d = streebogDigest{} }

func (d *streebogDigest) Write(p []byte) (int, error) {
	written := len(p)
	if d.nx > 0 {
		c := copy(d.buf[d.nx:], p)
		d.nx += c
		p = p[c:]
		if d.nx == StreebogBlockSize {
			d.block(&d.buf)
			d.nx = 0
		}
	}
	for len(p) >= StreebogBlockSize {
		var m [64]byte
		copy(m[:], p[:StreebogBlockSize])
		d.block(&m)
		p = p[StreebogBlockSize:]
	}
	if len(p) > 0 {
		d.nx = copy(d.buf[:], p)
	}
	return written, nil
}

// block consumes one full 512-bit message block: compress, then update
// the bit counter and checksum with carry arithmetic (not XOR).
func (d *streebogDigest) block(m *[64]byte) {
	streebogG(&d.h, m, &d.n)
	streebogAddUint(&d.n, 512)
	streebogAdd(&d.sigma, m)
}

// Sum appends the digest of the data written so far. The state is
// copied first, so writes may continue afterwards.
func (d *streebogDigest) Sum(in []byte) []byte {
	s := *d
	h := s.checkSum()
	return append(in, h[:]...)
}

// checkSum runs the finalization: pad the residual block with a single
// 1 bit, fold it in, then chain the counter and checksum through two
// more compressions.
func (d *streebogDigest) checkSum() [Streebog512Size]byte {
	var m [64]byte
	copy(m[:], d.buf[:d.nx])
	m[d.nx] = 0x01

	streebogG(&d.h, &m, &d.n)
	streebogAddUint(&d.n, uint64(d.nx)*8)
	streebogAdd(&d.sigma, &m)

	var zero [64]byte
	streebogG(&d.h, &d.n, &zero)
	streebogG(&d.h, &d.sigma, &zero)
	return d.h
}

// Streebog512 computes the GOST R 34.11-2018 512-bit digest of data in
// one shot.
func Streebog512(data []byte) [Streebog512Size]byte {
	var d streebogDigest
	d.Write(data)
	return d.checkSum()
}
