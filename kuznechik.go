package docvault

import (
	"fmt"

	"github.com/docvault/crypto-go/internal/gf2p8"
)

const (
	// KuznechikKeySize is the cipher key length in bytes (256 bits).
	KuznechikKeySize = 32
	// KuznechikBlockSize is the cipher block length in bytes (128 bits).
	KuznechikBlockSize = 16
)

// Kuznechik is the GOST R 34.12-2018 128-bit block cipher with a
// 256-bit key. The only state is the round-key schedule computed at
// construction; a Kuznechik value is immutable afterwards and safe for
// concurrent use.
//
// Kuznechik implements crypto/cipher.Block, so it composes with the
// standard modes of operation (GCM, CTR, ...).
type Kuznechik struct {
	rk [10][16]byte
}

// NewKuznechik creates a cipher instance for the given 32-byte key.
func NewKuznechik(key []byte) (*Kuznechik, error) {
	if len(key) != KuznechikKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), KuznechikKeySize)
	}
	c := &Kuznechik{}
	c.expandKey(key)
	return c, nil
}

// expandKey derives the 10 round keys. The key halves seed a Feistel
// network of 32 rounds driven by the iteration constants C_i = L(i);
// every 8 rounds the current halves are emitted as the next key pair.
func (c *Kuznechik) expandKey(key []byte) {
	var a1, a0 [16]byte
	copy(a1[:], key[:16])
	copy(a0[:], key[16:])
	c.rk[0] = a1
	c.rk[1] = a0

	for i := 1; i <= 32; i++ {
		var con [16]byte
		con[15] = byte(i)
		con = gf2p8.L(con)

		next := lsx(con, a1)
		for k := range next {
			next[k] ^= a0[k]
		}
		a0 = a1
		a1 = next

		if i%8 == 0 {
			c.rk[i>>2] = a1
			c.rk[(i>>2)+1] = a0
		}
	}
}

// lsx is the round transform: XOR with k, pi substitution, then the
// full linear layer.
func lsx(k, a [16]byte) [16]byte {
	for i := range a {
		a[i] = gostPi[a[i]^k[i]]
	}
	return gf2p8.L(a)
}

// invLSX undoes lsx for the mirrored decryption rounds: XOR with k,
// inverse linear layer, then inverse substitution.
func invLSX(k, a [16]byte) [16]byte {
	for i := range a {
		a[i] ^= k[i]
	}
	a = gf2p8.LInv(a)
	for i := range a {
		a[i] = gostPiInv[a[i]]
	}
	return a
}

// EncryptBlock encrypts a single 16-byte block: nine LSX rounds and a
// final whitening XOR with the last round key.
func (c *Kuznechik) EncryptBlock(block [16]byte) [16]byte {
	for i := 0; i < 9; i++ {
		block = lsx(c.rk[i], block)
	}
	for k := range block {
		block[k] ^= c.rk[9][k]
	}
	return block
}

// DecryptBlock decrypts a single 16-byte block, mirroring EncryptBlock
// with the round keys in reverse order.
func (c *Kuznechik) DecryptBlock(block [16]byte) [16]byte {
	for i := 9; i > 0; i-- {
		block = invLSX(c.rk[i], block)
	}
	for k := range block {
		block[k] ^= c.rk[0][k]
	}
	return block
}

// BlockSize returns the cipher block size. Part of cipher.Block.
func (c *Kuznechik) BlockSize() int { return KuznechikBlockSize }

// Encrypt encrypts the first block of src into dst. Part of
// cipher.Block; panics on short buffers, matching crypto/aes.
func (c *Kuznechik) Encrypt(dst, src []byte) {
	if len(src) < KuznechikBlockSize {
		panic("docvault: input not full block")
	}
	if len(dst) < KuznechikBlockSize {
		panic("docvault: output not full block")
	}
	var b [16]byte
	copy(b[:], src[:16])
	b = c.EncryptBlock(b)
	copy(dst, b[:])
}

// Decrypt decrypts the first block of src into dst. Part of
// cipher.Block; panics on short buffers, matching crypto/aes.
func (c *Kuznechik) Decrypt(dst, src []byte) {
	if len(src) < KuznechikBlockSize {
		panic("docvault: input not full block")
	}
	if len(dst) < KuznechikBlockSize {
		panic("docvault: output not full block")
	}
	var b [16]byte
	copy(b[:], src[:16])
	b = c.DecryptBlock(b)
	copy(dst, b[:])
}
