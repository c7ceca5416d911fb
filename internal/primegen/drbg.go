package primegen

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/chacha20"
)

// drbg is a deterministic random byte stream seeded once from the
// operating system. Each search worker owns a private instance so
// concurrent searches never contend on a shared reader.
type drbg struct {
	cipher *chacha20.Cipher
}

// NewDRBG returns a reader producing a ChaCha20 keystream seeded with
// 32 bytes from crypto/rand.
func NewDRBG() (io.Reader, error) {
	seed := make([]byte, chacha20.KeySize)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, err
	}
	c, err := chacha20.NewUnauthenticatedCipher(seed, make([]byte, chacha20.NonceSize))
	if err != nil {
		return nil, err
	}
	return &drbg{cipher: c}, nil
}

func (d *drbg) Read(p []byte) (int, error) {
	clear(p)
	d.cipher.XORKeyStream(p, p)
	return len(p), nil
}
