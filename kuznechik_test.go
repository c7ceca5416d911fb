package docvault

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/docvault/crypto-go/internal/gf2p8"
)

var _ cipher.Block = (*Kuznechik)(nil)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func block16(t *testing.T, s string) [16]byte {
	t.Helper()
	b := mustHex(t, s)
	if len(b) != 16 {
		t.Fatalf("vector %q is not one block", s)
	}
	var out [16]byte
	copy(out[:], b)
	return out
}

// Key, plaintext and ciphertext from GOST R 34.12-2018 Annex A.
const (
	annexAKey        = "8899aabbccddeeff0011223344556677fedcba98765432100123456789abcdef"
	annexAPlaintext  = "1122334455667700ffeeddccbbaa9988"
	annexACiphertext = "7f679d90bebc24305a468d42b9d4edcd"
)

func TestKuznechikAnnexA(t *testing.T) {
	c, err := NewKuznechik(mustHex(t, annexAKey))
	if err != nil {
		t.Fatalf("NewKuznechik() error = %v", err)
	}

	pt := block16(t, annexAPlaintext)
	ct := block16(t, annexACiphertext)

	if got := c.EncryptBlock(pt); got != ct {
		t.Errorf("EncryptBlock = %x, want %x", got, ct)
	}
	if got := c.DecryptBlock(ct); got != pt {
		t.Errorf("DecryptBlock = %x, want %x", got, pt)
	}
}

func TestKuznechikRoundKeys(t *testing.T) {
	want := []string{
		"8899aabbccddeeff0011223344556677",
		"fedcba98765432100123456789abcdef",
		"db31485315694343228d6aef8cc78c44",
		"3d4553d8e9cfec6815ebadc40a9ffd04",
		"57646468c44a5e28d3e59246f429f1ac",
		"bd079435165c6432b532e82834da581b",
		"51e640757e8745de705727265a0098b1",
		"5a7925017b9fdd3ed72a91a22286f984",
		"bb44e25378c73123a5f32f73cdb6e517",
		"72e9dd7416bcf45b755dbaa88e4a4043",
	}

	c, err := NewKuznechik(mustHex(t, annexAKey))
	if err != nil {
		t.Fatalf("NewKuznechik() error = %v", err)
	}
	for i, w := range want {
		if c.rk[i] != block16(t, w) {
			t.Errorf("round key %d = %x, want %s", i+1, c.rk[i], w)
		}
	}
}

// TestKuznechikIterationConstant checks C_1 = L(vector with round index
// in the last byte) against the value published in the standard.
func TestKuznechikIterationConstant(t *testing.T) {
	var con [16]byte
	con[15] = 1
	want := block16(t, "6ea276726c487ab85d27bd10dd849401")
	if got := gf2p8.L(con); got != want {
		t.Errorf("C_1 = %x, want %x", got, want)
	}
}

func TestKuznechikRoundTrip(t *testing.T) {
	for i := 0; i < 64; i++ {
		key := make([]byte, KuznechikKeySize)
		if _, err := rand.Read(key); err != nil {
			t.Fatal(err)
		}
		c, err := NewKuznechik(key)
		if err != nil {
			t.Fatalf("NewKuznechik() error = %v", err)
		}

		var b [16]byte
		if _, err := rand.Read(b[:]); err != nil {
			t.Fatal(err)
		}
		if got := c.DecryptBlock(c.EncryptBlock(b)); got != b {
			t.Fatalf("round trip = %x, want %x", got, b)
		}
	}
}

func TestNewKuznechikKeySize(t *testing.T) {
	for _, size := range []int{0, 16, 24, 31, 33, 64} {
		_, err := NewKuznechik(make([]byte, size))
		if !errors.Is(err, ErrInvalidKeySize) {
			t.Errorf("NewKuznechik(%d bytes) error = %v, want ErrInvalidKeySize", size, err)
		}
	}
}

func TestKuznechikBlockInterface(t *testing.T) {
	c, err := NewKuznechik(mustHex(t, annexAKey))
	if err != nil {
		t.Fatalf("NewKuznechik() error = %v", err)
	}
	if c.BlockSize() != KuznechikBlockSize {
		t.Errorf("BlockSize() = %d, want %d", c.BlockSize(), KuznechikBlockSize)
	}

	src := mustHex(t, annexAPlaintext)
	dst := make([]byte, 16)
	c.Encrypt(dst, src)
	if !bytes.Equal(dst, mustHex(t, annexACiphertext)) {
		t.Errorf("Encrypt = %x, want %s", dst, annexACiphertext)
	}
	c.Decrypt(dst, dst)
	if !bytes.Equal(dst, src) {
		t.Errorf("Decrypt = %x, want %x", dst, src)
	}
}

// TestKuznechikGCM exercises the cipher through a standard mode of
// operation.
func TestKuznechikGCM(t *testing.T) {
	key := make([]byte, KuznechikKeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	c, err := NewKuznechik(key)
	if err != nil {
		t.Fatalf("NewKuznechik() error = %v", err)
	}
	gcm, err := cipher.NewGCM(c)
	if err != nil {
		t.Fatalf("NewGCM() error = %v", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		t.Fatal(err)
	}
	plaintext := []byte("confidential document body")
	aad := []byte("doc-id-42")

	sealed := gcm.Seal(nil, nonce, plaintext, aad)
	opened, err := gcm.Open(nil, nonce, sealed, aad)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("Open = %q, want %q", opened, plaintext)
	}

	sealed[0] ^= 0x01
	if _, err := gcm.Open(nil, nonce, sealed, aad); err == nil {
		t.Error("Open() on tampered ciphertext succeeded")
	}
}
