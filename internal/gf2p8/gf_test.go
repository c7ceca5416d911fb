package gf2p8

import (
	"crypto/rand"
	"encoding/hex"
	"testing"
)

func vec16(t *testing.T, s string) [16]byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 16 {
		t.Fatalf("bad test vector %q", s)
	}
	var v [16]byte
	copy(v[:], b)
	return v
}

func randVec16(t *testing.T) [16]byte {
	t.Helper()
	var v [16]byte
	if _, err := rand.Read(v[:]); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestMulIdentity(t *testing.T) {
	for a := 0; a < 256; a++ {
		if got := Mul(byte(a), 1); got != byte(a) {
			t.Errorf("Mul(%#02x, 1) = %#02x", a, got)
		}
		if got := Mul(1, byte(a)); got != byte(a) {
			t.Errorf("Mul(1, %#02x) = %#02x", a, got)
		}
		if got := Mul(byte(a), 0); got != 0 {
			t.Errorf("Mul(%#02x, 0) = %#02x", a, got)
		}
	}
}

func TestMulCommutative(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := a + 1; b < 256; b++ {
			if Mul(byte(a), byte(b)) != Mul(byte(b), byte(a)) {
				t.Fatalf("Mul not commutative at (%#02x, %#02x)", a, b)
			}
		}
	}
}

func TestMulDistributive(t *testing.T) {
	var tri [3]byte
	for i := 0; i < 256; i++ {
		if _, err := rand.Read(tri[:]); err != nil {
			t.Fatal(err)
		}
		a, b, c := tri[0], tri[1], tri[2]
		if Mul(a, b^c) != Mul(a, b)^Mul(a, c) {
			t.Fatalf("Mul not distributive at (%#02x, %#02x, %#02x)", a, b, c)
		}
	}
}

// TestRSequence walks the shift register through the iteration sequence
// published in GOST R 34.12-2018 Annex A.
func TestRSequence(t *testing.T) {
	steps := []string{
		"94000000000000000000000000000001",
		"a5940000000000000000000000000000",
		"64a59400000000000000000000000000",
		"0d64a594000000000000000000000000",
	}
	v := vec16(t, "00000000000000000000000000000100")
	for i, want := range steps {
		v = R(v)
		if v != vec16(t, want) {
			t.Fatalf("R step %d = %x, want %s", i+1, v, want)
		}
	}
}

func TestLKnownVector(t *testing.T) {
	in := vec16(t, "64a59400000000000000000000000000")
	want := vec16(t, "d456584dd0e3e84cc3166e4b7fa2890d")
	if got := L(in); got != want {
		t.Errorf("L = %x, want %x", got, want)
	}
}

func TestRInvRoundTrip(t *testing.T) {
	for i := 0; i < 64; i++ {
		v := randVec16(t)
		if got := RInv(R(v)); got != v {
			t.Fatalf("RInv(R(v)) = %x, want %x", got, v)
		}
		if got := R(RInv(v)); got != v {
			t.Fatalf("R(RInv(v)) = %x, want %x", got, v)
		}
	}
}

func TestLInvRoundTrip(t *testing.T) {
	for i := 0; i < 64; i++ {
		v := randVec16(t)
		if got := LInv(L(v)); got != v {
			t.Fatalf("LInv(L(v)) = %x, want %x", got, v)
		}
	}
}

// TestLMatrixForm checks the iterated shift register against the closed
// matrix form: the matrix of one R step raised to the 16th power must
// act on vectors exactly as L does.
func TestLMatrixForm(t *testing.T) {
	type matrix [16][16]byte

	var m matrix
	for j := 0; j < 16; j++ {
		var e [16]byte
		e[j] = 1
		col := R(e)
		for i := 0; i < 16; i++ {
			m[i][j] = col[i]
		}
	}

	mul := func(a, b matrix) matrix {
		var c matrix
		for i := 0; i < 16; i++ {
			for j := 0; j < 16; j++ {
				var acc byte
				for k := 0; k < 16; k++ {
					acc ^= Mul(a[i][k], b[k][j])
				}
				c[i][j] = acc
			}
		}
		return c
	}

	// m^16 by repeated squaring
	m16 := m
	for i := 0; i < 4; i++ {
		m16 = mul(m16, m16)
	}

	apply := func(a matrix, v [16]byte) [16]byte {
		var out [16]byte
		for i := 0; i < 16; i++ {
			var acc byte
			for j := 0; j < 16; j++ {
				acc ^= Mul(a[i][j], v[j])
			}
			out[i] = acc
		}
		return out
	}

	for i := 0; i < 32; i++ {
		v := randVec16(t)
		if got, want := apply(m16, v), L(v); got != want {
			t.Fatalf("matrix form = %x, iterated L = %x", got, want)
		}
	}
}
