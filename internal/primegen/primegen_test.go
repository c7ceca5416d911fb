package primegen

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"
	"time"
)

func TestGenerateFindsPrime(t *testing.T) {
	g := &Generator{
		Bits:        128,
		Rounds:      15,
		MaxAttempts: 100000,
		MaxTime:     time.Minute,
		Name:        "p",
	}
	stats, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if got := stats.Prime.BitLen(); got != 128 {
		t.Errorf("prime bit length = %d, want 128", got)
	}
	if stats.Prime.Bit(0) != 1 {
		t.Error("prime is even")
	}
	if !stats.Prime.ProbablyPrime(20) {
		t.Errorf("candidate %s is not prime", stats.Prime)
	}
	if stats.Attempts < 1 {
		t.Errorf("attempts = %d, want >= 1", stats.Attempts)
	}
	if stats.Bits != 128 || stats.Rounds != 15 {
		t.Errorf("stats = %+v, want bits 128 rounds 15", stats)
	}
}

func TestGenerateExhaustsAttempts(t *testing.T) {
	calls := 0
	g := &Generator{
		Bits:        128,
		Rounds:      15,
		MaxAttempts: 1,
		MaxTime:     time.Minute,
		Name:        "q",
		IsPrime: func(*big.Int, int) bool {
			calls++
			return false
		},
	}
	_, err := g.Generate(context.Background())

	var ee *ExhaustedError
	if !errors.As(err, &ee) {
		t.Fatalf("Generate() error = %v, want ExhaustedError", err)
	}
	if ee.Attempts != 1 || ee.MaxAttempts != 1 || ee.Name != "q" {
		t.Errorf("ExhaustedError = %+v", ee)
	}
	if calls != 1 {
		t.Errorf("primality checks = %d, want 1", calls)
	}
}

func TestGenerateTimeout(t *testing.T) {
	g := &Generator{
		Bits:        128,
		Rounds:      15,
		MaxAttempts: 100,
		MaxTime:     0,
		Name:        "p",
		IsPrime: func(*big.Int, int) bool {
			t.Error("primality check ran despite zero time budget")
			return false
		},
	}
	_, err := g.Generate(context.Background())

	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("Generate() error = %v, want TimeoutError", err)
	}
	if te.Attempts != 0 {
		t.Errorf("attempts before timeout = %d, want 0", te.Attempts)
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := &Generator{Bits: 128, Rounds: 15, MaxAttempts: 100, MaxTime: time.Minute}
	_, err := g.Generate(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
}

// TestGenerateProgressThrottle pins the reporting schedule: every
// attempt during warmup, then every tenth.
func TestGenerateProgressThrottle(t *testing.T) {
	var seen []int
	g := &Generator{
		Bits:        128,
		Rounds:      15,
		MaxAttempts: 25,
		MaxTime:     time.Minute,
		Name:        "p",
		IsPrime:     func(*big.Int, int) bool { return false },
		Progress:    func(p Progress) { seen = append(seen, p.Attempts) },
	}
	_, err := g.Generate(context.Background())

	var ee *ExhaustedError
	if !errors.As(err, &ee) {
		t.Fatalf("Generate() error = %v, want ExhaustedError", err)
	}
	want := []int{0, 1, 2, 9, 19}
	if len(seen) != len(want) {
		t.Fatalf("progress reports = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("progress reports = %v, want %v", seen, want)
		}
	}
}

func TestDRBGIndependentStreams(t *testing.T) {
	r1, err := NewDRBG()
	if err != nil {
		t.Fatal(err)
	}
	r2, err := NewDRBG()
	if err != nil {
		t.Fatal(err)
	}

	a := make([]byte, 32)
	b := make([]byte, 32)
	if _, err := r1.Read(a); err != nil {
		t.Fatal(err)
	}
	if _, err := r2.Read(b); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Error("two independently seeded streams produced identical output")
	}

	c := make([]byte, 32)
	if _, err := r1.Read(c); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, c) {
		t.Error("successive reads produced identical output")
	}
}
