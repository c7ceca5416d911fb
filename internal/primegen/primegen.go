// Package primegen implements bounded probabilistic prime search: random
// odd candidates of a fixed bit length are drawn from a private DRBG and
// tested with Miller-Rabin until one passes or a budget runs out.
package primegen

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

// Progress throttling: every attempt during warmup, afterwards every
// tenth attempt or every thirty seconds, whichever comes first.
const (
	progressWarmup        = 3
	progressAttemptStride = 10
	progressInterval      = 30 * time.Second
)

// Progress is a snapshot of a running search, emitted before a candidate
// is tested.
type Progress struct {
	Name         string
	Attempts     int // attempts completed so far
	MaxAttempts  int
	Elapsed      time.Duration
	Rate         float64 // attempts per second
	AvgCheckTime time.Duration
}

// Stats describes a finished search.
type Stats struct {
	Prime        *big.Int
	Attempts     int
	Elapsed      time.Duration
	Bits         int
	Rounds       int
	AvgCheckTime time.Duration
}

// TimeoutError is returned when the search exceeds its wall-clock limit.
type TimeoutError struct {
	Name     string
	Attempts int
	Elapsed  time.Duration
	Limit    time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("prime search %q timed out after %s (%d attempts, limit %s)",
		e.Name, e.Elapsed, e.Attempts, e.Limit)
}

// ExhaustedError is returned when the search uses up its attempt budget.
type ExhaustedError struct {
	Name        string
	Attempts    int
	Elapsed     time.Duration
	MaxAttempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("prime search %q exhausted %d attempts in %s",
		e.Name, e.Attempts, e.Elapsed)
}

// Generator searches for one probable prime of exactly Bits bits.
//
// Rand and IsPrime are injectable for tests; when nil they default to a
// fresh DRBG and big.Int.ProbablyPrime.
type Generator struct {
	Bits        int
	Rounds      int
	MaxAttempts int
	MaxTime     time.Duration
	Name        string

	Rand     io.Reader
	IsPrime  func(n *big.Int, rounds int) bool
	Progress func(Progress)
}

// Generate runs the search until a candidate passes, the context is
// cancelled, or a budget runs out. The budgets are checked before each
// candidate, so a zero MaxTime fails on the first check.
func (g *Generator) Generate(ctx context.Context) (Stats, error) {
	start := time.Now()

	rng := g.Rand
	if rng == nil {
		r, err := NewDRBG()
		if err != nil {
			return Stats{}, fmt.Errorf("seeding drbg: %w", err)
		}
		rng = r
	}
	isPrime := g.IsPrime
	if isPrime == nil {
		isPrime = func(n *big.Int, rounds int) bool { return n.ProbablyPrime(rounds) }
	}

	bound := new(big.Int).Lsh(big.NewInt(1), uint(g.Bits))
	var totalCheck time.Duration
	lastReport := start

	for attempt := 1; attempt <= g.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Stats{}, err
		}
		elapsed := time.Since(start)
		if elapsed >= g.MaxTime {
			return Stats{}, &TimeoutError{
				Name:     g.Name,
				Attempts: attempt - 1,
				Elapsed:  elapsed,
				Limit:    g.MaxTime,
			}
		}

		if g.Progress != nil &&
			(attempt <= progressWarmup ||
				attempt%progressAttemptStride == 0 ||
				time.Since(lastReport) >= progressInterval) {
			g.Progress(g.snapshot(attempt-1, elapsed, totalCheck))
			lastReport = time.Now()
		}

		n, err := rand.Int(rng, bound)
		if err != nil {
			return Stats{}, fmt.Errorf("sampling candidate: %w", err)
		}
		// Force the top bit for exact bit length and the bottom bit for oddness.
		n.SetBit(n, g.Bits-1, 1)
		n.SetBit(n, 0, 1)

		checkStart := time.Now()
		ok := isPrime(n, g.Rounds)
		totalCheck += time.Since(checkStart)

		if ok {
			return Stats{
				Prime:        n,
				Attempts:     attempt,
				Elapsed:      time.Since(start),
				Bits:         g.Bits,
				Rounds:       g.Rounds,
				AvgCheckTime: totalCheck / time.Duration(attempt),
			}, nil
		}
	}

	return Stats{}, &ExhaustedError{
		Name:        g.Name,
		Attempts:    g.MaxAttempts,
		Elapsed:     time.Since(start),
		MaxAttempts: g.MaxAttempts,
	}
}

func (g *Generator) snapshot(done int, elapsed, totalCheck time.Duration) Progress {
	p := Progress{
		Name:        g.Name,
		Attempts:    done,
		MaxAttempts: g.MaxAttempts,
		Elapsed:     elapsed,
	}
	if secs := elapsed.Seconds(); secs > 0 {
		p.Rate = float64(done) / secs
	}
	if done > 0 {
		p.AvgCheckTime = totalCheck / time.Duration(done)
	}
	return p
}
