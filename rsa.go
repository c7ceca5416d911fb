package docvault

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/docvault/crypto-go/internal/primegen"
)

// Progress reports the state of one running prime search. Worker is "p"
// or "q"; Attempts counts candidates already tested.
type Progress struct {
	Worker       string
	Attempts     int
	MaxAttempts  int
	Elapsed      time.Duration
	Rate         float64 // attempts per second
	AvgCheckTime time.Duration
}

// ProgressFunc receives periodic key generation progress. Calls are
// serialized, so the callback does not need its own locking.
type ProgressFunc func(Progress)

// GenerateKeyPair searches for two primes of half the modulus size and
// assembles a key pair with public exponent 65537. By default the two
// searches run in parallel goroutines under a combined deadline; the
// first failure cancels the sibling search.
//
// The search is bounded: it gives up with a TimeoutError or
// ExhaustedAttemptsError rather than running forever. At the default
// 32768-bit modulus a search is expected to take days on commodity
// hardware.
func GenerateKeyPair(ctx context.Context, opts ...KeyGenOption) (*KeyPair, error) {
	cfg := defaultKeyGenConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.modulusBits < 64 || cfg.modulusBits%2 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidModulusBits, cfg.modulusBits)
	}
	if cfg.rounds < MinMillerRabinRounds {
		return nil, fmt.Errorf("%w: got %d, minimum %d", ErrTooFewRounds, cfg.rounds, MinMillerRabinRounds)
	}

	start := time.Now()

	var mu sync.Mutex
	sink := func(worker string) func(primegen.Progress) {
		if cfg.progress == nil {
			return nil
		}
		return func(p primegen.Progress) {
			mu.Lock()
			defer mu.Unlock()
			cfg.progress(Progress{
				Worker:       worker,
				Attempts:     p.Attempts,
				MaxAttempts:  p.MaxAttempts,
				Elapsed:      p.Elapsed,
				Rate:         p.Rate,
				AvgCheckTime: p.AvgCheckTime,
			})
		}
	}
	newGen := func(worker string) *primegen.Generator {
		return &primegen.Generator{
			Bits:        cfg.modulusBits / 2,
			Rounds:      cfg.rounds,
			MaxAttempts: cfg.maxAttempts,
			MaxTime:     cfg.maxTime,
			Name:        worker,
			Progress:    sink(worker),
		}
	}

	var pStats, qStats primegen.Stats
	if cfg.parallel {
		ctx, cancel := context.WithTimeout(ctx, 2*cfg.maxTime+joinGracePeriod)
		defer cancel()

		type result struct {
			worker string
			stats  primegen.Stats
			err    error
		}
		results := make(chan result, 2)
		for _, worker := range []string{"p", "q"} {
			gen := newGen(worker)
			go func(worker string) {
				stats, err := gen.Generate(ctx)
				results <- result{worker, stats, err}
			}(worker)
		}
		for i := 0; i < 2; i++ {
			r := <-results
			if r.err != nil {
				cancel() // stop the sibling search
				return nil, wrapPrimegenError(r.err)
			}
			if r.worker == "p" {
				pStats = r.stats
			} else {
				qStats = r.stats
			}
		}
	} else {
		var err error
		if pStats, err = newGen("p").Generate(ctx); err != nil {
			return nil, wrapPrimegenError(err)
		}
		if qStats, err = newGen("q").Generate(ctx); err != nil {
			return nil, wrapPrimegenError(err)
		}
	}

	return newKeyPair(cfg.modulusBits, pStats, qStats, time.Since(start))
}

// wrapPrimegenError converts internal search errors to their public
// counterparts. Context errors pass through unchanged.
func wrapPrimegenError(err error) error {
	var te *primegen.TimeoutError
	if errors.As(err, &te) {
		return &TimeoutError{Worker: te.Name, Attempts: te.Attempts, Elapsed: te.Elapsed, Limit: te.Limit}
	}
	var ee *primegen.ExhaustedError
	if errors.As(err, &ee) {
		return &ExhaustedAttemptsError{Worker: ee.Name, Attempts: ee.Attempts, Elapsed: ee.Elapsed, MaxAttempts: ee.MaxAttempts}
	}
	return err
}

// PublicKey is the encrypting half of a key pair.
type PublicKey struct {
	N *big.Int
	E *big.Int
}

// PrivateKey is the decrypting half of a key pair.
type PrivateKey struct {
	N *big.Int
	D *big.Int
}

// frameHeaderSize is the fixed overhead of the padding layout: two zero
// lead bytes plus a big-endian 16-bit pad length.
const frameHeaderSize = 4

func frameSize(n *big.Int) int { return (n.BitLen() + 7) / 8 }

// MaxMessageSize returns the largest plaintext Encrypt accepts for this
// key, the frame size minus the padding header.
func (pub *PublicKey) MaxMessageSize() int { return frameSize(pub.N) - frameHeaderSize }

// Encrypt pads message into a full modulus frame and applies the public
// exponent. The frame starts with two zero bytes, keeping the padded
// integer below the modulus, followed by the pad length as a big-endian
// uint16; the message sits right-aligned after the zero padding.
func (pub *PublicKey) Encrypt(message []byte) ([]byte, error) {
	frame := frameSize(pub.N)
	if limit := frame - frameHeaderSize; len(message) > limit {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrMessageTooLarge, len(message), limit)
	}

	buf := make([]byte, frame)
	padLen := frame - len(message)
	binary.BigEndian.PutUint16(buf[2:4], uint16(padLen))
	copy(buf[padLen:], message)

	m := new(big.Int).SetBytes(buf)
	c := new(big.Int).Exp(m, pub.E, pub.N)
	return c.FillBytes(make([]byte, frame)), nil
}

// Decrypt reverses Encrypt. The ciphertext must be exactly one frame;
// a malformed pad header after exponentiation yields ErrInvalidPadding.
func (priv *PrivateKey) Decrypt(ciphertext []byte) ([]byte, error) {
	frame := frameSize(priv.N)
	if len(ciphertext) != frame {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidCiphertextSize, len(ciphertext), frame)
	}

	c := new(big.Int).SetBytes(ciphertext)
	if c.Cmp(priv.N) >= 0 {
		return nil, fmt.Errorf("%w: value not below modulus", ErrInvalidCiphertextSize)
	}
	m := new(big.Int).Exp(c, priv.D, priv.N)
	buf := m.FillBytes(make([]byte, frame))

	if buf[0] != 0 || buf[1] != 0 {
		return nil, fmt.Errorf("%w: nonzero lead bytes", ErrInvalidPadding)
	}
	padLen := int(binary.BigEndian.Uint16(buf[2:4]))
	if padLen < frameHeaderSize || padLen > frame {
		return nil, fmt.Errorf("%w: pad length %d", ErrInvalidPadding, padLen)
	}
	for _, b := range buf[frameHeaderSize:padLen] {
		if b != 0 {
			return nil, fmt.Errorf("%w: nonzero filler", ErrInvalidPadding)
		}
	}
	return buf[padLen:], nil
}
