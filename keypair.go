package docvault

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/docvault/crypto-go/internal/primegen"
)

// PrimeStats records diagnostic metadata from one prime search. It is
// never used in any cryptographic computation.
type PrimeStats struct {
	Attempts          int
	Elapsed           time.Duration
	Bits              int
	MillerRabinRounds int
	AvgCheckTime      time.Duration
}

// KeyPair holds the two primes, the derived modulus and exponents, and
// the generation statistics. A KeyPair is immutable after construction;
// it is created once, by generation or by loading a key file, and then
// serves arbitrarily many encrypt/decrypt calls.
type KeyPair struct {
	P *big.Int
	Q *big.Int
	N *big.Int
	E *big.Int
	D *big.Int

	KeySizeBits int
	PStats      PrimeStats
	QStats      PrimeStats
	TotalTime   time.Duration
	GeneratedAt time.Time
}

// Public returns the encrypting half.
func (kp *KeyPair) Public() *PublicKey { return &PublicKey{N: kp.N, E: kp.E} }

// Private returns the decrypting half.
func (kp *KeyPair) Private() *PrivateKey { return &PrivateKey{N: kp.N, D: kp.D} }

// Conforms reports whether the modulus reached the requested bit length.
// Two top-bit-forced primes occasionally multiply to one bit short; such
// a pair still works, it is just smaller than asked for.
func (kp *KeyPair) Conforms() bool { return kp.N.BitLen() == kp.KeySizeBits }

func statsFromSearch(s primegen.Stats) PrimeStats {
	return PrimeStats{
		Attempts:          s.Attempts,
		Elapsed:           s.Elapsed,
		Bits:              s.Bits,
		MillerRabinRounds: s.Rounds,
		AvgCheckTime:      s.AvgCheckTime,
	}
}

// newKeyPair derives the modulus and exponents from two found primes and
// runs the mandatory self-checks before handing the pair out.
func newKeyPair(modulusBits int, pStats, qStats primegen.Stats, total time.Duration) (*KeyPair, error) {
	p, q := pStats.Prime, qStats.Prime
	if p.Cmp(q) == 0 {
		return nil, &IntegrityError{Check: "p == q"}
	}

	one := big.NewInt(1)
	n := new(big.Int).Mul(p, q)
	phi := new(big.Int).Mul(new(big.Int).Sub(p, one), new(big.Int).Sub(q, one))
	e := big.NewInt(PublicExponent)

	if new(big.Int).GCD(nil, nil, e, phi).Cmp(one) != 0 {
		return nil, &IntegrityError{Check: "gcd(e, phi(n)) != 1"}
	}
	d := new(big.Int).ModInverse(e, phi)
	if d == nil {
		return nil, &IntegrityError{Check: "e has no inverse mod phi(n)"}
	}
	ed := new(big.Int).Mul(e, d)
	if ed.Mod(ed, phi).Cmp(one) != 0 {
		return nil, &IntegrityError{Check: "(e*d) mod phi(n) != 1"}
	}

	return &KeyPair{
		P:           p,
		Q:           q,
		N:           n,
		E:           e,
		D:           d,
		KeySizeBits: modulusBits,
		PStats:      statsFromSearch(pStats),
		QStats:      statsFromSearch(qStats),
		TotalTime:   total,
		GeneratedAt: time.Now(),
	}, nil
}

// Key file schema. All big integers are decimal strings; durations and
// the timestamp are float seconds.
type keyFileStats struct {
	Prime               string  `json:"prime"`
	Attempts            int     `json:"attempts"`
	ElapsedSeconds      float64 `json:"elapsed_seconds"`
	Bits                int     `json:"bits"`
	MillerRabinRounds   int     `json:"miller_rabin_rounds"`
	AvgCheckTimeSeconds float64 `json:"avg_check_time_seconds"`
}

type keyFile struct {
	P      string       `json:"p"`
	Q      string       `json:"q"`
	N      string       `json:"n"`
	E      string       `json:"e"`
	D      string       `json:"d"`
	PStats keyFileStats `json:"p_stats"`
	QStats keyFileStats `json:"q_stats"`

	TotalGenerationTimeSeconds float64 `json:"total_generation_time_seconds"`
	GenerationTimestamp        float64 `json:"generation_timestamp"`
	KeySizeBits                int     `json:"key_size_bits"`
}

func statsToFile(prime *big.Int, s PrimeStats) keyFileStats {
	return keyFileStats{
		Prime:               prime.String(),
		Attempts:            s.Attempts,
		ElapsedSeconds:      s.Elapsed.Seconds(),
		Bits:                s.Bits,
		MillerRabinRounds:   s.MillerRabinRounds,
		AvgCheckTimeSeconds: s.AvgCheckTime.Seconds(),
	}
}

// Save writes the key pair to path as JSON, readable only by the owner.
func (kp *KeyPair) Save(path string) error {
	kf := keyFile{
		P:      kp.P.String(),
		Q:      kp.Q.String(),
		N:      kp.N.String(),
		E:      kp.E.String(),
		D:      kp.D.String(),
		PStats: statsToFile(kp.P, kp.PStats),
		QStats: statsToFile(kp.Q, kp.QStats),

		TotalGenerationTimeSeconds: kp.TotalTime.Seconds(),
		GenerationTimestamp:        float64(kp.GeneratedAt.UnixNano()) / 1e9,
		KeySizeBits:                kp.KeySizeBits,
	}
	data, err := json.MarshalIndent(&kf, "", "  ")
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	return nil
}

func parseBig(path, field, s string) (*big.Int, error) {
	if s == "" {
		return nil, &PersistenceError{Path: path, Field: field, Err: fmt.Errorf("missing value")}
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, &PersistenceError{Path: path, Field: field, Err: fmt.Errorf("not a decimal integer")}
	}
	return v, nil
}

func statsFromFile(path, field string, fs keyFileStats, want *big.Int) (PrimeStats, error) {
	prime, err := parseBig(path, field+".prime", fs.Prime)
	if err != nil {
		return PrimeStats{}, err
	}
	if prime.Cmp(want) != 0 {
		return PrimeStats{}, &PersistenceError{Path: path, Field: field + ".prime", Err: fmt.Errorf("does not match key prime")}
	}
	return PrimeStats{
		Attempts:          fs.Attempts,
		Elapsed:           secondsToDuration(fs.ElapsedSeconds),
		Bits:              fs.Bits,
		MillerRabinRounds: fs.MillerRabinRounds,
		AvgCheckTime:      secondsToDuration(fs.AvgCheckTimeSeconds),
	}, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// LoadKeyPair reads a key file written by Save and re-runs the integrity
// self-checks, so a tampered or corrupted file is rejected at load time
// rather than producing garbage ciphertexts later.
func LoadKeyPair(path string) (*KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}

	kp := &KeyPair{
		KeySizeBits: kf.KeySizeBits,
		TotalTime:   secondsToDuration(kf.TotalGenerationTimeSeconds),
		GeneratedAt: time.Unix(0, int64(kf.GenerationTimestamp*1e9)),
	}
	if kp.P, err = parseBig(path, "p", kf.P); err != nil {
		return nil, err
	}
	if kp.Q, err = parseBig(path, "q", kf.Q); err != nil {
		return nil, err
	}
	if kp.N, err = parseBig(path, "n", kf.N); err != nil {
		return nil, err
	}
	if kp.E, err = parseBig(path, "e", kf.E); err != nil {
		return nil, err
	}
	if kp.D, err = parseBig(path, "d", kf.D); err != nil {
		return nil, err
	}
	if kp.PStats, err = statsFromFile(path, "p_stats", kf.PStats, kp.P); err != nil {
		return nil, err
	}
	if kp.QStats, err = statsFromFile(path, "q_stats", kf.QStats, kp.Q); err != nil {
		return nil, err
	}

	if err := kp.validate(); err != nil {
		return nil, err
	}
	return kp, nil
}

// validate re-checks the arithmetic relations between the loaded values.
func (kp *KeyPair) validate() error {
	if kp.P.Cmp(kp.Q) == 0 {
		return &IntegrityError{Check: "p == q"}
	}
	if new(big.Int).Mul(kp.P, kp.Q).Cmp(kp.N) != 0 {
		return &IntegrityError{Check: "n != p*q"}
	}
	one := big.NewInt(1)
	phi := new(big.Int).Mul(new(big.Int).Sub(kp.P, one), new(big.Int).Sub(kp.Q, one))
	if new(big.Int).GCD(nil, nil, kp.E, phi).Cmp(one) != 0 {
		return &IntegrityError{Check: "gcd(e, phi(n)) != 1"}
	}
	ed := new(big.Int).Mul(kp.E, kp.D)
	if ed.Mod(ed, phi).Cmp(one) != 0 {
		return &IntegrityError{Check: "(e*d) mod phi(n) != 1"}
	}
	return nil
}
