package docvault

import "time"

const (
	// DefaultModulusBits is the production modulus size in bits.
	DefaultModulusBits = 32768

	// DefaultMillerRabinRounds is the default number of witness rounds per
	// primality check.
	DefaultMillerRabinRounds = 15

	// MinMillerRabinRounds is the lowest accepted round count.
	MinMillerRabinRounds = 8

	// DefaultMaxAttempts caps the candidates tried per prime search.
	DefaultMaxAttempts = 50000

	// DefaultMaxTime caps the wall-clock time per prime search.
	DefaultMaxTime = 72 * time.Hour

	// PublicExponent is the fixed public exponent e.
	PublicExponent = 65537
)

// joinGracePeriod pads the combined deadline of a parallel generation so
// that a worker finishing right at its own limit can still report.
const joinGracePeriod = 5 * time.Minute

// keyGenConfig holds configuration for key pair generation.
type keyGenConfig struct {
	modulusBits int
	rounds      int
	maxAttempts int
	maxTime     time.Duration
	parallel    bool
	progress    ProgressFunc
}

func defaultKeyGenConfig() keyGenConfig {
	return keyGenConfig{
		modulusBits: DefaultModulusBits,
		rounds:      DefaultMillerRabinRounds,
		maxAttempts: DefaultMaxAttempts,
		maxTime:     DefaultMaxTime,
		parallel:    true,
	}
}

// KeyGenOption configures key pair generation.
type KeyGenOption func(*keyGenConfig)

// WithModulusBits sets the modulus size. The value must be even; each
// prime is searched at half that size.
func WithModulusBits(bits int) KeyGenOption {
	return func(c *keyGenConfig) {
		c.modulusBits = bits
	}
}

// WithMillerRabinRounds sets the witness rounds per primality check.
func WithMillerRabinRounds(rounds int) KeyGenOption {
	return func(c *keyGenConfig) {
		c.rounds = rounds
	}
}

// WithMaxAttempts sets the candidate budget per prime search.
func WithMaxAttempts(n int) KeyGenOption {
	return func(c *keyGenConfig) {
		c.maxAttempts = n
	}
}

// WithMaxTime sets the wall-clock budget per prime search.
func WithMaxTime(d time.Duration) KeyGenOption {
	return func(c *keyGenConfig) {
		c.maxTime = d
	}
}

// WithSequential searches the two primes one after the other instead of
// in parallel. Useful on memory-constrained hosts.
func WithSequential() KeyGenOption {
	return func(c *keyGenConfig) {
		c.parallel = false
	}
}

// WithProgress installs a callback receiving periodic search progress.
// Calls are serialized across workers.
func WithProgress(fn ProgressFunc) KeyGenOption {
	return func(c *keyGenConfig) {
		c.progress = fn
	}
}
