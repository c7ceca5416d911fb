package docvault

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrInvalidKeySize is returned when a symmetric key has the wrong length.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrMessageTooLarge is returned when a plaintext does not fit the modulus frame.
	ErrMessageTooLarge = errors.New("message too large for modulus")

	// ErrInvalidCiphertextSize is returned when a ciphertext is not exactly one frame.
	ErrInvalidCiphertextSize = errors.New("invalid ciphertext size")

	// ErrInvalidPadding is returned when a decrypted frame carries a malformed pad header.
	ErrInvalidPadding = errors.New("invalid padding")

	// ErrInvalidModulusBits is returned when the requested modulus size cannot be
	// split into two equal prime halves.
	ErrInvalidModulusBits = errors.New("invalid modulus bit length")

	// ErrTooFewRounds is returned when the Miller-Rabin round count is below the floor.
	ErrTooFewRounds = errors.New("too few Miller-Rabin rounds")

	// ErrTimeout is returned when a prime search exceeds its time limit.
	ErrTimeout = errors.New("prime search timed out")

	// ErrAttemptsExhausted is returned when a prime search runs out of attempts.
	ErrAttemptsExhausted = errors.New("prime search attempts exhausted")

	// ErrIntegrity is returned when a key pair fails its mathematical self-checks.
	ErrIntegrity = errors.New("key pair integrity check failed")

	// ErrInvalidKeyFile is returned when a stored key file cannot be parsed.
	ErrInvalidKeyFile = errors.New("invalid key file")
)

// DocVaultError is implemented by all typed errors of this package.
type DocVaultError interface {
	error
	DocVaultError() // marker method
}

// TimeoutError reports a prime search that hit its wall-clock limit.
type TimeoutError struct {
	Worker   string
	Attempts int
	Elapsed  time.Duration
	Limit    time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("prime search %q timed out after %s (%d attempts, limit %s)",
		e.Worker, e.Elapsed, e.Attempts, e.Limit)
}

// DocVaultError implements the DocVaultError interface.
func (e *TimeoutError) DocVaultError() {}

// Is implements errors.Is for sentinel error matching.
func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// ExhaustedAttemptsError reports a prime search that used up its attempt budget.
type ExhaustedAttemptsError struct {
	Worker      string
	Attempts    int
	Elapsed     time.Duration
	MaxAttempts int
}

func (e *ExhaustedAttemptsError) Error() string {
	return fmt.Sprintf("prime search %q exhausted %d attempts in %s",
		e.Worker, e.Attempts, e.Elapsed)
}

// DocVaultError implements the DocVaultError interface.
func (e *ExhaustedAttemptsError) DocVaultError() {}

// Is implements errors.Is for sentinel error matching.
func (e *ExhaustedAttemptsError) Is(target error) bool { return target == ErrAttemptsExhausted }

// IntegrityError reports a failed key pair self-check. Check names the
// relation that did not hold.
type IntegrityError struct {
	Check string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("key pair integrity check failed: %s", e.Check)
}

// DocVaultError implements the DocVaultError interface.
func (e *IntegrityError) DocVaultError() {}

// Is implements errors.Is for sentinel error matching.
func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// PersistenceError reports a key file that could not be written or read back.
type PersistenceError struct {
	Path  string
	Field string // offending JSON field, if known
	Err   error
}

func (e *PersistenceError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("key file %s: field %q: %v", e.Path, e.Field, e.Err)
	}
	return fmt.Sprintf("key file %s: %v", e.Path, e.Err)
}

// DocVaultError implements the DocVaultError interface.
func (e *PersistenceError) DocVaultError() {}

// Is implements errors.Is for sentinel error matching.
func (e *PersistenceError) Is(target error) bool { return target == ErrInvalidKeyFile }

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error { return e.Err }
