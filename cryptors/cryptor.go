// cyptor
package cryptors

import (
	"errors"
	"fmt"
)

const (
	// Alphabet is the ordered set of symbols every crypter works on.
	Alphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	AlphabetSize = len(Alphabet)
)

var (
	ErrInvalidWiring  = errors.New("invalid wiring")
	ErrInvalidPairing = errors.New("invalid plugboard pairing")
	ErrUnknownSymbol  = errors.New("unknown symbol")
	ErrInvalidConfig  = errors.New("invalid machine configuration")
)

// WiringError reports a wiring string that is not a permutation of the
// alphabet.
type WiringError struct {
	Wiring string
	Reason string
}

func (e *WiringError) Error() string {
	return fmt.Sprintf("%v %q: %s", ErrInvalidWiring, e.Wiring, e.Reason)
}

func (e *WiringError) Unwrap() error { return ErrInvalidWiring }

// PairingError reports a plugboard token that cannot be wired.
type PairingError struct {
	Token  string
	Reason string
}

func (e *PairingError) Error() string {
	return fmt.Sprintf("%v %q: %s", ErrInvalidPairing, e.Token, e.Reason)
}

func (e *PairingError) Unwrap() error { return ErrInvalidPairing }

// Crypter is a stage of the signal path.  ApplyF carries the signal towards
// the reflector and ApplyG carries it back.  Both work on alphabet indices
// that are already known to be in range.
type Crypter interface {
	ApplyF(int) int
	ApplyG(int) int
}

// Mod reduces n into [0, AlphabetSize).
func Mod(n int) int {
	n %= AlphabetSize
	if n < 0 {
		n += AlphabetSize
	}
	return n
}

// Index returns the position of letter in the alphabet.  Lower case letters
// are folded to upper case.
func Index(letter byte) (int, error) {
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	if letter < 'A' || letter > 'Z' {
		return -1, fmt.Errorf("%w: %q", ErrUnknownSymbol, letter)
	}
	return int(letter - 'A'), nil
}

// Letter returns the alphabet symbol at index i (reduced mod AlphabetSize).
func Letter(i int) byte {
	return Alphabet[Mod(i)]
}

// IsLetter reports whether r is an alphabetic symbol in either case.
func IsLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// Encrypt passes idx through the crypters towards the reflector.
func Encrypt(idx int, ecms ...Crypter) int {
	for _, ecm := range ecms {
		idx = ecm.ApplyF(idx)
	}
	return idx
}

// Decrypt passes idx back through the crypters in reverse order.
func Decrypt(idx int, ecms ...Crypter) int {
	for i := len(ecms) - 1; i >= 0; i-- {
		idx = ecms[i].ApplyG(idx)
	}
	return idx
}
