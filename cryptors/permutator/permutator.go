// permutator project permutator.go
package permutator

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bgallie/enigma/cryptors"
	"github.com/bgallie/enigma/cryptors/bitops"
)

// Permutator is a validated permutation of the alphabet.  fwd holds the
// wiring as given and inv its inverse, so both directions are a single
// table lookup.
type Permutator struct {
	fwd [cryptors.AlphabetSize]byte
	inv [cryptors.AlphabetSize]byte
}

// New builds a Permutator from a wiring string.  The wiring must contain
// every alphabet symbol exactly once; lower case is accepted.
func New(wiring string) (*Permutator, error) {
	if len(wiring) != cryptors.AlphabetSize {
		return nil, &cryptors.WiringError{
			Wiring: wiring,
			Reason: fmt.Sprintf("length %d, want %d", len(wiring), cryptors.AlphabetSize),
		}
	}

	var p Permutator
	var seen bitops.LetterSet

	for i := 0; i < len(wiring); i++ {
		v, err := cryptors.Index(wiring[i])
		if err != nil {
			return nil, &cryptors.WiringError{
				Wiring: wiring,
				Reason: fmt.Sprintf("symbol %q at %d is not in the alphabet", wiring[i], i),
			}
		}
		if seen.Has(v) {
			return nil, &cryptors.WiringError{
				Wiring: wiring,
				Reason: fmt.Sprintf("symbol %q appears more than once", cryptors.Letter(v)),
			}
		}
		seen = seen.Set(v)
		p.fwd[i] = byte(v)
		p.inv[v] = byte(i)
	}

	return &p, nil
}

// Map returns the image of index i.
func (p *Permutator) Map(i int) int {
	return int(p.fwd[i])
}

// Inverse returns the preimage of index i.
func (p *Permutator) Inverse(i int) int {
	return int(p.inv[i])
}

// Involution reports whether applying the permutation twice is the identity.
func (p *Permutator) Involution() bool {
	for i, v := range p.fwd {
		if int(p.fwd[v]) != i {
			return false
		}
	}
	return true
}

// FixedPoints returns the symbols that map to themselves.
func (p *Permutator) FixedPoints() []byte {
	var fp []byte
	for i, v := range p.fwd {
		if int(v) == i {
			fp = append(fp, cryptors.Letter(i))
		}
	}
	return fp
}

// Cycles returns the cycle decomposition, each cycle starting at its
// smallest symbol.
func (p *Permutator) Cycles() []string {
	var done bitops.LetterSet
	var cycles []string

	for start := range p.fwd {
		if done.Has(start) {
			continue
		}
		var sb strings.Builder
		for i := start; !done.Has(i); i = int(p.fwd[i]) {
			done = done.Set(i)
			sb.WriteByte(cryptors.Letter(i))
		}
		cycles = append(cycles, sb.String())
	}

	return cycles
}

// InverseString returns the wiring of the inverse permutation.
func (p *Permutator) InverseString() string {
	var output bytes.Buffer
	for _, v := range p.inv {
		output.WriteByte(cryptors.Letter(int(v)))
	}
	return output.String()
}

func (p *Permutator) String() string {
	var output bytes.Buffer
	for _, v := range p.fwd {
		output.WriteByte(cryptors.Letter(int(v)))
	}
	return output.String()
}
