// plugboard
package plugboard

import (
	"sort"
	"strings"

	"github.com/bgallie/enigma/cryptors"
	"github.com/bgallie/enigma/cryptors/bitops"
)

// Plugboard swaps disjoint pairs of letters on the way into and out of the
// rotors.  Unpaired letters map to themselves.
type Plugboard struct {
	pairs [cryptors.AlphabetSize]byte
	wired bitops.LetterSet
}

// New builds a plugboard from two letter tokens such as "AB" or "cd".
// A letter may appear in at most one token and a token may not pair a
// letter with itself.
func New(pairs ...string) (*Plugboard, error) {
	p := identity()

	for _, tok := range pairs {
		if len(tok) != 2 {
			return nil, &cryptors.PairingError{Token: tok, Reason: "a pair must be exactly two letters"}
		}
		a, errA := cryptors.Index(tok[0])
		b, errB := cryptors.Index(tok[1])
		if errA != nil || errB != nil {
			return nil, &cryptors.PairingError{Token: tok, Reason: "not alphabetic"}
		}
		if err := p.connect(a, b, tok); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// FromMap builds a plugboard from a letter mapping.  The mapping must be
// symmetric; listing only one direction of a pair is accepted.
func FromMap(m map[byte]byte) (*Plugboard, error) {
	p := identity()

	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, int(k))
	}
	sort.Ints(keys)

	for _, k := range keys {
		tok := string([]byte{byte(k), m[byte(k)]})
		a, errA := cryptors.Index(byte(k))
		b, errB := cryptors.Index(m[byte(k)])
		if errA != nil || errB != nil {
			return nil, &cryptors.PairingError{Token: tok, Reason: "not alphabetic"}
		}
		if p.wired.Has(a) && int(p.pairs[a]) == b {
			continue
		}
		if err := p.connect(a, b, tok); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func identity() *Plugboard {
	var p Plugboard
	for i := range p.pairs {
		p.pairs[i] = byte(i)
	}
	return &p
}

func (p *Plugboard) connect(a, b int, tok string) error {
	if a == b {
		return &cryptors.PairingError{Token: tok, Reason: "a letter cannot be paired with itself"}
	}
	if p.wired.Has(a) || p.wired.Has(b) {
		return &cryptors.PairingError{Token: tok, Reason: "letter is already paired"}
	}
	p.pairs[a], p.pairs[b] = byte(b), byte(a)
	p.wired = p.wired.Set(a).Set(b)
	return nil
}

func (p *Plugboard) ApplyF(idx int) int {
	return int(p.pairs[idx])
}

func (p *Plugboard) ApplyG(idx int) int {
	return int(p.pairs[idx])
}

// Swap returns the partner of letter, or letter itself when it is unpaired
// or not in the alphabet.
func (p *Plugboard) Swap(letter byte) byte {
	idx, err := cryptors.Index(letter)
	if err != nil {
		return letter
	}
	return cryptors.Letter(int(p.pairs[idx]))
}

// Pairs returns the configured pairs in alphabetical order, e.g. ["AB" "CD"].
func (p *Plugboard) Pairs() []string {
	var out []string
	for i, v := range p.pairs {
		if p.wired.Has(i) && i < int(v) {
			out = append(out, string([]byte{cryptors.Letter(i), cryptors.Letter(int(v))}))
		}
	}
	return out
}

func (p *Plugboard) String() string {
	return strings.Join(p.Pairs(), " ")
}
