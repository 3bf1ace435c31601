// rotor
package rotor

import (
	"fmt"

	"github.com/bgallie/enigma/cryptors"
	"github.com/bgallie/enigma/cryptors/permutator"
)

// Rotor is a single substitution wheel.  start is the position the rotor was
// set to and current the position it has stepped to since.
type Rotor struct {
	wiring  *permutator.Permutator
	ring    int
	start   int
	current int
	notch   int
}

// New creates a rotor from a wiring string and a ring setting.  Position and
// notch start at zero.
func New(wiring string, ring int) (*Rotor, error) {
	p, err := permutator.New(wiring)
	if err != nil {
		return nil, err
	}
	return &Rotor{wiring: p, ring: cryptors.Mod(ring)}, nil
}

// SetPosition sets both the current and the starting position.
func (r *Rotor) SetPosition(p int) {
	r.start = cryptors.Mod(p)
	r.current = r.start
}

func (r *Rotor) SetNotch(n int) {
	r.notch = cryptors.Mod(n)
}

func (r *Rotor) Position() int {
	return r.current
}

func (r *Rotor) Start() int {
	return r.start
}

func (r *Rotor) Notch() int {
	return r.notch
}

func (r *Rotor) RingSetting() int {
	return r.ring
}

func (r *Rotor) Wiring() string {
	return r.wiring.String()
}

// Reset returns the rotor to the position it was last set to.
func (r *Rotor) Reset() {
	r.current = r.start
}

// Step advances the rotor by one and reports whether the new position is
// the notch, in which case the next rotor in the chain must step.
func (r *Rotor) Step() bool {
	r.current = (r.current + 1) % cryptors.AlphabetSize
	return r.current == r.notch
}

// Advance steps the rotor n times at once and returns how many of those
// steps landed on the notch.
func (r *Rotor) Advance(n int64) int64 {
	if n <= 0 {
		return 0
	}
	size := int64(cryptors.AlphabetSize)
	first := int64(cryptors.Mod(r.notch - r.current))
	if first == 0 {
		first = size
	}
	var carries int64
	if n >= first {
		carries = (n-first)/size + 1
	}
	r.current = int((int64(r.current) + n%size) % size)
	return carries
}

// ApplyF carries the signal from the entry side towards the reflector.
func (r *Rotor) ApplyF(idx int) int {
	shift := r.current - r.ring
	return cryptors.Mod(r.wiring.Map(cryptors.Mod(idx+shift)) - shift)
}

// ApplyG carries the signal back from the reflector.
func (r *Rotor) ApplyG(idx int) int {
	shift := r.current - r.ring
	return cryptors.Mod(r.wiring.Inverse(cryptors.Mod(idx+shift)) - shift)
}

func (r *Rotor) Forward(letter byte) (byte, error) {
	idx, err := cryptors.Index(letter)
	if err != nil {
		return 0, err
	}
	return cryptors.Letter(r.ApplyF(idx)), nil
}

func (r *Rotor) Backward(letter byte) (byte, error) {
	idx, err := cryptors.Index(letter)
	if err != nil {
		return 0, err
	}
	return cryptors.Letter(r.ApplyG(idx)), nil
}

func (r *Rotor) String() string {
	return fmt.Sprintf("rotor{%s ring=%d pos=%d notch=%d}",
		r.wiring, r.ring, r.current, r.notch)
}
