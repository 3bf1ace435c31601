// reflector
package reflector

import (
	"fmt"

	"github.com/bgallie/enigma/cryptors"
	"github.com/bgallie/enigma/cryptors/permutator"
)

// Reflector turns the signal around at the end of the rotor chain.  Any
// permutation is accepted, but encryption and decryption are only the same
// operation when the wiring is an involution without fixed points.
type Reflector struct {
	wiring *permutator.Permutator
}

func New(wiring string) (*Reflector, error) {
	p, err := permutator.New(wiring)
	if err != nil {
		return nil, err
	}
	return &Reflector{wiring: p}, nil
}

func (r *Reflector) ApplyF(idx int) int {
	return r.wiring.Map(idx)
}

// ApplyG is the same lookup as ApplyF; the signal only crosses a reflector
// once.
func (r *Reflector) ApplyG(idx int) int {
	return r.wiring.Map(idx)
}

func (r *Reflector) Reflect(letter byte) (byte, error) {
	idx, err := cryptors.Index(letter)
	if err != nil {
		return 0, err
	}
	return cryptors.Letter(r.wiring.Map(idx)), nil
}

func (r *Reflector) Involutive() bool {
	return r.wiring.Involution()
}

func (r *Reflector) FixedPointFree() bool {
	return len(r.wiring.FixedPoints()) == 0
}

// Validate returns an error when the wiring would break encrypt/decrypt
// symmetry.
func (r *Reflector) Validate() error {
	if !r.Involutive() {
		return &cryptors.WiringError{Wiring: r.Wiring(), Reason: "reflector is not an involution"}
	}
	if fp := r.wiring.FixedPoints(); len(fp) > 0 {
		return &cryptors.WiringError{
			Wiring: r.Wiring(),
			Reason: fmt.Sprintf("reflector maps %q to itself", fp),
		}
	}
	return nil
}

func (r *Reflector) Wiring() string {
	return r.wiring.String()
}
