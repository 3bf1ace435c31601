// Package engine drives the signal path of a rotor machine: plugboard, rotors
// towards the reflector, reflector, rotors back, plugboard.  After every input
// character the rotors step, starting with the first rotor in the configured
// order and carrying into the next one each time a rotor lands on its notch.
//
// A Machine is not safe for concurrent use.  Independent machines share no
// state.
package engine

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"

	"github.com/bgallie/enigma/cryptors"
	"github.com/bgallie/enigma/cryptors/plugboard"
	"github.com/bgallie/enigma/cryptors/reflector"
	"github.com/bgallie/enigma/cryptors/rotor"
)

// RotorSpec is the validated configuration of one rotor.
type RotorSpec struct {
	Name        string
	Wiring      string
	RingSetting int
	Position    int
	Notch       int
}

// Config is everything needed to build a Machine.
type Config struct {
	Rotors              []RotorSpec
	Reflector           string
	Plugboard           []string
	StepOnNonAlphabetic bool
}

// Option adjusts a Machine built by New.
type Option func(*Machine)

// WithStepOnNonAlphabetic selects whether characters outside the alphabet
// still step the rotors.
func WithStepOnNonAlphabetic(step bool) Option {
	return func(m *Machine) { m.stepNonAlpha = step }
}

// Machine is one rotor machine.  index counts the characters that stepped
// the rotors since the last Reset.
type Machine struct {
	rotors       []*rotor.Rotor
	chain        []cryptors.Crypter
	reflector    *reflector.Reflector
	plugboard    *plugboard.Plugboard
	stepNonAlpha bool
	index        int64
}

// New assembles a machine from already constructed parts.  The machine
// takes ownership of the rotors.  A nil plugboard means no pairs.  Rotors
// step on non-alphabetic input unless an option says otherwise.
func New(rotors []*rotor.Rotor, rfl *reflector.Reflector, pb *plugboard.Plugboard, opts ...Option) (*Machine, error) {
	if len(rotors) == 0 {
		return nil, fmt.Errorf("%w: at least one rotor is required", cryptors.ErrInvalidConfig)
	}
	if rfl == nil {
		return nil, fmt.Errorf("%w: a reflector is required", cryptors.ErrInvalidConfig)
	}
	for i, r := range rotors {
		if r == nil {
			return nil, fmt.Errorf("%w: rotor %d is nil", cryptors.ErrInvalidConfig, i)
		}
		for _, o := range rotors[:i] {
			if o == r {
				return nil, fmt.Errorf("%w: rotor %d is used twice", cryptors.ErrInvalidConfig, i)
			}
		}
	}
	if pb == nil {
		pb, _ = plugboard.New()
	}

	m := &Machine{
		rotors:       append([]*rotor.Rotor(nil), rotors...),
		reflector:    rfl,
		plugboard:    pb,
		stepNonAlpha: true,
	}
	for _, r := range m.rotors {
		m.chain = append(m.chain, r)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Build constructs every part from cfg, failing on the first invalid
// wiring or pairing.
func Build(cfg Config) (*Machine, error) {
	rotors := make([]*rotor.Rotor, 0, len(cfg.Rotors))
	for i, spec := range cfg.Rotors {
		r, err := rotor.New(spec.Wiring, spec.RingSetting)
		if err != nil {
			return nil, fmt.Errorf("rotor %d (%s): %w", i+1, spec.Name, err)
		}
		r.SetPosition(spec.Position)
		r.SetNotch(spec.Notch)
		rotors = append(rotors, r)
	}

	rfl, err := reflector.New(cfg.Reflector)
	if err != nil {
		return nil, fmt.Errorf("reflector: %w", err)
	}

	pb, err := plugboard.New(cfg.Plugboard...)
	if err != nil {
		return nil, fmt.Errorf("plugboard: %w", err)
	}

	return New(rotors, rfl, pb, WithStepOnNonAlphabetic(cfg.StepOnNonAlphabetic))
}

// Step advances the rotors once.  The first rotor always moves; each later
// rotor moves only if the one before it just reached its notch.
func (m *Machine) Step() {
	advance := true
	for _, r := range m.rotors {
		if !advance {
			break
		}
		advance = r.Step()
	}
	m.index++
}

// signal sends an alphabet index through the full signal path without
// stepping.
func (m *Machine) signal(idx int) int {
	idx = cryptors.Encrypt(m.plugboard.ApplyF(idx), m.chain...)
	idx = m.reflector.ApplyF(idx)
	return m.plugboard.ApplyG(cryptors.Decrypt(idx, m.chain...))
}

// TransformRune processes a single character: letters are upper cased and
// enciphered, anything else is returned unchanged.  The rotors step
// afterwards, for non-letters only when the machine is configured to.
func (m *Machine) TransformRune(c rune) rune {
	if !cryptors.IsLetter(c) {
		if m.stepNonAlpha {
			m.Step()
		}
		return c
	}
	idx, _ := cryptors.Index(byte(c))
	out := rune(cryptors.Letter(m.signal(idx)))
	m.Step()
	return out
}

// Transform enciphers msg.  Enciphering and deciphering are the same
// operation when the reflector is a fixed point free involution.  Bytes that
// are not valid UTF-8 are copied through unchanged, so the output is always
// as long as the input.
func (m *Machine) Transform(msg string) string {
	var sb strings.Builder
	sb.Grow(len(msg))
	for i := 0; i < len(msg); {
		c, size := utf8.DecodeRuneInString(msg[i:])
		out := m.TransformRune(c)
		if c == utf8.RuneError && size == 1 {
			sb.WriteByte(msg[i])
		} else {
			sb.WriteRune(out)
		}
		i += size
	}
	return sb.String()
}

func (m *Machine) Encrypt(msg string) string { return m.Transform(msg) }

func (m *Machine) Decrypt(msg string) string { return m.Transform(msg) }

// Reset returns every rotor to its starting position.
func (m *Machine) Reset() {
	for _, r := range m.rotors {
		r.Reset()
	}
	m.index = 0
}

// SetIndex puts the machine in the state it would be in after stepping idx
// times from its starting positions.  Each rotor moves once for every notch
// landing of the rotor before it, so the positions are computed rotor by
// rotor without replaying the steps.
func (m *Machine) SetIndex(idx int64) {
	m.Reset()
	if idx <= 0 {
		return
	}
	m.index = idx
	n := idx
	for _, r := range m.rotors {
		if n == 0 {
			break
		}
		n = r.Advance(n)
	}
}

func (m *Machine) Index() int64 {
	return m.index
}

func (m *Machine) Positions() []int {
	pos := make([]int, len(m.rotors))
	for i, r := range m.rotors {
		pos[i] = r.Position()
	}
	return pos
}

func (m *Machine) Rotors() int {
	return len(m.rotors)
}

func (m *Machine) StepOnNonAlphabetic() bool {
	return m.stepNonAlpha
}

func (m *Machine) Reflector() *reflector.Reflector {
	return m.reflector
}

// CounterKey identifies the machine's starting configuration so that a
// stored character index can be found again for the same settings.
func (m *Machine) CounterKey() string {
	var sb strings.Builder
	for _, r := range m.rotors {
		fmt.Fprintf(&sb, "%s/%d/%d/%d;", r.Wiring(), r.RingSetting(), r.Start(), r.Notch())
	}
	fmt.Fprintf(&sb, "%s;%s;%t", m.reflector.Wiring(), m.plugboard, m.stepNonAlpha)
	sum := blake2b.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:8])
}
