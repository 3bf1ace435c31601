package engine

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgallie/enigma/cryptors"
	"github.com/bgallie/enigma/cryptors/plugboard"
	"github.com/bgallie/enigma/cryptors/reflector"
	"github.com/bgallie/enigma/cryptors/rotor"
)

const (
	rotorI     = "EKMFLGDQVZNTOWYHXUSPAIBRCJ"
	rotorII    = "AJDKSIRUXBLHWTMCQGZNPYFVOE"
	rotorIII   = "BDFHJLCPRTXVZNYEIWGAKMUSQO"
	reflectorB = "YRUHQSLDPXNGOKMIEBFZCWVJAT"

	rotor5  = "BTJZRFLQICKSHEPOAVNXDGUMYW"
	rotor17 = "UNJTOVMQSEGZDCAHPWBFKRLXIY"
	rotor42 = "IMDUQZKWTGEAXNBLPSJROFCVHY"
	rotor99 = "EKGBUXCSFWVLNMAIDTHZRPYOJQ"
)

type scenario struct {
	name      string
	wirings   []string
	plugboard []string
	positions []int
	notches   []int
	rings     []int
	message   string
	step      bool
}

func (s scenario) config() Config {
	cfg := Config{
		Reflector:           reflectorB,
		Plugboard:           s.plugboard,
		StepOnNonAlphabetic: s.step,
	}
	for i, w := range s.wirings {
		spec := RotorSpec{Name: fmt.Sprint(i + 1), Wiring: w}
		if s.positions != nil {
			spec.Position = s.positions[i]
		}
		if s.notches != nil {
			spec.Notch = s.notches[i]
		}
		if s.rings != nil {
			spec.RingSetting = s.rings[i]
		}
		cfg.Rotors = append(cfg.Rotors, spec)
	}
	return cfg
}

var classic = []string{rotorI, rotorII, rotorIII}

var scenarios = []scenario{
	{
		name:    "single-letter",
		wirings: classic,
		message: "A",
		step:    true,
	},
	{
		name:    "hello-step",
		wirings: classic,
		message: "HELLO, WORLD!",
		step:    true,
	},
	{
		name:    "hello-skip",
		wirings: classic,
		message: "HELLO, WORLD!",
		step:    false,
	},
	{
		name:      "plugboard-step",
		wirings:   classic,
		plugboard: []string{"AB", "CD", "EF"},
		positions: []int{5, 18, 3},
		notches:   []int{16, 4, 21},
		message:   "ATTACK AT DAWN",
		step:      true,
	},
	{
		name:      "plugboard-skip",
		wirings:   classic,
		plugboard: []string{"AB", "CD", "EF"},
		positions: []int{5, 18, 3},
		notches:   []int{16, 4, 21},
		message:   "ATTACK AT DAWN",
		step:      false,
	},
	{
		name:      "ring-settings",
		wirings:   classic,
		plugboard: []string{"QZ"},
		positions: []int{1, 2, 3},
		notches:   []int{1, 2, 3},
		rings:     []int{1, 2, 3},
		message:   "ENIGMA",
		step:      true,
	},
	{
		name:    "cascade",
		wirings: classic,
		notches: []int{1, 5, 10},
		message: strings.Repeat("A", 26),
		step:    true,
	},
	{
		name:      "table-rotors",
		wirings:   []string{rotor17, rotor42, rotor99, rotor5},
		plugboard: []string{"QW", "ER"},
		positions: []int{3, 7, 11, 25},
		notches:   []int{4, 8, 12, 0},
		message:   "The quick brown fox jumps over the lazy dog.",
		step:      true,
	},
}

func build(t *testing.T, cfg Config) *Machine {
	t.Helper()
	m, err := Build(cfg)
	require.NoError(t, err)
	return m
}

func TestScenarios(t *testing.T) {
	var report strings.Builder
	for _, s := range scenarios {
		m := build(t, s.config())
		out := m.Encrypt(s.message)
		fmt.Fprintf(&report, "%s: %s %v\n", s.name, out, m.Positions())

		d := build(t, s.config())
		assert.Equal(t, strings.ToUpper(s.message), d.Decrypt(out), s.name)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "scenarios", []byte(report.String()))
}

func TestSingleLetter(t *testing.T) {
	m := build(t, scenarios[0].config())
	assert.Equal(t, "N", m.Encrypt("A"))
	assert.Equal(t, []int{1, 0, 0}, m.Positions())
	assert.Equal(t, int64(1), m.Index())

	m.Reset()
	assert.Equal(t, []int{0, 0, 0}, m.Positions())
	assert.Equal(t, "A", m.Decrypt("N"))
}

func TestStepOnNonAlphabetic(t *testing.T) {
	m := build(t, scenarios[1].config())
	assert.Equal(t, "EVONZ, KLXGO!", m.Encrypt("HELLO, WORLD!"))
	assert.Equal(t, []int{13, 0, 0}, m.Positions())
	assert.True(t, m.StepOnNonAlphabetic())

	m = build(t, scenarios[2].config())
	assert.Equal(t, "EVONZ, YQPOQ!", m.Encrypt("HELLO, WORLD!"))
	assert.Equal(t, []int{10, 0, 0}, m.Positions())
	assert.Equal(t, int64(10), m.Index())
}

func TestCascade(t *testing.T) {
	m := build(t, scenarios[6].config())
	assert.Equal(t, "NMXFIESRWZGTOIUIEJCOQTYRIG", m.Encrypt(strings.Repeat("A", 26)))
	assert.Equal(t, []int{0, 1, 0}, m.Positions())
}

func TestStepCarries(t *testing.T) {
	m := build(t, Config{
		Rotors: []RotorSpec{
			{Wiring: rotorI, Position: 25, Notch: 0},
			{Wiring: rotorII, Position: 25, Notch: 0},
			{Wiring: rotorIII, Position: 7, Notch: 3},
		},
		Reflector: reflectorB,
	})

	m.Step()
	assert.Equal(t, []int{0, 0, 8}, m.Positions(), "both notches hit, carry reaches the third rotor")
	m.Step()
	assert.Equal(t, []int{1, 0, 8}, m.Positions())
}

func TestPreservesCaseAndPassThrough(t *testing.T) {
	m := build(t, scenarios[1].config())
	n := build(t, scenarios[1].config())
	assert.Equal(t, m.Encrypt("HELLO, WORLD!"), n.Encrypt("hello, world!"))

	m.Reset()
	out := m.Encrypt("1 2\n3 é")
	assert.Equal(t, "1 2\n3 é", out)
	assert.Equal(t, int64(7), m.Index())
	assert.Equal(t, "", m.Encrypt(""))
}

func TestSymmetry(t *testing.T) {
	msg := "Attack at dawn, then regroup at 0600 by the old mill."
	for _, s := range scenarios {
		for _, step := range []bool{true, false} {
			s.step = step
			enc := build(t, s.config()).Encrypt(msg)
			dec := build(t, s.config()).Decrypt(enc)
			assert.Equal(t, strings.ToUpper(msg), dec, "%s step=%t", s.name, step)
		}
	}
}

func TestNoLetterMapsToItself(t *testing.T) {
	m := build(t, scenarios[3].config())
	msg := strings.Repeat(cryptors.Alphabet, 4)
	out := m.Encrypt(msg)
	for i := range msg {
		assert.NotEqual(t, msg[i], out[i], "position %d", i)
	}
}

func TestSetIndex(t *testing.T) {
	msg := strings.Repeat("ENIGMA", 20)
	full := build(t, scenarios[6].config()).Encrypt(msg)

	m := build(t, scenarios[6].config())
	m.SetIndex(40)
	assert.Equal(t, int64(40), m.Index())
	assert.Equal(t, full[40:], m.Encrypt(msg[40:]))

	m.SetIndex(0)
	assert.Equal(t, full, m.Encrypt(msg))
}

func TestSetIndexMatchesStepping(t *testing.T) {
	for _, s := range scenarios {
		stepped := build(t, s.config())
		jumped := build(t, s.config())
		for n := int64(0); n <= 20000; n++ {
			if n%997 == 0 || n < 60 {
				jumped.SetIndex(n)
				require.Equal(t, stepped.Positions(), jumped.Positions(), "%s n=%d", s.name, n)
				require.Equal(t, n, jumped.Index())
			}
			stepped.Step()
		}
	}
}

func TestSetIndexPeriodic(t *testing.T) {
	m := build(t, scenarios[3].config())
	period := int64(26 * 26 * 26)

	for _, n := range []int64{1 << 30, 1_000_000_000_000_000, 1<<62 + 12345} {
		m.SetIndex(n)
		got := m.Positions()
		assert.Equal(t, n, m.Index())

		m.SetIndex(n % period)
		assert.Equal(t, m.Positions(), got, "n=%d", n)
	}

	m.SetIndex(-4)
	assert.Equal(t, []int{5, 18, 3}, m.Positions())
	assert.Equal(t, int64(0), m.Index())
}

func TestInvalidUTF8PassesThrough(t *testing.T) {
	msg := "AB\xffC\xc3(D"
	m := build(t, scenarios[1].config())
	out := m.Encrypt(msg)
	require.Len(t, out, len(msg))
	assert.Equal(t, byte(0xff), out[2])
	assert.Equal(t, byte(0xc3), out[4])
	assert.Equal(t, byte('('), out[5])
	assert.Equal(t, int64(7), m.Index())

	n := build(t, scenarios[1].config())
	got, err := io.ReadAll(n.NewReader(strings.NewReader(msg)))
	require.NoError(t, err)
	assert.Equal(t, out, string(got))

	d := build(t, scenarios[1].config())
	assert.Equal(t, msg, d.Decrypt(out))
}

func TestIndependentMachines(t *testing.T) {
	a := build(t, scenarios[3].config())
	b := build(t, scenarios[3].config())

	a.Encrypt("SOME TRAFFIC")
	assert.Equal(t, []int{5, 18, 3}, b.Positions())
	assert.Equal(t, "KMOKMQ UD XRCT", b.Encrypt("ATTACK AT DAWN"))
}

func TestReader(t *testing.T) {
	msg := "The quick brown fox, ça va?\nJumps over the lazy dog."
	want := build(t, scenarios[3].config()).Encrypt(msg)

	m := build(t, scenarios[3].config())
	got, err := io.ReadAll(iotest.OneByteReader(m.NewReader(strings.NewReader(msg))))
	require.NoError(t, err)
	assert.Equal(t, want, string(got))

	m.Reset()
	got, err = io.ReadAll(m.NewReader(iotest.HalfReader(strings.NewReader(msg))))
	require.NoError(t, err)
	assert.Equal(t, want, string(got))
}

func TestNew(t *testing.T) {
	r1, err := rotor.New(rotorI, 0)
	require.NoError(t, err)
	r2, err := rotor.New(rotorII, 0)
	require.NoError(t, err)
	rfl, err := reflector.New(reflectorB)
	require.NoError(t, err)
	pb, err := plugboard.New("AB")
	require.NoError(t, err)

	m, err := New([]*rotor.Rotor{r1, r2}, rfl, pb)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Rotors())
	assert.True(t, m.StepOnNonAlphabetic(), "stepping on non-letters is the default")
	assert.Same(t, rfl, m.Reflector())

	m, err = New([]*rotor.Rotor{r1}, rfl, nil, WithStepOnNonAlphabetic(false))
	require.NoError(t, err)
	assert.False(t, m.StepOnNonAlphabetic())

	tests := []struct {
		name   string
		rotors []*rotor.Rotor
		rfl    *reflector.Reflector
	}{
		{"no rotors", nil, rfl},
		{"no reflector", []*rotor.Rotor{r1}, nil},
		{"nil rotor", []*rotor.Rotor{r1, nil}, rfl},
		{"shared rotor", []*rotor.Rotor{r1, r2, r1}, rfl},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rotors, tt.rfl, pb)
			assert.ErrorIs(t, err, cryptors.ErrInvalidConfig)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	cfg := scenarios[3].config()
	cfg.Rotors[1].Wiring = "ABC"
	_, err := Build(cfg)
	assert.ErrorIs(t, err, cryptors.ErrInvalidWiring)
	assert.Contains(t, err.Error(), "rotor 2 (2)")

	cfg = scenarios[3].config()
	cfg.Reflector = "AACDEFGHIJKLMNOPQRSTUVWXYZ"
	_, err = Build(cfg)
	assert.ErrorIs(t, err, cryptors.ErrInvalidWiring)
	assert.Contains(t, err.Error(), "reflector:")

	cfg = scenarios[3].config()
	cfg.Plugboard = []string{"AB", "BC"}
	_, err = Build(cfg)
	assert.ErrorIs(t, err, cryptors.ErrInvalidPairing)

	cfg = scenarios[3].config()
	cfg.Rotors = nil
	_, err = Build(cfg)
	assert.ErrorIs(t, err, cryptors.ErrInvalidConfig)
}

func TestCounterKey(t *testing.T) {
	a := build(t, scenarios[3].config())
	b := build(t, scenarios[3].config())
	assert.Len(t, a.CounterKey(), 16)
	assert.Equal(t, a.CounterKey(), b.CounterKey())

	b.Encrypt("MOVED")
	assert.Equal(t, a.CounterKey(), b.CounterKey(), "the key names the starting configuration")

	for _, c := range []Config{scenarios[4].config(), scenarios[5].config(), scenarios[1].config()} {
		assert.NotEqual(t, a.CounterKey(), build(t, c).CounterKey())
	}
}
