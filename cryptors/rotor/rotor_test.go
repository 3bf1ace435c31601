package rotor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgallie/enigma/cryptors"
)

const rotorI = "EKMFLGDQVZNTOWYHXUSPAIBRCJ"

func TestForward(t *testing.T) {
	tests := []struct {
		in        byte
		pos, ring int
		want      byte
	}{
		{'A', 0, 0, 'E'},
		{'A', 1, 0, 'J'},
		{'A', 0, 1, 'K'},
		{'Z', 25, 3, 'M'},
		{'Q', 7, 7, 'X'},
		{'a', 0, 0, 'E'},
	}

	for _, tt := range tests {
		r, err := New(rotorI, tt.ring)
		require.NoError(t, err)
		r.SetPosition(tt.pos)

		got, err := r.Forward(tt.in)
		require.NoError(t, err)
		assert.Equal(t, string(tt.want), string(got), "in=%c pos=%d ring=%d", tt.in, tt.pos, tt.ring)

		back, err := r.Backward(got)
		require.NoError(t, err)
		assert.Equal(t, string(tt.in&^0x20), string(back))
	}
}

func TestBackwardUndoesForward(t *testing.T) {
	r, err := New(rotorI, 0)
	require.NoError(t, err)

	for ring := 0; ring < cryptors.AlphabetSize; ring += 5 {
		r.ring = ring
		for pos := 0; pos < cryptors.AlphabetSize; pos++ {
			r.SetPosition(pos)
			for i := 0; i < cryptors.AlphabetSize; i++ {
				require.Equal(t, i, r.ApplyG(r.ApplyF(i)), "ring=%d pos=%d i=%d", ring, pos, i)
				require.Equal(t, i, r.ApplyF(r.ApplyG(i)), "ring=%d pos=%d i=%d", ring, pos, i)
			}
		}
	}
}

func TestStep(t *testing.T) {
	r, err := New(rotorI, 0)
	require.NoError(t, err)
	r.SetPosition(24)
	r.SetNotch(0)

	assert.False(t, r.Step())
	assert.Equal(t, 25, r.Position())
	assert.True(t, r.Step(), "wrapping onto the notch")
	assert.Equal(t, 0, r.Position())
	assert.False(t, r.Step())
	assert.Equal(t, 24, r.Start())

	r.Reset()
	assert.Equal(t, 24, r.Position())
}

func TestAdvance(t *testing.T) {
	stepped, err := New(rotorI, 0)
	require.NoError(t, err)
	jumped, err := New(rotorI, 0)
	require.NoError(t, err)

	for _, start := range []int{0, 3, 25} {
		for _, notch := range []int{0, 4, 25} {
			for _, n := range []int64{0, 1, 25, 26, 27, 100, 677} {
				stepped.SetPosition(start)
				stepped.SetNotch(notch)
				jumped.SetPosition(start)
				jumped.SetNotch(notch)

				var carries int64
				for i := int64(0); i < n; i++ {
					if stepped.Step() {
						carries++
					}
				}
				assert.Equal(t, carries, jumped.Advance(n), "start=%d notch=%d n=%d", start, notch, n)
				assert.Equal(t, stepped.Position(), jumped.Position(), "start=%d notch=%d n=%d", start, notch, n)
			}
		}
	}
}

func TestSettingsReduced(t *testing.T) {
	r, err := New(rotorI, 27)
	require.NoError(t, err)
	assert.Equal(t, 1, r.RingSetting())

	r.SetPosition(-1)
	assert.Equal(t, 25, r.Position())
	r.SetNotch(52)
	assert.Equal(t, 0, r.Notch())
	assert.Equal(t, rotorI, r.Wiring())
	assert.Contains(t, r.String(), "pos=25")
}

func TestErrors(t *testing.T) {
	_, err := New("ABC", 0)
	assert.ErrorIs(t, err, cryptors.ErrInvalidWiring)

	r, err := New(rotorI, 0)
	require.NoError(t, err)
	_, err = r.Forward('1')
	assert.ErrorIs(t, err, cryptors.ErrUnknownSymbol)
	_, err = r.Backward(' ')
	assert.ErrorIs(t, err, cryptors.ErrUnknownSymbol)
}
