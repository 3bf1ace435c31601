/*
Copyright © 2021 Billy G. Allie <bill.allie@defiant.mug.org>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bgallie/enigma/cryptors"
	"github.com/bgallie/enigma/engine"
	"github.com/bgallie/enigma/wiring"
)

// settingError is an operator setting that cannot be turned into a machine
// configuration.
type settingError struct {
	Field   string
	Value   string
	Message string
	Hint    string
}

func (e *settingError) Error() string {
	msg := fmt.Sprintf("--%s=%q: %s", e.Field, e.Value, e.Message)
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

func (e *settingError) Unwrap() error { return cryptors.ErrInvalidConfig }

// machineFlags are the operator settings of one machine.
type machineFlags struct {
	rotors    string
	positions string
	notches   string
	rings     string
	plugboard string
}

func (mf *machineFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&mf.rotors, "rotors", "r", "I II III", "rotor order, names from the wiring table (e.g. '1 3 2')")
	fs.StringVarP(&mf.positions, "positions", "P", "", "starting rotor positions 0-25, one per rotor (default all 0)")
	fs.StringVarP(&mf.notches, "notches", "N", "", "notch positions 0-25, one per rotor (default all 0)")
	fs.StringVarP(&mf.rings, "rings", "R", "", "ring settings 0-25, one per rotor (default all 0)")
	fs.StringVarP(&mf.plugboard, "plugboard", "b", "", "plugboard pairs (e.g. 'AB CD EF')")
}

// fields splits operator input on blanks and commas.
func fields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
}

// parseRotorOrder checks that every name is in the table and used once.
func parseRotorOrder(table *wiring.Table, s string) ([]string, error) {
	names := fields(s)
	if len(names) == 0 {
		return nil, &settingError{Field: "rotors", Value: s, Message: "at least one rotor is required",
			Hint: fmt.Sprintf("choose from the %d rotors listed by 'enigma rotors list'", table.Len())}
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if _, err := table.Rotor(name); err != nil {
			return nil, &settingError{Field: "rotors", Value: s, Message: err.Error(),
				Hint: "'enigma rotors list' shows the available rotors"}
		}
		key := strings.ToUpper(name)
		if seen[key] {
			return nil, &settingError{Field: "rotors", Value: s, Message: fmt.Sprintf("rotor %s is used more than once", name)}
		}
		seen[key] = true
	}
	return names, nil
}

// parseSettings reads exactly n integers in 0..25.  An empty string means
// all zero.
func parseSettings(field, s string, n int) ([]int, error) {
	toks := fields(s)
	vals := make([]int, n)
	if len(toks) == 0 {
		return vals, nil
	}
	if len(toks) != n {
		return nil, &settingError{Field: field, Value: s,
			Message: fmt.Sprintf("%d values given for %d rotors", len(toks), n)}
	}
	for i, tok := range toks {
		v, err := strconv.Atoi(tok)
		if err != nil || v < 0 || v >= cryptors.AlphabetSize {
			return nil, &settingError{Field: field, Value: s,
				Message: fmt.Sprintf("%q is not a number in the range 0-25", tok)}
		}
		vals[i] = v
	}
	return vals, nil
}

// parsePlugboard upper cases the pair tokens and drops those that are not
// two characters long.  Everything else is left for the plugboard to judge.
func parsePlugboard(s string, log *Logger) []string {
	var pairs []string
	for _, tok := range fields(strings.ToUpper(s)) {
		if len(tok) != 2 {
			log.Warn("ignoring plugboard token %q", tok)
			continue
		}
		pairs = append(pairs, tok)
	}
	return pairs
}

// machineConfig turns operator settings into an engine configuration.
func (o *options) machineConfig(mf *machineFlags) (engine.Config, error) {
	var cfg engine.Config

	names, err := parseRotorOrder(o.table, mf.rotors)
	if err != nil {
		return cfg, err
	}
	positions, err := parseSettings("positions", mf.positions, len(names))
	if err != nil {
		return cfg, err
	}
	notches, err := parseSettings("notches", mf.notches, len(names))
	if err != nil {
		return cfg, err
	}
	rings, err := parseSettings("rings", mf.rings, len(names))
	if err != nil {
		return cfg, err
	}

	for i, name := range names {
		w, _ := o.table.Rotor(name)
		cfg.Rotors = append(cfg.Rotors, engine.RotorSpec{
			Name:        name,
			Wiring:      w,
			RingSetting: rings[i],
			Position:    positions[i],
			Notch:       notches[i],
		})
	}

	if cfg.Reflector, err = o.reflectorWiring(); err != nil {
		return cfg, err
	}
	cfg.Plugboard = parsePlugboard(mf.plugboard, o.log)
	cfg.StepOnNonAlphabetic = o.v.GetBool("stepNonAlpha")
	return cfg, nil
}

// buildMachine constructs the machine for cfg and warns when its reflector
// would make decryption differ from encryption.
func (o *options) buildMachine(cfg engine.Config) (*engine.Machine, error) {
	m, err := engine.Build(cfg)
	if err != nil {
		return nil, err
	}
	if err := m.Reflector().Validate(); err != nil {
		o.log.Warn("%v; decrypting will not reverse encrypting", err)
	}
	o.log.Debug("machine %s: %d rotors, positions %v, stepNonAlpha=%t",
		m.CounterKey(), m.Rotors(), m.Positions(), m.StepOnNonAlphabetic())
	return m, nil
}
