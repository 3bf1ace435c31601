// Package wiring holds the tables of rotor and reflector wirings a machine is
// assembled from.  The default table is embedded; any other table with the
// same layout can be loaded from YAML:
//
//	rotors:
//	  "I": EKMFLGDQVZNTOWYHXUSPAIBRCJ
//	reflectors:
//	  "B": YRUHQSLDPXNGOKMIEBFZCWVJAT
//
// Every wiring is checked to be a permutation of the alphabet when the table
// is loaded.
package wiring

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bgallie/enigma/cryptors/permutator"
)

//go:embed rotors.yaml
var defaultTable []byte

var (
	ErrUnknownRotor     = errors.New("unknown rotor")
	ErrUnknownReflector = errors.New("unknown reflector")
)

// Entry is one named wiring.
type Entry struct {
	Name   string
	Wiring string
}

// Table is an ordered set of named rotor and reflector wirings.
type Table struct {
	rotors     []Entry
	reflectors []Entry
}

type document struct {
	Rotors     yaml.Node `yaml:"rotors"`
	Reflectors yaml.Node `yaml:"reflectors"`
}

// Default returns the embedded table.
func Default() (*Table, error) {
	return Load(bytes.NewReader(defaultTable))
}

func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func Load(r io.Reader) (*Table, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode wiring table: %w", err)
	}

	var t Table
	var err error
	if t.rotors, err = entries("rotors", &doc.Rotors); err != nil {
		return nil, err
	}
	if t.reflectors, err = entries("reflectors", &doc.Reflectors); err != nil {
		return nil, err
	}
	if len(t.rotors) == 0 {
		return nil, errors.New("wiring table has no rotors")
	}
	return &t, nil
}

// entries walks a mapping node keeping the order of the file.
func entries(section string, n *yaml.Node) ([]Entry, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: line %d: expected a mapping of name to wiring", section, n.Line)
	}

	seen := make(map[string]bool)
	out := make([]Entry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		name := strings.TrimSpace(k.Value)
		if seen[name] {
			return nil, fmt.Errorf("%s: line %d: %q defined twice", section, k.Line, name)
		}
		seen[name] = true
		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%s: line %d: wiring for %q must be a string", section, v.Line, name)
		}
		p, err := permutator.New(strings.TrimSpace(v.Value))
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", section, name, err)
		}
		out = append(out, Entry{Name: name, Wiring: p.String()})
	}
	return out, nil
}

func lookup(list []Entry, name string) (string, bool) {
	for _, e := range list {
		if strings.EqualFold(e.Name, name) {
			return e.Wiring, true
		}
	}
	return "", false
}

// Rotor returns the wiring of the named rotor.  Names match case
// insensitively.
func (t *Table) Rotor(name string) (string, error) {
	w, ok := lookup(t.rotors, name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRotor, name)
	}
	return w, nil
}

// Reflector returns the wiring of the named reflector.
func (t *Table) Reflector(name string) (string, error) {
	w, ok := lookup(t.reflectors, name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownReflector, name)
	}
	return w, nil
}

func (t *Table) Rotors() []Entry {
	return append([]Entry(nil), t.rotors...)
}

func (t *Table) Reflectors() []Entry {
	return append([]Entry(nil), t.reflectors...)
}

func (t *Table) Len() int {
	return len(t.rotors)
}
