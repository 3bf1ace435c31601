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
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bgallie/enigma/cryptors/permutator"
	"github.com/bgallie/enigma/wiring"
)

func newRotorsCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rotors",
		Short: "Inspect the wiring table",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the rotors and reflectors in the wiring table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listTable(cmd.OutOrStdout(), o.table)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show NAME",
		Short: "Show the wiring, inverse wiring and cycle structure of a rotor or reflector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showWiring(cmd.OutOrStdout(), o.table, args[0])
		},
	})

	return cmd
}

func listTable(w io.Writer, t *wiring.Table) {
	rotors, reflectors := t.Rotors(), t.Reflectors()
	width := 0
	for _, e := range append(rotors, reflectors...) {
		if len(e.Name) > width {
			width = len(e.Name)
		}
	}

	fmt.Fprintln(w, "Rotors:")
	for _, e := range rotors {
		fmt.Fprintf(w, "  %-*s  %s\n", width, e.Name, e.Wiring)
	}
	fmt.Fprintln(w, "Reflectors:")
	for _, e := range reflectors {
		fmt.Fprintf(w, "  %-*s  %s\n", width, e.Name, e.Wiring)
	}
}

func showWiring(w io.Writer, t *wiring.Table, name string) error {
	kind := "rotor"
	wr, err := t.Rotor(name)
	if err != nil {
		kind = "reflector"
		if wr, err = t.Reflector(name); err != nil {
			return fmt.Errorf("no rotor or reflector named %q", name)
		}
	}
	p, err := permutator.New(wr)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Name:     %s (%s)\n", name, kind)
	fmt.Fprintf(w, "Wiring:   %s\n", p)
	fmt.Fprintf(w, "Inverse:  %s\n", p.InverseString())
	fmt.Fprintf(w, "Cycles:   (%s)\n", strings.Join(p.Cycles(), ") ("))
	if kind == "reflector" {
		fp := "none"
		if f := p.FixedPoints(); len(f) > 0 {
			fp = string(f)
		}
		fmt.Fprintf(w, "Involution: %t, fixed points: %s\n", p.Involution(), fp)
	}
	return nil
}
