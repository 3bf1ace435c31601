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
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bgallie/enigma/cryptors/permutator"
	"github.com/bgallie/enigma/cryptors/plugboard"
	"github.com/bgallie/enigma/engine"
)

var errInputClosed = errors.New("input closed before the machine was configured")

func newInteractiveCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Configure a machine and process one message by answering prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &shell{
				o:   o,
				in:  bufio.NewScanner(cmd.InOrStdin()),
				out: cmd.OutOrStdout(),
			}
			return s.run()
		},
	}
}

// shell asks for each setting in turn and asks again until the answer is
// valid.
type shell struct {
	o   *options
	in  *bufio.Scanner
	out io.Writer
}

func (s *shell) ask(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		fmt.Fprintln(s.out)
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimRight(s.in.Text(), "\r"), nil
}

// askUntil repeats prompt until check accepts the answer.  check returns
// the complaint to print, or "" when the answer is good.
func (s *shell) askUntil(prompt string, check func(string) string) (string, error) {
	for {
		ans, err := s.ask(prompt)
		if err != nil {
			return "", err
		}
		if msg := check(ans); msg != "" {
			fmt.Fprintln(s.out, msg)
			continue
		}
		return ans, nil
	}
}

func (s *shell) run() error {
	table := s.o.table
	maxRotors := table.Len()
	fmt.Fprintln(s.out, "Welcome to the Interactive Enigma Machine!")
	fmt.Fprintf(s.out, "Maximum number of rotors available: %d\n", maxRotors)

	var count int
	_, err := s.askUntil(fmt.Sprintf("How many rotors would you like to use? (1-%d): ", maxRotors), func(ans string) string {
		n, err := strconv.Atoi(strings.TrimSpace(ans))
		if err != nil || n < 1 || n > maxRotors {
			return fmt.Sprintf("Invalid number of rotors. Please choose between 1 and %d.", maxRotors)
		}
		count = n
		return ""
	})
	if err != nil {
		return err
	}

	var mf machineFlags
	mf.rotors, err = s.askUntil(fmt.Sprintf("Choose %d rotor(s) order (e.g., '1 3 2' within 1-%d): ", count, maxRotors), func(ans string) string {
		names, err := parseRotorOrder(table, ans)
		if err != nil || len(names) != count {
			return fmt.Sprintf("Invalid input. Please choose exactly %d distinct rotors from the available options.", count)
		}
		return ""
	})
	if err != nil {
		return err
	}

	settings := func(field, what string) (string, error) {
		return s.askUntil(fmt.Sprintf("Set %s (e.g., '5 18 3' within 0-25): ", what), func(ans string) string {
			if _, err := parseSettings(field, ans, count); err != nil || len(fields(ans)) != count {
				return fmt.Sprintf("Invalid input. Please enter exactly %d %s within the range 0-25.", count, what)
			}
			return ""
		})
	}
	if mf.positions, err = settings("positions", "rotor positions"); err != nil {
		return err
	}
	if mf.notches, err = settings("notches", "notch positions"); err != nil {
		return err
	}

	cfg, err := s.o.machineConfig(&mf)
	if err != nil {
		return err
	}

	custom, err := s.ask("Would you like to use a custom reflector? (yes/y or no/n): ")
	if err != nil {
		return err
	}
	if c := strings.ToLower(strings.TrimSpace(custom)); c == "yes" || c == "y" {
		cfg.Reflector, err = s.askUntil("Enter the custom reflector wiring (26 unique letters): ", func(ans string) string {
			if _, err := permutator.New(strings.TrimSpace(ans)); err != nil {
				return "Invalid reflector wiring. Please enter exactly 26 unique letters."
			}
			return ""
		})
		if err != nil {
			return err
		}
		cfg.Reflector = strings.ToUpper(strings.TrimSpace(cfg.Reflector))
	}

	_, err = s.askUntil("Enter plugboard pairs (e.g., 'ab cd ef'): ", func(ans string) string {
		pairs := parsePlugboard(ans, s.o.log)
		if _, err := plugboard.New(pairs...); err != nil {
			return fmt.Sprintf("Invalid plugboard: %v", err)
		}
		cfg.Plugboard = pairs
		return ""
	})
	if err != nil {
		return err
	}

	m, err := s.o.buildMachine(cfg)
	if err != nil {
		return err
	}
	return s.process(m)
}

func (s *shell) process(m *engine.Machine) error {
	message, err := s.ask("Enter the message to encrypt/decrypt: ")
	if err != nil {
		return err
	}
	op, err := s.ask("Type 'E' to Encrypt or 'D' to Decrypt: ")
	if err != nil {
		return err
	}

	switch strings.ToUpper(strings.TrimSpace(op)) {
	case "E":
		fmt.Fprintf(s.out, "Encrypted message: %s\n", m.Encrypt(message))
	case "D":
		fmt.Fprintf(s.out, "Decrypted message: %s\n", m.Decrypt(message))
	default:
		fmt.Fprintln(s.out, "Invalid operation selected.")
	}
	fmt.Fprintln(s.out, "Thank you for using the Interactive Enigma Machine!")
	return nil
}
