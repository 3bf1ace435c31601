// This is free and unencumbered software released into the public domain.
// See the UNLICENSE file for details.

// Package main - enigma is a rotor cipher machine.  A message is enciphered
// letter by letter through a plugboard, a chain of rotors and a reflector, and
// the rotors step after every character so the substitution keeps changing.
package main

import "github.com/bgallie/enigma/cmd"

func main() {
	cmd.Execute()
}
