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
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/bgallie/filters/ascii85"
	"github.com/bgallie/filters/flate"
	"github.com/bgallie/filters/lines"
	"github.com/bgallie/filters/pem"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/bgallie/enigma/engine"
)

// ioFlags select where a command reads its message and writes its result.
type ioFlags struct {
	text           string
	inputFileName  string
	outputFileName string
	hidden         bool
}

func (f *ioFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.text, "text", "t", "", "the message (instead of reading the input file)")
	cmd.Flags().StringVarP(&f.inputFileName, "inputFile", "i", "-", "Name of the file to read the message from.")
	cmd.Flags().StringVarP(&f.outputFileName, "outputFile", "o", "-", "Name of the file to write the result to.")
	cmd.Flags().BoolVarP(&f.hidden, "hidden", "H", false, "do not echo the message when it is typed at a terminal")
}

type encryptFlags struct {
	ioFlags
	mf          machineFlags
	useASCII85  bool
	usePem      bool
	compression bool
	cnt         string
	track       bool
	fold        bool
}

func newEncryptCmd(o *options, deprecated bool) *cobra.Command {
	f := &encryptFlags{}
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a message",
		Long: `Encrypt a message with the configured rotor machine.  Letters are upper
cased and enciphered; every other character is copied through unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.encrypt(cmd, f)
		},
	}
	if deprecated {
		cmd.Use = "encode"
		cmd.Short = "Encode a message"
		cmd.Long = "[DEPRECATED] " + cmd.Long
		cmd.Deprecated = "use \"encrypt\" instead."
	}

	f.ioFlags.register(cmd)
	f.mf.register(cmd.Flags())
	cmd.Flags().BoolVarP(&f.useASCII85, "useASCII85", "a", false, "use ASCII85 armor")
	cmd.Flags().BoolVarP(&f.usePem, "usePem", "p", false, "use PEM armor")
	cmd.Flags().BoolVarP(&f.compression, "compress", "c", false, "compress the ciphertext using flate (armored output only)")
	cmd.Flags().StringVarP(&f.cnt, "count", "n", "", `initial character count
The rotors are stepped this many times before the message is enciphered.`)
	cmd.Flags().BoolVarP(&f.track, "track", "k", false, `continue from, and save, the character count stored in the
config file for this machine configuration`)
	cmd.Flags().BoolVar(&f.fold, "fold", false, "strip accents so that letters such as É are enciphered as E")
	return cmd
}

func (o *options) encrypt(cmd *cobra.Command, f *encryptFlags) error {
	if f.compression && !(f.useASCII85 || f.usePem) {
		return errors.New("--compress requires --useASCII85 or --usePem")
	}
	if f.useASCII85 && f.usePem {
		return errors.New("choose only one of --useASCII85 and --usePem")
	}

	cfg, err := o.machineConfig(&f.mf)
	if err != nil {
		return err
	}
	m, err := o.buildMachine(cfg)
	if err != nil {
		return err
	}

	// Get the starting character count.  A count saved for this machine
	// configuration takes precedence when tracking.
	var iCnt int64
	if f.cnt != "" {
		iCnt, err = strconv.ParseInt(f.cnt, 10, 64)
		if err != nil || iCnt < 0 {
			return fmt.Errorf("incorrect initial count: [%s]", f.cnt)
		}
	}
	mKey := "counters." + m.CounterKey()
	if f.track && o.v.IsSet(mKey) {
		if f.cnt != "" {
			o.log.Warn("Ignoring the count argument - using the saved count.")
		}
		iCnt = o.v.GetInt64(mKey)
	}
	m.SetIndex(iCnt)

	fin, err := f.input(cmd)
	if err != nil {
		return err
	}
	defer fin.Close()
	var rdr io.Reader = fin
	if f.fold {
		rdr = transform.NewReader(rdr, foldAccents())
	}
	fout, err := f.output(cmd)
	if err != nil {
		return err
	}
	defer fout.Close()

	switch {
	case f.usePem:
		blck := pem.Block{
			Type:    pemType,
			Headers: newHeader(m, iCnt, f.compression).pemHeaders(),
		}
		encIn := cipherHelper(rdr, m)
		if f.compression {
			encIn = flate.ToFlate(encIn)
		}
		_, err = io.Copy(fout, pem.ToPem(bufio.NewReader(encIn), blck))
	case f.useASCII85:
		if _, err = io.WriteString(fout, newHeader(m, iCnt, f.compression).headerLine()); err != nil {
			return err
		}
		encIn := cipherHelper(rdr, m)
		if f.compression {
			encIn = flate.ToFlate(encIn)
		}
		_, err = io.Copy(fout, lines.SplitToLines(ascii85.ToASCII85(encIn)))
	default:
		_, err = io.Copy(fout, m.NewReader(rdr))
		if err == nil && f.text != "" {
			_, err = io.WriteString(fout, "\n")
		}
	}
	if err != nil {
		return err
	}
	o.log.Verbose("Enciphered %d characters starting at count %d.", m.Index()-iCnt, iCnt)

	if f.track {
		o.v.Set(mKey, m.Index())
		if err := o.writeConfig(); err != nil {
			return err
		}
		o.log.Info("Next message for this machine starts at count %d.", m.Index())
	}
	return nil
}

func newHeader(m *engine.Machine, cnt int64, compression bool) armorHeader {
	return armorHeader{
		apiLevel:     enigmaApiLevel,
		compression:  compression,
		counter:      cnt,
		stepNonAlpha: m.StepOnNonAlphabetic(),
		messageID:    uuid.Must(uuid.NewV7()).String(),
	}
}

// foldAccents decomposes letters and drops the combining marks.
func foldAccents() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

/*
input returns the message to process.  Text given on the command line comes
first, then a named input file, then stdin.  When stdin is a terminal the
operator is prompted for a single line, without echo if hidden is set.
*/
func (f *ioFlags) input(cmd *cobra.Command) (io.ReadCloser, error) {
	if f.text != "" {
		return io.NopCloser(strings.NewReader(f.text)), nil
	}
	if len(f.inputFileName) > 0 && f.inputFileName != "-" {
		return os.Open(f.inputFileName)
	}

	in := cmd.InOrStdin()
	if fin, ok := in.(*os.File); ok && term.IsTerminal(int(fin.Fd())) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Enter the message: ")
		var line string
		if f.hidden {
			b, err := term.ReadPassword(int(fin.Fd()))
			fmt.Fprintln(cmd.ErrOrStderr(), "")
			if err != nil {
				return nil, err
			}
			line = string(b)
		} else {
			s, err := bufio.NewReader(fin).ReadString('\n')
			if err != nil && err != io.EOF {
				return nil, err
			}
			line = strings.TrimRight(s, "\r\n")
		}
		f.text = line
		return io.NopCloser(strings.NewReader(line)), nil
	}
	return io.NopCloser(in), nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (f *ioFlags) output(cmd *cobra.Command) (io.WriteCloser, error) {
	if len(f.outputFileName) > 0 && f.outputFileName != "-" {
		return os.Create(f.outputFileName)
	}
	return nopWriteCloser{cmd.OutOrStdout()}, nil
}
