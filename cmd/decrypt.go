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
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bgallie/filters/ascii85"
	"github.com/bgallie/filters/flate"
	"github.com/bgallie/filters/lines"
	"github.com/bgallie/filters/pem"
	"github.com/spf13/cobra"

	"github.com/bgallie/enigma/engine"
)

type decryptFlags struct {
	ioFlags
	mf  machineFlags
	cnt string
}

func newDecryptCmd(o *options, deprecated bool) *cobra.Command {
	f := &decryptFlags{}
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt a message",
		Long: `Decrypt a message with the rotor machine settings it was encrypted with.
PEM and ASCII85 armored input is recognised and its recorded character count
is used to restore the rotor positions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.decrypt(cmd, f)
		},
	}
	if deprecated {
		cmd.Use = "decode"
		cmd.Short = "Decode a message"
		cmd.Long = "[DEPRECATED] " + cmd.Long
		cmd.Deprecated = "use \"decrypt\" instead."
	}

	f.ioFlags.register(cmd)
	f.mf.register(cmd.Flags())
	cmd.Flags().StringVarP(&f.cnt, "count", "n", "", "initial character count for unarmored input")
	return cmd
}

func (o *options) decrypt(cmd *cobra.Command, f *decryptFlags) error {
	cfg, err := o.machineConfig(&f.mf)
	if err != nil {
		return err
	}

	fin, err := f.input(cmd)
	if err != nil {
		return err
	}
	defer fin.Close()
	fout, err := f.output(cmd)
	if err != nil {
		return err
	}
	defer fout.Close()

	bRdr := bufio.NewReader(fin)
	b, _ := bRdr.Peek(len(pemPrefix))

	var hdr armorHeader
	var aRdr *io.PipeReader
	switch {
	case string(b) == pemPrefix:
		var blck pem.Block
		aRdr, blck = pem.FromPem(bRdr)
		if hdr, err = parsePemHeaders(blck.Headers); err != nil {
			return err
		}
	case strings.HasPrefix(headerPrefix, string(b)) && len(b) == len(pemPrefix):
		line, err := bRdr.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading header line: %w", err)
		}
		if hdr, err = parseHeaderLine(line); err != nil {
			return err
		}
		aRdr = ascii85.FromASCII85(lines.CombineLines(bRdr))
	default:
		return o.decryptText(f, cfg, bRdr, fout)
	}

	if hdr.apiLevel != enigmaApiLevel {
		return fmt.Errorf("API level mismatch. FileApiLevel: %d, EnigmaApiLevel: %d", hdr.apiLevel, enigmaApiLevel)
	}
	if hdr.stepNonAlpha != cfg.StepOnNonAlphabetic {
		o.log.Verbose("Message was encrypted with stepNonAlpha=%t; using that.", hdr.stepNonAlpha)
		cfg.StepOnNonAlphabetic = hdr.stepNonAlpha
	}
	if f.cnt != "" {
		o.log.Warn("Ignoring the count argument - using the count from the message.")
	}
	m, err := o.buildMachine(cfg)
	if err != nil {
		return err
	}
	m.SetIndex(hdr.counter)
	if hdr.messageID != "" {
		o.log.Verbose("Message %s, count %d", hdr.messageID, hdr.counter)
	}

	if hdr.compression {
		aRdr = flate.FromFlate(aRdr)
	}
	_, err = io.Copy(fout, m.NewReader(aRdr))
	return err
}

// decryptText handles unarmored input, which carries no count of its own.
func (o *options) decryptText(f *decryptFlags, cfg engine.Config, rdr io.Reader, fout io.Writer) error {
	m, err := o.buildMachine(cfg)
	if err != nil {
		return err
	}
	if f.cnt != "" {
		iCnt, err := strconv.ParseInt(f.cnt, 10, 64)
		if err != nil || iCnt < 0 {
			return fmt.Errorf("incorrect initial count: [%s]", f.cnt)
		}
		m.SetIndex(iCnt)
	}
	if _, err = io.Copy(fout, m.NewReader(rdr)); err != nil {
		return err
	}
	if f.text != "" {
		_, err = io.WriteString(fout, "\n")
	}
	return err
}
