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
	"strconv"
	"strings"

	"github.com/bgallie/enigma/engine"
)

const (
	// enigmaApiLevel changes whenever the armored format or the engine's
	// output for a given configuration changes.
	enigmaApiLevel = 1
	pemType        = "ENIGMA Encrypted Message"
	headerPrefix   = "+ENIGMA"
	pemPrefix      = "-----"
)

// armorHeader is what an armored message records about how it was made.
type armorHeader struct {
	apiLevel     int
	compression  bool
	counter      int64
	stepNonAlpha bool
	messageID    string
}

// headerLine formats the first line of an ASCII85 armored message:
//
//	+ENIGMA|<api>|a|<compression>|<counter>|<stepNonAlpha>
func (h armorHeader) headerLine() string {
	return fmt.Sprintf("%s|%d|a|%t|%d|%t\n", headerPrefix, h.apiLevel, h.compression, h.counter, h.stepNonAlpha)
}

func parseHeaderLine(line string) (armorHeader, error) {
	var h armorHeader
	flds := strings.Split(strings.TrimRight(line, "\r\n"), "|")
	if len(flds) != 6 || flds[0] != headerPrefix || flds[2] != "a" {
		return h, fmt.Errorf("malformed header line: %q", line)
	}
	var err error
	if h.apiLevel, err = strconv.Atoi(flds[1]); err != nil {
		return h, fmt.Errorf("malformed api level %q: %w", flds[1], err)
	}
	h.compression = flds[3] == "true"
	if h.counter, err = strconv.ParseInt(flds[4], 10, 64); err != nil {
		return h, fmt.Errorf("malformed counter %q: %w", flds[4], err)
	}
	if h.counter < 0 {
		return h, fmt.Errorf("negative counter %d", h.counter)
	}
	h.stepNonAlpha = flds[5] == "true"
	return h, nil
}

func (h armorHeader) pemHeaders() map[string]string {
	hdrs := map[string]string{
		"ApiLevel":     strconv.Itoa(h.apiLevel),
		"Compression":  strconv.FormatBool(h.compression),
		"Counter":      strconv.FormatInt(h.counter, 10),
		"StepNonAlpha": strconv.FormatBool(h.stepNonAlpha),
	}
	if h.messageID != "" {
		hdrs["MessageId"] = h.messageID
	}
	return hdrs
}

func parsePemHeaders(hdrs map[string]string) (armorHeader, error) {
	h := armorHeader{apiLevel: -1, stepNonAlpha: true, messageID: hdrs["MessageId"]}
	var err error
	if v, ok := hdrs["ApiLevel"]; ok {
		if h.apiLevel, err = strconv.Atoi(v); err != nil {
			return h, fmt.Errorf("malformed ApiLevel %q: %w", v, err)
		}
	}
	if v, ok := hdrs["Counter"]; ok {
		if h.counter, err = strconv.ParseInt(v, 10, 64); err != nil {
			return h, fmt.Errorf("malformed Counter %q: %w", v, err)
		}
		if h.counter < 0 {
			return h, fmt.Errorf("negative Counter %d", h.counter)
		}
	}
	h.compression = hdrs["Compression"] == "true"
	if v, ok := hdrs["StepNonAlpha"]; ok {
		h.stepNonAlpha = v == "true"
	}
	return h, nil
}

// cipherHelper runs the text read from rdr through the machine and makes the
// result available on the returned PipeReader.
func cipherHelper(rdr io.Reader, m *engine.Machine) *io.PipeReader {
	rRdr, rWrtr := io.Pipe()
	go func() {
		_, err := io.Copy(rWrtr, m.NewReader(rdr))
		rWrtr.CloseWithError(err)
	}()
	return rRdr
}
