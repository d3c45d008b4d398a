/*

  Copyright 2012 Dmitry Kolesnikov, All Rights Reserved

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

package tuid

import (
	"bufio"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

/*

State record is plain-text, four lines

  UUID State v1.0
  Generated: 2026-10-15T10:00:00Z
  Hash: 2c3a...
  UUID: 9af46100-c10d-11e4-9c16-255acb2167b8

The hash is sha1 of the last line. The "Generated" line is informational.
The absent state is encoded as "UUID: null".
*/
const (
	stateHeader    = "UUID State v1.0"
	stateGenerated = "Generated: "
	stateHash      = "Hash: "
	stateUUID      = "UUID: "
	stateNull      = "null"
)

// EncodeState writes state record, nil snapshot is written as absent state
func EncodeState(w io.Writer, snapshot *Snapshot, at time.Time) error {
	payload := stateUUID + stateNull
	if snapshot != nil {
		payload = stateUUID + snapshot.UUID().String()
	}

	hash := sha1.Sum([]byte(payload))

	_, err := fmt.Fprintf(w, "%s\n%s%s\n%s%s\n%s\n",
		stateHeader,
		stateGenerated, at.UTC().Format(time.RFC3339Nano),
		stateHash, hex.EncodeToString(hash[:]),
		payload,
	)
	return err
}

// DecodeState reads state record. It returns nil snapshot for empty input
// and for absent state. Any malformed record fails with ErrStateCorrupt.
func DecodeState(r io.Reader) (*Snapshot, error) {
	scanner := bufio.NewScanner(r)

	lines := make([]string, 0, 4)
	for len(lines) < 4 && scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}

	if len(lines) == 0 {
		return nil, nil
	}

	if len(lines) < 4 {
		return nil, fmt.Errorf("%w: truncated record", ErrStateCorrupt)
	}

	header, generated, hashLine, payload := lines[0], lines[1], lines[2], lines[3]

	if header != stateHeader {
		return nil, fmt.Errorf("%w: unknown header", ErrStateCorrupt)
	}

	if !strings.HasPrefix(generated, stateGenerated) {
		return nil, fmt.Errorf("%w: missing generated at", ErrStateCorrupt)
	}

	if !strings.HasPrefix(hashLine, stateHash) || !strings.HasPrefix(payload, stateUUID) {
		return nil, fmt.Errorf("%w: missing hash or uuid", ErrStateCorrupt)
	}

	hash := sha1.Sum([]byte(payload))
	if hex.EncodeToString(hash[:]) != strings.TrimPrefix(hashLine, stateHash) {
		return nil, fmt.Errorf("%w: hash mismatch", ErrStateCorrupt)
	}

	value := strings.TrimPrefix(payload, stateUUID)
	if value == stateNull {
		return nil, nil
	}

	uid, err := uuid.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}

	snapshot, err := FromUUID(uid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}

	return &snapshot, nil
}
