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
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// 100ns ticks per millisecond
	ticksPerMs = 10000

	// ticks between 15 Oct 1582 and 1 Jan 1970
	epochOffset = 0x01b21dd213814000

	maskTime = 0x0fffffffffffffff
	maskSeq  = 0x3fff
)

/*

UUID encodes snapshot as version 1 identifier.

    32 bit       16 bit   4   12 bit   2   14 bit          48 bit
  |------------|--------|---|--------|--|---------|------------------------|
    time_low    time_mid ver time_hi var clock seq           node
  ^                                    ^                                   ^
  0                                    64                                128

*/
func (s Snapshot) UUID() (uid uuid.UUID) {
	t := s.Time & maskTime

	binary.BigEndian.PutUint32(uid[0:4], uint32(t))
	binary.BigEndian.PutUint16(uid[4:6], uint16(t>>32))
	binary.BigEndian.PutUint16(uid[6:8], uint16(t>>48)&0x0fff|0x1000)
	binary.BigEndian.PutUint16(uid[8:10], s.Seq&maskSeq|0x8000)
	copy(uid[10:], s.Node[:])

	return
}

// bump increments clock sequence, used when clock has not advanced
func (s Snapshot) bump(tick uint64) Snapshot {
	return Snapshot{
		Time: tick,
		Seq:  (s.Seq + 1) & maskSeq,
		Node: s.Node,
	}
}

// advance moves time forward, tick must be greater than recorded one
func (s Snapshot) advance(tick uint64) (Snapshot, error) {
	if tick <= s.Time {
		return s, fmt.Errorf("%w: tick %d is not after %d", ErrInvariant, tick, s.Time)
	}

	return Snapshot{Time: tick, Seq: s.Seq, Node: s.Node}, nil
}

/*

FromUUID decodes version 1 identifier to snapshot
*/
func FromUUID(uid uuid.UUID) (Snapshot, error) {
	if !IsTimeBased(uid) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotTimeBased, uid)
	}

	return Snapshot{Time: Time(uid), Seq: Seq(uid), Node: Location(uid)}, nil
}

// IsTimeBased checks version and variant bits
func IsTimeBased(uid uuid.UUID) bool {
	return uid.Version() == 1 && uid.Variant() == uuid.RFC4122
}

/*******************************************************************************

Lenses of version 1 identifier

*******************************************************************************/

// Time returns ⟨𝒕⟩ timestamp fraction, count of 100ns ticks since 15 Oct 1582
func Time(uid uuid.UUID) uint64 {
	return uint64(uid.Time()) & maskTime
}

// Seq returns ⟨𝒔⟩ clock sequence
func Seq(uid uuid.UUID) uint16 {
	return uint16(uid.ClockSequence())
}

// Location returns ⟨𝒍⟩ node fraction
func Location(uid uuid.UUID) (node Node) {
	copy(node[:], uid[10:])
	return
}

// Unix converts ⟨𝒕⟩ timestamp fraction to wall clock time
func Unix(uid uuid.UUID) time.Time {
	sec, nsec := uid.Time().UnixTime()
	return time.Unix(sec, nsec)
}
