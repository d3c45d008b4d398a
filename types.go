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
	"context"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
)

// Node is spatially unique identifier ⟨𝒍⟩ of the allocator.
type Node [6]byte

// Bytes returns copy of node identity
func (node Node) Bytes() []byte { return append([]byte(nil), node[:]...) }

func (node Node) String() string { return hex.EncodeToString(node[:]) }

// Snapshot is the state of the last emitted identifier.
type Snapshot struct {
	// ⟨𝒕⟩ 60-bit count of 100ns ticks since 15 Oct 1582
	Time uint64
	// ⟨𝒔⟩ 14-bit clock sequence
	Seq uint16
	// ⟨𝒍⟩ node identity
	Node Node
}

// Source of unique identifiers
type Source interface {
	// Next returns single identifier
	Next(ctx context.Context) (uuid.UUID, error)
	// NextBatch returns exactly n distinct identifiers or nothing
	NextBatch(ctx context.Context, n int) ([]uuid.UUID, error)
}

// Lock is exclusive ownership of the state granted by Store.
type Lock interface {
	// Snapshot recovered by Store, false if state is absent
	Snapshot() (Snapshot, bool)
	// Dirty is true if previous state was not trusted
	Dirty() bool
}

// Store grants exclusive access to the state of allocator.
// The lock returned by Hold must be released exactly once.
type Store interface {
	Hold(ctx context.Context) (Lock, error)
	Release(lock Lock, snapshot *Snapshot) error
}

// Errors
var (
	// ErrLockTimeout is recoverable, the state is not acquired before deadline
	ErrLockTimeout = errors.New("tuid: state lock timeout")

	// ErrClockTimeout is recoverable, the tick is not allocated before deadline
	ErrClockTimeout = errors.New("tuid: clock tick timeout")

	// ErrBufferTimeout is recoverable, buffer is not refilled before deadline
	ErrBufferTimeout = errors.New("tuid: buffer timeout")

	// ErrStateCorrupt is reported by decoder, stores recover from it
	ErrStateCorrupt = errors.New("tuid: state is corrupted")

	// ErrStorage is fatal, the state file cannot be opened or locked
	ErrStorage = errors.New("tuid: state storage failure")

	// ErrInvariant is fatal, the allocated ticks are not monotonic
	ErrInvariant = errors.New("tuid: monotonic invariant violated")

	ErrLockReleased  = errors.New("tuid: lock is already released")
	ErrForeignLock   = errors.New("tuid: lock does not belong to store")
	ErrDuplicateNode = errors.New("tuid: duplicate node in pool")
	ErrNotTimeBased  = errors.New("tuid: not a time-based uuid")
	ErrUnknownSource = errors.New("tuid: unknown source")
)
