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

/*

Package tuid implements RFC 4122 time-based (version 1) unique identifiers
that are safe to allocate from concurrent goroutines within a process and
from cooperating OS processes on the same host.

Identity Schema

The library emits standard 128-bit version 1 identifiers

    32 bit       16 bit   4   12 bit   2   14 bit          48 bit
  |------------|--------|---|--------|--|---------|------------------------|
    time_low    time_mid ver time_hi var clock seq           node

↣ ⟨𝒕⟩ is 60-bit timestamp, count of 100-nanosecond ticks since 15 Oct 1582.
The wall clock gives millisecond resolution only, the library allocates up
to 10K strictly increasing ticks within each millisecond.

↣ ⟨𝒔⟩ is 14-bit clock sequence. It is drawn from cryptographic random
generator when the allocator does not trust previous state and incremented
each time the clock appears not to advance relatively to the recorded state.

↣ ⟨𝒍⟩ is 48-bit node identity of the allocator. The spatial uniqueness of
identifiers across hosts is delegated entirely to the node identity.

State

The last emitted identifier is the state of allocator. The state is owned by
Store, which grants exclusive access to it:

↣ FileStore persists the state into a plain-text file guarded by OS-level
exclusive lock. Any process on the host using the same file observes the
state written by the previous one.

↣ ProcessStore keeps the state in memory. It is faster but the uniqueness is
process scoped.

A corrupted state file is never an error, the allocator recovers by
synthesizing a fresh clock sequence.

Generators

↣ Generator holds the store, derives a batch of identifiers and releases the
store within a single call.

↣ Buffered decouples caller latency from lock latency, it pre-fills bounded
queue in the background.

↣ Parallel shards requests over pool of generators with distinct nodes.

All blocking operations are bounded by context. Timeouts are recoverable
(ErrLockTimeout, ErrClockTimeout, ErrBufferTimeout), batches are all-or-nothing.

	reg, err := tuid.NewRegistry(tuid.DefaultConfig())
	if err != nil {
		// ...
	}
	defer reg.Close()

	gen, _ := reg.Get(tuid.SourceSystem)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := gen.Next(ctx)

*/
package tuid
