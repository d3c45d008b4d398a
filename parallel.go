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
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// DefaultConcurrency is size of parallel pool
const DefaultConcurrency = 4

/*

Parallel shards requests over fixed pool of sources in round-robin manner.
The uniqueness depends entirely on members never sharing node identity.
*/
type Parallel struct {
	pool   []Source
	cursor atomic.Uint64
}

var _ Source = (*Parallel)(nil)

// NewParallel creates pool of sources. Members that expose their node are
// checked for distinct ⟨𝒍⟩.
func NewParallel(members ...Source) (*Parallel, error) {
	if len(members) == 0 {
		return nil, errors.New("tuid: parallel pool is empty")
	}

	nodes := map[Node]struct{}{}
	for _, member := range members {
		gen, ok := member.(interface{ Node() Node })
		if !ok {
			continue
		}

		if _, has := nodes[gen.Node()]; has {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, gen.Node())
		}
		nodes[gen.Node()] = struct{}{}
	}

	return &Parallel{pool: members}, nil
}

// NewParallelPool creates pool of n generators, each with random node and
// own in-memory store.
func NewParallelPool(n int, opts ...Option) (*Parallel, error) {
	if n <= 0 {
		n = DefaultConcurrency
	}

	members := make([]Source, n)
	for i := range members {
		store := NewProcessStore(opts...)
		members[i] = NewGenerator(store, with(opts, WithNode(NodeRandom()))...)
	}

	return NewParallel(members...)
}

// Size of the pool
func (p *Parallel) Size() int { return len(p.pool) }

func (p *Parallel) member() Source {
	i := (p.cursor.Add(1) - 1) % uint64(len(p.pool))
	return p.pool[i]
}

// Next returns identifier from the next member of the pool
func (p *Parallel) Next(ctx context.Context) (uuid.UUID, error) {
	return p.member().Next(ctx)
}

// NextBatch returns batch from the next member of the pool
func (p *Parallel) NextBatch(ctx context.Context, n int) ([]uuid.UUID, error) {
	return p.member().NextBatch(ctx, n)
}
