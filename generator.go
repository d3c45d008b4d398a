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
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

/*

Generator holds the store, derives identifiers and releases the store within
a single call. Latency of the call is dominated by the lock acquisition.
*/
type Generator struct {
	name    string
	store   Store
	clock   *Clock
	node    Node
	random  io.Reader
	logger  zerolog.Logger
	metrics *Metrics
}

var _ Source = (*Generator)(nil)

// NewGenerator creates generator over the store. The node is random unless
// configured with WithNode.
func NewGenerator(store Store, opts ...Option) *Generator {
	opt := newOptions(opts...)

	node := NodeRandom()
	if opt.node != nil {
		node = *opt.node
	}

	clock := opt.clock
	if clock == nil {
		cfgs := opt.clockConfig[:len(opt.clockConfig):len(opt.clockConfig)]
		clock = NewClock(append(cfgs, WithClockMetrics(opt.metrics))...)
	}

	return &Generator{
		name:    opt.name,
		store:   store,
		clock:   clock,
		node:    node,
		random:  opt.random,
		logger:  opt.logger.With().Str("component", "generator").Str("source", opt.name).Logger(),
		metrics: opt.metrics,
	}
}

// Node returns ⟨𝒍⟩ of generator
func (gen *Generator) Node() Node { return gen.node }

// Next returns single identifier
func (gen *Generator) Next(ctx context.Context) (uuid.UUID, error) {
	seq, err := gen.NextBatch(ctx, 1)
	if err != nil {
		return uuid.Nil, err
	}

	return seq[0], nil
}

// NextBatch derives n identifiers under the single lock. The batch is
// all-or-nothing, any failure discards identifiers derived so far.
func (gen *Generator) NextBatch(ctx context.Context, n int) (seq []uuid.UUID, err error) {
	if n <= 0 {
		return []uuid.UUID{}, nil
	}

	lock, err := gen.store.Hold(ctx)
	if err != nil {
		return nil, err
	}

	var last *Snapshot
	if snapshot, ok := lock.Snapshot(); ok {
		last = &snapshot
	}

	defer func() {
		if rerr := gen.store.Release(lock, last); rerr != nil {
			gen.logger.Error().Err(rerr).Msg("state release failed")
			seq, err = nil, errors.Join(err, rerr)
		}
	}()

	batch := make([]uuid.UUID, n)
	for i := range batch {
		tick, err := gen.clock.Tick(ctx)
		if err != nil {
			return nil, err
		}

		next, err := gen.derive(last, tick)
		if err != nil {
			gen.logger.Error().Err(err).Msg("identifier derivation failed")
			return nil, err
		}

		last = &next
		batch[i] = next.UUID()
	}

	gen.metrics.generated(gen.name, n)
	return batch, nil
}

// derive the next snapshot from previous one
func (gen *Generator) derive(prev *Snapshot, tick uint64) (Snapshot, error) {
	switch {
	case prev == nil || prev.Node != gen.node:
		seq, err := gen.clockSeq()
		if err != nil {
			return Snapshot{}, err
		}

		gen.logger.Debug().Uint16("seq", seq).Msg("new clock sequence")
		return Snapshot{Time: tick, Seq: seq, Node: gen.node}, nil

	case prev.Time >= tick:
		return prev.bump(tick), nil

	default:
		return prev.advance(tick)
	}
}

func (gen *Generator) clockSeq() (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(gen.random, b[:]); err != nil {
		return 0, fmt.Errorf("tuid: clock sequence: %w", err)
	}

	return binary.BigEndian.Uint16(b[:]) & maskSeq, nil
}
