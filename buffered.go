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
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultBufferSize is capacity of buffer and size of refill batch
	DefaultBufferSize = 1024

	// DefaultBatchTimeout bounds each refill batch
	DefaultBatchTimeout = time.Minute

	refillBackoffMax = 5 * time.Second
)

/*

Buffered pre-fills bounded queue from the source in the background. Callers
pop identifiers from the queue, the latency of state lock is hidden from them.
*/
type Buffered struct {
	name         string
	source       Source
	queue        chan uuid.UUID
	size         int
	batchTimeout time.Duration
	logger       zerolog.Logger
	metrics      *Metrics

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

var _ Source = (*Buffered)(nil)

// NewBuffered starts background refill of the queue from the source.
// Close must be called to stop it.
func NewBuffered(source Source, opts ...Option) *Buffered {
	opt := newOptions(opts...)
	ctx, cancel := context.WithCancel(context.Background())

	buf := &Buffered{
		name:         opt.name,
		source:       source,
		queue:        make(chan uuid.UUID, opt.bufferSize),
		size:         opt.bufferSize,
		batchTimeout: opt.batchTimeout,
		logger:       opt.logger.With().Str("component", "buffered").Str("source", opt.name).Logger(),
		metrics:      opt.metrics,
		cancel:       cancel,
		done:         make(chan struct{}),
	}

	go buf.refill(ctx)

	return buf
}

func (buf *Buffered) refill(ctx context.Context) {
	defer close(buf.done)

	failures := 0
	for ctx.Err() == nil {
		bctx, cancel := context.WithTimeout(ctx, buf.batchTimeout)
		seq, err := buf.source.NextBatch(bctx, buf.size)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}

			failures++
			buf.logger.Warn().Err(err).Int("failures", failures).Msg("refill failed")

			if !sleep(ctx, backoff(failures)) {
				return
			}
			continue
		}

		failures = 0
		for _, uid := range seq {
			select {
			case buf.queue <- uid:
				buf.metrics.depth(buf.name, len(buf.queue))
			case <-ctx.Done():
				return
			}
		}
	}
}

func backoff(failures int) time.Duration {
	delay := time.Duration(failures) * 100 * time.Millisecond
	if delay > refillBackoffMax {
		return refillBackoffMax
	}
	return delay
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Next pops identifier, it fails with ErrBufferTimeout if the context is
// done before the buffer is refilled.
func (buf *Buffered) Next(ctx context.Context) (uuid.UUID, error) {
	select {
	case uid := <-buf.queue:
		return uid, nil
	default:
	}

	select {
	case uid := <-buf.queue:
		return uid, nil
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("%w: %w", ErrBufferTimeout, ctx.Err())
	}
}

// NextBatch pops n identifiers. It returns nothing if the context is done
// before all of them are available.
func (buf *Buffered) NextBatch(ctx context.Context, n int) ([]uuid.UUID, error) {
	seq := make([]uuid.UUID, 0, max(n, 0))

	for len(seq) < n {
		uid, err := buf.Next(ctx)
		if err != nil {
			return nil, err
		}
		seq = append(seq, uid)
	}

	buf.metrics.depth(buf.name, len(buf.queue))
	return seq, nil
}

// Close stops the background refill and waits for it
func (buf *Buffered) Close() error {
	buf.once.Do(func() {
		buf.cancel()
		<-buf.done
	})
	return nil
}
