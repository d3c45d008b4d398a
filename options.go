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
	"crypto/rand"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Option of stores, generators and facades. Each component picks options it
// understands and ignores the rest.
type Option func(*options)

type options struct {
	name         string
	node         *Node
	clock        *Clock
	clockConfig  []ClockConfig
	random       io.Reader
	logger       zerolog.Logger
	metrics      *Metrics
	bufferSize   int
	batchTimeout time.Duration
}

func newOptions(opts ...Option) *options {
	opt := &options{
		name:         "default",
		random:       rand.Reader,
		logger:       zerolog.Nop(),
		bufferSize:   DefaultBufferSize,
		batchTimeout: DefaultBatchTimeout,
	}

	for _, f := range opts {
		f(opt)
	}
	return opt
}

// WithName labels the component in logs and metrics
func WithName(name string) Option {
	return func(opt *options) {
		opt.name = name
	}
}

// WithNode explicitly configures ⟨𝒍⟩ of generator
func WithNode(node Node) Option {
	return func(opt *options) {
		opt.node = &node
	}
}

// WithClock configures tick allocator of generator
func WithClock(clock *Clock) Option {
	return func(opt *options) {
		opt.clock = clock
	}
}

// WithClockConfig configures the clock the generator creates for itself
// when WithClock is not given. Each generator gets its own clock.
func WithClockConfig(cfgs ...ClockConfig) Option {
	return func(opt *options) {
		opt.clockConfig = append(opt.clockConfig, cfgs...)
	}
}

// WithRandom configures source of random clock sequences
func WithRandom(random io.Reader) Option {
	return func(opt *options) {
		opt.random = random
	}
}

// WithLogger configures structured logger
func WithLogger(logger zerolog.Logger) Option {
	return func(opt *options) {
		opt.logger = logger
	}
}

// WithMetrics configures metrics collectors
func WithMetrics(metrics *Metrics) Option {
	return func(opt *options) {
		opt.metrics = metrics
	}
}

// WithBufferSize configures capacity of Buffered queue and its refill batch
func WithBufferSize(size int) Option {
	return func(opt *options) {
		if size > 0 {
			opt.bufferSize = size
		}
	}
}

// WithBatchTimeout configures deadline of Buffered refill batch
func WithBatchTimeout(timeout time.Duration) Option {
	return func(opt *options) {
		if timeout > 0 {
			opt.batchTimeout = timeout
		}
	}
}
