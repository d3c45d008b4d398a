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
	"math/rand/v2"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Reset policy of tick offset when wall clock moves to next millisecond
type Reset int

const (
	// ResetZero starts each millisecond from the first tick
	ResetZero Reset = iota
	// ResetRandom starts each millisecond at random tick, it spreads first
	// ticks of concurrent allocators within the millisecond
	ResetRandom
)

func (r Reset) String() string {
	if r == ResetRandom {
		return "random"
	}
	return "zero"
}

// ParseReset decodes policy name: zero or random
func ParseReset(s string) (Reset, error) {
	switch strings.ToLower(s) {
	case "", "zero":
		return ResetZero, nil
	case "random":
		return ResetRandom, nil
	default:
		return ResetZero, fmt.Errorf("tuid: unknown tick reset policy %q", s)
	}
}

// Skew policy defines behavior when wall clock goes backward
type Skew int

const (
	// SkewHold never regresses issued tick. The allocator keeps counting from
	// the last known millisecond and waits for wall clock to catch up.
	SkewHold Skew = iota
	// SkewFollow trusts lower wall clock immediately and keeps issuing
	// ascending ticks from there. Generator recovers from it by incrementing
	// clock sequence.
	SkewFollow
)

func (s Skew) String() string {
	if s == SkewFollow {
		return "follow"
	}
	return "hold"
}

// ParseSkew decodes policy name: hold or follow
func ParseSkew(s string) (Skew, error) {
	switch strings.ToLower(s) {
	case "", "hold":
		return SkewHold, nil
	case "follow":
		return SkewFollow, nil
	default:
		return SkewHold, fmt.Errorf("tuid: unknown clock skew policy %q", s)
	}
}

// Clock allocates strictly increasing 100ns ticks ⟨𝒕⟩ anchored to
// wall clock milliseconds.
type Clock struct {
	mu sync.Mutex

	wall    func() int64
	reset   Reset
	skew    Skew
	metrics *Metrics

	// current millisecond, offset of the next tick within it
	ms     int64
	offset uint64

	// last issued tick
	last   uint64
	issued bool
}

// ClockConfig option of tick allocator
type ClockConfig func(*Clock)

// WithWallClock configures a custom source of wall clock milliseconds
func WithWallClock(wall func() int64) ClockConfig {
	return func(clock *Clock) {
		clock.wall = wall
	}
}

// WithTickReset configures tick reset policy
func WithTickReset(reset Reset) ClockConfig {
	return func(clock *Clock) {
		clock.reset = reset
	}
}

// WithSkew configures backward clock jump policy
func WithSkew(skew Skew) ClockConfig {
	return func(clock *Clock) {
		clock.skew = skew
	}
}

// WithClockMetrics counts waits for next millisecond
func WithClockMetrics(metrics *Metrics) ClockConfig {
	return func(clock *Clock) {
		clock.metrics = metrics
	}
}

// NewClock creates instance of tick allocator
func NewClock(opts ...ClockConfig) *Clock {
	clock := &Clock{wall: unixmilli}

	for _, opt := range opts {
		opt(clock)
	}
	return clock
}

func unixmilli() int64 {
	return time.Now().UnixMilli()
}

// Tick returns next tick. It blocks when 10K ticks of current millisecond are
// exhausted until wall clock moves. The wait is bounded by the context.
func (clock *Clock) Tick(ctx context.Context) (uint64, error) {
	clock.mu.Lock()
	defer clock.mu.Unlock()

	clock.observe(clock.wall())

	if clock.offset >= ticksPerMs {
		if err := clock.await(ctx); err != nil {
			return 0, err
		}
	}

	tick := epochOffset + uint64(clock.ms)*ticksPerMs + clock.offset
	clock.offset++

	if clock.skew == SkewHold && clock.issued && tick <= clock.last {
		return 0, fmt.Errorf("%w: tick %d is not after %d", ErrInvariant, tick, clock.last)
	}

	clock.last, clock.issued = tick, true
	return tick, nil
}

// observe adopts wall clock value as new anchor if policy permits it
func (clock *Clock) observe(now int64) bool {
	switch {
	case now > clock.ms:
	case now < clock.ms && clock.skew == SkewFollow:
	default:
		return false
	}

	clock.ms = now
	clock.offset = 0
	if clock.reset == ResetRandom {
		clock.offset = rand.Uint64N(ticksPerMs)
	}
	return true
}

// await spins until wall clock leaves the exhausted millisecond
func (clock *Clock) await(ctx context.Context) error {
	clock.metrics.clockWait()

	for {
		if clock.observe(clock.wall()) && clock.offset < ticksPerMs {
			return nil
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrClockTimeout, err)
		}

		runtime.Gosched()
	}
}
