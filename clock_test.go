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

package tuid_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fogfish/it/v2"
	"github.com/fogfish/tuid"
)

const unixT0 = int64(1_700_000_000_000)

// wall clock moves 1 ms every step calls, jumps back by skew ms at call jumpAt
func wallClock(step, jumpAt int, skew int64) func() int64 {
	calls, ms := 0, unixT0
	return func() int64 {
		calls++
		if calls%step == 0 {
			ms++
		}
		if calls == jumpAt {
			ms -= skew
		}
		return ms
	}
}

func stalled() func() int64 {
	return func() int64 { return unixT0 }
}

func ticks(t *testing.T, clock *tuid.Clock, n int) []uint64 {
	t.Helper()

	seq := make([]uint64, n)
	for i := range seq {
		tick, err := clock.Tick(context.Background())
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		seq[i] = tick
	}
	return seq
}

func strictlyIncreasing(seq []uint64) error {
	for i := 1; i < len(seq); i++ {
		if seq[i] <= seq[i-1] {
			return fmt.Errorf("tick #%d %d is not after %d", i, seq[i], seq[i-1])
		}
	}
	return nil
}

func TestClockMonotonic(t *testing.T) {
	for _, reset := range []tuid.Reset{tuid.ResetZero, tuid.ResetRandom} {
		t.Run(reset.String(), func(t *testing.T) {
			// 15K calls per ms exhausts 10K ticks, jump back 5 ms in the middle
			clock := tuid.NewClock(
				tuid.WithWallClock(wallClock(15000, 1_000_000, 5)),
				tuid.WithTickReset(reset),
				tuid.WithSkew(tuid.SkewHold),
			)

			seq := ticks(t, clock, 2_000_000)

			it.Then(t).Should(
				it.Nil(strictlyIncreasing(seq)),
			)
		})
	}
}

func TestClockEpoch(t *testing.T) {
	clock := tuid.NewClock(tuid.WithWallClock(stalled()))
	seq := ticks(t, clock, 3)

	t0 := uint64(0x01b21dd213814000) + uint64(unixT0)*10000

	it.Then(t).Should(
		it.Equal(seq[0], t0),
		it.Equal(seq[1], t0+1),
		it.Equal(seq[2], t0+2),
	)
}

func TestClockResetZero(t *testing.T) {
	ms := unixT0
	clock := tuid.NewClock(
		tuid.WithWallClock(func() int64 { return ms }),
		tuid.WithTickReset(tuid.ResetZero),
	)

	a := ticks(t, clock, 5)
	ms++
	b := ticks(t, clock, 1)

	it.Then(t).Should(
		it.Equal(b[0]-a[0], 10000),
	)
}

func TestClockResetRandom(t *testing.T) {
	ms := unixT0
	clock := tuid.NewClock(
		tuid.WithWallClock(func() int64 { return ms }),
		tuid.WithTickReset(tuid.ResetRandom),
	)

	// probability that 16 random offsets are zero is negligible
	offsets := map[uint64]struct{}{}
	for i := 0; i < 16; i++ {
		ms++
		tick := ticks(t, clock, 1)[0]
		base := uint64(0x01b21dd213814000) + uint64(ms)*10000
		it.Then(t).Should(
			it.True(tick >= base && tick < base+10000),
		)
		offsets[tick-base] = struct{}{}
	}

	it.Then(t).Should(
		it.True(len(offsets) > 1),
	)
}

func TestClockExhausted(t *testing.T) {
	clock := tuid.NewClock(tuid.WithWallClock(stalled()))
	seq := ticks(t, clock, 10000)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := clock.Tick(ctx)

	it.Then(t).Should(
		it.Nil(strictlyIncreasing(seq)),
		it.True(errors.Is(err, tuid.ErrClockTimeout)),
	)
}

func TestClockSkewHold(t *testing.T) {
	ms := unixT0
	clock := tuid.NewClock(
		tuid.WithWallClock(func() int64 { return ms }),
		tuid.WithSkew(tuid.SkewHold),
	)

	a := ticks(t, clock, 1)
	ms -= 1000
	b := ticks(t, clock, 1)

	it.Then(t).Should(
		it.Equal(b[0], a[0]+1),
	)
}

func TestClockSkewFollow(t *testing.T) {
	ms := unixT0
	clock := tuid.NewClock(
		tuid.WithWallClock(func() int64 { return ms }),
		tuid.WithSkew(tuid.SkewFollow),
	)

	a := ticks(t, clock, 1)
	ms -= 1000
	b := ticks(t, clock, 3)

	it.Then(t).Should(
		it.Equal(a[0]-b[0], 1000*10000),
		it.Nil(strictlyIncreasing(b)),
	)
}

func TestClockUnix(t *testing.T) {
	clock := tuid.NewClock()
	seq := ticks(t, clock, 50000)

	it.Then(t).Should(
		it.Nil(strictlyIncreasing(seq)),
	)
}

func TestParsePolicy(t *testing.T) {
	random, errR := tuid.ParseReset("random")
	follow, errS := tuid.ParseSkew("follow")
	_, errX := tuid.ParseSkew("sometimes")

	it.Then(t).Should(
		it.Nil(errR),
		it.Nil(errS),
		it.Equal(random, tuid.ResetRandom),
		it.Equal(follow, tuid.SkewFollow),
	)

	it.Then(t).ShouldNot(
		it.Nil(errX),
	)
}
