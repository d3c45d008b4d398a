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
	"sync"
	"testing"

	"github.com/fogfish/it/v2"
	"github.com/fogfish/tuid"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

func constant(uid uuid.UUID) stub {
	return func(_ context.Context, n int) ([]uuid.UUID, error) {
		seq := make([]uuid.UUID, n)
		for i := range seq {
			seq[i] = uid
		}
		return seq, nil
	}
}

func TestParallel(t *testing.T) {
	pool, err := tuid.NewParallelPool(4)
	it.Then(t).Should(it.Nil(err))

	var (
		mu  sync.Mutex
		all []uuid.UUID
	)

	g, ctx := errgroup.WithContext(context.Background())
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 100; i++ {
				seq, err := pool.NextBatch(ctx, 10)
				if err != nil {
					return err
				}

				uid, err := pool.Next(ctx)
				if err != nil {
					return err
				}

				mu.Lock()
				all = append(all, seq...)
				all = append(all, uid)
				mu.Unlock()
			}
			return nil
		})
	}

	it.Then(t).Should(
		it.Nil(g.Wait()),
		it.Equal(len(all), 8*100*11),
		it.True(distinct(all)),
		it.True(timeBased(all)),
		it.Equal(pool.Size(), 4),
	)
}

func TestParallelRoundRobin(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	pool, err := tuid.NewParallel(constant(a), constant(b), constant(c))
	it.Then(t).Should(it.Nil(err))

	seq := make([]uuid.UUID, 0, 4)
	for i := 0; i < 4; i++ {
		uid, err := pool.Next(context.Background())
		it.Then(t).Should(it.Nil(err))
		seq = append(seq, uid)
	}

	batch, err := pool.NextBatch(context.Background(), 2)

	it.Then(t).Should(
		it.Nil(err),
		it.Equal(seq[0], a),
		it.Equal(seq[1], b),
		it.Equal(seq[2], c),
		it.Equal(seq[3], a),
		it.Equal(batch[0], b),
		it.Equal(batch[1], b),
	)
}

func TestParallelDuplicateNode(t *testing.T) {
	a := tuid.NewGenerator(tuid.NewProcessStore(), tuid.WithNode(node))
	b := tuid.NewGenerator(tuid.NewProcessStore(), tuid.WithNode(node))

	_, err := tuid.NewParallel(a, b)

	it.Then(t).Should(
		it.True(errors.Is(err, tuid.ErrDuplicateNode)),
	)
}

func TestParallelEmpty(t *testing.T) {
	_, err := tuid.NewParallel()
	pool, errD := tuid.NewParallelPool(0)

	it.Then(t).Should(
		it.Nil(errD),
		it.Equal(pool.Size(), tuid.DefaultConcurrency),
	)

	it.Then(t).ShouldNot(
		it.Nil(err),
	)
}
