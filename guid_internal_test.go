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
	"errors"
	"testing"
	"time"

	"github.com/fogfish/it/v2"
)

func TestAdvance(t *testing.T) {
	s := Snapshot{Time: 1000, Seq: 9, Node: Node{1}}

	a, errA := s.advance(1001)
	_, errB := s.advance(1000)
	_, errC := s.advance(999)

	it.Then(t).Should(
		it.Nil(errA),
		it.Equal(a, Snapshot{Time: 1001, Seq: 9, Node: Node{1}}),
		it.True(errors.Is(errB, ErrInvariant)),
		it.True(errors.Is(errC, ErrInvariant)),
	)
}

func TestBump(t *testing.T) {
	s := Snapshot{Time: 1000, Seq: 9, Node: Node{1}}
	w := Snapshot{Time: 1000, Seq: maskSeq, Node: Node{1}}

	it.Then(t).Should(
		it.Equal(s.bump(900), Snapshot{Time: 900, Seq: 10, Node: Node{1}}),
		it.Equal(w.bump(1000), Snapshot{Time: 1000, Seq: 0, Node: Node{1}}),
	)
}

func TestBackoff(t *testing.T) {
	it.Then(t).Should(
		it.Equal(backoff(1), 100*time.Millisecond),
		it.Equal(backoff(1000), refillBackoffMax),
	)
}
