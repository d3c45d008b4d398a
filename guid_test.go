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
	"errors"
	"testing"
	"time"

	"github.com/fogfish/it/v2"
	"github.com/fogfish/tuid"
	"github.com/google/uuid"
)

var node = tuid.Node{0x01, 0x23, 0x45, 0x67, 0x89, 0xab}

func TestLayout(t *testing.T) {
	s := tuid.Snapshot{Time: 0x1e4c10d9af46100, Seq: 0x1c16, Node: node}
	uid := s.UUID()

	it.Then(t).Should(
		it.Equal(uid.String(), "9af46100-c10d-11e4-9c16-0123456789ab"),
		it.Equal(uid.Version(), 1),
		it.Equal(uid.Variant(), uuid.RFC4122),
		it.True(tuid.IsTimeBased(uid)),
		it.Equal(tuid.Time(uid), s.Time),
		it.Equal(tuid.Seq(uid), s.Seq),
		it.Equal(tuid.Location(uid), node),
	)
}

func TestLayoutMasks(t *testing.T) {
	s := tuid.Snapshot{Time: 0xffffffffffffffff, Seq: 0xffff, Node: node}
	uid := s.UUID()

	it.Then(t).Should(
		it.Equal(uid.Version(), 1),
		it.Equal(uid.Variant(), uuid.RFC4122),
		it.Equal(tuid.Time(uid), 0x0fffffffffffffff),
		it.Equal(tuid.Seq(uid), 0x3fff),
	)
}

func TestFromUUID(t *testing.T) {
	s := tuid.Snapshot{Time: 0x1e4c10d9af46100, Seq: 42, Node: node}

	v1, err := tuid.FromUUID(s.UUID())
	it.Then(t).Should(
		it.Nil(err),
		it.Equal(v1, s),
	)

	_, err = tuid.FromUUID(uuid.New())
	it.Then(t).Should(
		it.True(errors.Is(err, tuid.ErrNotTimeBased)),
	)
}

func TestUnix(t *testing.T) {
	at := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	ticks := uint64(0x01b21dd213814000) + uint64(at.UnixMilli())*10000

	uid := tuid.Snapshot{Time: ticks, Node: node}.UUID()

	it.Then(t).Should(
		it.True(tuid.Unix(uid).Equal(at)),
	)
}

func TestNodeString(t *testing.T) {
	parsed, err := tuid.ParseNode(node.String())

	it.Then(t).Should(
		it.Nil(err),
		it.Equal(node.String(), "0123456789ab"),
		it.Equal(parsed, node),
		it.Equal(len(node.Bytes()), 6),
	)

	_, err = tuid.ParseNode("0123")
	it.Then(t).ShouldNot(
		it.Nil(err),
	)
}
