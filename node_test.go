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
	"testing"

	"github.com/fogfish/it/v2"
	"github.com/fogfish/tuid"
)

func multicast(n tuid.Node) bool { return n[0]&0x01 == 0x01 }

func TestNodeRandom(t *testing.T) {
	a := tuid.NodeRandom()
	b := tuid.NodeRandom()

	it.Then(t).Should(
		it.True(multicast(a)),
		it.True(multicast(b)),
	)

	it.Then(t).ShouldNot(
		it.Equal(a, b),
	)
}

func TestNodeFromEnv(t *testing.T) {
	t.Setenv(tuid.EnvNodeID, "abc@go")
	a := tuid.NodeFromEnv()
	b := tuid.NodeFromString("abc@go")

	it.Then(t).Should(
		it.Equal(a, b),
		it.True(multicast(a)),
	)

	it.Then(t).ShouldNot(
		it.Equal(a, tuid.NodeFromString("xyz@go")),
	)
}

func TestNodeFromHost(t *testing.T) {
	host := tuid.NodeFromHost()
	proc := tuid.NodeFromProcess(host)

	it.Then(t).Should(
		it.Equal(host, tuid.NodeFromHost()),
		it.Equal(proc, tuid.NodeFromProcess(host)),
		it.True(multicast(host)),
		it.True(multicast(proc)),
	)

	it.Then(t).ShouldNot(
		it.Equal(host, proc),
	)
}
