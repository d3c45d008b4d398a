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
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"os"
	"runtime"
	"sync"
)

// EnvNodeID defines node identity as a string
const EnvNodeID = "CONFIG_TUID_NODE_ID"

// Node identities are not IEEE 802 addresses, RFC 4122 §4.5 requires the
// multicast bit to be set.
func multicast(node Node) Node {
	node[0] |= 0x01
	return node
}

// NodeRandom allocates ⟨𝒍⟩ using cryptographic random generator
func NodeRandom() Node {
	var node Node
	if _, err := io.ReadFull(rand.Reader, node[:]); err != nil {
		panic(err.Error())
	}
	return multicast(node)
}

// NodeFromString derives ⟨𝒍⟩ from an application provided value
func NodeFromString(id string) Node {
	hash := sha256.Sum256([]byte(id))

	var node Node
	copy(node[:], hash[:])
	return multicast(node)
}

// NodeFromEnv derives ⟨𝒍⟩ from env variable.
//
// CONFIG_TUID_NODE_ID - defines location id as a string
func NodeFromEnv() Node {
	return NodeFromString(os.Getenv(EnvNodeID))
}

// ParseNode decodes ⟨𝒍⟩ from 12 hex digits
func ParseNode(s string) (Node, error) {
	var node Node

	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(node) {
		return node, fmt.Errorf("tuid: malformed node %q", s)
	}

	copy(node[:], b)
	return node, nil
}

// NodeFromHost derives ⟨𝒍⟩ from host fingerprint: hostname, hardware
// addresses of network interfaces and working directory. The value is
// stable for the host.
func NodeFromHost() Node {
	h := md5.New()

	host, _ := os.Hostname()
	fmt.Fprintf(h, "host=%s;os=%s;arch=%s;", host, runtime.GOOS, runtime.GOARCH)

	if ifaces, err := net.Interfaces(); err == nil {
		for _, iface := range ifaces {
			if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
				continue
			}
			fmt.Fprintf(h, "hwaddr=%s;", iface.HardwareAddr)
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		fmt.Fprintf(h, "cwd=%s;", cwd)
	}

	return final(h.Sum(nil))
}

// salt of the process, it separates processes that reuse pid
var processSalt = sync.OnceValue(func() []byte {
	salt := make([]byte, 8)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		panic(err.Error())
	}
	return salt
})

// NodeFromProcess derives ⟨𝒍⟩ of current process from base node. The value is
// stable for the process lifetime.
func NodeFromProcess(base Node) Node {
	h := md5.New()
	h.Write(base[:])

	var pid [8]byte
	binary.BigEndian.PutUint64(pid[:], uint64(os.Getpid()))
	h.Write(pid[:])
	h.Write(processSalt())

	if exe, err := os.Executable(); err == nil {
		io.WriteString(h, exe)
	}

	return final(h.Sum(nil))
}

func final(hash []byte) Node {
	var node Node
	copy(node[:], hash[len(hash)-len(node):])
	return multicast(node)
}
