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
	"fmt"
	"io"
	"sort"
	"sync"
)

// Names of sources built by registry
const (
	// SourceSystem is buffered generator over the state file, host scoped
	SourceSystem = "system"
	// SourceProcess is generator over in-memory state, process scoped
	SourceProcess = "process"
	// SourceParallel is pool of in-memory generators with distinct nodes
	SourceParallel = "parallel"
)

// Registry of named sources. The application builds it once at startup and
// passes it to the callers.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
	closers []io.Closer
}

// NewRegistry builds system, process and parallel sources
func NewRegistry(cfg Config, opts ...Option) (*Registry, error) {
	host := NodeFromHost()
	if cfg.Node != nil {
		host = *cfg.Node
	}

	reg := &Registry{sources: map[string]Source{}}

	system := NewGenerator(
		NewFileStore(cfg.StateFile, opts...),
		with(opts,
			WithName(SourceSystem),
			WithNode(host),
			WithClockConfig(cfg.clockConfig()...),
		)...,
	)
	buffered := NewBuffered(system,
		with(opts,
			WithName(SourceSystem),
			WithBufferSize(cfg.BufferSize),
		)...,
	)
	reg.Register(SourceSystem, buffered)
	reg.closers = append(reg.closers, buffered)

	process := NewGenerator(
		NewProcessStore(opts...),
		with(opts,
			WithName(SourceProcess),
			WithNode(NodeFromProcess(host)),
			WithClockConfig(cfg.clockConfig()...),
		)...,
	)
	reg.Register(SourceProcess, process)

	parallel, err := NewParallelPool(cfg.Concurrency,
		with(opts,
			WithName(SourceParallel),
			WithClockConfig(cfg.clockConfig()...),
		)...,
	)
	if err != nil {
		reg.Close()
		return nil, err
	}
	reg.Register(SourceParallel, parallel)

	return reg, nil
}

func with(opts []Option, extra ...Option) []Option {
	return append(opts[:len(opts):len(opts)], extra...)
}

// Register adds or replaces named source
func (reg *Registry) Register(name string, source Source) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	reg.sources[name] = source
}

// Get looks up source by name
func (reg *Registry) Get(name string) (Source, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	source, has := reg.sources[name]
	if !has {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}
	return source, nil
}

// Names of registered sources
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	names := make([]string, 0, len(reg.sources))
	for name := range reg.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close stops background workers of sources
func (reg *Registry) Close() error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	errs := make([]error, 0, len(reg.closers))
	for _, closer := range reg.closers {
		errs = append(errs, closer.Close())
	}
	reg.closers = nil

	return errors.Join(errs...)
}
