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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fogfish/tuid/internal/flock"
	"github.com/rs/zerolog"
)

// DefaultStateFile is the name of state file in the OS temporary directory
const DefaultStateFile = "uuid.state"

// backoff of lock acquisition is attempt × backoffStep, capped by backoffMax
const (
	backoffStep = 10 * time.Millisecond
	backoffMax  = 250 * time.Millisecond
)

/*******************************************************************************

FileStore

*******************************************************************************/

// FileStore persists the state into the file guarded by OS-level exclusive
// lock. It is the only mechanism that excludes concurrent processes.
type FileStore struct {
	path    string
	logger  zerolog.Logger
	metrics *Metrics
}

var _ Store = (*FileStore)(nil)

type fileLock struct {
	store    *FileStore
	file     *os.File
	snapshot *Snapshot
	dirty    bool
	released atomic.Bool
}

func (lock *fileLock) Snapshot() (Snapshot, bool) {
	if lock.snapshot == nil {
		return Snapshot{}, false
	}
	return *lock.snapshot, true
}

func (lock *fileLock) Dirty() bool { return lock.dirty }

// NewFileStore creates store at the path, empty path stands for
// DefaultStateFile in the OS temporary directory.
func NewFileStore(path string, opts ...Option) *FileStore {
	if path == "" {
		path = filepath.Join(os.TempDir(), DefaultStateFile)
	}

	opt := newOptions(opts...)
	return &FileStore{
		path:    path,
		logger:  opt.logger.With().Str("component", "filestore").Str("path", path).Logger(),
		metrics: opt.metrics,
	}
}

// Path of the state file
func (store *FileStore) Path() string { return store.path }

// Hold acquires exclusive lock on the state file and reads the state. It
// retries with increasing backoff until the context is done, then it fails
// with ErrLockTimeout. The file that cannot be opened is ErrStorage.
func (store *FileStore) Hold(ctx context.Context) (Lock, error) {
	started := time.Now()

	file, err := os.OpenFile(store.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		store.logger.Error().Err(err).Msg("state file could not be opened")
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := store.acquire(ctx, file); err != nil {
		file.Close()
		return nil, err
	}
	store.metrics.held(time.Since(started))

	lock := &fileLock{store: store, file: file}

	lock.snapshot, err = DecodeState(file)
	if err != nil {
		lock.dirty = true
		store.metrics.recovered()
		store.logger.Warn().Err(err).Msg("state is not trusted, recovering")
	}

	return lock, nil
}

func (store *FileStore) acquire(ctx context.Context, file *os.File) error {
	for attempt := 1; ; attempt++ {
		err := flock.TryLock(file)
		if err == nil {
			return nil
		}

		if !errors.Is(err, flock.ErrLocked) {
			store.logger.Error().Err(err).Msg("state file could not be locked")
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}

		delay := time.Duration(attempt) * backoffStep
		if delay > backoffMax {
			delay = backoffMax
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			store.metrics.lockTimeout()
			store.logger.Debug().Int("attempts", attempt).Msg("state lock timeout")
			return fmt.Errorf("%w: %s", ErrLockTimeout, store.path)
		case <-timer.C:
		}
	}
}

// Release writes the snapshot (or the one recovered by Hold, if snapshot is
// nil) and releases the lock. The lock is released even if write fails.
func (store *FileStore) Release(lock Lock, snapshot *Snapshot) error {
	held, ok := lock.(*fileLock)
	if !ok || held.store != store {
		return ErrForeignLock
	}

	if !held.released.CompareAndSwap(false, true) {
		return ErrLockReleased
	}

	if snapshot == nil {
		snapshot = held.snapshot
	}

	werr := store.write(held.file, snapshot)
	if werr != nil {
		store.logger.Error().Err(werr).Msg("state could not be written")
	}

	return errors.Join(
		werr,
		flock.Unlock(held.file),
		held.file.Close(),
	)
}

func (store *FileStore) write(file *os.File, snapshot *Snapshot) error {
	if err := file.Truncate(0); err != nil {
		return err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	if err := EncodeState(file, snapshot, time.Now()); err != nil {
		return err
	}

	return file.Sync()
}

/*******************************************************************************

ProcessStore

*******************************************************************************/

// ProcessStore keeps the state in memory. Generators sharing the instance are
// mutually excluded, the state does not survive the process.
type ProcessStore struct {
	sem      chan struct{}
	snapshot *Snapshot
	logger   zerolog.Logger
	metrics  *Metrics
}

var _ Store = (*ProcessStore)(nil)

type processLock struct {
	store    *ProcessStore
	snapshot *Snapshot
	released atomic.Bool
}

func (lock *processLock) Snapshot() (Snapshot, bool) {
	if lock.snapshot == nil {
		return Snapshot{}, false
	}
	return *lock.snapshot, true
}

func (lock *processLock) Dirty() bool { return false }

// NewProcessStore creates in-memory store
func NewProcessStore(opts ...Option) *ProcessStore {
	opt := newOptions(opts...)
	return &ProcessStore{
		sem:     make(chan struct{}, 1),
		logger:  opt.logger.With().Str("component", "processstore").Logger(),
		metrics: opt.metrics,
	}
}

// Hold acquires the exclusive section, it fails with ErrLockTimeout when the
// context is done before.
func (store *ProcessStore) Hold(ctx context.Context) (Lock, error) {
	started := time.Now()

	select {
	case store.sem <- struct{}{}:
	default:
		select {
		case store.sem <- struct{}{}:
		case <-ctx.Done():
			store.metrics.lockTimeout()
			store.logger.Debug().Msg("state lock timeout")
			return nil, ErrLockTimeout
		}
	}
	store.metrics.held(time.Since(started))

	lock := &processLock{store: store}
	if store.snapshot != nil {
		snapshot := *store.snapshot
		lock.snapshot = &snapshot
	}

	return lock, nil
}

// Release stores the snapshot (or keeps the recovered one if snapshot is nil)
// and leaves the exclusive section.
func (store *ProcessStore) Release(lock Lock, snapshot *Snapshot) error {
	held, ok := lock.(*processLock)
	if !ok || held.store != store {
		return ErrForeignLock
	}

	if !held.released.CompareAndSwap(false, true) {
		return ErrLockReleased
	}

	if snapshot == nil {
		snapshot = held.snapshot
	}

	if snapshot != nil {
		value := *snapshot
		store.snapshot = &value
	}

	<-store.sem
	return nil
}
