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

// Package flock is non-blocking exclusive advisory lock of an open file.
// The lock is owned by the open file, a second open of the same path
// conflicts with it even within the same process.
package flock

import "errors"

// ErrLocked is returned by TryLock if another holder owns the lock
var ErrLocked = errors.New("flock: file is locked")
