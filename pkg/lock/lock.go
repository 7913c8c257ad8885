// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lock keeps two dlsort watchers from reconciling the same
// destination tree at once.
package lock

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gitlab.com/tozd/go/errors"
)

// FileName is the lock file created inside the destination root.
const FileName = ".dlsort.lock"

// ErrLocked is returned by Acquire when another process holds the lock.
var ErrLocked = errors.Base("lock held by another dlsort instance")

// 🔒 Lock is an advisory, process-level file lock.
type Lock struct {
	path string
	fl   *flock.Flock
}

// New returns an unlocked Lock on path.
func New(path string) *Lock {
	return &Lock{
		path: path,
		fl:   flock.New(path),
	}
}

// ForRoot returns the Lock guarding a destination root.
func ForRoot(root string) *Lock {
	return New(filepath.Join(root, FileName))
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// 🔑 Acquire takes the lock without blocking, creating the parent directory
// if needed.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return errors.Errorf("creating lock directory: %w", err)
	}

	ok, err := l.fl.TryLock()
	if err != nil {
		return errors.Errorf("acquiring lock %s: %w", l.path, err)
	}
	if !ok {
		return errors.Errorf("%w: %s", ErrLocked, l.path)
	}
	return nil
}

// Release drops the lock. Releasing a lock that is not held is a no-op.
func (l *Lock) Release() error {
	if !l.fl.Locked() {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return errors.Errorf("releasing lock %s: %w", l.path, err)
	}
	return nil
}
