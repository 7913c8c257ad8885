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

package watch

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/walteh/dlsort/pkg/organizer"
	"gitlab.com/tozd/go/errors"
)

// 📬 Event is one change notification for an entry of the watched directory.
type Event struct {
	Name string
	Op   fsnotify.Op
}

// 👂 Notifier subscribes to non-recursive change notifications of a directory.
//
// Both channels are closed once the subscription ends, either because ctx
// was cancelled or because Close was called.
type Notifier interface {
	Subscribe(ctx context.Context, dir string) (<-chan Event, <-chan error, error)
	Close() error
}

var _ Notifier = (*FSNotifier)(nil)

// FSNotifier is the Notifier backed by fsnotify.
type FSNotifier struct {
	mu sync.Mutex
	w  *fsnotify.Watcher
}

func NewFSNotifier() *FSNotifier {
	return &FSNotifier{}
}

// 🔌 Subscribe starts watching dir. A missing directory is reported as an
// organizer.NotFoundError.
func (n *FSNotifier) Subscribe(ctx context.Context, dir string) (<-chan Event, <-chan error, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.w != nil {
		return nil, nil, errors.New("notifier already subscribed")
	}

	if err := organizer.CheckDir(dir); err != nil {
		return nil, nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, errors.Errorf("creating fsnotify watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, nil, errors.Errorf("watching %s: %w", dir, err)
	}
	n.w = w

	events := make(chan Event)
	errs := make(chan error)

	go func() {
		defer close(events)
		defer close(errs)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				select {
				case events <- Event{Name: ev.Name, Op: ev.Op}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, errs, nil
}

// Close tears the subscription down. It is safe to call more than once.
func (n *FSNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.w == nil {
		return nil
	}
	err := n.w.Close()
	n.w = nil
	if err != nil {
		return errors.Errorf("closing fsnotify watcher: %w", err)
	}
	return nil
}
