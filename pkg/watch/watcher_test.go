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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/dlsort/pkg/log"
	"github.com/walteh/dlsort/pkg/organizer"
	"gitlab.com/tozd/go/errors"
)

const waitTimeout = 5 * time.Second

type fakeNotifier struct {
	events       chan Event
	errs         chan error
	subscribeErr error
	closed       atomic.Bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		events: make(chan Event),
		errs:   make(chan error),
	}
}

func (n *fakeNotifier) Subscribe(ctx context.Context, dir string) (<-chan Event, <-chan error, error) {
	if n.subscribeErr != nil {
		return nil, nil, n.subscribeErr
	}
	return n.events, n.errs, nil
}

func (n *fakeNotifier) Close() error {
	n.closed.Store(true)
	return nil
}

type fakeReconciler struct {
	mu    sync.Mutex
	calls   int
	errs    []error
	summary organizer.Summary

	started chan int
	done    chan int
	release chan struct{}
}

func newFakeReconciler() *fakeReconciler {
	return &fakeReconciler{
		started: make(chan int, 16),
		done:    make(chan int, 16),
	}
}

func (r *fakeReconciler) Reconcile(ctx context.Context) (organizer.Summary, error) {
	r.mu.Lock()
	r.calls++
	n := r.calls
	var err error
	if len(r.errs) > 0 {
		err, r.errs = r.errs[0], r.errs[1:]
	}
	r.mu.Unlock()

	r.started <- n
	if r.release != nil {
		<-r.release
	}
	r.done <- n
	return r.summary, err
}

func (r *fakeReconciler) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func testContext(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	var console bytes.Buffer
	zlog := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	ctx := zlog.WithContext(context.Background())
	return log.NewContext(ctx, log.New(&console, true)), &console
}

type harness struct {
	dir      string
	clock    *fakeClock
	notifier *fakeNotifier
	rec      *fakeReconciler
	watcher  *Watcher

	// console output, read it only after stop
	console *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		dir:      t.TempDir(),
		clock:    newFakeClock(),
		notifier: newFakeNotifier(),
		rec:      newFakeReconciler(),
	}
	session := NewSession(time.Second, 0).WithClock(h.clock.Now)
	h.watcher = New(h.dir, h.rec, h.notifier, session)
	return h
}

// start runs the watcher in the background; the returned stop cancels it and
// returns Run's error.
func (h *harness) start(t *testing.T) (stop func() error) {
	t.Helper()
	ctx, console := testContext(t)
	h.console = console
	ctx, cancel := context.WithCancel(ctx)

	errc := make(chan error, 1)
	go func() { errc <- h.watcher.Run(ctx) }()

	return func() error {
		cancel()
		select {
		case err := <-errc:
			return err
		case <-time.After(waitTimeout):
			t.Fatal("watcher did not stop")
			return nil
		}
	}
}

func (h *harness) send(t *testing.T, name string, op fsnotify.Op) {
	t.Helper()
	select {
	case h.notifier.events <- Event{Name: filepath.Join(h.dir, name), Op: op}:
	case <-time.After(waitTimeout):
		t.Fatal("event not consumed")
	}
}

func waitFor(t *testing.T, ch <-chan int, want int) {
	t.Helper()
	select {
	case got := <-ch:
		assert.Equal(t, want, got)
	case <-time.After(waitTimeout):
		t.Fatalf("pass %d never happened", want)
	}
}

func TestWatcherDebouncesBurst(t *testing.T) {
	h := newHarness(t)
	stop := h.start(t)

	// create, write and rename of one download within the debounce interval
	h.send(t, "movie.mkv.part", fsnotify.Create)
	h.clock.Advance(200 * time.Millisecond)
	h.send(t, "movie.mkv.part", fsnotify.Write)
	h.clock.Advance(200 * time.Millisecond)
	h.send(t, "movie.mkv", fsnotify.Create)

	waitFor(t, h.rec.done, 1)
	require.NoError(t, stop())
	assert.Equal(t, 1, h.rec.Calls())
}

func TestWatcherCoalescesDuringPass(t *testing.T) {
	h := newHarness(t)
	h.rec.release = make(chan struct{})
	stop := h.start(t)

	h.send(t, "a.jpg", fsnotify.Create)
	waitFor(t, h.rec.started, 1)

	// both accepted by the debounce, but only one pass can be queued
	h.clock.Advance(2 * time.Second)
	h.send(t, "b.jpg", fsnotify.Create)
	h.clock.Advance(2 * time.Second)
	h.send(t, "c.jpg", fsnotify.Create)
	// ignored, only makes sure c.jpg was handled
	h.send(t, "", fsnotify.Write)

	h.rec.release <- struct{}{}
	waitFor(t, h.rec.done, 1)
	waitFor(t, h.rec.started, 2)
	h.rec.release <- struct{}{}
	waitFor(t, h.rec.done, 2)

	require.NoError(t, stop())
	assert.Equal(t, 2, h.rec.Calls())
}

func TestWatcherScanOnStart(t *testing.T) {
	h := newHarness(t)
	h.watcher.WithScanOnStart(true)
	stop := h.start(t)

	waitFor(t, h.rec.done, 1)
	require.NoError(t, stop())
	assert.Equal(t, 1, h.rec.Calls())
}

func TestWatcherKeepsRunningAfterPassError(t *testing.T) {
	color.NoColor = true
	h := newHarness(t)
	h.rec.errs = []error{&organizer.NotFoundError{Dir: h.dir, Err: os.ErrNotExist}}
	stop := h.start(t)

	h.send(t, "a.jpg", fsnotify.Create)
	waitFor(t, h.rec.done, 1)

	h.clock.Advance(time.Second)
	h.send(t, "b.jpg", fsnotify.Create)
	waitFor(t, h.rec.done, 2)

	require.NoError(t, stop())
	assert.Contains(t, h.console.String(), "pass failed: download_dir does not exist")
	assert.Equal(t, 1, strings.Count(h.console.String(), "pass failed"))
}

func TestWatcherReportsFailedMoves(t *testing.T) {
	color.NoColor = true
	h := newHarness(t)
	h.rec.summary = organizer.Summary{
		Failed:  1,
		Results: []organizer.Result{{}, {}},
	}
	h.watcher.WithScanOnStart(true)
	stop := h.start(t)

	waitFor(t, h.rec.done, 1)
	require.NoError(t, stop())
	assert.Contains(t, h.console.String(), "1 of 2 moves failed")
}

func TestWatcherOverflowRescans(t *testing.T) {
	h := newHarness(t)
	stop := h.start(t)

	select {
	case h.notifier.errs <- fsnotify.ErrEventOverflow:
	case <-time.After(waitTimeout):
		t.Fatal("error not consumed")
	}
	waitFor(t, h.rec.done, 1)

	require.NoError(t, stop())
}

func TestWatcherStop(t *testing.T) {
	h := newHarness(t)
	stop := h.start(t)

	h.send(t, "a.jpg", fsnotify.Create)
	waitFor(t, h.rec.done, 1)

	assert.NoError(t, stop(), "cancellation is not an error")
	assert.True(t, h.notifier.closed.Load())
}

func TestWatcherSubscribeError(t *testing.T) {
	h := newHarness(t)
	h.notifier.subscribeErr = &organizer.NotFoundError{Dir: h.dir, Err: os.ErrNotExist}

	ctx, _ := testContext(t)
	err := h.watcher.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, organizer.ErrNotFound))
	assert.Equal(t, 0, h.rec.Calls())
}

func TestWatcherIgnored(t *testing.T) {
	h := newHarness(t)
	sub := filepath.Join(h.dir, "subdir")
	require.NoError(t, os.Mkdir(sub, 0o755))
	file := filepath.Join(h.dir, "a.jpg")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	tests := []struct {
		name    string
		ev      Event
		ignored bool
	}{
		{name: "watched_dir", ev: Event{Name: h.dir, Op: fsnotify.Write}, ignored: true},
		{name: "watched_dir_trailing_slash", ev: Event{Name: h.dir + string(filepath.Separator), Op: fsnotify.Write}, ignored: true},
		{name: "subdirectory", ev: Event{Name: sub, Op: fsnotify.Create}, ignored: true},
		{name: "chmod_only", ev: Event{Name: file, Op: fsnotify.Chmod}, ignored: true},
		{name: "file_create", ev: Event{Name: file, Op: fsnotify.Create}, ignored: false},
		{name: "file_write_chmod", ev: Event{Name: file, Op: fsnotify.Write | fsnotify.Chmod}, ignored: false},
		{name: "removed_file", ev: Event{Name: filepath.Join(h.dir, "gone.zip"), Op: fsnotify.Remove}, ignored: false},
		{name: "renamed_away", ev: Event{Name: filepath.Join(h.dir, "old.zip"), Op: fsnotify.Rename}, ignored: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ignored, h.watcher.ignored(tt.ev))
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 4*time.Second, opts.StableWait)
	assert.Equal(t, time.Second, opts.Debounce)
	assert.False(t, opts.DryRun)
}
