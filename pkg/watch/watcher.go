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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/walteh/dlsort/pkg/config"
	"github.com/walteh/dlsort/pkg/lock"
	"github.com/walteh/dlsort/pkg/log"
	"github.com/walteh/dlsort/pkg/organizer"
	"github.com/walteh/dlsort/pkg/stability"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// Reconciler runs one organizer pass.
type Reconciler interface {
	Reconcile(ctx context.Context) (organizer.Summary, error)
}

// ⚙️ Options configures a watch run.
type Options struct {
	DryRun      bool
	StableWait  time.Duration
	Debounce    time.Duration
	ScanOnStart bool
}

// DefaultOptions returns the options used when nothing is overridden.
func DefaultOptions() Options {
	return Options{
		StableWait: stability.DefaultWait,
		Debounce:   DefaultDebounce,
	}
}

// 👀 Watcher turns change notifications of one directory into organizer passes.
type Watcher struct {
	dir         string
	reconciler  Reconciler
	notifier    Notifier
	session     *Session
	scanOnStart bool
}

// 🏭 New creates a Watcher for dir.
func New(dir string, reconciler Reconciler, notifier Notifier, session *Session) *Watcher {
	return &Watcher{
		dir:        filepath.Clean(dir),
		reconciler: reconciler,
		notifier:   notifier,
		session:    session,
	}
}

// WithScanOnStart makes Run queue one pass before any event arrives.
func (w *Watcher) WithScanOnStart(v bool) *Watcher {
	w.scanOnStart = v
	return w
}

// 🔄 Run subscribes to the directory and reconciles until ctx is cancelled.
// Cancellation is not an error.
func (w *Watcher) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	events, errs, err := w.notifier.Subscribe(ctx, w.dir)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.notifier.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing notifier")
		}
	}()

	log.FromContext(ctx).Plain(fmt.Sprintf("Watching: %s", w.dir))

	trigger := make(chan struct{}, 1)
	if w.scanOnStart {
		trigger <- struct{}{}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(trigger)
		return w.pump(gctx, events, errs, trigger)
	})

	g.Go(func() error {
		w.work(gctx, trigger)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// pump owns the Session; it never blocks on a running pass.
func (w *Watcher) pump(ctx context.Context, events <-chan Event, errs <-chan error, trigger chan<- struct{}) error {
	logger := zerolog.Ctx(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("notification stream closed")
			}
			if w.ignored(ev) {
				continue
			}
			if !w.session.Allow() {
				logger.Debug().
					Str("file", ev.Name).
					Stringer("op", ev.Op).
					Time("last_trigger", w.session.LastTrigger()).
					Msg("debounced")
				continue
			}
			w.enqueue(ctx, trigger, ev.Name)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn().Err(err).Msg("notifier error")
			// dropped events are unknown, rescan
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.enqueue(ctx, trigger, "overflow")
			}
		}
	}
}

func (w *Watcher) enqueue(ctx context.Context, trigger chan<- struct{}, cause string) {
	select {
	case trigger <- struct{}{}:
		zerolog.Ctx(ctx).Debug().Str("cause", cause).Msg("pass triggered")
	default:
		zerolog.Ctx(ctx).Debug().Str("cause", cause).Msg("pass already queued")
	}
}

// ignored reports events that never start a pass: the watched directory
// itself, subdirectories and attribute-only changes. A path that can no
// longer be stat'ed counts as a file.
func (w *Watcher) ignored(ev Event) bool {
	if ev.Op == fsnotify.Chmod {
		return true
	}
	if filepath.Clean(ev.Name) == w.dir {
		return true
	}
	info, err := os.Stat(ev.Name)
	return err == nil && info.IsDir()
}

func (w *Watcher) work(ctx context.Context, trigger <-chan struct{}) {
	logger := zerolog.Ctx(ctx)
	out := log.FromContext(ctx)

	for range trigger {
		if ctx.Err() != nil {
			return
		}

		summary, err := w.reconciler.Reconcile(ctx)
		if err != nil {
			// the directory may come back, keep watching
			logger.Warn().Err(err).Msg("reconciliation failed")
			out.Errorf("pass failed: %v", err)
			continue
		}
		if summary.Failed > 0 {
			logger.Warn().Int("failed", summary.Failed).Msg("some moves failed")
			out.Warningf("%d of %d moves failed", summary.Failed, len(summary.Results))
		}
	}
}

// 🎯 WatchForever organizes cfg.DownloadDir until ctx is cancelled. A missing
// download directory fails before anything is created.
//
// Outside dry run it first takes the lock on the destination root so a second
// watcher on the same tree fails fast with lock.ErrLocked.
func WatchForever(ctx context.Context, cfg *config.Config, opts Options) error {
	out := log.FromContext(ctx)
	logger := zerolog.Ctx(ctx)

	if err := organizer.CheckDir(cfg.DownloadDir); err != nil {
		return err
	}

	if !opts.DryRun {
		l := lock.ForRoot(cfg.DestinationRoot)
		if err := l.Acquire(); err != nil {
			return err
		}
		defer func() {
			if err := l.Release(); err != nil {
				logger.Warn().Err(err).Msg("releasing lock")
			}
		}()
	}

	session := NewSession(opts.Debounce, opts.StableWait)
	reconciler := organizer.NewReconciler(cfg, stability.New(session.StableWait()), opts.DryRun)
	w := New(cfg.DownloadDir, reconciler, NewFSNotifier(), session).WithScanOnStart(opts.ScanOnStart)

	logger.Info().
		Str("dir", cfg.DownloadDir).
		Dur("stable_wait", session.StableWait()).
		Dur("debounce", session.Debounce()).
		Bool("dry_run", opts.DryRun).
		Msg("starting watcher")

	if err := w.Run(ctx); err != nil {
		return err
	}

	out.Plain("Stopping watcher...")
	return nil
}
