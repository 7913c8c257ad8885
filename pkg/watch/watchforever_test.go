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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/dlsort/pkg/config"
	"github.com/walteh/dlsort/pkg/lock"
	"github.com/walteh/dlsort/pkg/organizer"
	"github.com/walteh/dlsort/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	tmp := t.TempDir()
	cfg := &config.Config{
		DownloadDir:     filepath.Join(tmp, "downloads"),
		DestinationRoot: filepath.Join(tmp, "sorted"),
		Rules: []rules.Rule{
			{Name: "images", Extensions: []string{".jpg"}, Target: "Images"},
			{Name: "catchall", Extensions: []string{"*"}, Target: "Misc"},
		},
	}
	require.NoError(t, os.MkdirAll(cfg.DownloadDir, 0o755))
	return cfg
}

func fastOptions() Options {
	return Options{
		StableWait:  10 * time.Millisecond,
		Debounce:    0,
		ScanOnStart: true,
	}
}

func TestWatchForeverOrganizes(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DownloadDir, "present.jpg"), []byte("x"), 0o644))

	ctx, console := testContext(t)
	ctx, cancel := context.WithCancel(ctx)

	errc := make(chan error, 1)
	go func() { errc <- WatchForever(ctx, cfg, fastOptions()) }()

	// already present when the watcher starts
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(cfg.DestinationRoot, "Images", "present.jpg"))
		return err == nil
	}, waitTimeout, 20*time.Millisecond)

	// arrives while watching
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DownloadDir, "notes.txt"), []byte("y"), 0o644))
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(cfg.DestinationRoot, "Misc", "notes.txt"))
		return err == nil
	}, waitTimeout, 20*time.Millisecond)

	assert.FileExists(t, filepath.Join(cfg.DestinationRoot, lock.FileName))

	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("watcher did not stop")
	}

	out := console.String()
	assert.Contains(t, out, "Watching: "+cfg.DownloadDir)
	assert.Contains(t, out, "Stopping watcher...")
}

func TestWatchForeverMissingDir(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.RemoveAll(cfg.DownloadDir))

	ctx, _ := testContext(t)
	err := WatchForever(ctx, cfg, fastOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, organizer.ErrNotFound))
	assert.NoDirExists(t, cfg.DestinationRoot)
}

func TestWatchForeverLocked(t *testing.T) {
	cfg := testConfig(t)

	held := lock.ForRoot(cfg.DestinationRoot)
	require.NoError(t, held.Acquire())
	defer held.Release()

	ctx, _ := testContext(t)
	err := WatchForever(ctx, cfg, fastOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, lock.ErrLocked))
}
