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

package organizer

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ncruces/go-strftime"
	"github.com/rs/zerolog"
	"github.com/walteh/dlsort/pkg/config"
	"github.com/walteh/dlsort/pkg/lock"
	"github.com/walteh/dlsort/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

// 🔍 Scan proposes a MoveAction for every regular file directly inside the
// download directory that is not ignored. It never modifies the filesystem.
func Scan(ctx context.Context, cfg *config.Config) ([]MoveAction, error) {
	logger := zerolog.Ctx(ctx)

	dir := cfg.DownloadDir
	if err := CheckDir(dir); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Errorf("listing download dir: %w", err)
	}

	var actions []MoveAction
	for _, entry := range entries {
		name := entry.Name()
		src := filepath.Join(dir, name)

		// follows symlinks; anything vanished or not a regular file is skipped
		fi, err := os.Stat(src)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}

		if ignored, why := isIgnored(cfg, name); ignored {
			logger.Debug().Str("file", name).Str("reason", why).Msg("ignored")
			continue
		}

		action, err := plan(cfg, name, fi.ModTime())
		if err != nil {
			return nil, err
		}
		if action.Destination == action.Source {
			logger.Debug().Str("file", name).Msg("already in place")
			continue
		}
		action.Size = fi.Size()
		actions = append(actions, action)
	}

	logger.Debug().Str("dir", dir).Int("entries", len(entries)).Int("actions", len(actions)).Msg("scanned")
	return actions, nil
}

// 🗺️ Plan returns the action an entry called name with the given mtime would
// get. ok is false when the name is ignored.
func Plan(cfg *config.Config, name string, modTime time.Time) (action MoveAction, ok bool, err error) {
	if ignored, _ := isIgnored(cfg, name); ignored {
		return MoveAction{}, false, nil
	}
	action, err = plan(cfg, name, modTime)
	return action, err == nil, err
}

func plan(cfg *config.Config, name string, modTime time.Time) (MoveAction, error) {
	rule, ok := rules.Resolve(cfg.Rules, name)
	if !ok {
		return MoveAction{}, errors.Errorf("%w: no rules configured", config.ErrInvalid)
	}

	dstDir := cfg.TargetDir(rule)
	if cfg.DateSubdir != "" {
		dstDir = filepath.Join(dstDir, strftime.Format(cfg.DateSubdir, modTime))
	}

	return MoveAction{
		Source:      filepath.Join(cfg.DownloadDir, name),
		Destination: filepath.Join(dstDir, name),
		Rule:        rule.Name,
	}, nil
}

// CheckDir returns a NotFoundError when dir is missing or not a directory.
func CheckDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &NotFoundError{Dir: dir, Err: err}
		}
		return errors.Errorf("reading download dir: %w", err)
	}
	if !info.IsDir() {
		return &NotFoundError{Dir: dir, Err: errors.New("not a directory")}
	}
	return nil
}

// isIgnored checks the ignore extensions first, then the ignore patterns.
func isIgnored(cfg *config.Config, name string) (bool, string) {
	// the watcher's lock may live in the download dir itself
	if name == lock.FileName {
		return true, "lock file"
	}
	if slices.Contains(cfg.IgnoreExtensions, rules.Ext(name)) {
		return true, "extension"
	}
	for _, pattern := range cfg.IgnorePatterns {
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			continue
		}
		if matched {
			return true, "pattern " + pattern
		}
	}
	return false, ""
}
