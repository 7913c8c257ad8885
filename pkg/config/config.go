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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ncruces/go-strftime"
	"github.com/walteh/dlsort/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalid marks every configuration problem. Configuration errors are
// fatal at startup and never retried.
var ErrInvalid = errors.Base("invalid configuration")

const (
	// DefaultDownloadDir is used when download_dir is omitted.
	DefaultDownloadDir = "~/Downloads"
	// DefaultDestinationDirName is joined onto the download dir when destination_root is omitted.
	DefaultDestinationDirName = "Sorted"
)

// 📚 Config is the normalized organizer configuration. It is read-only once
// loaded and shared by every reconciliation pass.
type Config struct {
	DownloadDir      string       `validate:"required"`
	DestinationRoot  string       `validate:"required"`
	IgnoreExtensions []string     // normalized, see rules.NormalizeExt
	IgnorePatterns   []string     // doublestar globs matched against the entry name
	DateSubdir       string       // optional strftime pattern applied to the file mtime
	Rules            []rules.Rule `validate:"min=1,dive"`
}

// 🧹 Normalize fills defaults, expands "~" and normalizes extensions. It is
// idempotent, so it can run again after command line overrides.
func (cfg *Config) Normalize() error {
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = DefaultDownloadDir
	}

	downloadDir, err := ExpandPath(cfg.DownloadDir)
	if err != nil {
		return err
	}
	cfg.DownloadDir = downloadDir

	if cfg.DestinationRoot == "" {
		cfg.DestinationRoot = filepath.Join(cfg.DownloadDir, DefaultDestinationDirName)
	}
	destinationRoot, err := ExpandPath(cfg.DestinationRoot)
	if err != nil {
		return err
	}
	cfg.DestinationRoot = destinationRoot

	cfg.IgnoreExtensions = normalizeExts(cfg.IgnoreExtensions)
	cfg.IgnorePatterns = slices.DeleteFunc(cfg.IgnorePatterns, func(p string) bool {
		return strings.TrimSpace(p) == ""
	})

	for i := range cfg.Rules {
		cfg.Rules[i].Name = strings.TrimSpace(cfg.Rules[i].Name)
		cfg.Rules[i].Extensions = normalizeExts(cfg.Rules[i].Extensions)
	}

	return nil
}

func normalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		if strings.TrimSpace(e) == "" {
			continue
		}
		n := rules.NormalizeExt(e)
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// 🔍 Validate checks the configuration. Every returned error matches ErrInvalid.
func (cfg *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return errors.Errorf("%w: %s", ErrInvalid, formatValidationError(err))
	}

	if len(cfg.Rules) == 0 {
		return errors.Errorf("%w: no rules configured", ErrInvalid)
	}

	// names are labels only and may repeat; targets may be absolute
	for i, r := range cfg.Rules {
		if err := checkTarget(r.Target); err != nil {
			return errors.Errorf("%w: rules[%d] (%s): target %s", ErrInvalid, i, r.Name, err)
		}
	}

	if cfg.DateSubdir != "" {
		sample := strftime.Format(cfg.DateSubdir, time.Date(2006, time.January, 2, 15, 4, 5, 0, time.Local))
		if err := checkRelative(sample); err != nil {
			return errors.Errorf("%w: date_subdir %q expands to %q: %s", ErrInvalid, cfg.DateSubdir, sample, err)
		}
	}

	return nil
}

func checkTarget(p string) error {
	switch {
	case strings.TrimSpace(p) == "":
		return errors.New("is empty")
	case slices.Contains(strings.Split(filepath.ToSlash(p), "/"), ".."):
		return errors.Errorf("must not contain '..', got %q", p)
	}
	return nil
}

func checkRelative(p string) error {
	switch {
	case strings.TrimSpace(p) == "":
		return errors.New("is empty")
	case filepath.IsAbs(p):
		return errors.Errorf("must be relative, got %q", p)
	case slices.Contains(strings.Split(filepath.ToSlash(p), "/"), ".."):
		return errors.Errorf("must not contain '..', got %q", p)
	}
	return nil
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// ExpandPath expands a leading "~" to the user's home directory and cleans the result.
func ExpandPath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Errorf("expanding %s: %w", p, err)
		}
		p = filepath.Join(home, p[1:])
	}
	return filepath.Clean(p), nil
}

// TargetDir is where files matched by r go, before any date subdirectory.
// Absolute targets are used as is.
func (cfg *Config) TargetDir(r rules.Rule) string {
	if filepath.IsAbs(r.Target) {
		return filepath.Clean(r.Target)
	}
	return filepath.Join(cfg.DestinationRoot, r.Target)
}

// 📝 String returns a short description of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s -> %s (%d rules)", cfg.DownloadDir, cfg.DestinationRoot, len(cfg.Rules))
}
