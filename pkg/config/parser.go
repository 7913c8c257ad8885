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
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/dlsort/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse decodes raw config bytes; the result is not normalized yet
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

func hasExt(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// 🎯 Load reads, parses, normalizes and validates the configuration at path.
// DLSORT_* environment variables override values from the file.
func Load(ctx context.Context, path string) (*Config, error) {
	return load(ctx, path, nil)
}

func load(ctx context.Context, path string, environ map[string]string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("%w: unsupported config file extension %q", ErrInvalid, filepath.Ext(path))
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrInvalid, err)
	}

	if err := ApplyEnv(cfg, environ); err != nil {
		return nil, err
	}

	if err := cfg.Normalize(); err != nil {
		return nil, errors.Errorf("normalizing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("download_dir", cfg.DownloadDir).
		Str("destination_root", cfg.DestinationRoot).
		Int("rules", len(cfg.Rules)).
		Msg("configuration loaded")

	return cfg, nil
}

// fileRule and fileConfig are the on-disk schema shared by YAML, JSON and TOML.
type fileRule struct {
	Name       string   `yaml:"name" json:"name" toml:"name"`
	Extensions []string `yaml:"extensions" json:"extensions" toml:"extensions"`
	Target     string   `yaml:"target" json:"target" toml:"target"`
}

type fileConfig struct {
	DownloadDir      string     `yaml:"download_dir" json:"download_dir" toml:"download_dir"`
	DestinationRoot  string     `yaml:"destination_root" json:"destination_root" toml:"destination_root"`
	IgnoreExtensions []string   `yaml:"ignore_extensions" json:"ignore_extensions" toml:"ignore_extensions"`
	IgnorePatterns   []string   `yaml:"ignore_patterns" json:"ignore_patterns" toml:"ignore_patterns"`
	DateSubdir       string     `yaml:"date_subdir" json:"date_subdir" toml:"date_subdir"`
	Rules            []fileRule `yaml:"rules" json:"rules" toml:"rules"`
}

// 🔄 toModel converts the file schema into a Config
func (fc *fileConfig) toModel() *Config {
	cfg := &Config{
		DownloadDir:      fc.DownloadDir,
		DestinationRoot:  fc.DestinationRoot,
		IgnoreExtensions: fc.IgnoreExtensions,
		IgnorePatterns:   fc.IgnorePatterns,
		DateSubdir:       fc.DateSubdir,
	}
	for _, r := range fc.Rules {
		cfg.Rules = append(cfg.Rules, rules.Rule{
			Name:       r.Name,
			Extensions: r.Extensions,
			Target:     r.Target,
		})
	}
	return cfg
}
