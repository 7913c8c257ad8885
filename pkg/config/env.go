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
	"github.com/caarlos0/env/v10"
	"gitlab.com/tozd/go/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DLSORT_"

// 🌱 envOverrides are the settings that may come from the environment.
type envOverrides struct {
	DownloadDir     string `env:"DOWNLOAD_DIR"`
	DestinationRoot string `env:"DESTINATION_ROOT"`
	DateSubdir      string `env:"DATE_SUBDIR"`
}

// ApplyEnv overrides cfg with DLSORT_* variables. A nil environ reads the
// process environment.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	var ov envOverrides
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&ov, opts); err != nil {
		return errors.Errorf("%w: parsing environment: %s", ErrInvalid, err)
	}

	if ov.DownloadDir != "" {
		cfg.DownloadDir = ov.DownloadDir
	}
	if ov.DestinationRoot != "" {
		cfg.DestinationRoot = ov.DestinationRoot
	}
	if ov.DateSubdir != "" {
		cfg.DateSubdir = ov.DateSubdir
	}
	return nil
}
