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

package opts

import (
	"io"

	"github.com/walteh/dlsort/pkg/config"
	"github.com/walteh/dlsort/pkg/log"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile      string
	DryRun          bool
	Verbose         bool
	Debug           bool
	DownloadDir     string
	DestinationRoot string
	LogFile         string

	// set before any command runs
	Config  *config.Config
	Console *log.Logger

	closers []io.Closer
}

// OnClose registers c to be closed once the command finished.
func (o *RootOpts) OnClose(c io.Closer) {
	o.closers = append(o.closers, c)
}

// Close closes everything registered with OnClose, most recent first.
func (o *RootOpts) Close() error {
	var first error
	for i := len(o.closers) - 1; i >= 0; i-- {
		if err := o.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	o.closers = nil
	return first
}
