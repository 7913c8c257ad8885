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

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/walteh/dlsort/cmd/dlsort/opts"
	"github.com/walteh/dlsort/pkg/organizer"
)

func NewResolveCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve NAME...",
		Short: "Show where files would be moved",
		Long: `Resolve prints the rule and destination each file name would get,
without touching the filesystem. Names of files present in the download
directory use their modification time for date_subdir; others use now.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := o.Config
			w := cmd.OutOrStdout()

			for _, arg := range args {
				name := filepath.Base(arg)

				modTime := time.Now()
				if fi, err := os.Stat(filepath.Join(cfg.DownloadDir, name)); err == nil {
					modTime = fi.ModTime()
				}

				action, ok, err := organizer.Plan(cfg, name, modTime)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintf(w, "%s: ignored\n", name)
					continue
				}
				fmt.Fprintf(w, "%s: [%s] %s\n", name, action.Rule, action.Destination)
			}

			return nil
		},
	}

	return cmd
}
