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
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/dlsort/cmd/dlsort/opts"
	"gitlab.com/tozd/go/errors"
)

func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and show the rules",
		Long: `Check loads the configuration exactly like a normal run would and
prints the resolved directories and the rule table in evaluation order.
It warns about rules that can never match.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := o.Config
			w := cmd.OutOrStdout()

			o.Console.Header(o.ConfigFile)
			o.Console.Successf("configuration ok (%d rules)", len(cfg.Rules))
			fmt.Fprintf(w, "download_dir:     %s\n", cfg.DownloadDir)
			fmt.Fprintf(w, "destination_root: %s\n", cfg.DestinationRoot)
			if cfg.DateSubdir != "" {
				fmt.Fprintf(w, "date_subdir:      %s\n", cfg.DateSubdir)
			}
			if len(cfg.IgnoreExtensions) > 0 {
				fmt.Fprintf(w, "ignore:           %s\n", strings.Join(cfg.IgnoreExtensions, " "))
			}
			if len(cfg.IgnorePatterns) > 0 {
				fmt.Fprintf(w, "ignore patterns:  %s\n", strings.Join(cfg.IgnorePatterns, " "))
			}

			data := pterm.TableData{{"#", "Rule", "Extensions", "Target"}}
			for i, r := range cfg.Rules {
				data = append(data, []string{
					strconv.Itoa(i + 1),
					r.Name,
					strings.Join(r.Extensions, " "),
					cfg.TargetDir(r),
				})
			}

			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Errorf("rendering rule table: %w", err)
			}
			fmt.Fprintln(w, table)

			for _, warning := range RuleWarnings(cfg) {
				o.Console.Warning(warning)
			}

			return nil
		},
	}

	return cmd
}
