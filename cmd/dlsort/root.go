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

package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/dlsort/cmd/dlsort/commands"
	"github.com/walteh/dlsort/cmd/dlsort/opts"
	"github.com/walteh/dlsort/pkg/config"
	"github.com/walteh/dlsort/pkg/log"
	"github.com/walteh/dlsort/pkg/organizer"
	"github.com/walteh/dlsort/pkg/stability"
	"github.com/walteh/dlsort/pkg/watch"
	"gitlab.com/tozd/go/errors"
)

type watchFlags struct {
	enabled         bool
	stableSeconds   float64
	debounceSeconds float64
	scanOnStart     bool
}

func newRootCmd() *cobra.Command {
	o := &opts.RootOpts{}
	wf := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "dlsort",
		Short: "Sort a downloads folder into per-type directories",
		Long: `dlsort moves every file of a download directory into a destination
directory picked by an ordered list of extension rules.

Without --watch it organizes once and exits. With --watch it keeps running and
reorganizes whenever the directory changes, leaving files alone until their
size and modification time stop changing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := setupLogging(cmd.Context(), o, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cmd.SetContext(ctx)
			return loadConfig(ctx, o)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return o.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer o.Close()
			return run(cmd.Context(), o, wf)
		},
	}

	addRootFlags(cmd, o, wf)

	cmd.AddCommand(
		commands.NewCheckCmd(o),
		commands.NewResolveCmd(o),
		commands.NewVersionCmd(),
	)

	return cmd
}

func addRootFlags(cmd *cobra.Command, o *opts.RootOpts, wf *watchFlags) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&o.ConfigFile, "config", "c", "", "config file path (.yaml, .yml, .json, .toml or .hcl)")
	pf.BoolVarP(&o.Verbose, "verbose", "v", false, "print every move")
	pf.BoolVar(&o.Debug, "debug", false, "enable debug logging")
	pf.StringVar(&o.DownloadDir, "download-dir", "", "override download_dir from the config")
	pf.StringVar(&o.DestinationRoot, "destination-root", "", "override destination_root from the config")
	pf.StringVar(&o.LogFile, "log-file", "", "append all output to this file")

	f := cmd.Flags()
	f.BoolVar(&o.DryRun, "dry-run", false, "print actions without moving files")
	f.BoolVar(&wf.enabled, "watch", false, "watch the download directory and organize automatically")
	f.Float64Var(&wf.stableSeconds, "stable-seconds", stability.DefaultWait.Seconds(), "seconds a file must stay unchanged before it is moved")
	f.Float64Var(&wf.debounceSeconds, "debounce-seconds", watch.DefaultDebounce.Seconds(), "minimum seconds between two triggered passes")
	f.BoolVar(&wf.scanOnStart, "scan-on-start", false, "organize files already present when watching starts")
}

// 🔧 setupLogging installs the zerolog logger and the console printer on ctx.
// With --log-file both go to the file, without colour.
func setupLogging(ctx context.Context, o *opts.RootOpts, stdout, stderr io.Writer) (context.Context, error) {
	level := zerolog.InfoLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}

	console, structured := stdout, stderr
	noColor := !isTerminal(stdout)

	if o.LogFile != "" {
		f, err := openLogFile(o.LogFile)
		if err != nil {
			return ctx, err
		}
		o.OnClose(f)
		console, structured = f, f
		noColor = true
	}

	if noColor {
		color.NoColor = true
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        structured,
		NoColor:    noColor,
		TimeFormat: time.DateTime,
	}).Level(level).With().Timestamp().Logger()

	o.Console = log.New(console, o.Verbose)

	ctx = logger.WithContext(ctx)
	return log.NewContext(ctx, o.Console), nil
}

func openLogFile(path string) (*os.File, error) {
	path, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Errorf("opening log file: %w", err)
	}
	return f, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// 📚 loadConfig loads the config file and applies the command line overrides,
// which win over the file and the environment.
func loadConfig(ctx context.Context, o *opts.RootOpts) error {
	if o.ConfigFile == "" {
		return errors.Errorf("%w: --config is required", config.ErrInvalid)
	}

	cfg, err := config.Load(ctx, o.ConfigFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	if o.DownloadDir != "" {
		cfg.DownloadDir = o.DownloadDir
	}
	if o.DestinationRoot != "" {
		cfg.DestinationRoot = o.DestinationRoot
	}
	if err := cfg.Normalize(); err != nil {
		return errors.Errorf("applying overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.Config = cfg
	return nil
}

func seconds(s float64, flag string) (time.Duration, error) {
	if s < 0 {
		return 0, errors.Errorf("%w: --%s must not be negative", config.ErrInvalid, flag)
	}
	return time.Duration(s * float64(time.Second)), nil
}

// 🚀 run organizes once, or watches until ctx is cancelled.
func run(ctx context.Context, o *opts.RootOpts, wf *watchFlags) error {
	for _, w := range commands.RuleWarnings(o.Config) {
		o.Console.Warning(w)
	}
	if o.DryRun {
		o.Console.Infof("dry run, nothing under %s will change", o.Config.DestinationRoot)
	}

	if !wf.enabled {
		summary, err := organizer.Organize(ctx, o.Config, o.DryRun)
		if err != nil {
			return err
		}
		return summary.Err()
	}

	stableWait, err := seconds(wf.stableSeconds, "stable-seconds")
	if err != nil {
		return err
	}
	debounce, err := seconds(wf.debounceSeconds, "debounce-seconds")
	if err != nil {
		return err
	}

	return watch.WatchForever(ctx, o.Config, watch.Options{
		DryRun:      o.DryRun,
		StableWait:  stableWait,
		Debounce:    debounce,
		ScanOnStart: wf.scanOnStart,
	})
}
