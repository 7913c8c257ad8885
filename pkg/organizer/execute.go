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

	"github.com/rs/zerolog"
	"github.com/walteh/dlsort/pkg/fsutil"
	"github.com/walteh/dlsort/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// 🚚 Execute moves every action to a collision-free destination. Under dry
// run nothing is created or moved, but the planned names are still unique
// within the call.
//
// Failures never abort the batch: they are reported and recorded on the
// Result. A source that vanished in the meantime is a silent skip.
func Execute(ctx context.Context, actions []MoveAction, dryRun bool) []Result {
	logger := zerolog.Ctx(ctx)
	out := log.FromContext(ctx)

	claimed := make(map[string]bool, len(actions))
	taken := func(p string) bool { return claimed[p] }

	results := make([]Result, 0, len(actions))
	for _, a := range actions {
		res := execute(a, dryRun, taken)
		results = append(results, res)

		switch {
		case res.Skipped:
			logger.Debug().Str("file", a.Source).Msg("vanished before move")
		case res.Err != nil:
			out.LogEntry(ctx, log.Entry{
				Kind:        log.KindFailed,
				Rule:        a.Rule,
				Source:      a.Source,
				Destination: res.Final,
				DryRun:      dryRun,
				Err:         res.Err,
			})
		default:
			claimed[res.Final] = true
			out.LogEntry(ctx, log.Entry{
				Kind:        log.KindMove,
				Rule:        a.Rule,
				Source:      a.Source,
				Destination: res.Final,
				Size:        a.Size,
				DryRun:      dryRun,
			})
		}
	}

	return results
}

func execute(a MoveAction, dryRun bool, taken func(string) bool) Result {
	res := Result{Action: a, Final: a.Destination, DryRun: dryRun}

	if err := fsutil.EnsureDir(filepath.Dir(a.Destination), dryRun); err != nil {
		res.Err = err
		return res
	}

	res.Final = fsutil.UniquePathFunc(a.Destination, taken)
	if dryRun {
		return res
	}

	if err := fsutil.Move(a.Source, res.Final); err != nil {
		if errors.Is(err, os.ErrNotExist) && !fsutil.Exists(a.Source) {
			res.Skipped = true
			return res
		}
		res.Err = err
	}
	return res
}
