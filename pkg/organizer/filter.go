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

	"github.com/rs/zerolog"
	"github.com/walteh/dlsort/pkg/fsutil"
	"github.com/walteh/dlsort/pkg/log"
)

// Checker decides whether a file is done being written.
type Checker interface {
	IsStable(path string) bool
}

// ⏳ Filter keeps the actions whose source still exists and is stable.
//
// Vanished files are dropped silently; unstable ones are reported and left for
// a later pass. Checking stops once ctx is done, but a checker already waiting
// runs to completion.
func Filter(ctx context.Context, actions []MoveAction, checker Checker) []MoveAction {
	logger := zerolog.Ctx(ctx)
	out := log.FromContext(ctx)

	stable := make([]MoveAction, 0, len(actions))
	for i, a := range actions {
		if ctx.Err() != nil {
			logger.Debug().Int("remaining", len(actions)-i).Msg("pass cancelled, leaving remaining files")
			break
		}

		if !fsutil.Exists(a.Source) {
			logger.Debug().Str("file", a.Source).Msg("vanished before stability check")
			continue
		}

		if !checker.IsStable(a.Source) {
			out.LogEntry(ctx, log.Entry{
				Kind:   log.KindUnstable,
				Rule:   a.Rule,
				Source: a.Source,
			})
			continue
		}

		stable = append(stable, a)
	}

	return stable
}
