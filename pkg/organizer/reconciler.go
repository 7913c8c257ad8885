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
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/dlsort/pkg/config"
	"github.com/walteh/dlsort/pkg/log"
)

// 🔧 Reconciler runs full passes over one configuration.
type Reconciler struct {
	cfg     *config.Config
	checker Checker
	dryRun  bool
}

// 🏭 NewReconciler creates a Reconciler. A nil checker disables the stability
// phase, which is what one-shot mode wants.
func NewReconciler(cfg *config.Config, checker Checker, dryRun bool) *Reconciler {
	return &Reconciler{
		cfg:     cfg,
		checker: checker,
		dryRun:  dryRun,
	}
}

// 🔄 Reconcile runs one pass: Scan, Filter (when a checker is set) and Execute.
// Only a failing Scan returns an error; per-file problems end up in the Summary.
func (r *Reconciler) Reconcile(ctx context.Context) (Summary, error) {
	ctx = zerolog.Ctx(ctx).With().Str("pass", uuid.NewString()).Logger().WithContext(ctx)
	logger := zerolog.Ctx(ctx)

	actions, err := Scan(ctx, r.cfg)
	if err != nil {
		return Summary{}, err
	}

	candidates := actions
	if r.checker != nil {
		candidates = Filter(ctx, actions, r.checker)
	}

	results := Execute(ctx, candidates, r.dryRun)
	summary := summarize(len(actions), len(actions)-len(candidates), results)

	logger.Debug().
		Int("planned", summary.Planned).
		Int("unstable", summary.Unstable).
		Int("moved", summary.Moved).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Bool("dry_run", r.dryRun).
		Msg("pass complete")

	return summary, nil
}

// 🎯 Organize is the one-shot mode: scan once and move everything, without
// stability checks. "Planned N moves." is printed when verbose or dry run.
func Organize(ctx context.Context, cfg *config.Config, dryRun bool) (Summary, error) {
	summary, err := NewReconciler(cfg, nil, dryRun).Reconcile(ctx)
	if err != nil {
		return summary, err
	}

	if out := log.FromContext(ctx); out.Verbose() || dryRun {
		out.Plain(fmt.Sprintf("Planned %d moves.", summary.Planned))
	}

	return summary, nil
}
