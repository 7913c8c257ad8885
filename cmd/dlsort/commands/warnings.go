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

	"github.com/walteh/dlsort/pkg/config"
	"github.com/walteh/dlsort/pkg/rules"
)

// ⚠️ RuleWarnings lists rule-order problems that are legal but almost never
// intended.
func RuleWarnings(cfg *config.Config) []string {
	if cfg == nil || len(cfg.Rules) == 0 {
		return nil
	}

	var warnings []string
	if !rules.HasCatchAll(cfg.Rules) {
		last := cfg.Rules[len(cfg.Rules)-1]
		warnings = append(warnings, fmt.Sprintf("no catch-all rule: unmatched files go to the last rule %q (%s)", last.Name, last.Target))
	}
	for _, r := range rules.Shadowed(cfg.Rules) {
		warnings = append(warnings, fmt.Sprintf("rule %q follows a catch-all rule and never matches", r.Name))
	}
	return warnings
}
