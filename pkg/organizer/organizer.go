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
	"fmt"
	"io/fs"

	"gitlab.com/tozd/go/errors"
)

// ErrNotFound is matched by the error returned when the download directory is missing.
var ErrNotFound = errors.Base("download directory not found")

// NotFoundError reports a missing (or non-directory) download directory. It
// matches both ErrNotFound and fs.ErrNotExist.
type NotFoundError struct {
	Dir string
	Err error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("download_dir does not exist: %s: %v", e.Dir, e.Err)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// Is matches ErrNotFound and fs.ErrNotExist.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound || target == fs.ErrNotExist
}

// 📦 MoveAction is one proposed relocation. Destination is the path before
// collision resolution. Actions are pass-scoped and never persisted.
type MoveAction struct {
	Source      string
	Destination string
	Rule        string
	Size        int64
}

// 📄 Result is the outcome of executing a MoveAction.
type Result struct {
	Action  MoveAction
	Final   string // collision-free destination actually used (or planned)
	DryRun  bool
	Skipped bool // the source vanished before it could be moved
	Err     error
}

// OK reports whether the action was moved (or planned, under dry run).
func (r Result) OK() bool {
	return r.Err == nil && !r.Skipped
}

// 📊 Summary counts what a pass did.
type Summary struct {
	Planned  int // actions proposed by Scan
	Unstable int // actions dropped by Filter (unstable or vanished)
	Moved    int // moved, or planned under dry run
	Skipped  int // vanished before the move
	Failed   int

	Results []Result
}

func summarize(planned, unstable int, results []Result) Summary {
	s := Summary{Planned: planned, Unstable: unstable, Results: results}
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.Failed++
		case r.Skipped:
			s.Skipped++
		default:
			s.Moved++
		}
	}
	return s
}

// Err joins the errors of every failed result, or returns nil.
func (s Summary) Err() error {
	if s.Failed == 0 {
		return nil
	}
	var first error
	for _, r := range s.Results {
		if r.Err != nil {
			first = r.Err
			break
		}
	}
	return errors.Errorf("%d of %d moves failed, first: %w", s.Failed, len(s.Results), first)
}
