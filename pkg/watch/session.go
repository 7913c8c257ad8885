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

package watch

import (
	"time"
)

// DefaultDebounce is the default minimum gap between two triggered passes.
const DefaultDebounce = time.Second

// ⏱️ Session holds the debounce state of one watch run.
//
// It is not safe for concurrent use; the watcher only touches it from the
// event pump.
type Session struct {
	debounce    time.Duration
	stableWait  time.Duration
	lastTrigger time.Time

	now func() time.Time
}

// NewSession creates a Session using the wall clock.
func NewSession(debounce, stableWait time.Duration) *Session {
	return &Session{
		debounce:   debounce,
		stableWait: stableWait,
		now:        time.Now,
	}
}

// WithClock replaces the clock, for tests.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

// 🚦 Allow decides whether an event starts a pass. Events closer than the
// debounce interval to the last accepted one are dropped; an accepted event
// becomes the new reference point.
func (s *Session) Allow() bool {
	now := s.now()
	if !s.lastTrigger.IsZero() && now.Sub(s.lastTrigger) < s.debounce {
		return false
	}
	s.lastTrigger = now
	return true
}

// LastTrigger returns when the last pass was triggered, or the zero time.
func (s *Session) LastTrigger() time.Time {
	return s.lastTrigger
}

func (s *Session) Debounce() time.Duration {
	return s.debounce
}

func (s *Session) StableWait() time.Duration {
	return s.stableWait
}
