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

// Package stability decides whether a file has finished being written by
// sampling it twice across a wait interval.
//
// The check is a heuristic: a download that pauses for longer than the wait
// without touching the file looks exactly like a finished one.
package stability

import (
	"os"
	"time"
)

// DefaultWait is how long a file has to stay unchanged by default.
const DefaultWait = 4 * time.Second

// 📸 Sample is one observation of a file.
type Sample struct {
	Size    int64
	ModTime time.Time
}

// Equal reports whether both samples are bit-identical.
func (s Sample) Equal(o Sample) bool {
	return s.Size == o.Size && s.ModTime.Equal(o.ModTime)
}

// Take stats path. ok is false if it cannot be stat'ed (usually because it is gone).
func Take(path string) (Sample, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return Sample{}, false
	}
	return Sample{Size: info.Size(), ModTime: info.ModTime()}, true
}

// ⏳ Checker compares two samples of a file taken Wait apart.
type Checker struct {
	Wait time.Duration

	// Sleep blocks between the two samples. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// New returns a Checker that waits for wait between samples.
func New(wait time.Duration) *Checker {
	return &Checker{Wait: wait, Sleep: time.Sleep}
}

// IsStable blocks for the full wait and reports whether path kept the same
// size and modification time. Missing files, before or after the wait, are
// never stable. The wait is not cut short by cancellation.
func (c *Checker) IsStable(path string) bool {
	first, ok := Take(path)
	if !ok {
		return false
	}

	c.wait()

	second, ok := Take(path)
	if !ok {
		return false
	}

	return first.Equal(second)
}

func (c *Checker) wait() {
	if c.Wait <= 0 {
		return
	}
	sleep := c.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(c.Wait)
}
