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

package stability_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/dlsort/pkg/stability"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIsStable(t *testing.T) {
	tests := []struct {
		name   string
		create bool
		during func(t *testing.T, path string)
		want   bool
	}{
		{
			name:   "missing_at_start",
			create: false,
			want:   false,
		},
		{
			name:   "untouched",
			create: true,
			want:   true,
		},
		{
			name:   "appended",
			create: true,
			during: func(t *testing.T, path string) {
				f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
				require.NoError(t, err)
				_, err = f.WriteString("more bytes")
				require.NoError(t, err)
				require.NoError(t, f.Close())
			},
			want: false,
		},
		{
			name:   "mtime_changed_same_size",
			create: true,
			during: func(t *testing.T, path string) {
				later := time.Now().Add(time.Hour)
				require.NoError(t, os.Chtimes(path, later, later))
			},
			want: false,
		},
		{
			name:   "removed_during_wait",
			create: true,
			during: func(t *testing.T, path string) {
				require.NoError(t, os.Remove(path))
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "file.part")
			if tt.create {
				writeFile(t, path, "hello")
			}

			var slept time.Duration
			checker := &stability.Checker{
				Wait: 3 * time.Second,
				Sleep: func(d time.Duration) {
					slept = d
					if tt.during != nil {
						tt.during(t, path)
					}
				},
			}

			assert.Equal(t, tt.want, checker.IsStable(path))
			if tt.create {
				assert.Equal(t, 3*time.Second, slept, "checker must wait the full interval")
			} else {
				assert.Zero(t, slept, "missing files fail before waiting")
			}
		})
	}
}

func TestNewUsesRealSleep(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, path, "done")

	checker := stability.New(10 * time.Millisecond)
	start := time.Now()
	assert.True(t, checker.IsStable(path))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestSampleEqual(t *testing.T) {
	now := time.Now()
	a := stability.Sample{Size: 1, ModTime: now}
	assert.True(t, a.Equal(stability.Sample{Size: 1, ModTime: now}))
	assert.False(t, a.Equal(stability.Sample{Size: 2, ModTime: now}))
	assert.False(t, a.Equal(stability.Sample{Size: 1, ModTime: now.Add(time.Nanosecond)}))
}
