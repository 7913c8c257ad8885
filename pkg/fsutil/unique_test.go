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

package fsutil_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/dlsort/pkg/fsutil"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestUniquePath(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		target   string
		want     string
	}{
		{
			name:   "clean",
			target: "a.jpg",
			want:   "a.jpg",
		},
		{
			name:     "one_collision",
			existing: []string{"a.jpg"},
			target:   "a.jpg",
			want:     "a (1).jpg",
		},
		{
			name:     "gap_is_reused",
			existing: []string{"a.jpg", "a (2).jpg"},
			target:   "a.jpg",
			want:     "a (1).jpg",
		},
		{
			name:     "no_extension",
			existing: []string{"README"},
			target:   "README",
			want:     "README (1)",
		},
		{
			name:     "double_extension",
			existing: []string{"backup.tar.gz"},
			target:   "backup.tar.gz",
			want:     "backup.tar (1).gz",
		},
		{
			name:     "dotfile",
			existing: []string{".env"},
			target:   ".env",
			want:     ".env (1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, e := range tt.existing {
				touch(t, filepath.Join(dir, e))
			}

			got := fsutil.UniquePath(filepath.Join(dir, tt.target))
			assert.Equal(t, filepath.Join(dir, tt.want), got)
		})
	}
}

func TestUniquePathFuncReservations(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.jpg")

	reserved := map[string]bool{target: true}
	got := fsutil.UniquePathFunc(target, func(p string) bool { return reserved[p] })
	assert.Equal(t, filepath.Join(dir, "a (1).jpg"), got)

	reserved[got] = true
	got = fsutil.UniquePathFunc(target, func(p string) bool { return reserved[p] })
	assert.Equal(t, filepath.Join(dir, "a (2).jpg"), got)
}

func TestSplitExt(t *testing.T) {
	stem, ext := fsutil.SplitExt("photo.jpeg")
	assert.Equal(t, "photo", stem)
	assert.Equal(t, ".jpeg", ext)

	stem, ext = fsutil.SplitExt(".bashrc")
	assert.Equal(t, ".bashrc", stem)
	assert.Equal(t, "", ext)
}

// With N numbered collisions on disk the next free name is "stem (N+1).ext".
func TestProperty_UniquePathSkipsCollisions(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("N collisions yield stem (N+1).ext", prop.ForAll(
		func(n int) bool {
			dir, err := os.MkdirTemp("", "unique")
			if err != nil {
				return false
			}
			defer os.RemoveAll(dir)

			target := filepath.Join(dir, "stem.ext")
			if n == 0 {
				return fsutil.UniquePath(target) == target
			}

			if err := os.WriteFile(target, nil, 0o644); err != nil {
				return false
			}
			for i := 1; i <= n; i++ {
				if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("stem (%d).ext", i)), nil, 0o644); err != nil {
					return false
				}
			}

			return fsutil.UniquePath(target) == filepath.Join(dir, fmt.Sprintf("stem (%d).ext", n+1))
		},
		gen.IntRange(0, 25),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
