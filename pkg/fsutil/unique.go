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

package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Exists reports whether anything (file, directory, broken symlink) lives at path.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// 🏷️ UniquePath returns path if nothing exists there, otherwise the first free
// "stem (i).ext" sibling for i = 1, 2, 3, ...
//
// Existence is checked at call time only; another process may still claim the
// returned name before it is used.
func UniquePath(path string) string {
	return UniquePathFunc(path, nil)
}

// UniquePathFunc is UniquePath with an extra taken predicate, so callers can
// reserve names that are not on disk yet (e.g. earlier moves of a dry run).
func UniquePathFunc(path string, taken func(string) bool) string {
	free := func(p string) bool {
		if Exists(p) {
			return false
		}
		return taken == nil || !taken(p)
	}

	if free(path) {
		return path
	}

	dir := filepath.Dir(path)
	stem, ext := SplitExt(filepath.Base(path))
	for i := 1; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		if free(candidate) {
			return candidate
		}
	}
}

// SplitExt splits a base name into stem and extension. A name that only has a
// leading dot (".bashrc") has no extension.
func SplitExt(name string) (stem, ext string) {
	ext = filepath.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}
