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

// Package rules maps file names to destination directories.
package rules

import (
	"path/filepath"
	"slices"
	"strings"
)

// Wildcard is the extension marker that matches every file.
const Wildcard = "*"

// 📏 Rule sends files with one of Extensions into Target (relative to the destination root)
type Rule struct {
	Name       string   `validate:"required"`
	Extensions []string // normalized, see NormalizeExt
	Target     string   `validate:"required"`
}

// 🔍 Matches reports whether the rule accepts the (normalized) extension
func (r Rule) Matches(ext string) bool {
	return slices.Contains(r.Extensions, Wildcard) || slices.Contains(r.Extensions, ext)
}

// IsCatchAll reports whether the rule carries the wildcard marker.
func (r Rule) IsCatchAll() bool {
	return slices.Contains(r.Extensions, Wildcard)
}

// 🧹 NormalizeExt trims, lowercases and dot-prefixes an extension; "*" is kept as is
func NormalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == Wildcard {
		return Wildcard
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.ToLower(ext)
}

// Ext returns the lowercased suffix of name's base including the dot, or ""
// if there is none. Dotfiles (".bashrc", ".png") and names ending in a dot
// have no suffix.
func Ext(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if ext == base || ext == "." {
		return ""
	}
	return strings.ToLower(ext)
}

// 🎯 Resolve picks the rule for filename.
//
// Rules are tried in declared order and the first one whose extension set
// holds the file's extension or the wildcard wins. When nothing matches the
// last declared rule is returned. ok is false only for an empty rule list.
func Resolve(rs []Rule, filename string) (rule Rule, ok bool) {
	if len(rs) == 0 {
		return Rule{}, false
	}

	ext := Ext(filename)
	for _, r := range rs {
		if r.Matches(ext) {
			return r, true
		}
	}

	return rs[len(rs)-1], true
}

// HasCatchAll reports whether any rule carries the wildcard, i.e. whether the
// last-rule fallback in Resolve can never be reached.
func HasCatchAll(rs []Rule) bool {
	return slices.ContainsFunc(rs, Rule.IsCatchAll)
}

// Shadowed returns the rules declared after the first wildcard rule. They can
// never be selected.
func Shadowed(rs []Rule) []Rule {
	i := slices.IndexFunc(rs, Rule.IsCatchAll)
	if i < 0 || i == len(rs)-1 {
		return nil
	}
	return rs[i+1:]
}
