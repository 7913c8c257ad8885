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

// Package fsutil holds the filesystem primitives used to relocate files:
// collision-free naming, directory creation and moves.
package fsutil

import (
	"io"
	"os"

	"gitlab.com/tozd/go/errors"
)

const dirMode = 0o755

// 📁 EnsureDir creates dir and its parents. It does nothing under dry run.
func EnsureDir(dir string, dryRun bool) error {
	if dryRun {
		return nil
	}
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return errors.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// 🚚 Move renames src to dst. When the two paths live on different devices the
// file is copied and the source removed afterwards; that fallback is not atomic.
func Move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return errors.Errorf("renaming %s: %w", src, err)
	}

	if err := copyFile(src, dst); err != nil {
		return errors.Errorf("copying %s across devices: %w", src, err)
	}
	if err := os.Remove(src); err != nil {
		return errors.Errorf("removing %s after copy: %w", src, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	// O_EXCL: never clobber a file that appeared after the name was picked
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	// from here on dst is ours, a failed copy must not leave half of it behind
	err = copyContents(out, in, info.Size())
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chtimes(dst, info.ModTime(), info.ModTime())
	}
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}

func copyContents(dst io.Writer, src io.Reader, size int64) error {
	written, err := io.Copy(dst, src)
	if err != nil {
		return err
	}
	if written != size {
		return errors.Errorf("copy size mismatch: source %d bytes, copied %d bytes", size, written)
	}
	return nil
}
