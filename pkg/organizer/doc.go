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

// Package organizer runs reconciliation passes over the download directory.
//
//	+--------+     +----------+     +-----------+     +---------+
//	|  Scan  | --> |  Filter  | --> |  Execute  | --> | Results |
//	+--------+     +----------+     +-----------+     +---------+
//	 list dir       stability        uniquify +
//	 + rules        check            rename
//
// 🎯 Purpose:
//   - Scan lists the direct entries of the download directory and proposes one
//     MoveAction per regular, non-ignored file. It only reads.
//   - Filter drops files that vanished or are still being written.
//   - Execute creates destination directories, picks collision-free names and
//     moves the files.
//
// Each phase is callable on its own; one-shot mode is Scan + Execute, a watch
// pass is Scan + Filter + Execute. Passes must never overlap: two concurrent
// passes could both pick the same file.
//
// ⚡ Failure handling:
//   - A missing download directory fails Scan with ErrNotFound.
//   - A failed move is recorded on its Result and reported; the batch goes on.
//   - A file that disappears between phases is skipped without an error.
package organizer
