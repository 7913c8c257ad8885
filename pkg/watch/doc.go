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

// Package watch drives the organizer from filesystem notifications.
//
//	notifier ──events──▶ pump ──(debounce)──▶ trigger (cap 1) ──▶ worker
//	                                                               │
//	                                        Scan ▶ Filter ▶ Execute ◀┘
//
// The pump is the only goroutine touching the Session. Passes run one at a
// time on the worker; a trigger that arrives while a pass runs is coalesced
// into a single follow-up pass. Cancelling the context stops the notifier,
// lets the running pass finish its current stability wait and returns nil.
package watch
