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

// Package log prints the human-readable lines of the organizer (planned and
// executed moves, skipped and failed files) and mirrors them as structured
// zerolog records.
package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎯 Kind is what happened to a file
type Kind int

const (
	// KindMove is a file moved, or planned to be under dry run.
	KindMove Kind = iota
	// KindUnstable is a file still being written, left for a later pass.
	KindUnstable
	// KindFailed is a move that was attempted and failed.
	KindFailed
)

// String returns the structured-log name of the kind
func (k Kind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindUnstable:
		return "unstable"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 Entry describes one file handled by a reconciliation pass
type Entry struct {
	Kind        Kind
	Rule        string
	Source      string
	Destination string // final, collision-free path
	Size        int64
	DryRun      bool
	Err         error
}

// 🎯 Logger prints organizer output to a console writer
type Logger struct {
	console io.Writer
	verbose bool
	mu      sync.Mutex
}

// 🏭 New creates a new logger. Moves and skips are only printed when verbose
// is set or the entry is a dry run; failures are always printed.
func New(console io.Writer, verbose bool) *Logger {
	return &Logger{
		console: console,
		verbose: verbose,
	}
}

// Discard returns a logger that prints nothing but failures, to io.Discard.
func Discard() *Logger {
	return New(io.Discard, false)
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, falling back to Discard
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return Discard()
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// Verbose reports whether moves are printed outside dry runs.
func (l *Logger) Verbose() bool {
	return l.verbose
}

func (l *Logger) shouldPrint(e Entry) bool {
	return e.Kind == KindFailed || l.verbose || e.DryRun
}

// 📝 formatEntry formats an entry for display
func (l *Logger) formatEntry(e Entry) string {
	switch e.Kind {
	case KindUnstable:
		return fmt.Sprintf("%s Not stable yet: %s",
			color.New(color.FgYellow).Sprint("[SKIP]"),
			e.Source)
	case KindFailed:
		return fmt.Sprintf("%s %s -> %s: %v",
			color.New(color.FgRed).Sprintf("[%s] FAILED", e.Rule),
			e.Source, e.Destination, e.Err)
	default:
		line := fmt.Sprintf("%s %s -> %s",
			color.New(color.FgCyan).Sprintf("[%s] MOVE", e.Rule),
			e.Source, e.Destination)
		if e.Size > 0 {
			line += " " + color.New(color.Faint).Sprintf("(%s)", humanize.Bytes(uint64(e.Size)))
		}
		return line
	}
}

// 📝 LogEntry prints an entry (subject to verbosity) and records it on the
// context zerolog logger
func (l *Logger) LogEntry(ctx context.Context, e Entry) {
	zlog := zerolog.Ctx(ctx)
	ev := zlog.Debug()
	if e.Kind == KindFailed {
		ev = zlog.Warn().Err(e.Err)
	}
	ev.Str("kind", e.Kind.String()).
		Str("rule", e.Rule).
		Str("source", e.Source).
		Str("destination", e.Destination).
		Int64("size", e.Size).
		Bool("dry_run", e.DryRun).
		Msg("file")

	if !l.shouldPrint(e) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, l.formatEntry(e))
}

// 📝 Plain prints msg unformatted
func (l *Logger) Plain(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, msg)
}

// 📝 Header prints a bold header line
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("dlsort")
	fmt.Fprintf(l.console, "%s %s\n", name, color.New(color.Faint).Sprint("• "+msg))
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
