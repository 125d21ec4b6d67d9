/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic in the editor loop into a crash report.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/goccy/go-json"

	"pagebuilder/internal/domain"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/tree"
	"pagebuilder/internal/undo"
	"pagebuilder/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// reportDir is where reports go; tests point it at a temp dir.
var reportDir = os.TempDir

// historyTail is how many of the latest history labels a report lists.
const historyTail = 10

// Document is the part of the editor a report describes.
type Document interface {
	Elements() domain.Forest
	Settings() domain.Settings
	History() []undo.Entry
}

// Recover captures a panic, logs an error with stacktrace, writes a report
// holding the document and its latest history, and exits with code 2.
//
// Usage: defer crash.Recover(ed)
func Recover(doc Document) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, err := writeReport(doc, r, stack)
		if err != nil {
			l.Error("crash report failed", slog.Any("err", err), slog.String("path", reportPath))
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		// Exit with a non-zero code to indicate failure in CLI context.
		exitFn(2)
	}
}

func writeReport(doc Document, panicVal any, stack []byte) (string, error) {
	dir := reportDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return dir, err
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("pagebuilder-crash-%s.log", stamp))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "PageBuilder Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if doc != nil {
		describe(&buf, doc)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}

// describe writes the document summary. A panic while reading doc is
// reported inline.
func describe(buf *bytes.Buffer, doc Document) {
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(buf, "Document: unavailable (%v)\n", r)
		}
	}()
	els := doc.Elements()
	s := doc.Settings()
	_, _ = fmt.Fprintf(buf, "Project: %s\n", s.ProjectName)
	_, _ = fmt.Fprintf(buf, "Elements: %d\n", tree.Count(els))

	h := doc.History()
	_, _ = fmt.Fprintf(buf, "History: %d entries\n", len(h))
	if len(h) > historyTail {
		h = h[len(h)-historyTail:]
	}
	for _, e := range h {
		_, _ = fmt.Fprintf(buf, "  %s  %s\n", e.Timestamp.Format(time.RFC3339), e.Action)
	}

	data, err := json.MarshalIndent(els, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(buf, "Document: %v\n", err)
		return
	}
	_, _ = fmt.Fprintf(buf, "\nDocument:\n%s\n", data)
}
