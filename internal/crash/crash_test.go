/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"io"
	"os"
	"strings"
	"testing"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/editor"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/undo"
)

func useTempReportDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := reportDir
	reportDir = func() string { return dir }
	t.Cleanup(func() { reportDir = old })
	return dir
}

func TestWriteReportWithoutDocument(t *testing.T) {
	dir := useTempReportDir(t)
	path, err := writeReport(nil, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if !strings.HasPrefix(path, dir) {
		t.Fatalf("report written to %s, want under %s", path, dir)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "PageBuilder Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
}

func TestWriteReportDescribesDocument(t *testing.T) {
	useTempReportDir(t)
	ed := editor.New(editor.WithLogger(applog.Discard()))
	if _, err := ed.AddElement(domain.KindButton, editor.Overrides{Name: "Buy now"}); err != nil {
		t.Fatal(err)
	}
	path, err := writeReport(ed, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	b, _ := os.ReadFile(path)
	s := string(b)
	for _, want := range []string{"Elements: 2", "History: 1 entries", "Add Button", `"name": "Buy now"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("report lacks %q:\n%s", want, s)
		}
	}
}

type brokenDoc struct{}

func (brokenDoc) Elements() domain.Forest   { panic("corrupt") }
func (brokenDoc) Settings() domain.Settings { return domain.Settings{} }
func (brokenDoc) History() []undo.Entry     { return nil }

func TestWriteReportSurvivesBrokenDocument(t *testing.T) {
	useTempReportDir(t)
	path, err := writeReport(brokenDoc{}, "boom", nil)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "Document: unavailable (corrupt)") || !strings.Contains(string(b), "Panic: boom") {
		t.Fatalf("unexpected report:\n%s", b)
	}
}

// TestRecoverPanickingCall ensures Recover handles a panic, writes a report,
// and does not terminate the test process due to injected exitFn.
func TestRecoverPanickingCall(t *testing.T) {
	dir := useTempReportDir(t)

	// Capture stderr temporarily to avoid noisy test logs
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	ed := editor.New(editor.WithLogger(applog.Discard()))
	func() {
		defer Recover(ed)
		panic("boom")
	}()

	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "pagebuilder-crash-") {
		t.Fatalf("expected one crash report in %s, got %v (err %v)", dir, entries, err)
	}
}
