/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"pagebuilder/internal/domain"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/tree"
	"pagebuilder/internal/undo"
)

func labels(es []undo.Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Action
	}
	return out
}

func TestUndoRedoAddElement(t *testing.T) {
	e := newTestEditor(t)
	before := e.Elements()
	id := mustAdd(t, e, domain.KindRectangle, Overrides{})
	after := e.Elements()

	if !e.Undo() {
		t.Fatalf("undo should succeed")
	}
	if !reflect.DeepEqual(e.Elements(), before) {
		t.Fatalf("undo did not restore the previous forest")
	}
	if e.SelectedID() != "" {
		t.Fatalf("selection of a vanished node should be cleared, got %q", e.SelectedID())
	}
	if !e.Redo() || !reflect.DeepEqual(e.Elements(), after) {
		t.Fatalf("redo did not restore the added rectangle")
	}
	if _, ok := e.Find(id); !ok {
		t.Fatalf("rectangle missing after redo")
	}
	if e.Redo() {
		t.Fatalf("nothing left to redo")
	}
}

func TestUndoRedoEmptyAreNoops(t *testing.T) {
	e := newTestEditor(t)
	rev := e.Revision()
	if e.Undo() || e.Redo() {
		t.Fatalf("empty stacks must report false")
	}
	if e.Revision() != rev {
		t.Fatalf("no-op navigation must not notify")
	}
}

func TestNewActionClearsRedo(t *testing.T) {
	e := newTestEditor(t)
	mustAdd(t, e, domain.KindRectangle, Overrides{})
	e.Undo()
	if !e.CanRedo() {
		t.Fatalf("redo should be available after undo")
	}
	mustAdd(t, e, domain.KindCircle, Overrides{})
	if e.CanRedo() || len(e.Future()) != 0 {
		t.Fatalf("a new action must clear the future, got %v", labels(e.Future()))
	}
}

func TestHistoryCap(t *testing.T) {
	e := newTestEditor(t)
	id := mustAdd(t, e, domain.KindText, Overrides{})
	for i := 0; i < 60; i++ {
		e.Rename(id, fmt.Sprintf("name %d", i))
	}
	if n := len(e.History()); n != undo.DefaultMaxPast {
		t.Fatalf("history length = %d, want %d", n, undo.DefaultMaxPast)
	}
	// the add and the earliest renames were dropped
	for _, l := range labels(e.History()) {
		if l != "Rename Element" {
			t.Fatalf("unexpected surviving entry %q", l)
		}
	}
	undone := 0
	for e.Undo() {
		undone++
	}
	n, _ := e.Find(id)
	if undone != 50 || n.Name != "name 9" {
		t.Fatalf("undone=%d name=%q", undone, n.Name)
	}
}

func TestHistoryLimitFromConfig(t *testing.T) {
	e := newTestEditor(t, WithHistoryLimit(3))
	for i := 0; i < 5; i++ {
		mustAdd(t, e, domain.KindBox, Overrides{ParentID: domain.RootPageID})
	}
	if n := len(e.History()); n != 3 {
		t.Fatalf("history length = %d, want 3", n)
	}
}

func TestRestoreHistoryWorkedExample(t *testing.T) {
	e := newTestEditor(t)
	blank := e.Elements()
	mustAdd(t, e, domain.KindRectangle, Overrides{})
	afterRect := e.Elements()
	mustAdd(t, e, domain.KindCircle, Overrides{})
	e.Undo()
	if len(e.History()) != 1 || len(e.Future()) != 1 {
		t.Fatalf("past=%v future=%v", labels(e.History()), labels(e.Future()))
	}

	if !e.RestoreHistory(0) {
		t.Fatalf("restore 0 should succeed")
	}
	if len(e.History()) != 0 {
		t.Fatalf("past should be empty, got %v", labels(e.History()))
	}
	if !reflect.DeepEqual(e.Elements(), blank) {
		t.Fatalf("live state should equal the first snapshot")
	}
	if got := labels(e.Future()); !reflect.DeepEqual(got, []string{undo.CurrentStateLabel, "Add Circle"}) {
		t.Fatalf("future = %v", got)
	}
	if !e.JumpToFuture(0) || !reflect.DeepEqual(e.Elements(), afterRect) {
		t.Fatalf("jumping onto the marker should return to the pre-jump state")
	}
	if e.RestoreHistory(7) || e.JumpToFuture(-1) {
		t.Fatalf("out of range jumps must be ignored")
	}
}

func TestRestoreHistoryRedoReplaysNamedSteps(t *testing.T) {
	e := newTestEditor(t)
	mustAdd(t, e, domain.KindRectangle, Overrides{})
	afterRect := e.Elements()
	mustAdd(t, e, domain.KindCircle, Overrides{})
	afterCircle := e.Elements()
	mustAdd(t, e, domain.KindText, Overrides{})

	if !e.RestoreHistory(0) {
		t.Fatalf("restore 0 should succeed")
	}
	want := []string{"Add Rectangle", "Add Circle", undo.CurrentStateLabel}
	if got := labels(e.Future()); !reflect.DeepEqual(got, want) {
		t.Fatalf("future = %v, want %v", got, want)
	}
	if !e.Redo() || !reflect.DeepEqual(e.Elements(), afterRect) {
		t.Fatalf("first redo should re-add the rectangle")
	}
	if !e.Redo() || !reflect.DeepEqual(e.Elements(), afterCircle) {
		t.Fatalf("second redo should re-add the circle")
	}
	if got := labels(e.History()); !reflect.DeepEqual(got, []string{"Add Rectangle", "Add Circle"}) {
		t.Fatalf("history = %v", got)
	}
}

// Undo after RestoreHistory(i) moves one step further back to past[i-1]; the
// way back to the pre-jump state is JumpToFuture onto the marker.
func TestUndoAfterRestoreStepsFurtherBack(t *testing.T) {
	e := newTestEditor(t)
	blank := e.Elements()
	mustAdd(t, e, domain.KindRectangle, Overrides{})
	afterRect := e.Elements()
	mustAdd(t, e, domain.KindCircle, Overrides{})
	afterCircle := e.Elements()
	mustAdd(t, e, domain.KindText, Overrides{})
	pre := e.Elements()

	if !e.RestoreHistory(2) || !reflect.DeepEqual(e.Elements(), afterCircle) {
		t.Fatalf("restore 2 should make the circle state live")
	}
	if !e.Undo() || !reflect.DeepEqual(e.Elements(), afterRect) {
		t.Fatalf("undo after restore should land on the previous snapshot")
	}
	if reflect.DeepEqual(e.Elements(), pre) {
		t.Fatalf("undo must not return to the pre-jump state")
	}
	if !e.Undo() || !reflect.DeepEqual(e.Elements(), blank) {
		t.Fatalf("second undo should reach the blank document")
	}
	fut := e.Future()
	marker := len(fut) - 1
	if fut[marker].Action != undo.CurrentStateLabel {
		t.Fatalf("future = %v", labels(fut))
	}
	if !e.JumpToFuture(marker) || !reflect.DeepEqual(e.Elements(), pre) {
		t.Fatalf("jumping onto the marker should return to the pre-jump state")
	}
}

func TestClearHistoryKeepsDocument(t *testing.T) {
	e := newTestEditor(t)
	mustAdd(t, e, domain.KindRectangle, Overrides{})
	els := e.Elements()
	e.ClearHistory()
	if e.CanUndo() || e.CanRedo() {
		t.Fatalf("history should be empty")
	}
	if !reflect.DeepEqual(e.Elements(), els) {
		t.Fatalf("clear must not touch the document")
	}
}

func TestSnapshotsAreDetachedFromLiveTree(t *testing.T) {
	e := newTestEditor(t)
	id := mustAdd(t, e, domain.KindText, Overrides{})
	_ = e.UpdateProps(id, domain.Props{"items": []any{"a"}})
	leaked := e.Elements()
	n, _ := tree.Find(leaked, id)
	n.Props["items"].([]any)[0] = "mutated"
	n.Name = "mutated"

	e.Undo()
	e.Redo()
	got, _ := e.Find(id)
	if got.Name == "mutated" || got.Props["items"].([]any)[0] != "a" {
		t.Fatalf("history leaked a live reference: %+v", got)
	}
}

// drawCommand performs any selection a command needs and returns the command.
func drawCommand(t *rapid.T, e *Editor) func() {
	ids := tree.IDs(e.elements)
	pick := func(label string) string { return rapid.SampledFrom(ids).Draw(t, label) }
	positions := []tree.Position{tree.Before, tree.After, tree.Inside}

	switch rapid.IntRange(0, 9).Draw(t, "op") {
	case 0:
		kind := rapid.SampledFrom(domain.Kinds).Draw(t, "kind")
		return func() { _, _ = e.AddElement(kind, Overrides{}) }
	case 1:
		id := pick("delete")
		return func() { _ = e.DeleteElement(id) }
	case 2:
		e.Select(pick("dup"), rapid.Bool().Draw(t, "multi"))
		return func() { e.DuplicateSelection() }
	case 3:
		e.Select(pick("move"), true)
		dx := float64(rapid.IntRange(-5, 5).Draw(t, "dx"))
		return func() { e.MoveSelection(dx, 1) }
	case 4:
		drag, target := pick("drag"), pick("target")
		pos := rapid.SampledFrom(positions).Draw(t, "pos")
		return func() { e.Reorder(drag, target, pos) }
	case 5:
		id, name := pick("rename"), rapid.StringMatching(`[a-z]{1,6}`).Draw(t, "name")
		return func() { e.Rename(id, name) }
	case 6:
		id := pick("visibility")
		return func() { e.ToggleVisibility(id) }
	case 7:
		id := pick("lock")
		return func() { e.ToggleLock(id) }
	case 8:
		id, v := pick("props"), rapid.IntRange(0, 3).Draw(t, "value")
		return func() { _ = e.UpdateProps(id, domain.Props{"k": v}) }
	default:
		g := float64(rapid.IntRange(1, 4).Draw(t, "grid"))
		return func() { e.UpdateSettings(SettingsPatch{GridSize: &g}) }
	}
}

func checkInvariants(t *rapid.T, e *Editor) {
	els := e.Elements()
	if err := tree.Validate(els); err != nil {
		t.Fatalf("invalid forest: %v", err)
	}
	if _, ok := tree.Find(els, domain.RootPageID); !ok {
		t.Fatalf("root page vanished")
	}
	if vis := tree.VisiblePages(els); len(vis) > 1 {
		t.Fatalf("visible pages = %v", vis)
	}
	for _, id := range e.SelectedIDs() {
		if _, ok := tree.Find(els, id); !ok {
			t.Fatalf("selection holds missing id %s", id)
		}
	}
}

func TestUndoRedoInverseProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := New(WithLogger(applog.Discard()))
		for step, steps := 0, rapid.IntRange(1, 30).Draw(t, "steps"); step < steps; step++ {
			cmd := drawCommand(t, e)
			before, beforeSettings, recorded := e.Elements(), e.Settings(), len(e.History())
			cmd()
			checkInvariants(t, e)
			if len(e.History()) == recorded {
				if !reflect.DeepEqual(e.Settings(), beforeSettings) {
					t.Fatalf("settings changed without a history entry")
				}
				continue
			}
			if e.CanRedo() {
				t.Fatalf("a recorded command must clear the future")
			}
			after, afterSettings := e.Elements(), e.Settings()
			e.Undo()
			if !reflect.DeepEqual(e.Elements(), before) || !reflect.DeepEqual(e.Settings(), beforeSettings) {
				t.Fatalf("undo after step %d did not restore the previous state", step)
			}
			e.Redo()
			if !reflect.DeepEqual(e.Elements(), after) || !reflect.DeepEqual(e.Settings(), afterSettings) {
				t.Fatalf("redo after step %d did not restore the new state", step)
			}
			checkInvariants(t, e)
		}
	})
}

// RestoreHistory(i) followed by JumpToFuture onto the "Current State" marker
// returns to the state held before the jump. Undo is not the inverse of
// RestoreHistory; it steps to past[i-1] (see TestUndoAfterRestoreStepsFurtherBack).
func TestJumpRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := New(WithLogger(applog.Discard()))
		for step, steps := 0, rapid.IntRange(1, 15).Draw(t, "steps"); step < steps; step++ {
			drawCommand(t, e)()
		}
		past := e.History()
		if len(past) == 0 {
			return
		}
		i := rapid.IntRange(0, len(past)-1).Draw(t, "index")
		pre, preSettings := e.Elements(), e.Settings()

		if !e.RestoreHistory(i) {
			t.Fatalf("restore %d of %d failed", i, len(past))
		}
		checkInvariants(t, e)
		if len(e.History()) != i {
			t.Fatalf("past length = %d, want %d", len(e.History()), i)
		}
		marker := len(past) - 1 - i
		if fut := e.Future(); fut[marker].Action != undo.CurrentStateLabel {
			t.Fatalf("future = %v, marker expected at %d", labels(fut), marker)
		}
		e.JumpToFuture(marker)
		if !reflect.DeepEqual(e.Elements(), pre) || !reflect.DeepEqual(e.Settings(), preSettings) {
			t.Fatalf("jump round trip did not return to the starting state")
		}
		if len(e.History()) != len(past)+1 {
			t.Fatalf("past length after round trip = %d", len(e.History()))
		}
	})
}
